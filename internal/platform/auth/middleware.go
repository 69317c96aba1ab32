package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Claims is the bearer token payload.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// JWTConfig selects how tokens are verified. A SigningKey means HS256;
// otherwise RS256 keys come from JWKSURL, or from the issuer's discovery
// document when JWKSURL is empty.
type JWTConfig struct {
	Issuer     string
	Audience   string
	JWKSURL    string
	SigningKey []byte
}

// Verifier turns a raw bearer token into a User.
type Verifier struct {
	parser *jwt.Parser
	key    func(ctx context.Context, t *jwt.Token) (interface{}, error)
}

func NewVerifier(ctx context.Context, cfg JWTConfig) (*Verifier, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	v := &Verifier{}
	if len(cfg.SigningKey) > 0 {
		key := cfg.SigningKey
		v.key = func(context.Context, *jwt.Token) (interface{}, error) { return key, nil }
		v.parser = jwt.NewParser(append(opts, jwt.WithValidMethods([]string{"HS256"}))...)
		return v, nil
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		if cfg.Issuer == "" {
			return nil, errors.New("jwt: one of signing key, JWKS URL or issuer is required")
		}
		d, err := Discover(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("jwt: %w", err)
		}
		jwksURL = d.JWKSURI
	}
	keys := NewKeySet(jwksURL, keySetTTL)
	v.key = func(ctx context.Context, t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		return keys.Key(ctx, kid)
	}
	v.parser = jwt.NewParser(append(opts, jwt.WithValidMethods([]string{"RS256"}))...)
	return v, nil
}

// Verify checks signature, expiry, issuer and audience.
func (v *Verifier) Verify(ctx context.Context, raw string) (User, error) {
	var claims Claims
	keyFunc := func(t *jwt.Token) (interface{}, error) { return v.key(ctx, t) }
	if _, err := v.parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
		return User{}, err
	}
	if claims.Subject == "" {
		return User{}, errors.New("token has no subject")
	}
	return User{ID: claims.Subject, Name: claims.Name, Roles: claims.Roles}, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// JWTMiddleware authenticates every request not matched by skipper.
func JWTMiddleware(v *Verifier, skipper middleware.Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			raw, ok := bearerToken(header)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}
			u, err := v.Verify(c.Request().Context(), raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), u)))
			return next(c)
		}
	}
}

// DevUser is attached to every request when authentication is disabled.
var DevUser = User{ID: "dev-user", Name: "Development User", Roles: []string{RoleAdmin}}

// DevAuthMiddleware authenticates every request as DevUser.
func DevAuthMiddleware(skipper middleware.Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper == nil || !skipper(c) {
				c.SetRequest(c.Request().WithContext(WithUser(c.Request().Context(), DevUser)))
			}
			return next(c)
		}
	}
}
