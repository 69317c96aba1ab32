package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Discovery is the part of an OpenID Connect discovery document needed to
// verify tokens.
type Discovery struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// Discover reads <issuer>/.well-known/openid-configuration. The document's
// issuer must match the configured one.
func Discover(ctx context.Context, issuer string) (*Discovery, error) {
	issuer = strings.TrimRight(issuer, "/")
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuer+"/.well-known/openid-configuration", nil)
	if err != nil {
		return nil, fmt.Errorf("build discovery request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch discovery document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery endpoint returned status %d", resp.StatusCode)
	}

	var d Discovery
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode discovery document: %w", err)
	}
	if d.JWKSURI == "" {
		return nil, fmt.Errorf("discovery document has no jwks_uri")
	}
	if strings.TrimRight(d.Issuer, "/") != issuer {
		return nil, fmt.Errorf("discovery issuer %q does not match %q", d.Issuer, issuer)
	}
	return &d, nil
}
