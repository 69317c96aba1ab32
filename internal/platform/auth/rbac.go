package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	RoleAdmin     = "admin"
	RolePhysician = "physician"
	RoleNurse     = "nurse"
	RoleSurgeon   = "surgeon"
)

// Route groups of the record API. Admin is implied.
var (
	ReadRoles  = []string{RolePhysician, RoleNurse, RoleSurgeon}
	WriteRoles = []string{RolePhysician, RoleNurse}
)

// RequireRole rejects anonymous callers with 401 and callers holding none of
// roles with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := UserFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !u.HasRole(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, "requires role "+strings.Join(roles, " or "))
			}
			return next(c)
		}
	}
}
