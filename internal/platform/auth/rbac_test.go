package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runRequireRole(t *testing.T, user *User, required ...string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if user != nil {
		req = req.WithContext(WithUser(req.Context(), *user))
	}
	return RequireRole(required...)(okHandler)(e.NewContext(req, httptest.NewRecorder()))
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name  string
		user  *User
		roles []string
		want  int
	}{
		{"nurse writes", &User{ID: "n", Roles: []string{RoleNurse}}, WriteRoles, 0},
		{"surgeon reads", &User{ID: "s", Roles: []string{RoleSurgeon}}, ReadRoles, 0},
		{"surgeon cannot write", &User{ID: "s", Roles: []string{RoleSurgeon}}, WriteRoles, http.StatusForbidden},
		{"admin bypass", &User{ID: "a", Roles: []string{RoleAdmin}}, WriteRoles, 0},
		{"no roles", &User{ID: "x"}, ReadRoles, http.StatusForbidden},
		{"anonymous", nil, ReadRoles, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runRequireRole(t, tt.user, tt.roles...)
			if tt.want == 0 {
				if err != nil {
					t.Errorf("expected access, got %v", err)
				}
				return
			}
			expectStatus(t, err, tt.want)
		})
	}
}

func TestUserFromContext(t *testing.T) {
	if UserIDFromContext(context.Background()) != "" || RolesFromContext(context.Background()) != nil {
		t.Error("expected empty identity on a bare context")
	}
	ctx := WithUser(context.Background(), User{ID: "user-123", Roles: []string{RoleNurse}})
	if UserIDFromContext(ctx) != "user-123" || RolesFromContext(ctx)[0] != RoleNurse {
		t.Error("identity not round-tripped through context")
	}
}

func TestIsPublicPath(t *testing.T) {
	if !IsPublicPath("/health") || !IsPublicPath("/metrics") {
		t.Error("expected health and metrics to be public")
	}
	if IsPublicPath("/api/v1/anesthesia-records") {
		t.Error("records must require authentication")
	}
}
