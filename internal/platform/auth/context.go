package auth

import "context"

type userKey struct{}

// User is the authenticated caller attached to a request context.
type User struct {
	ID    string
	Name  string
	Roles []string
}

// HasRole reports whether u holds any of roles. Admins hold every role.
func (u User) HasRole(roles ...string) bool {
	for _, has := range u.Roles {
		if has == RoleAdmin {
			return true
		}
		for _, want := range roles {
			if has == want {
				return true
			}
		}
	}
	return false
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}

// UserIDFromContext returns the caller id, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	u, _ := UserFromContext(ctx)
	return u.ID
}

func RolesFromContext(ctx context.Context) []string {
	u, _ := UserFromContext(ctx)
	return u.Roles
}
