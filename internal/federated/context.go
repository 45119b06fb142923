// Package federated carries the provisioned caller identity through a
// request. It replaces ambient authentication state with an explicit value
// constructed once per request by the server middleware.
package federated

import (
	"context"

	identitydomain "github.com/openconext/teams/internal/identity/domain"
)

// User is the authenticated caller for the current request.
type User struct {
	Person *identitydomain.Person
}

func (u User) URN() string {
	if u.Person == nil {
		return ""
	}
	return u.Person.URN
}

func (u User) Email() string {
	if u.Person == nil {
		return ""
	}
	return u.Person.Email
}

func (u User) IsGuest() bool {
	return u.Person == nil || u.Person.Guest
}

func (u User) IsSuperAdmin() bool {
	return u.Person != nil && u.Person.SuperAdmin
}

type contextKey struct{}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the request's user, if any.
func FromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(contextKey{}).(User)
	return user, ok && user.Person != nil
}
