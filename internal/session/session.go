// Package session models the authenticated identity and its credential.
// Sessions are plain values passed explicitly to every call site that needs
// them; there is no package-level current user.
package session

import "context"

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated principal.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Session pairs an identity with the bearer token issued for it.
// The zero value is an anonymous session.
type Session struct {
	Identity Identity
	Token    string
}

// Anonymous returns a session with no identity or credential.
func Anonymous() Session {
	return Session{}
}

// Authenticated reports whether the session carries a credential.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// CanMutate reports whether create/update/delete actions may be attempted.
func (s Session) CanMutate() bool {
	return s.Authenticated() && s.Identity.ID != 0
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
