package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// RequestIdentity is the per request result of the authentication gate:
// the verified claims and the reloaded user, without its password hash.
type RequestIdentity struct {
	Credentials *JWTClaims
	User        *User
}

// SubjectID returns the subject of the verified claims
func (r *RequestIdentity) SubjectID() string {
	if r == nil || r.Credentials == nil {
		return ""
	}
	return r.Credentials.UserID()
}

// Complete reports whether both the claims and the user are present
func (r *RequestIdentity) Complete() bool {
	return r != nil && r.Credentials != nil && r.User != nil
}

// WithIdentity sets the identity in the given context
func WithIdentity(ctx context.Context, identity *RequestIdentity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the identity in the context
func IdentityFromContext(ctx context.Context) (*RequestIdentity, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(identityCtxKey).(*RequestIdentity)
	return raw, ok && raw != nil
}

// UserFromContext returns the authenticated user stored in ctx
func UserFromContext(ctx context.Context) (*User, bool) {
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.User == nil {
		return nil, false
	}
	return identity.User, true
}

// GetRouterIdentity reads the identity from the request locals under key,
// falling back to the request context.
func GetRouterIdentity(c router.Context, key string) (*RequestIdentity, bool) {
	if key == "" {
		key = identityCtxKey.name
	}
	if raw, ok := c.Locals(key).(*RequestIdentity); ok && raw != nil {
		return raw, true
	}
	return IdentityFromContext(c.Context())
}

func setRouterIdentity(c router.Context, key string, identity *RequestIdentity) {
	if key == "" {
		key = identityCtxKey.name
	}
	c.Locals(key, identity)
	c.SetContext(WithIdentity(c.Context(), identity))
}
