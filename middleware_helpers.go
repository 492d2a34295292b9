package auth

import (
	"github.com/goliatone/go-cookie-auth/middleware/jwtware"
	"github.com/goliatone/go-router"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// IdentityListener adapts fn into a ValidationListener that runs after the
// gate has resolved the request identity.
func IdentityListener(contextKey string, fn func(c router.Context, identity *RequestIdentity) error) ValidationListener {
	return func(c router.Context, _ jwtware.Claims) error {
		identity, ok := GetRouterIdentity(c, contextKey)
		if !ok {
			return ErrNotAuthenticated
		}
		return fn(c, identity)
	}
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}
