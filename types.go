package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
)

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetTokenTTL() time.Duration
	GetTokenLookup() string
	GetContextKey() string
	GetCookie() CookieConfig
}

// TokenCodec issues and verifies identity tokens
type TokenCodec interface {
	Issue(subjectID string) (string, error)
	Verify(token string) (*JWTClaims, error)
}

// UserStore is the user record collaborator consumed by the sign-in flow
// and the authentication gate.
type UserStore interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
	// GetByIdentifier looks users up by email, password hash included.
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error)
	// Register hashes password and stores the new user.
	Register(ctx context.Context, user *User, password string) (*User, error)
}

// UserTracker is implemented by stores that record successful sign-ins.
type UserTracker interface {
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Authenticator is the session core consumed by the HTTP layer
type Authenticator interface {
	SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error)
	ResolveIdentity(ctx context.Context, claims *JWTClaims) (*RequestIdentity, error)
	SessionValid(token string) bool
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	RecordActivity(ctx context.Context, event ActivityEvent)
	TokenCodec() TokenCodec
}
