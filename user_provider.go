package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserProvider verifies credentials against a UserStore
type UserProvider struct {
	store  UserStore
	hasher PasswordAuthenticator
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore, hasher PasswordAuthenticator) *UserProvider {
	if hasher == nil {
		hasher = NewBcryptHasher(DefaultBcryptCost)
	}
	return &UserProvider{
		store:  store,
		hasher: hasher,
		logger: defaultLogger(),
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = normalizeLogger(l)
	return u
}

// VerifyCredentials will find the user by email and compare the password
// against the stored hash. The returned user still carries its hash.
func (u *UserProvider) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := u.store.GetByIdentifier(ctx, normalizeEmail(email))
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrUserNotRegistered
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrUserNotRegistered
	}

	if err := u.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if !errors.Is(err, ErrMismatchedHashAndPassword) {
			u.logger.Warn("password comparison failed", "user_id", user.ID.String(), "error", err)
		}
		return nil, ErrMismatchedHashAndPassword
	}

	return user, nil
}
