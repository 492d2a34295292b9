package auth_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	auth "github.com/goliatone/go-cookie-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestSentinelMessages(t *testing.T) {
	assert.Equal(t, "User not registered", auth.ErrUserNotRegistered.Message)
	assert.Equal(t, "User email/password incorrect", auth.ErrMismatchedHashAndPassword.Message)
	assert.Equal(t, "You are not authenticated. Please login", auth.ErrNotAuthenticated.Message)
	assert.Equal(t, "The user does not exist", auth.ErrUserNotFound.Message)
	assert.Equal(t,
		"Your User Profile was recently updated and you have been logged out. Please login again",
		auth.ErrStaleSession.Message,
	)
	assert.Equal(t,
		"You are not authorized to perform this action. Only profile owners can update/delete",
		auth.ErrNotOwner.Message,
	)
}

func TestHTTPStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"credentials", auth.ErrCredentialsRequired, http.StatusBadRequest},
		{"not registered", auth.ErrUserNotRegistered, http.StatusUnauthorized},
		{"email taken", auth.ErrEmailTaken, http.StatusConflict},
		{"not found", auth.ErrRecordNotFound, http.StatusNotFound},
		{"wrapped", fmt.Errorf("outer: %w", auth.ErrStaleSession), http.StatusUnauthorized},
		{"authz without code", goerrors.New("nope", goerrors.CategoryAuthz), http.StatusForbidden},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.HTTPStatusOf(tt.err))
		})
	}
}

func TestMessageOfAndTextCode(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", auth.ErrNotAuthenticated)

	assert.Equal(t, auth.ErrNotAuthenticated.Message, auth.MessageOf(wrapped))
	assert.Equal(t, "boom", auth.MessageOf(errors.New("boom")))
	assert.Empty(t, auth.MessageOf(nil))

	assert.True(t, auth.HasTextCode(wrapped, auth.TextCodeNotAuthenticated))
	assert.False(t, auth.HasTextCode(wrapped, auth.TextCodeSessionStale))
	assert.False(t, auth.HasTextCode(errors.New("boom"), auth.TextCodeSessionStale))
}

func TestVerificationErrorMatchesOnlyItsReason(t *testing.T) {
	err := &auth.VerificationError{Reason: auth.ReasonExpired}

	assert.True(t, errors.Is(err, auth.ErrTokenExpired))
	assert.False(t, errors.Is(err, auth.ErrTokenMalformed))
	assert.False(t, errors.Is(err, auth.ErrTokenSignature))
	assert.Equal(t, "token verification failed: expired", err.Error())

	_, ok := auth.ReasonOf(errors.New("boom"))
	assert.False(t, ok)
}
