package auth_test

import (
	"errors"
	"testing"

	auth "github.com/goliatone/go-cookie-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := testHasher()
	assert.Equal(t, bcrypt.MinCost, hasher.Cost())

	hash, err := hasher.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, hasher.ComparePasswordAndHash("correct horse", hash))

	err = hasher.ComparePasswordAndHash("battery staple", hash)
	assert.True(t, errors.Is(err, auth.ErrMismatchedHashAndPassword))
}

func TestBcryptHasher_EmptyPassword(t *testing.T) {
	_, err := testHasher().HashPassword("")
	assert.True(t, errors.Is(err, auth.ErrNoEmptyString))
}

func TestBcryptHasher_InvalidHash(t *testing.T) {
	err := testHasher().ComparePasswordAndHash("secret", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.False(t, errors.Is(err, auth.ErrMismatchedHashAndPassword))
}

func TestNewBcryptHasher_OutOfRangeCost(t *testing.T) {
	hasher := auth.NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.GreaterOrEqual(t, hasher.Cost(), bcrypt.MinCost)
	assert.LessOrEqual(t, hasher.Cost(), auth.DefaultBcryptCost)
}
