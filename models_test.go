package auth_test

import (
	"testing"
	"time"

	auth "github.com/goliatone/go-cookie-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUser_CredentialsChangedAfter(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	later := issuedAt.Add(2 * time.Second)
	sameSecond := issuedAt.Add(500 * time.Millisecond)
	earlier := issuedAt.Add(-time.Hour)

	tests := []struct {
		name      string
		changedAt *time.Time
		want      bool
	}{
		{"never changed", nil, false},
		{"changed before issue", &earlier, false},
		{"changed within the issue second", &sameSecond, false},
		{"changed after issue", &later, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &auth.User{PasswordChangedAt: tt.changedAt}
			assert.Equal(t, tt.want, u.CredentialsChangedAfter(issuedAt))
		})
	}
}

func TestUser_Sanitize(t *testing.T) {
	u := &auth.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: "$2a$04$hash",
	}

	clean := u.Sanitize()
	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, u.Email, clean.Email)
	assert.Equal(t, "$2a$04$hash", u.PasswordHash)

	var nilUser *auth.User
	assert.Nil(t, nilUser.Sanitize())
}

func TestUserRole(t *testing.T) {
	assert.True(t, auth.RoleMember.IsValid())
	assert.True(t, auth.RoleAdmin.IsValid())
	assert.False(t, auth.UserRole("owner").IsValid())
}
