package auth_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	auth "github.com/goliatone/go-cookie-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const testSigningKey = "test-signing-key-0123456789abcdef"

func testConfig() *auth.BaseConfig {
	return auth.DefaultConfig(testSigningKey)
}

// testLogger writes JSON records to w
func testLogger(w io.Writer) auth.Logger {
	return glog.NewLogger(
		glog.WithName("test"),
		glog.WithWriter(w),
		glog.WithLoggerTypeJSON(),
		glog.WithLevel(glog.Debug),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
}

func newTestServer() router.Server[*fiber.App] {
	return router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return fiber.New(fiber.Config{DisableStartupMessage: true})
	})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testHasher() auth.BcryptHasher {
	return auth.NewBcryptHasher(bcrypt.MinCost)
}

// signClaims signs arbitrary claims, used to build tokens the service
// itself would never issue.
func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := auth.OpenDatabase(auth.DriverSQLite, ":memory:")
	require.NoError(t, err)

	require.NoError(t, auth.Migrate(context.Background(), db, auth.DriverSQLite))

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func setupUsers(t *testing.T, opts ...auth.UsersOption) (*auth.Users, *bun.DB) {
	t.Helper()
	db := setupDB(t)
	opts = append([]auth.UsersOption{auth.WithUsersHasher(testHasher())}, opts...)
	return auth.NewUsersRepository(db, opts...), db
}
