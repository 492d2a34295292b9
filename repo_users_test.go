package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	auth "github.com/goliatone/go-cookie-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestUsersRepository_RegisterAndLoad(t *testing.T) {
	repo, _ := setupUsers(t)
	ctx := context.Background()

	created, err := repo.Register(ctx, &auth.User{Email: "  Ada@Example.com "}, "password123")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "ada", created.Username)
	assert.Equal(t, auth.RoleMember, created.Role)
	assert.Empty(t, created.PasswordHash)
	assert.Nil(t, created.PasswordChangedAt)

	byID, err := repo.GetByID(ctx, created.ID.String(), auth.SelectWithoutPassword())
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)
	assert.Empty(t, byID.PasswordHash)

	byEmail, err := repo.GetByIdentifier(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.NotEmpty(t, byEmail.PasswordHash)
	assert.NoError(t, testHasher().ComparePasswordAndHash("password123", byEmail.PasswordHash))
}

func TestUsersRepository_RegisterDuplicateEmail(t *testing.T) {
	repo, _ := setupUsers(t)
	ctx := context.Background()

	_, err := repo.Register(ctx, &auth.User{Email: "dup@example.com"}, "password123")
	require.NoError(t, err)

	_, err = repo.Register(ctx, &auth.User{Email: "DUP@example.com"}, "password456")
	require.Error(t, err)
	assert.True(t, auth.HasTextCode(err, auth.TextCodeEmailTaken))
	assert.Nil(t, auth.ErrEmailTaken.Metadata)
}

func TestUsersRepository_RegisterRejectsEmptyPassword(t *testing.T) {
	repo, _ := setupUsers(t)

	_, err := repo.Register(context.Background(), &auth.User{Email: "empty@example.com"}, "")
	assert.True(t, errors.Is(err, auth.ErrNoEmptyString))
}

func TestUsersRepository_RegisterWithHashid(t *testing.T) {
	repo, _ := setupUsers(t, auth.WithHashidIDs(true))
	ctx := context.Background()

	created, err := repo.Register(ctx, &auth.User{Email: "hash@example.com"}, "password123")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	loaded, err := repo.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
}

func TestUsersRepository_NotFound(t *testing.T) {
	repo, _ := setupUsers(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.True(t, auth.IsRecordNotFound(err))

	_, err = repo.GetByIdentifier(ctx, "nobody@example.com")
	assert.True(t, auth.IsRecordNotFound(err))

	err = repo.UpdatePassword(ctx, uuid.NewString(), "password123")
	assert.True(t, auth.IsRecordNotFound(err))

	err = repo.UpdatePassword(ctx, "not-a-uuid", "password123")
	assert.True(t, auth.IsRecordNotFound(err))
}

func TestUsersRepository_RegisterStoreFailure(t *testing.T) {
	repo, db := setupUsers(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "DROP TABLE users")
	require.NoError(t, err)

	_, err = repo.Register(ctx, &auth.User{Email: "ada@example.com"}, "password123")
	require.Error(t, err)
	assert.True(t, goerrors.IsInternal(err))
	assert.Equal(t, 500, auth.HTTPStatusOf(err))
}

func TestUsersRepository_UpdatePassword(t *testing.T) {
	changedAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	repo, db := setupUsers(t)
	ctx := context.Background()

	created, err := repo.Register(ctx, &auth.User{Email: "pw@example.com"}, "password123")
	require.NoError(t, err)

	clocked := auth.NewUsersRepository(db,
		auth.WithUsersHasher(testHasher()),
		auth.WithUsersClock(fixedClock(changedAt)),
	)

	err = clocked.UpdatePassword(ctx, created.ID.String(), "new-password")
	require.NoError(t, err)

	loaded, err := repo.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.NotNil(t, loaded.PasswordChangedAt)
	assert.Equal(t, changedAt.Unix(), loaded.PasswordChangedAt.Unix())
	assert.True(t, loaded.CredentialsChangedAfter(time.Now()))

	withHash, err := repo.GetByIdentifier(ctx, "pw@example.com")
	require.NoError(t, err)
	assert.NoError(t, testHasher().ComparePasswordAndHash("new-password", withHash.PasswordHash))
	assert.Error(t, testHasher().ComparePasswordAndHash("password123", withHash.PasswordHash))
}

func TestUsersRepository_Delete(t *testing.T) {
	repo, _ := setupUsers(t)
	ctx := context.Background()

	created, err := repo.Register(ctx, &auth.User{Email: "gone@example.com"}, "password123")
	require.NoError(t, err)

	loaded, err := repo.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, loaded))

	_, err = repo.GetByID(ctx, created.ID.String())
	assert.True(t, auth.IsRecordNotFound(err))

	_, err = repo.GetByIdentifier(ctx, "gone@example.com")
	assert.True(t, auth.IsRecordNotFound(err))

	// soft deleted emails stay reserved
	_, err = repo.Register(ctx, &auth.User{Email: "gone@example.com"}, "password123")
	assert.True(t, auth.HasTextCode(err, auth.TextCodeEmailTaken))
}

func TestUsersRepository_TrackSuccessfulLogin(t *testing.T) {
	loginAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	repo, _ := setupUsers(t, auth.WithUsersClock(fixedClock(loginAt)))
	ctx := context.Background()

	created, err := repo.Register(ctx, &auth.User{Email: "track@example.com"}, "password123")
	require.NoError(t, err)
	assert.Nil(t, created.LoggedInAt)

	require.NoError(t, repo.TrackSuccessfulLogin(ctx, created))
	require.NotNil(t, created.LoggedInAt)

	loaded, err := repo.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.NotNil(t, loaded.LoggedInAt)
	assert.Equal(t, loginAt.Unix(), loaded.LoggedInAt.Unix())

	assert.Error(t, repo.TrackSuccessfulLogin(ctx, nil))
}

func TestRepositoryManager(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	mngr := auth.NewRepositoryManager(db, auth.WithUsersHasher(testHasher()))
	require.NoError(t, mngr.Validate())
	assert.NotPanics(t, mngr.MustValidate)

	var createdID uuid.UUID
	err := mngr.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := mngr.Users().RegisterTx(ctx, tx, &auth.User{Email: "tx@example.com"}, "password123")
		if err != nil {
			return err
		}
		createdID = created.ID
		return nil
	})
	require.NoError(t, err)

	_, err = mngr.Users().GetByID(ctx, createdID.String())
	assert.NoError(t, err)

	rollback := errors.New("rollback")
	err = mngr.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := mngr.Users().RegisterTx(ctx, tx, &auth.User{Email: "rolled@example.com"}, "password123"); err != nil {
			return err
		}
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	_, err = mngr.Users().GetByIdentifier(ctx, "rolled@example.com")
	assert.True(t, auth.IsRecordNotFound(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = mngr.RunInTx(cancelled, nil, func(context.Context, bun.Tx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
