package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the bun backed user store
type Users struct {
	repository.Repository[*User]
	db        *bun.DB
	hasher    PasswordAuthenticator
	useHashid bool
	now       func() time.Time
	logger    Logger
}

var (
	_ UserStore                    = (*Users)(nil)
	_ UserTracker                  = (*Users)(nil)
	_ repository.Repository[*User] = (*Users)(nil)
)

type UsersOption func(*Users)

// WithUsersHasher sets the password hasher used by Register and UpdatePassword
func WithUsersHasher(h PasswordAuthenticator) UsersOption {
	return func(u *Users) {
		if h != nil {
			u.hasher = h
		}
	}
}

// WithHashidIDs derives user ids from the email address
func WithHashidIDs(enabled bool) UsersOption {
	return func(u *Users) {
		u.useHashid = enabled
	}
}

// WithUsersClock overrides the time source for timestamps
func WithUsersClock(now func() time.Time) UsersOption {
	return func(u *Users) {
		if now != nil {
			u.now = now
		}
	}
}

func WithUsersLogger(l Logger) UsersOption {
	return func(u *Users) {
		u.logger = normalizeLogger(l)
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) *Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	users := &Users{
		Repository: repo,
		db:         db,
		hasher:     NewBcryptHasher(DefaultBcryptCost),
		now:        time.Now,
		logger:     defaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(users)
		}
	}
	return users
}

// SelectWithoutPassword leaves the password hash out of the loaded record
func SelectWithoutPassword() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.ExcludeColumn("password_hash")
	}
}

func selectWithDeleted(q *bun.SelectQuery) *bun.SelectQuery {
	return q.WhereAllWithDeleted()
}

func (a *Users) Register(ctx context.Context, record *User, password string) (*User, error) {
	return a.RegisterTx(ctx, a.db, record, password)
}

// RegisterTx hashes password and inserts record. Emails are unique across
// live and soft deleted users.
func (a *Users) RegisterTx(ctx context.Context, tx bun.IDB, record *User, password string) (*User, error) {
	if record == nil {
		return nil, errors.New("user record is required", errors.CategoryBadInput)
	}

	hash, err := a.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	a.prepareUserDefaults(record)
	record.PasswordHash = hash

	existing, err := a.Repository.GetByIdentifierTx(ctx, tx, record.Email, selectWithDeleted)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken.Clone().WithMetadata(map[string]any{"email": record.Email})
	}
	if err != nil && !IsRecordNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to check email availability")
	}

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to insert user")
	}

	return created.Sanitize(), nil
}

// UpdatePassword stores a new hash and stamps password_changed_at, which
// invalidates every token issued before now.
func (a *Users) UpdatePassword(ctx context.Context, id, password string) error {
	return a.UpdatePasswordTx(ctx, a.db, id, password)
}

func (a *Users) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id, password string) error {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return notFound(map[string]any{"id": id})
	}

	hash, err := a.hasher.HashPassword(password)
	if err != nil {
		return err
	}

	now := a.now().UTC()
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("password_hash = ?", hash).
		Set("password_changed_at = ?", now).
		Set("updated_at = ?", now).
		Where("?TableAlias.id = ?", uid).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update password")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read affected rows")
	}
	if n == 0 {
		return notFound(map[string]any{"id": id})
	}
	return nil
}

func (a *Users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

func (a *Users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	if user == nil {
		return errors.New("user is required", errors.CategoryBadInput)
	}

	loggedInAt := a.now().UTC()
	_, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("loggedin_at = ?", loggedInAt).
		Where("?TableAlias.id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to track successful login")
	}

	user.LoggedInAt = &loggedInAt
	return nil
}

func (a *Users) prepareUserDefaults(record *User) {
	record.Email = normalizeEmail(record.Email)

	if !record.Role.IsValid() {
		record.Role = RoleMember
	}

	if record.Username == "" {
		record.Username = getUsername(record.Email)
	}

	if record.ID == uuid.Nil && a.useHashid {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		} else {
			a.logger.Warn("failed to derive hashid user id", "error", err)
		}
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := a.now().UTC()
	record.CreatedAt = &now
	record.UpdatedAt = &now
	record.PasswordChangedAt = nil
	record.DeletedAt = nil
}

// IsRecordNotFound reports whether err is a missing record from either the
// repository or this package.
func IsRecordNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.IsNotFound(err)
}

func getUsername(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func notFound(meta map[string]any) error {
	return ErrRecordNotFound.Clone().WithMetadata(meta)
}
