package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

type Auther struct {
	store        UserStore
	provider     *UserProvider
	codec        TokenCodec
	ttl          time.Duration
	logger       Logger
	activitySink ActivitySink
}

var _ Authenticator = (*Auther)(nil)

// SignInResult is returned by a successful sign in. Token is meant for the
// session cookie only and must not be rendered in response bodies.
type SignInResult struct {
	Token     string
	User      *User
	ExpiresAt time.Time
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store UserStore, cfg Config) *Auther {
	logger := defaultLogger()
	return &Auther{
		store:        store,
		provider:     NewUserProvider(store, nil).WithLogger(logger),
		codec:        NewTokenService(cfg, logger),
		ttl:          cfg.GetTokenTTL(),
		logger:       logger,
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	s.provider.WithLogger(s.logger)
	if ts, ok := s.codec.(*TokenService); ok {
		ts.logger = s.logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenCodec replaces the default TokenService
func (s *Auther) WithTokenCodec(codec TokenCodec) *Auther {
	if codec != nil {
		s.codec = codec
	}
	return s
}

// WithPasswordAuthenticator replaces the hasher used to verify credentials
func (s *Auther) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Auther {
	s.provider = NewUserProvider(s.store, hasher).WithLogger(s.logger)
	return s
}

// TokenCodec returns the codec used by this Authenticator
func (s *Auther) TokenCodec() TokenCodec {
	return s.codec
}

// SignIn verifies the credentials in req and issues a token for the user.
// Nothing is issued on failure.
func (s *Auther) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.provider.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("sign in rejected", "email", req.Email, "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", req.Email, map[string]any{
			"error": MessageOf(err),
		})
		return nil, err
	}

	token, err := s.codec.Issue(user.ID.String())
	if err != nil {
		s.logger.Error("sign in failed to issue token", "user_id", user.ID.String(), "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), user.Email, map[string]any{
			"error": MessageOf(err),
		})
		return nil, err
	}

	if tracker, ok := s.store.(UserTracker); ok {
		if err := tracker.TrackSuccessfulLogin(ctx, user); err != nil {
			s.logger.Error("failed to track successful login", "user_id", user.ID.String(), "error", err)
		}
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID.String(), user.Email, nil)

	return &SignInResult{
		Token:     token,
		User:      user.Sanitize(),
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// ResolveIdentity reloads the user named by verified claims and rejects
// tokens issued before the user's last credential change.
func (s *Auther) ResolveIdentity(ctx context.Context, claims *JWTClaims) (*RequestIdentity, error) {
	if claims == nil || claims.UserID() == "" {
		return nil, ErrInvalidSession
	}

	user, err := s.store.GetByID(ctx, claims.UserID(), SelectWithoutPassword())
	if err != nil {
		if IsRecordNotFound(err) {
			s.logger.Info("session user no longer exists", "user_id", claims.UserID())
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load session user")
	}

	if user == nil {
		return nil, ErrUserNotFound
	}

	if user.CredentialsChangedAfter(claims.IssuedAt()) {
		s.logger.Info("session predates credential change",
			"user_id", claims.UserID(),
			"issued_at", claims.IssuedAt(),
			"password_changed_at", user.PasswordChangedAt,
		)
		s.emitAuthEvent(ctx, ActivityEventStaleLogout, claims.UserID(), user.Email, map[string]any{
			"token_id": claims.TokenID(),
		})
		return nil, ErrStaleSession
	}

	return &RequestIdentity{
		Credentials: claims,
		User:        user.Sanitize(),
	}, nil
}

// SessionValid reports whether token verifies. It does not load the user, so a
// token for a deleted user or one issued before a password change still
// reports true.
func (s *Auther) SessionValid(token string) bool {
	if token == "" {
		return false
	}
	_, err := s.codec.Verify(token)
	return err == nil
}

// Register validates req and creates the user
func (s *Auther) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.store.Register(ctx, req.User(), req.Password)
	if err != nil {
		s.logger.Info("registration failed", "email", req.Email, "error", err)
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventUserRegistered, user.ID.String(), user.Email, nil)

	return user.Sanitize(), nil
}

// RecordActivity forwards event to the configured sink
func (s *Auther) RecordActivity(ctx context.Context, event ActivityEvent) {
	recordActivity(ctx, normalizeActivitySink(s.activitySink), s.logger, event)
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID, email string, metadata map[string]any) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	recordActivity(ctx, normalizeActivitySink(s.activitySink), s.logger, ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Metadata:  metadata,
	})
}
