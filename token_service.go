package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SigningMethod is the only algorithm issued and accepted
var SigningMethod = jwt.SigningMethodHS256

// TokenService signs and verifies identity tokens with a shared secret
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
	logger     Logger
}

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithClock overrides the time source used to stamp and validate tokens
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a new TokenService from cfg
func NewTokenService(cfg Config, logger Logger, opts ...TokenServiceOption) *TokenService {
	ts := &TokenService{
		signingKey: []byte(cfg.GetSigningKey()),
		ttl:        cfg.GetTokenTTL(),
		issuer:     cfg.GetIssuer(),
		now:        time.Now,
		logger:     normalizeLogger(logger),
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Issue creates a signed token for subjectID
func (ts *TokenService) Issue(subjectID string) (string, error) {
	if strings.TrimSpace(subjectID) == "" {
		return "", errors.New("subject id must not be empty", errors.CategoryBadInput)
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		UID: subjectID,
	}

	token := jwt.NewWithClaims(SigningMethod, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}
	return signed, nil
}

// Verify parses tokenString and validates signature, issuance and expiry.
// Failures are returned as *VerificationError.
func (ts *TokenService) Verify(tokenString string) (*JWTClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, newVerificationError(ReasonMalformed, jwt.ErrTokenMalformed)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.issuer))
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, ts.keyFunc, opts...)
	if err != nil {
		verr := ts.classify(claims, err)
		ts.logger.Debug("token verification failed", "reason", verr.Reason.String(), "error", err)
		return nil, verr
	}

	if !token.Valid || claims.UserID() == "" {
		return nil, newVerificationError(ReasonMalformed, jwt.ErrTokenInvalidClaims)
	}

	return claims, nil
}

func (ts *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return ts.signingKey, nil
}

// classify maps a parser error onto a reason. The parser checks the
// signature before the registered claims, so expiry is read from the
// decoded payload to report expired tokens whatever their signature.
func (ts *TokenService) classify(claims *JWTClaims, err error) *VerificationError {
	if errors.Is(err, jwt.ErrTokenMalformed) {
		return newVerificationError(ReasonMalformed, err)
	}

	if errors.Is(err, jwt.ErrTokenExpired) || claims.isExpiredAt(ts.now()) {
		return newVerificationError(ReasonExpired, err)
	}

	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
		return newVerificationError(ReasonBadSignature, err)
	}

	return newVerificationError(ReasonMalformed, err)
}

func (c *JWTClaims) isExpiredAt(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

var _ TokenCodec = (*TokenService)(nil)
