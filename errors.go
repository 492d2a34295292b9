package auth

import (
	"github.com/goliatone/go-errors"
)

// Text codes attached to the package sentinels.
const (
	TextCodeCredentialsRequired = "CREDENTIALS_REQUIRED"
	TextCodeUserNotRegistered   = "USER_NOT_REGISTERED"
	TextCodeMismatchedPassword  = "MISMATCHED_PASSWORD"
	TextCodeNotAuthenticated    = "NOT_AUTHENTICATED"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeSessionStale        = "SESSION_STALE"
	TextCodeInvalidSession      = "INVALID_SESSION"
	TextCodeNotOwner            = "NOT_OWNER"
	TextCodeTokenSignature      = "TOKEN_BAD_SIGNATURE"
	TextCodeEmailTaken          = "EMAIL_TAKEN"
	TextCodeRecordNotFound      = "RECORD_NOT_FOUND"
)

var (
	// ErrCredentialsRequired is returned when email or password is empty
	ErrCredentialsRequired = errors.New("Email and password are required", errors.CategoryValidation).
		WithCode(errors.CodeBadRequest).
		WithTextCode(TextCodeCredentialsRequired)

	// ErrUserNotRegistered is returned when no user matches the email
	ErrUserNotRegistered = errors.New("User not registered", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(TextCodeUserNotRegistered)

	// ErrMismatchedHashAndPassword is returned on password mismatch
	ErrMismatchedHashAndPassword = errors.New("User email/password incorrect", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(TextCodeMismatchedPassword)

	// ErrNotAuthenticated is returned when the request carries no token
	ErrNotAuthenticated = errors.New("You are not authenticated. Please login", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(TextCodeNotAuthenticated)

	// ErrUserNotFound is returned when a verified token names a missing user
	ErrUserNotFound = errors.New("The user does not exist", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(TextCodeUserNotFound)

	// ErrStaleSession is returned when the token predates a credential change
	ErrStaleSession = errors.New("Your User Profile was recently updated and you have been logged out. Please login again", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(TextCodeSessionStale)

	// ErrNotOwner is returned when the subject does not own the resource
	ErrNotOwner = errors.New("You are not authorized to perform this action. Only profile owners can update/delete", errors.CategoryAuthz).
		WithCode(errors.CodeBadRequest).
		WithTextCode(TextCodeNotOwner)

	// ErrInvalidSession is reported by the gate for any token that fails
	// verification, whatever the underlying reason
	ErrInvalidSession = errors.New("Your session is invalid or has expired. Please login", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(TextCodeInvalidSession)

	// ErrEmailTaken is returned when registering an email already in use
	ErrEmailTaken = errors.New("Email is already registered", errors.CategoryConflict).
		WithCode(errors.CodeConflict).
		WithTextCode(TextCodeEmailTaken)

	// ErrRecordNotFound is returned by stores when no row matches
	ErrRecordNotFound = errors.New("record not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode(TextCodeRecordNotFound)
)

var (
	ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(errors.TextCodeTokenMalformed)

	ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(errors.TextCodeTokenExpired)

	ErrTokenSignature = errors.New("token signature is invalid", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(TextCodeTokenSignature)
)

// VerificationReason classifies why a token failed verification
type VerificationReason string

const (
	ReasonMalformed    VerificationReason = "malformed"
	ReasonExpired      VerificationReason = "expired"
	ReasonBadSignature VerificationReason = "bad_signature"
)

func (r VerificationReason) String() string { return string(r) }

func (r VerificationReason) sentinel() *errors.Error {
	switch r {
	case ReasonExpired:
		return ErrTokenExpired
	case ReasonBadSignature:
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}

// VerificationError is returned by TokenCodec.Verify. It matches the
// sentinel for its reason with errors.Is.
type VerificationError struct {
	Reason VerificationReason
	Err    error
}

func newVerificationError(reason VerificationReason, err error) *VerificationError {
	return &VerificationError{Reason: reason, Err: err}
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return "token verification failed: " + e.Reason.String()
	}
	return "token verification failed: " + e.Reason.String() + ": " + e.Err.Error()
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

func (e *VerificationError) Is(target error) bool {
	return target == e.Reason.sentinel()
}

// ReasonOf reports the verification reason carried by err, if any.
func ReasonOf(err error) (VerificationReason, bool) {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Reason, true
	}
	return "", false
}

// HasTextCode reports whether err is a rich error carrying code.
func HasTextCode(err error, code string) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// MessageOf returns the user facing message of a rich error and falls
// back to err.Error for plain errors.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Message
	}
	return err.Error()
}

// HTTPStatusOf maps an error onto a response status code.
func HTTPStatusOf(err error) int {
	var rich *errors.Error
	if errors.As(err, &rich) {
		if rich.Code != 0 {
			return rich.Code
		}
		switch rich.Category {
		case errors.CategoryValidation, errors.CategoryBadInput:
			return errors.CodeBadRequest
		case errors.CategoryAuth:
			return errors.CodeUnauthorized
		case errors.CategoryAuthz:
			return errors.CodeForbidden
		case errors.CategoryNotFound:
			return errors.CodeNotFound
		case errors.CategoryConflict:
			return errors.CodeConflict
		}
	}
	if _, ok := ReasonOf(err); ok {
		return errors.CodeUnauthorized
	}
	return errors.CodeInternal
}
