package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-errors"
)

// MinPasswordLength applies to registration and password updates
const MinPasswordLength = 8

// SignInRequest is the sign-in payload
type SignInRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate returns ErrCredentialsRequired when either field is missing
func (r SignInRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
	if err == nil {
		return nil
	}

	rich := ErrCredentialsRequired.Clone()
	if verr := errors.FromOzzoValidation(err, rich.Message); verr != nil {
		rich.ValidationErrors = verr.ValidationErrors
	}
	return rich
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	Username  string `json:"username,omitempty" form:"username"`
	FirstName string `json:"first_name,omitempty" form:"first_name"`
	LastName  string `json:"last_name,omitempty" form:"last_name"`
}

func (r RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 0)),
		validation.Field(&r.Username, validation.Length(0, 64)),
	)
	if err != nil {
		return errors.FromOzzoValidation(err, "Invalid registration payload").
			WithCode(errors.CodeBadRequest)
	}
	return nil
}

// User builds the record to be stored
func (r RegisterRequest) User() *User {
	return &User{
		Email:     strings.TrimSpace(r.Email),
		Username:  strings.TrimSpace(r.Username),
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
	}
}

// PasswordUpdateRequest is the password change payload
type PasswordUpdateRequest struct {
	Password string `json:"password" form:"password"`
}

func (r PasswordUpdateRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 0)),
	)
	if err != nil {
		return errors.FromOzzoValidation(err, "Invalid password payload").
			WithCode(errors.CodeBadRequest)
	}
	return nil
}
