package auth

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
)

// MinSigningKeyLength is the shortest HS256 secret accepted by Validate
const MinSigningKeyLength = 32

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name        string        `env:"NAME" envDefault:"token" json:"name"`
	MaxAge      time.Duration `env:"MAX_AGE" envDefault:"4m" json:"max_age"`
	Path        string        `env:"PATH" envDefault:"/" json:"path"`
	Domain      string        `env:"DOMAIN" json:"domain"`
	HTTPOnly    bool          `env:"HTTP_ONLY" envDefault:"true" json:"http_only"`
	Secure      bool          `env:"SECURE" envDefault:"true" json:"secure"`
	SameSite    string        `env:"SAME_SITE" envDefault:"None" json:"same_site"`
	Partitioned bool          `env:"PARTITIONED" envDefault:"true" json:"partitioned"`
}

// BaseConfig is the default Config implementation. Fields carry env tags
// meant to be parsed with an AUTH_ prefix.
type BaseConfig struct {
	SigningKey  string        `env:"SIGNING_KEY" json:"-"`
	Issuer      string        `env:"ISSUER" envDefault:"go-cookie-auth" json:"issuer"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"4m" json:"token_ttl"`
	TokenLookup string        `env:"TOKEN_LOOKUP" envDefault:"cookie:token" json:"token_lookup"`
	ContextKey  string        `env:"CONTEXT_KEY" envDefault:"identity" json:"context_key"`
	BcryptCost  int           `env:"BCRYPT_COST" envDefault:"12" json:"bcrypt_cost"`
	Cookie      CookieConfig  `envPrefix:"COOKIE_" json:"cookie"`
}

// DefaultConfig returns the deployed defaults with the given signing key
func DefaultConfig(signingKey string) *BaseConfig {
	return &BaseConfig{
		SigningKey:  signingKey,
		Issuer:      "go-cookie-auth",
		TokenTTL:    4 * time.Minute,
		TokenLookup: "cookie:token",
		ContextKey:  "identity",
		BcryptCost:  DefaultBcryptCost,
		Cookie: CookieConfig{
			Name:        "token",
			MaxAge:      4 * time.Minute,
			Path:        "/",
			HTTPOnly:    true,
			Secure:      true,
			SameSite:    "None",
			Partitioned: true,
		},
	}
}

func (c BaseConfig) GetSigningKey() string      { return c.SigningKey }
func (c BaseConfig) GetIssuer() string          { return c.Issuer }
func (c BaseConfig) GetTokenTTL() time.Duration { return c.TokenTTL }
func (c BaseConfig) GetTokenLookup() string     { return c.TokenLookup }
func (c BaseConfig) GetContextKey() string      { return c.ContextKey }
func (c BaseConfig) GetCookie() CookieConfig    { return c.Cookie }
func (c BaseConfig) GetBcryptCost() int         { return c.BcryptCost }

// Validate checks the configuration before it is handed to the services
func (c BaseConfig) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey,
			validation.Required,
			validation.Length(MinSigningKeyLength, 0),
		),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.TokenLookup, validation.Required),
		validation.Field(&c.ContextKey, validation.Required),
		validation.Field(&c.Cookie),
	)
	if err != nil {
		return errors.FromOzzoValidation(err, "invalid auth configuration")
	}
	return nil
}

// Validate checks the cookie attributes
func (c CookieConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.MaxAge, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.SameSite, validation.In("None", "Lax", "Strict", "none", "lax", "strict", "")),
		validation.Field(&c.Secure, validation.By(func(any) error {
			if strings.EqualFold(c.SameSite, "none") && !c.Secure {
				return validation.NewError("validation_secure_required", "must be true when SameSite is None")
			}
			return nil
		})),
	)
}

// Mismatch reports when the cookie and the token it carries expire at
// different times. Returns an empty string when both lifetimes agree.
func (c BaseConfig) Mismatch() string {
	if c.Cookie.MaxAge == c.TokenTTL {
		return ""
	}
	if c.Cookie.MaxAge > c.TokenTTL {
		return fmt.Sprintf("cookie max-age %s outlives token ttl %s, the browser will send expired tokens", c.Cookie.MaxAge, c.TokenTTL)
	}
	return fmt.Sprintf("cookie max-age %s is shorter than token ttl %s, sessions end before the token expires", c.Cookie.MaxAge, c.TokenTTL)
}

var _ Config = BaseConfig{}
