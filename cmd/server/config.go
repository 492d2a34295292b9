package main

import (
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	auth "github.com/goliatone/go-cookie-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/joho/godotenv"
)

// Config is read from the environment. Auth settings use the AUTH_ prefix,
// e.g. AUTH_SIGNING_KEY or AUTH_COOKIE_MAX_AGE.
type Config struct {
	HTTPAddr        string          `env:"HTTP_ADDR" envDefault:":8572" json:"http_addr"`
	DatabaseDriver  string          `env:"DATABASE_DRIVER" envDefault:"sqlite" json:"database_driver"`
	DatabaseDSN     string          `env:"DATABASE_DSN" envDefault:"file:cookie-auth.db?cache=shared" json:"-"`
	LogLevel        string          `env:"LOG_LEVEL" envDefault:"info" json:"log_level"`
	LogFormat       string          `env:"LOG_FORMAT" envDefault:"json" json:"log_format"`
	ShutdownTimeout time.Duration   `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" json:"shutdown_timeout"`
	Auth            auth.BaseConfig `envPrefix:"AUTH_" json:"auth"`
}

// LoadConfig reads the optional env files, then the process environment.
// With no files given godotenv looks for ./.env.
func LoadConfig(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to read env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment")
	}

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Level normalizes LogLevel, defaulting to info
func (c *Config) Level() string {
	return glog.NormalizeLevel(c.LogLevel)
}
