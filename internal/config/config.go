// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

// Package config loads AdminDeck configuration from defaults, a YAML file,
// environment variables, and command-line flags, in that order of precedence.
package config

import (
	"time"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"

	"github.com/admindeck/admindeck/internal/auth"
)

// Environments.
const (
	EnvironmentDevelopment = "development"
	EnvironmentTest        = "test"
	EnvironmentProduction  = auth.EnvironmentProduction
)

// Defaults.
const (
	DefaultEnvironment = EnvironmentDevelopment
	DefaultHTTPAddr    = "127.0.0.1:3000"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
	DefaultCookieName  = "session_id"
)

// Config is the complete AdminDeck configuration.
type Config struct {
	Environment string         `koanf:"environment" json:"environment,omitempty" env:"ENVIRONMENT" jsonschema:"enum=development,enum=test,enum=production,description=Deployment environment"`
	DatabaseURL string         `koanf:"database_url" json:"database_url,omitempty" env:"DATABASE_URL" jsonschema:"description=PostgreSQL connection URL"`
	AutoMigrate bool           `koanf:"auto_migrate" json:"auto_migrate,omitempty" env:"AUTO_MIGRATE" jsonschema:"description=Apply pending migrations when serve starts"`
	HTTP        HTTPConfig     `koanf:"http" json:"http,omitempty" envPrefix:"HTTP_"`
	Log         LogConfig      `koanf:"log" json:"log,omitempty" envPrefix:"LOG_"`
	Password    PasswordConfig `koanf:"password" json:"password,omitempty" envPrefix:"PASSWORD_"`
	Session     SessionConfig  `koanf:"session" json:"session,omitempty" envPrefix:"SESSION_"`
}

// HTTPConfig configures the API and metrics listeners.
type HTTPConfig struct {
	Addr        string `koanf:"addr" json:"addr,omitempty" env:"ADDR" jsonschema:"description=API listen address"`
	MetricsAddr string `koanf:"metrics_addr" json:"metrics_addr,omitempty" env:"METRICS_ADDR" jsonschema:"description=Metrics and health listen address; empty disables it"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" env:"FORMAT" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" env:"LEVEL" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// PasswordConfig configures password hashing.
type PasswordConfig struct {
	Pepper string `koanf:"pepper" json:"pepper,omitempty" env:"PEPPER" jsonschema:"description=Secret appended to every password before hashing"`
	// Cost overrides the bcrypt cost. Zero selects the cost for the environment.
	Cost int `koanf:"cost" json:"cost,omitempty" env:"COST" jsonschema:"minimum=0,maximum=31"`
}

// SessionConfig configures session lifetime and the session cookie.
type SessionConfig struct {
	Lifetime     Duration `koanf:"lifetime" json:"lifetime,omitempty" env:"LIFETIME"`
	ExpireOffset Duration `koanf:"expire_offset" json:"expire_offset,omitempty" env:"EXPIRE_OFFSET"`
	CookieName   string   `koanf:"cookie_name" json:"cookie_name,omitempty" env:"COOKIE_NAME" jsonschema:"pattern=^[A-Za-z0-9_-]+$"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: DefaultEnvironment,
		HTTP: HTTPConfig{
			Addr:        DefaultHTTPAddr,
			MetricsAddr: DefaultMetricsAddr,
		},
		Log: LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
		Password: PasswordConfig{
			Pepper: auth.DefaultPepper,
		},
		Session: SessionConfig{
			Lifetime:     Duration(auth.DefaultSessionLifetime),
			ExpireOffset: Duration(auth.DefaultSessionExpireOffset),
			CookieName:   DefaultCookieName,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvironmentDevelopment, EnvironmentTest, EnvironmentProduction:
	default:
		return oops.Code("CONFIG_INVALID").
			With("environment", c.Environment).
			Errorf("environment must be one of development, test, production")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log.format", c.Log.Format).
			Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if c.HTTP.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http.addr is required")
	}
	if c.Password.Pepper == "" {
		return oops.Code("CONFIG_INVALID").Errorf("password.pepper is required")
	}
	if c.IsProduction() && c.Password.Pepper == auth.DefaultPepper {
		return oops.Code("CONFIG_INVALID").Errorf("password.pepper must be changed from the default in production")
	}
	if c.Password.Cost != 0 && (c.Password.Cost < bcrypt.MinCost || c.Password.Cost > bcrypt.MaxCost) {
		return oops.Code("CONFIG_INVALID").
			With("password.cost", c.Password.Cost).
			Errorf("password.cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Session.CookieName == "" {
		return oops.Code("CONFIG_INVALID").Errorf("session.cookie_name is required")
	}
	if err := c.SessionConfig().Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return nil
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// PasswordCost returns the configured bcrypt cost, or the environment's
// default when none is set.
func (c *Config) PasswordCost() int {
	if c.Password.Cost != 0 {
		return c.Password.Cost
	}
	return auth.CostForEnvironment(c.Environment)
}

// PasswordConfig returns the password policy configuration.
func (c *Config) PasswordConfig() auth.PasswordConfig {
	return auth.PasswordConfig{
		Pepper: c.Password.Pepper,
		Cost:   c.PasswordCost(),
	}
}

// SessionConfig returns the session store configuration.
func (c *Config) SessionConfig() auth.SessionConfig {
	return auth.SessionConfig{
		Lifetime:     time.Duration(c.Session.Lifetime),
		ExpireOffset: time.Duration(c.Session.ExpireOffset),
	}
}

// RequireDatabaseURL returns an error when no database URL is configured.
func (c *Config) RequireDatabaseURL() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database_url is required (set ADMINDECK_DATABASE_URL, DATABASE_URL, or --database-url)")
	}
	return nil
}
