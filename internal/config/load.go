// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package config

import (
	"errors"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read into Config.
const EnvPrefix = "ADMINDECK_"

// fallbackDatabaseURLVar is read when no prefixed database URL is set.
const fallbackDatabaseURLVar = "DATABASE_URL"

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"environment":  "environment",
	"database-url": "database_url",
	"auto-migrate": "auto_migrate",
	"http-addr":    "http.addr",
	"metrics-addr": "http.metrics_addr",
	"log-format":   "log.format",
	"log-level":    "log.level",
}

// Options controls where Load reads configuration from.
type Options struct {
	// File is an optional YAML config file.
	File string
	// Flags supplies command-line overrides. Only flags that were set and
	// appear in FlagKeys are applied.
	Flags *pflag.FlagSet
	// Environ replaces the process environment when non-nil. .env files are
	// not loaded in that case.
	Environ map[string]string
	// DotEnvFiles are loaded into the process environment before it is read.
	// Missing files are ignored. Defaults to ".env".
	DotEnvFiles []string
}

// Load builds a Config from defaults, the config file, the environment, and
// flags, then validates it.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	if opts.File != "" {
		if err := loadFile(cfg, opts.File); err != nil {
			return nil, err
		}
	}

	environ, err := environment(opts)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return nil, oops.Code("CONFIG_ENV_INVALID").With("prefix", EnvPrefix).Wrap(err)
	}

	if opts.Flags != nil {
		if err := loadFlags(cfg, opts.Flags); err != nil {
			return nil, err
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = environ[fallbackDatabaseURLVar]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile validates the YAML file against the config schema and merges it
// over cfg.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}
	if err := ValidateSchema(data); err != nil {
		return oops.Code("CONFIG_SCHEMA_INVALID").With("path", path).Wrap(err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code("CONFIG_PARSE_FAILED").With("path", path).Wrap(err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return oops.Code("CONFIG_PARSE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// loadFlags merges explicitly set flags over cfg.
func loadFlags(cfg *Config, flags *pflag.FlagSet) error {
	k := koanf.New(".")
	provider := posflag.ProviderWithFlag(flags, ".", nil, func(f *pflag.Flag) (string, any) {
		key, ok := FlagKeys[f.Name]
		if !ok || !f.Changed {
			return "", nil
		}
		return key, posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
	}
	return nil
}

// environment returns the variables to read, loading .env files into the
// process environment first when reading from it.
func environment(opts Options) (map[string]string, error) {
	if opts.Environ != nil {
		return opts.Environ, nil
	}

	files := opts.DotEnvFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			var pathErr *os.PathError
			if errors.As(err, &pathErr) {
				continue
			}
			return nil, oops.Code("CONFIG_DOTENV_INVALID").With("path", f).Wrap(err)
		}
	}
	return env.ToMap(os.Environ()), nil
}
