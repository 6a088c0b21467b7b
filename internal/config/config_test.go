// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admindeck/admindeck/internal/auth"
	"github.com/admindeck/admindeck/pkg/errutil"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admindeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("environment", DefaultEnvironment, "")
	fs.String("database-url", "", "")
	fs.Bool("auto-migrate", false, "")
	fs.String("http-addr", DefaultHTTPAddr, "")
	fs.String("metrics-addr", DefaultMetricsAddr, "")
	fs.String("log-format", DefaultLogFormat, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{Environ: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, EnvironmentDevelopment, cfg.Environment)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTP.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, auth.DefaultPepper, cfg.Password.Pepper)
	assert.Equal(t, 30*24*time.Hour, time.Duration(cfg.Session.Lifetime))
	assert.Equal(t, 365*24*time.Hour, time.Duration(cfg.Session.ExpireOffset))
	assert.Equal(t, "session_id", cfg.Session.CookieName)
	assert.Equal(t, auth.DevelopmentCost, cfg.PasswordCost())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, `
environment: test
http:
  addr: "file:1"
  metrics_addr: "file:2"
log:
  format: text
session:
  lifetime: 1h
  expire_offset: 48h
`)

	environ := map[string]string{
		"ADMINDECK_HTTP_ADDR":         "env:1",
		"ADMINDECK_HTTP_METRICS_ADDR": "env:2",
		"ADMINDECK_PASSWORD_PEPPER":   "env-pepper",
	}

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--http-addr", "flag:1"}))

	cfg, err := Load(Options{File: path, Environ: environ, Flags: fs})
	require.NoError(t, err)

	assert.Equal(t, "flag:1", cfg.HTTP.Addr, "flag beats env and file")
	assert.Equal(t, "env:2", cfg.HTTP.MetricsAddr, "env beats file")
	assert.Equal(t, "text", cfg.Log.Format, "file beats default")
	assert.Equal(t, EnvironmentTest, cfg.Environment)
	assert.Equal(t, "env-pepper", cfg.Password.Pepper)
	assert.Equal(t, time.Hour, cfg.SessionConfig().Lifetime)
	assert.Equal(t, 48*time.Hour, cfg.SessionConfig().ExpireOffset)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(Options{
		Environ: map[string]string{"ADMINDECK_LOG_FORMAT": "text"},
		Flags:   fs,
	})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	cfg, err := Load(Options{Environ: map[string]string{"DATABASE_URL": "postgres://fallback/db"}})
	require.NoError(t, err)
	assert.Equal(t, "postgres://fallback/db", cfg.DatabaseURL)

	cfg, err = Load(Options{Environ: map[string]string{
		"DATABASE_URL":           "postgres://fallback/db",
		"ADMINDECK_DATABASE_URL": "postgres://primary/db",
	}})
	require.NoError(t, err)
	assert.Equal(t, "postgres://primary/db", cfg.DatabaseURL)
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "ADMINDECK_SESSION_COOKIE_NAME"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte(key+"=dotenv_cookie\n"), 0o600))

	cfg, err := Load(Options{DotEnvFiles: []string{dotenv, filepath.Join(t.TempDir(), "missing.env")}})
	require.NoError(t, err)
	assert.Equal(t, "dotenv_cookie", cfg.Session.CookieName)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		environ  map[string]string
		wantCode string
	}{
		{
			name:     "unknown key in file",
			file:     "sesion:\n  lifetime: 1h\n",
			wantCode: "CONFIG_SCHEMA_INVALID",
		},
		{
			name:     "bad duration in file",
			file:     "session:\n  lifetime: forever\n",
			wantCode: "CONFIG_SCHEMA_INVALID",
		},
		{
			name:     "bad duration in env",
			environ:  map[string]string{"ADMINDECK_SESSION_LIFETIME": "forever"},
			wantCode: "CONFIG_ENV_INVALID",
		},
		{
			name:     "offset not beyond lifetime",
			environ:  map[string]string{"ADMINDECK_SESSION_LIFETIME": "48h", "ADMINDECK_SESSION_EXPIRE_OFFSET": "24h"},
			wantCode: "SESSION_INVALID_CONFIG",
		},
		{
			name:     "default pepper in production",
			environ:  map[string]string{"ADMINDECK_ENVIRONMENT": "production"},
			wantCode: "CONFIG_INVALID",
		},
		{
			name:     "unknown environment",
			environ:  map[string]string{"ADMINDECK_ENVIRONMENT": "staging"},
			wantCode: "CONFIG_INVALID",
		},
		{
			name:     "cost out of range",
			environ:  map[string]string{"ADMINDECK_PASSWORD_COST": "40"},
			wantCode: "CONFIG_INVALID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Environ: tt.environ}
			if opts.Environ == nil {
				opts.Environ = map[string]string{}
			}
			if tt.file != "" {
				opts.File = writeFile(t, tt.file)
			}
			_, err := Load(opts)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yaml"), Environ: map[string]string{}})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_READ_FAILED")
}

func TestConfig_PasswordCost(t *testing.T) {
	cfg := Default()
	cfg.Environment = EnvironmentProduction
	assert.Equal(t, auth.ProductionCost, cfg.PasswordCost())

	cfg.Password.Cost = 10
	assert.Equal(t, 10, cfg.PasswordCost())
	assert.Equal(t, 10, cfg.PasswordConfig().Cost)
}

func TestConfig_RequireDatabaseURL(t *testing.T) {
	cfg := Default()
	errutil.AssertErrorCode(t, cfg.RequireDatabaseURL(), "CONFIG_INVALID")

	cfg.DatabaseURL = "postgres://localhost/admindeck"
	assert.NoError(t, cfg.RequireDatabaseURL())
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, SchemaID, schema["$id"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"environment", "database_url", "auto_migrate", "http", "log", "password", "session"} {
		assert.Contains(t, props, key)
	}
	assert.NotContains(t, schema, "required")
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := Load(Options{File: filepath.Join("..", "..", "admindeck.example.yaml"), Environ: map[string]string{}})
	require.NoError(t, err)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, auth.DefaultSessionLifetime, time.Duration(cfg.Session.Lifetime))
}

func TestGenerateSchema_MatchesCommittedFile(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	committed, err := os.ReadFile(filepath.Join("..", "..", "schemas", "config.schema.json"))
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(committed), "run go run ./cmd/gen-schema")
}

func TestValidateSchema(t *testing.T) {
	assert.NoError(t, ValidateSchema([]byte("")))
	assert.NoError(t, ValidateSchema([]byte("password:\n  cost: 12\n")))
	assert.Error(t, ValidateSchema([]byte("password:\n  cost: 99\n")))
	assert.Error(t, ValidateSchema([]byte("log:\n  format: xml\n")))
	assert.Error(t, ValidateSchema([]byte("{not yaml")))
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1h30m")))
	assert.Equal(t, 90*time.Minute, time.Duration(d))

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1h30m0s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
