// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admindeck/admindeck/pkg/errutil"
)

// useMigrator replaces migratorFactory for the duration of the test.
func useMigrator(t *testing.T, m *fakeMigrator, factoryErr error) *string {
	t.Helper()
	var gotURL string
	orig := migratorFactory
	migratorFactory = func(url string) (Migrator, error) {
		gotURL = url
		if factoryErr != nil {
			return nil, factoryErr
		}
		return m, nil
	}
	t.Cleanup(func() { migratorFactory = orig })
	return &gotURL
}

func TestMigrateUp(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ADMINDECK_DATABASE_URL", "postgres://localhost/admindeck")
	m := &fakeMigrator{version: 2, pending: []uint{1, 2}}
	gotURL := useMigrator(t, m, nil)

	out, err := executeRoot(t, "", "migrate", "up")
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/admindeck", *gotURL)
	assert.Equal(t, 1, m.upCalls)
	assert.True(t, m.closed)
	assert.Contains(t, out, "Applying 2 migration(s)")
	assert.Contains(t, out, "version 2")
}

func TestMigrateUp_NothingPending(t *testing.T) {
	isolateEnv(t)
	m := &fakeMigrator{version: 2}
	useMigrator(t, m, nil)

	out, err := executeRoot(t, "", "migrate", "up", "--database-url", "postgres://localhost/admindeck")
	require.NoError(t, err)
	assert.Zero(t, m.upCalls)
	assert.Contains(t, out, "No pending migrations")
}

func TestMigrateStatus(t *testing.T) {
	isolateEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/admindeck")
	m := &fakeMigrator{version: 1, pending: []uint{2}}
	useMigrator(t, m, nil)

	out, err := executeRoot(t, "", "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 1 (clean)")
	assert.Contains(t, out, "Pending migrations: 1")
	assert.Contains(t, out, "000002_")
}

func TestMigrate_Errors(t *testing.T) {
	t.Run("missing database url", func(t *testing.T) {
		isolateEnv(t)
		useMigrator(t, &fakeMigrator{}, nil)

		_, err := executeRoot(t, "", "migrate", "up")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	})

	t.Run("migrator init fails", func(t *testing.T) {
		isolateEnv(t)
		useMigrator(t, nil, errors.New("bad url"))

		_, err := executeRoot(t, "", "migrate", "up", "--database-url", "postgres://x")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
	})

	t.Run("up fails", func(t *testing.T) {
		isolateEnv(t)
		m := &fakeMigrator{pending: []uint{1}, upErr: errors.New("syntax error")}
		useMigrator(t, m, nil)

		_, err := executeRoot(t, "", "migrate", "up", "--database-url", "postgres://x")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_FAILED")
		assert.True(t, m.closed)
	})
}
