// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admindeck/admindeck/internal/store/storetest"
)

// testPool is the shared database pool for integration tests.
var testPool *pgxpool.Pool

// TestMain sets up a PostgreSQL testcontainer for integration tests.
func TestMain(m *testing.M) {
	db, err := storetest.StartPostgres(context.Background())
	if err != nil {
		panic("failed to start test database: " + err.Error())
	}
	testPool = db.Pool

	code := m.Run()

	db.Close()
	os.Exit(code)
}
