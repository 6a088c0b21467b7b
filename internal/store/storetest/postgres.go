// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

//go:build integration

// Package storetest starts a migrated PostgreSQL container for integration tests.
package storetest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/admindeck/admindeck/internal/store"
)

// Database is a running, migrated PostgreSQL container.
type Database struct {
	Pool    *pgxpool.Pool
	URL     string
	cleanup func()
}

// Close closes the pool and terminates the container.
func (d *Database) Close() {
	d.cleanup()
}

// StartPostgres runs a PostgreSQL container and applies all migrations.
func StartPostgres(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("admindeck_test"),
		postgres.WithUsername("admindeck"),
		postgres.WithPassword("admindeck"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, oops.With("operation", "start postgres container").Wrap(err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, oops.With("operation", "get connection string").Wrap(err)
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}
	_ = migrator.Close()

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Database{
		Pool: pool,
		URL:  connStr,
		cleanup: func() {
			pool.Close()
			_ = container.Terminate(ctx)
		},
	}, nil
}
