// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/admindeck/admindeck/internal/auth"
)

const sessionColumns = `id, token, user_id, expires_at, created_at, updated_at`

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool poolIface
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool poolIface) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a session and returns the stored row.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sessions (id, token, user_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+sessionColumns,
		session.ID.String(),
		session.Token,
		session.UserID.String(),
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)

	stored, err := scanSession(row)
	if err != nil {
		return nil, oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return stored, nil
}

// FindValidByToken returns the session for token whose expiry is after now.
func (r *SessionRepository) FindValidByToken(ctx context.Context, token string, now time.Time) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE token = $1 AND expires_at > $2
		LIMIT 1
	`, token, now)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get valid session by token").
			Wrap(err)
	}
	return session, nil
}

// UpdateExpiry sets expires_at and updated_at.
func (r *SessionRepository) UpdateExpiry(ctx context.Context, id ulid.ULID, expiresAt, updatedAt time.Time) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE sessions SET expires_at = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+sessionColumns,
		id.String(), expiresAt, updatedAt,
	)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_UPDATE_EXPIRY_FAILED").
			With("operation", "update expires_at").
			With("id", id.String()).
			Wrap(err)
	}
	return session, nil
}

// RewindExpiry subtracts offset from the stored expires_at.
func (r *SessionRepository) RewindExpiry(ctx context.Context, id ulid.ULID, offset time.Duration, updatedAt time.Time) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE sessions
		SET expires_at = expires_at - ($2::bigint * interval '1 microsecond'),
			updated_at = $3
		WHERE id = $1
		RETURNING `+sessionColumns,
		id.String(), offset.Microseconds(), updatedAt,
	)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_EXPIRE_FAILED").
			With("operation", "rewind expires_at").
			With("id", id.String()).
			Wrap(err)
	}
	return session, nil
}

// scanSession scans a single row into a Session.
// Callers are responsible for handling pgx.ErrNoRows.
func scanSession(row pgx.Row) (*auth.Session, error) {
	var (
		idStr     string
		token     string
		userIDStr string
		expiresAt time.Time
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&idStr, &token, &userIDStr, &expiresAt, &createdAt, &updatedAt); err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "scan session").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").
			With("operation", "parse session id").
			With("id", idStr).
			Wrap(err)
	}
	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_USER_ID").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}

	return &auth.Session{
		ID:        id,
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
