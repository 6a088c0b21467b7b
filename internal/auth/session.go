// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session configuration defaults.
const (
	SessionTokenBytes          = 48                  // 48 bytes = 96 hex chars
	DefaultSessionLifetime     = 30 * 24 * time.Hour // sliding window
	DefaultSessionExpireOffset = 365 * 24 * time.Hour
)

// Session is a server-side login session identified by an opaque token.
// The token is stored verbatim and sent to clients as a cookie value.
type Session struct {
	ID        ulid.ULID `json:"id"`
	Token     string    `json:"token"`
	UserID    ulid.ULID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GenerateSessionToken creates a hex-encoded token from SessionTokenBytes of
// cryptographically secure randomness.
func GenerateSessionToken() (string, error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(tokenBytes), nil
}

// SessionRepository manages session persistence. Every method is a single
// statement that returns the row as stored.
type SessionRepository interface {
	// Create inserts a new session.
	Create(ctx context.Context, session *Session) (*Session, error)

	// FindValidByToken returns the session with the given token whose expiry
	// is strictly after now. Returns ErrNotFound otherwise.
	FindValidByToken(ctx context.Context, token string, now time.Time) (*Session, error)

	// UpdateExpiry sets expires_at and updated_at for the session.
	// Returns ErrNotFound if no session has the given ID.
	UpdateExpiry(ctx context.Context, id ulid.ULID, expiresAt, updatedAt time.Time) (*Session, error)

	// RewindExpiry subtracts offset from the stored expires_at and sets updated_at.
	// Returns ErrNotFound if no session has the given ID.
	RewindExpiry(ctx context.Context, id ulid.ULID, offset time.Duration, updatedAt time.Time) (*Session, error)
}
