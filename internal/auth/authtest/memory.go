// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

// Package authtest provides in-memory test doubles for the auth package.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/admindeck/admindeck/internal/auth"
)

// MemorySessionRepository is an in-memory auth.SessionRepository with the
// same semantics as the PostgreSQL implementation.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[ulid.ULID]auth.Session
}

// NewMemorySessionRepository creates an empty repository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[ulid.ULID]auth.Session)}
}

// Create stores a copy of session.
func (r *MemorySessionRepository) Create(_ context.Context, session *auth.Session) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sessions {
		if existing.Token == session.Token {
			return nil, oops.Code("SESSION_CREATE_FAILED").Errorf("duplicate session token")
		}
	}
	if _, ok := r.sessions[session.ID]; ok {
		return nil, oops.Code("SESSION_CREATE_FAILED").Errorf("duplicate session id")
	}
	r.sessions[session.ID] = *session
	stored := *session
	return &stored, nil
}

// FindValidByToken returns the session whose token matches and whose expiry is after now.
func (r *MemorySessionRepository) FindValidByToken(_ context.Context, token string, now time.Time) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.Token == token && s.ExpiresAt.After(now) {
			found := s
			return &found, nil
		}
	}
	return nil, auth.ErrNotFound
}

// UpdateExpiry sets expires_at and updated_at.
func (r *MemorySessionRepository) UpdateExpiry(_ context.Context, id ulid.ULID, expiresAt, updatedAt time.Time) (*auth.Session, error) {
	return r.mutate(id, func(s *auth.Session) {
		s.ExpiresAt = expiresAt
		s.UpdatedAt = updatedAt
	})
}

// RewindExpiry subtracts offset from expires_at and sets updated_at.
func (r *MemorySessionRepository) RewindExpiry(_ context.Context, id ulid.ULID, offset time.Duration, updatedAt time.Time) (*auth.Session, error) {
	return r.mutate(id, func(s *auth.Session) {
		s.ExpiresAt = s.ExpiresAt.Add(-offset)
		s.UpdatedAt = updatedAt
	})
}

// Get returns a copy of the stored session regardless of expiry.
func (r *MemorySessionRepository) Get(id ulid.ULID) (auth.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of stored sessions, expired ones included.
func (r *MemorySessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *MemorySessionRepository) mutate(id ulid.ULID, fn func(*auth.Session)) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	fn(&s)
	r.sessions[id] = s
	updated := s
	return &updated, nil
}

// Clock is a settable time source for tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a Clock set to now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ auth.SessionRepository = (*MemorySessionRepository)(nil)
