// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service is the entry point used by the HTTP layer. It composes the
// authenticator, the session store, and the password policy.
type Service struct {
	authenticator *Authenticator
	sessions      *SessionStore
	passwords     PasswordHasher
}

// NewService creates a Service.
func NewService(authenticator *Authenticator, sessions *SessionStore, passwords PasswordHasher) (*Service, error) {
	if authenticator == nil {
		return nil, oops.Errorf("authenticator is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("session store is required")
	}
	if passwords == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &Service{
		authenticator: authenticator,
		sessions:      sessions,
		passwords:     passwords,
	}, nil
}

// Authenticate verifies an email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	return s.authenticator.Authenticate(ctx, email, password)
}

// CreateSession issues a session for the user.
func (s *Service) CreateSession(ctx context.Context, userID ulid.ULID) (*Session, error) {
	return s.sessions.Create(ctx, userID)
}

// FindValidSession returns the unexpired session for token.
func (s *Service) FindValidSession(ctx context.Context, token string) (*Session, error) {
	return s.sessions.FindValidByToken(ctx, token)
}

// RenewSession extends the session's expiry.
func (s *Service) RenewSession(ctx context.Context, id ulid.ULID) (*Session, error) {
	return s.sessions.Renew(ctx, id)
}

// ExpireSession moves the session's expiry into the past.
func (s *Service) ExpireSession(ctx context.Context, id ulid.ULID) (*Session, error) {
	return s.sessions.ExpireByID(ctx, id)
}

// HashPassword hashes a plaintext password.
func (s *Service) HashPassword(password string) (string, error) {
	return s.passwords.Hash(password)
}

// VerifyPassword compares a plaintext password with a stored hash.
func (s *Service) VerifyPassword(password, hash string) (bool, error) {
	return s.passwords.Verify(password, hash)
}

// Login authenticates the credentials and issues a session.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout expires the valid session identified by token.
func (s *Service) Logout(ctx context.Context, token string) (*Session, error) {
	session, err := s.sessions.FindValidByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.sessions.ExpireByID(ctx, session.ID)
}

// CurrentSession validates token and renews the session.
func (s *Service) CurrentSession(ctx context.Context, token string) (*Session, error) {
	return s.sessions.ValidateAndRenew(ctx, token)
}

// SessionLifetime returns how long a session stays valid after create or renew.
func (s *Service) SessionLifetime() time.Duration {
	return s.sessions.Lifetime()
}
