// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/admindeck/admindeck/internal/apperr"
	"github.com/admindeck/admindeck/pkg/errutil"
)

// SessionConfig controls session lifetime.
type SessionConfig struct {
	// Lifetime is how far in the future expires_at is placed on create and renew.
	Lifetime time.Duration
	// ExpireOffset is subtracted from expires_at when a session is expired.
	ExpireOffset time.Duration
}

// DefaultSessionConfig returns a 30 day lifetime with a one year expire offset.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Lifetime:     DefaultSessionLifetime,
		ExpireOffset: DefaultSessionExpireOffset,
	}
}

// Validate checks that an expired session always lands in the past.
func (c SessionConfig) Validate() error {
	if c.Lifetime <= 0 {
		return oops.Code("SESSION_INVALID_CONFIG").
			With("lifetime", c.Lifetime.String()).
			Errorf("session lifetime must be positive")
	}
	if c.ExpireOffset <= c.Lifetime {
		return oops.Code("SESSION_INVALID_CONFIG").
			With("lifetime", c.Lifetime.String()).
			With("expire_offset", c.ExpireOffset.String()).
			Errorf("session expire offset must exceed the session lifetime")
	}
	return nil
}

// SessionStore issues, validates, renews, and expires sessions.
type SessionStore struct {
	repo    SessionRepository
	cfg     SessionConfig
	now     func() time.Time
	logger  *slog.Logger
	metrics MetricsRecorder
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithSessionClock overrides the time source.
func WithSessionClock(now func() time.Time) SessionStoreOption {
	return func(s *SessionStore) {
		s.now = now
	}
}

// WithSessionLogger sets the logger used for infrastructure failures.
func WithSessionLogger(logger *slog.Logger) SessionStoreOption {
	return func(s *SessionStore) {
		s.logger = logger
	}
}

// WithSessionMetrics sets the recorder for session events.
func WithSessionMetrics(m MetricsRecorder) SessionStoreOption {
	return func(s *SessionStore) {
		s.metrics = m
	}
}

// NewSessionStore creates a SessionStore.
func NewSessionStore(repo SessionRepository, cfg SessionConfig, opts ...SessionStoreOption) (*SessionStore, error) {
	if repo == nil {
		return nil, oops.Errorf("session repository is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &SessionStore{
		repo:    repo,
		cfg:     cfg,
		now:     time.Now,
		logger:  slog.Default(),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Lifetime returns the configured session lifetime.
func (s *SessionStore) Lifetime() time.Duration {
	return s.cfg.Lifetime
}

// Create issues a new session for the user.
func (s *SessionStore) Create(ctx context.Context, userID ulid.ULID) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, apperr.Validation(
			"A session requires a user ID.",
			"Provide the ID of an existing user.",
		).WithCause(oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero"))
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, s.serviceError(ctx, "generate session token", err)
	}

	now := s.now()
	session, err := s.repo.Create(ctx, &Session{
		ID:        ulid.Make(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(s.cfg.Lifetime),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, s.serviceError(ctx, "create session", err)
	}

	s.metrics.RecordSessionEvent(SessionCreated)
	return session, nil
}

// FindValidByToken returns the session for token if it has not expired.
// A missing, unknown, or expired token is Unauthorized.
func (s *SessionStore) FindValidByToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		s.metrics.RecordSessionEvent(SessionRejected)
		return nil, errNoActiveSession()
	}

	session, err := s.repo.FindValidByToken(ctx, token, s.now())
	if errors.Is(err, ErrNotFound) {
		s.metrics.RecordSessionEvent(SessionRejected)
		return nil, errNoActiveSession().WithCause(err)
	}
	if err != nil {
		return nil, s.serviceError(ctx, "find valid session", err)
	}
	return session, nil
}

// Renew pushes the session's expiry to now plus the lifetime.
// Renew does not check the current expiry; callers validate first.
func (s *SessionStore) Renew(ctx context.Context, id ulid.ULID) (*Session, error) {
	now := s.now()
	session, err := s.repo.UpdateExpiry(ctx, id, now.Add(s.cfg.Lifetime), now)
	if errors.Is(err, ErrNotFound) {
		return nil, errSessionNotFound(id).WithCause(err)
	}
	if err != nil {
		return nil, s.serviceError(ctx, "renew session", err)
	}

	s.metrics.RecordSessionEvent(SessionRenewed)
	return session, nil
}

// ExpireByID moves the session's expiry into the past. The row is kept.
func (s *SessionStore) ExpireByID(ctx context.Context, id ulid.ULID) (*Session, error) {
	session, err := s.repo.RewindExpiry(ctx, id, s.cfg.ExpireOffset, s.now())
	if errors.Is(err, ErrNotFound) {
		return nil, errSessionNotFound(id).WithCause(err)
	}
	if err != nil {
		return nil, s.serviceError(ctx, "expire session", err)
	}

	s.metrics.RecordSessionEvent(SessionExpired)
	return session, nil
}

// ValidateAndRenew finds the valid session for token and renews it.
func (s *SessionStore) ValidateAndRenew(ctx context.Context, token string) (*Session, error) {
	session, err := s.FindValidByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Renew(ctx, session.ID)
}

func (s *SessionStore) serviceError(ctx context.Context, operation string, err error) error {
	wrapped := oops.Code("SESSION_STORE_FAILED").With("operation", operation).Wrap(err)
	errutil.LogErrorContext(ctx, s.logger, "session store operation failed", wrapped)
	return apperr.Service(wrapped)
}

func errNoActiveSession() *apperr.Error {
	return apperr.Unauthorized(
		"User does not have an active session.",
		"Check that this user is logged in and try again.",
	)
}

func errSessionNotFound(id ulid.ULID) *apperr.Error {
	return apperr.NotFound(
		"Session "+id.String()+" was not found.",
		"Check that the session ID is correct.",
	)
}
