// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/admindeck/admindeck/internal/apperr"
	"github.com/admindeck/admindeck/pkg/errutil"
)

// Messages returned to clients on any credential failure.
const (
	CredentialsMismatchMessage = "Credentials do not match."
	CredentialsMismatchAction  = "Check that the provided data is correct."
)

// timingEqualizerPassword is hashed once per Authenticator so unknown emails
// cost the same bcrypt work as a wrong password.
//
//nolint:gosec // G101: not a credential, it never matches a stored hash
const timingEqualizerPassword = "admindeck-timing-equalizer"

// Authenticator verifies email and password pairs.
type Authenticator struct {
	users     UserDirectory
	passwords PasswordHasher
	logger    *slog.Logger
	metrics   MetricsRecorder
	upgrader  PasswordHashUpdater
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithAuthenticatorLogger sets the logger.
func WithAuthenticatorLogger(logger *slog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// WithAuthenticatorMetrics sets the recorder for login outcomes.
func WithAuthenticatorMetrics(m MetricsRecorder) AuthenticatorOption {
	return func(a *Authenticator) {
		a.metrics = m
	}
}

// WithPasswordUpgrade stores a fresh hash after a successful login whose
// stored hash no longer matches the hasher's settings.
func WithPasswordUpgrade(u PasswordHashUpdater) AuthenticatorOption {
	return func(a *Authenticator) {
		a.upgrader = u
	}
}

// WithAuthenticatorClock overrides the time source for upgraded hashes.
func WithAuthenticatorClock(now func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) {
		a.now = now
	}
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(users UserDirectory, passwords PasswordHasher, opts ...AuthenticatorOption) (*Authenticator, error) {
	if users == nil {
		return nil, oops.Errorf("user directory is required")
	}
	if passwords == nil {
		return nil, oops.Errorf("password hasher is required")
	}

	a := &Authenticator{
		users:     users,
		passwords: passwords,
		logger:    slog.Default(),
		metrics:   noopMetrics{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Authenticate returns the user whose email and password match.
//
// An unknown email and a wrong password produce the same Unauthorized error,
// so callers cannot tell which one failed. Other failures, such as a corrupt
// stored hash, are returned as Service errors.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := a.authenticate(ctx, email, password)
	if err == nil {
		a.metrics.RecordLogin(LoginSucceeded)
		return user, nil
	}

	if apperr.IsKind(err, apperr.KindUnauthorized) {
		a.logger.DebugContext(ctx, "authentication rejected", "reason", err.Error())
		a.metrics.RecordLogin(LoginRejected)
		return nil, apperr.Unauthorized(CredentialsMismatchMessage, CredentialsMismatchAction)
	}

	a.metrics.RecordLogin(LoginFailed)
	errutil.LogErrorContext(ctx, a.logger, "authentication failed", err)
	return nil, err
}

func (a *Authenticator) authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := a.findUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		a.equalizeTiming(password)
		return nil, err
	}
	if err := a.validatePassword(password, user.PasswordHash); err != nil {
		return nil, err
	}
	a.upgradeHash(ctx, user, password)
	return user, nil
}

// upgradeHash re-hashes password when the stored hash was made with other
// settings. Failures are logged and never fail the login.
func (a *Authenticator) upgradeHash(ctx context.Context, user *User, password string) {
	rehasher, ok := a.passwords.(Rehasher)
	if a.upgrader == nil || !ok || !rehasher.NeedsRehash(user.PasswordHash) {
		return
	}

	hash, err := a.passwords.Hash(password)
	if err != nil {
		errutil.LogErrorContext(ctx, a.logger, "password rehash failed",
			oops.Code("AUTH_REHASH_FAILED").With("user_id", user.ID.String()).Wrap(err))
		return
	}
	if err := a.upgrader.UpdatePasswordHash(ctx, user.ID, hash, a.now()); err != nil {
		errutil.LogErrorContext(ctx, a.logger, "password rehash failed",
			oops.Code("AUTH_REHASH_STORE_FAILED").With("user_id", user.ID.String()).Wrap(err))
		return
	}
	user.PasswordHash = hash
	a.logger.InfoContext(ctx, "password hash upgraded", "user_id", user.ID.String())
}

// findUserByEmail treats every lookup failure as a credential mismatch.
func (a *Authenticator) findUserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		errutil.LogErrorContext(ctx, a.logger, "user lookup failed during authentication", err)
	}
	return nil, apperr.Unauthorized("Email does not match.", "Check that the email is correct.").WithCause(err)
}

func (a *Authenticator) validatePassword(password, hash string) error {
	ok, err := a.passwords.Verify(password, hash)
	if err != nil {
		return apperr.Service(oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "verify password").
			Wrap(err))
	}
	if !ok {
		return apperr.Unauthorized("Password does not match.", "Check that the password is correct.")
	}
	return nil
}

func (a *Authenticator) equalizeTiming(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.passwords.Hash(timingEqualizerPassword)
		if err != nil {
			a.logger.Warn("failed to prepare timing equalizer hash", "error", err)
			return
		}
		a.dummyHash = hash
	})
	if a.dummyHash != "" {
		_, _ = a.passwords.Verify(password, a.dummyHash) //nolint:errcheck // result is discarded
	}
}
