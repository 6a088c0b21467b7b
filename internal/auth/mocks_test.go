// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/admindeck/admindeck/internal/auth"
)

// mockUserDirectory is a mock for auth.UserDirectory.
type mockUserDirectory struct {
	mock.Mock
}

func newMockUserDirectory(t *testing.T) *mockUserDirectory {
	m := &mockUserDirectory{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockUserDirectory) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *mockUserDirectory) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *mockUserDirectory) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// mockSessionRepository is a mock for auth.SessionRepository.
type mockSessionRepository struct {
	mock.Mock
}

func newMockSessionRepository(t *testing.T) *mockSessionRepository {
	m := &mockSessionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockSessionRepository) Create(ctx context.Context, session *auth.Session) (*auth.Session, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *mockSessionRepository) FindValidByToken(ctx context.Context, token string, now time.Time) (*auth.Session, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *mockSessionRepository) UpdateExpiry(ctx context.Context, id ulid.ULID, expiresAt, updatedAt time.Time) (*auth.Session, error) {
	args := m.Called(ctx, id, expiresAt, updatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *mockSessionRepository) RewindExpiry(ctx context.Context, id ulid.ULID, offset time.Duration, updatedAt time.Time) (*auth.Session, error) {
	args := m.Called(ctx, id, offset, updatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

// mockPasswordHasher is a mock for auth.PasswordHasher.
type mockPasswordHasher struct {
	mock.Mock
}

func newMockPasswordHasher(t *testing.T) *mockPasswordHasher {
	m := &mockPasswordHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// mockMetricsRecorder is a mock for auth.MetricsRecorder.
type mockMetricsRecorder struct {
	mock.Mock
}

func newMockMetricsRecorder(t *testing.T) *mockMetricsRecorder {
	m := &mockMetricsRecorder{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockMetricsRecorder) RecordLogin(outcome string) {
	m.Called(outcome)
}

func (m *mockMetricsRecorder) RecordSessionEvent(event string) {
	m.Called(event)
}

// mockPasswordHashUpdater is a mock for auth.PasswordHashUpdater.
type mockPasswordHashUpdater struct {
	mock.Mock
}

func newMockPasswordHashUpdater(t *testing.T) *mockPasswordHashUpdater {
	m := &mockPasswordHashUpdater{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockPasswordHashUpdater) UpdatePasswordHash(ctx context.Context, id ulid.ULID, hash string, updatedAt time.Time) error {
	args := m.Called(ctx, id, hash, updatedAt)
	return args.Error(0)
}
