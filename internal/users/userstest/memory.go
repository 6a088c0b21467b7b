// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

// Package userstest provides an in-memory user repository for tests.
package userstest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/admindeck/admindeck/internal/auth"
	"github.com/admindeck/admindeck/internal/users"
)

// MemoryRepository is an in-memory users.Repository enforcing the same
// uniqueness rules as the PostgreSQL schema.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[ulid.ULID]auth.User
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[ulid.ULID]auth.User)}
}

// GetByID implements auth.UserDirectory.
func (r *MemoryRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &u, nil
}

// GetByEmail implements auth.UserDirectory.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	return r.find(func(u auth.User) bool { return strings.EqualFold(u.Email, email) })
}

// GetByUsername implements auth.UserDirectory.
func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	return r.find(func(u auth.User) bool { return strings.EqualFold(u.Username, username) })
}

// Create implements users.Repository.
func (r *MemoryRepository) Create(_ context.Context, user *auth.User) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(*user); err != nil {
		return nil, err
	}
	r.users[user.ID] = *user
	stored := *user
	return &stored, nil
}

// Update implements users.Repository.
func (r *MemoryRepository) Update(_ context.Context, user *auth.User) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return nil, auth.ErrNotFound
	}
	if err := r.checkUnique(*user); err != nil {
		return nil, err
	}
	current.Username = user.Username
	current.Email = user.Email
	current.PasswordHash = user.PasswordHash
	current.UpdatedAt = user.UpdatedAt
	r.users[user.ID] = current
	return &current, nil
}

// List implements users.Repository.
func (r *MemoryRepository) List(_ context.Context) ([]*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*auth.User, 0, len(r.users))
	for _, u := range r.users {
		u := u
		list = append(list, &u)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID.Compare(list[j].ID) < 0
	})
	return list, nil
}

// HasAdmin implements users.Repository.
func (r *MemoryRepository) HasAdmin(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Role == auth.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *MemoryRepository) find(match func(auth.User) bool) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, auth.ErrNotFound
}

// UpdatePasswordHash implements auth.PasswordHashUpdater.
func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id ulid.ULID, hash string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return auth.ErrNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = updatedAt
	r.users[id] = user
	return nil
}

// checkUnique must be called with mu held.
func (r *MemoryRepository) checkUnique(user auth.User) error {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(u.Username, user.Username) {
			return users.ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, user.Email) {
			return users.ErrEmailTaken
		}
		if user.Role == auth.RoleAdmin && u.Role == auth.RoleAdmin {
			return users.ErrAdminExists
		}
	}
	return nil
}

// Compile-time interface check.
var _ users.Repository = (*MemoryRepository)(nil)
