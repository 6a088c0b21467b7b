// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role is a user's authorization level.
type Role string

// Roles. At most one user holds RoleAdmin.
const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User is an account that can log in. PasswordHash is never serialized.
type User struct {
	ID           ulid.ULID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserDirectory is the read side of user persistence needed by authentication.
type UserDirectory interface {
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	// Returns ErrNotFound if no user has the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByUsername retrieves a user by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// PasswordHashUpdater replaces a user's stored password hash.
type PasswordHashUpdater interface {
	// UpdatePasswordHash stores hash for the user with id.
	// Returns ErrNotFound if the user does not exist.
	UpdatePasswordHash(ctx context.Context, id ulid.ULID, hash string, updatedAt time.Time) error
}
