// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package users

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"github.com/samber/oops"

	"github.com/admindeck/admindeck/internal/auth"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxEmailLength    = 254
)

// usernameRegex matches usernames that start with a letter and contain
// only letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Uniqueness violations reported by repositories.
var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
	ErrAdminExists   = errors.New("admin already exists")
)

// CreateInput is the data needed to register a user.
type CreateInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateInput holds the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Empty reports whether no field is set.
func (in UpdateInput) Empty() bool {
	return in.Username == nil && in.Email == nil && in.Password == nil
}

// Repository persists users.
type Repository interface {
	auth.UserDirectory
	auth.PasswordHashUpdater

	// Create stores a new user. Returns ErrUsernameTaken, ErrEmailTaken, or
	// ErrAdminExists when a uniqueness constraint rejects the row.
	Create(ctx context.Context, user *auth.User) (*auth.User, error)

	// Update overwrites username, email, password, and updated_at.
	// Returns auth.ErrNotFound if the user does not exist.
	Update(ctx context.Context, user *auth.User) (*auth.User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*auth.User, error)

	// HasAdmin reports whether an admin account exists.
	HasAdmin(ctx context.Context) (bool, error)
}

// ValidateUsername validates a username against the naming rules.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("USER_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("USER_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("USER_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("USER_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks that email is a bare address without a display name.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("USER_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("USER_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return oops.Code("USER_INVALID_EMAIL").Errorf("email is not a valid address")
	}
	return nil
}

// normalize trims surrounding whitespace; case is preserved and compared
// case-insensitively by the repository.
func normalize(s string) string {
	return strings.TrimSpace(s)
}
