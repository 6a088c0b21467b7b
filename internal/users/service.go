// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/admindeck/admindeck/internal/apperr"
	"github.com/admindeck/admindeck/internal/auth"
	"github.com/admindeck/admindeck/pkg/errutil"
)

// User-facing messages.
const (
	msgUsernameTaken    = "The username is already in use."
	actionUsernameTaken = "Use another username to perform this operation."
	msgEmailTaken       = "The email address is already in use."
	actionEmailTaken    = "Use another email address to perform this operation."
	msgAdminExists      = "An administrator already exists."
	actionAdminExists   = "Only one user can hold the admin role."
	msgUserNotFound     = "The username was not found in the system."
	actionUserNotFound  = "Check that the username is spelled correctly."
	msgIDNotFound       = "The user ID was not found in the system."
	actionIDNotFound    = "Check that the ID is correct."
	msgEmailNotFound    = "The email was not found in the system."
	actionEmailNotFound = "Check that the email is spelled correctly."
	actionInvalidInput  = "Correct the highlighted field and try again."
)

// Service implements user registration, updates, and lookups.
type Service struct {
	repo      Repository
	passwords auth.PasswordHasher
	now       func() time.Time
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger used for infrastructure failures.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a user Service.
func NewService(repo Repository, passwords auth.PasswordHasher, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if passwords == nil {
		return nil, oops.Errorf("password hasher is required")
	}

	s := &Service{
		repo:      repo,
		passwords: passwords,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create registers a new user. The first user becomes the administrator.
func (s *Service) Create(ctx context.Context, in CreateInput) (*auth.User, error) {
	username := normalize(in.Username)
	email := normalize(in.Email)

	if err := ValidateUsername(username); err != nil {
		return nil, invalidInput(err)
	}
	if err := ValidateEmail(email); err != nil {
		return nil, invalidInput(err)
	}
	if err := s.ensureEmailAvailable(ctx, email, nil); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameAvailable(ctx, username, nil); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(ctx, in.Password)
	if err != nil {
		return nil, err
	}

	hasAdmin, err := s.repo.HasAdmin(ctx)
	if err != nil {
		return nil, s.serviceError(ctx, "check admin exists", err)
	}
	role := auth.RoleAdmin
	if hasAdmin {
		role = auth.RoleMember
	}

	now := s.now()
	candidate := &auth.User{
		ID:           ulid.Make(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user, err := s.repo.Create(ctx, candidate)
	if errors.Is(err, ErrAdminExists) && candidate.IsAdmin() {
		// A concurrent registration claimed the admin role first.
		candidate.Role = auth.RoleMember
		user, err = s.repo.Create(ctx, candidate)
	}
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return nil, conflict
		}
		return nil, s.serviceError(ctx, "create user", err)
	}

	s.logger.InfoContext(ctx, "user created",
		"user_id", user.ID.String(),
		"username", user.Username,
		"role", string(user.Role))
	return user, nil
}

// Update changes the fields set in in for the user named username.
func (s *Service) Update(ctx context.Context, username string, in UpdateInput) (*auth.User, error) {
	current, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	updated := *current
	if in.Username != nil {
		name := normalize(*in.Username)
		if err := ValidateUsername(name); err != nil {
			return nil, invalidInput(err)
		}
		if err := s.ensureUsernameAvailable(ctx, name, current); err != nil {
			return nil, err
		}
		updated.Username = name
	}
	if in.Email != nil {
		email := normalize(*in.Email)
		if err := ValidateEmail(email); err != nil {
			return nil, invalidInput(err)
		}
		if err := s.ensureEmailAvailable(ctx, email, current); err != nil {
			return nil, err
		}
		updated.Email = email
	}
	if in.Password != nil {
		hash, err := s.hashPassword(ctx, *in.Password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hash
	}
	if in.Empty() {
		return current, nil
	}
	updated.UpdatedAt = s.now()

	user, err := s.repo.Update(ctx, &updated)
	if errors.Is(err, auth.ErrNotFound) {
		return nil, apperr.NotFound(msgUserNotFound, actionUserNotFound).WithCause(err)
	}
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return nil, conflict
		}
		return nil, s.serviceError(ctx, "update user", err)
	}
	return user, nil
}

// FindByUsername returns the user with username, ignoring case.
func (s *Service) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	user, err := s.repo.GetByUsername(ctx, normalize(username))
	return s.lookupResult(ctx, user, err, "find user by username", msgUserNotFound, actionUserNotFound)
}

// FindByEmail returns the user with email, ignoring case.
func (s *Service) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalize(email))
	return s.lookupResult(ctx, user, err, "find user by email", msgEmailNotFound, actionEmailNotFound)
}

// FindByID returns the user with id.
func (s *Service) FindByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	return s.lookupResult(ctx, user, err, "find user by id", msgIDNotFound, actionIDNotFound)
}

// List returns every user. Password hashes are never serialized.
func (s *Service) List(ctx context.Context) ([]*auth.User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.serviceError(ctx, "list users", err)
	}
	return list, nil
}

func (s *Service) lookupResult(ctx context.Context, user *auth.User, err error, operation, message, action string) (*auth.User, error) {
	if errors.Is(err, auth.ErrNotFound) {
		return nil, apperr.NotFound(message, action).WithCause(err)
	}
	if err != nil {
		return nil, s.serviceError(ctx, operation, err)
	}
	return user, nil
}

// ensureUsernameAvailable fails with Validation if another user holds
// username. self is the user being updated, or nil on create.
func (s *Service) ensureUsernameAvailable(ctx context.Context, username string, self *auth.User) error {
	if self != nil && strings.EqualFold(self.Username, username) {
		return nil
	}
	existing, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, auth.ErrNotFound) {
		return nil
	}
	if err != nil {
		return s.serviceError(ctx, "check username availability", err)
	}
	if self != nil && existing.ID == self.ID {
		return nil
	}
	return apperr.Validation(msgUsernameTaken, actionUsernameTaken)
}

// ensureEmailAvailable fails with Validation if another user holds email.
func (s *Service) ensureEmailAvailable(ctx context.Context, email string, self *auth.User) error {
	if self != nil && strings.EqualFold(self.Email, email) {
		return nil
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, auth.ErrNotFound) {
		return nil
	}
	if err != nil {
		return s.serviceError(ctx, "check email availability", err)
	}
	if self != nil && existing.ID == self.ID {
		return nil
	}
	return apperr.Validation(msgEmailTaken, actionEmailTaken)
}

func (s *Service) hashPassword(ctx context.Context, password string) (string, error) {
	hash, err := s.passwords.Hash(password)
	switch {
	case errors.Is(err, auth.ErrEmptyPassword), errors.Is(err, auth.ErrPasswordTooLong):
		return "", invalidInput(err)
	case err != nil:
		return "", s.serviceError(ctx, "hash password", err)
	}
	return hash, nil
}

func (s *Service) serviceError(ctx context.Context, operation string, err error) error {
	wrapped := oops.Code("USER_DIRECTORY_FAILED").With("operation", operation).Wrap(err)
	errutil.LogErrorContext(ctx, s.logger, "user directory operation failed", wrapped)
	return apperr.Service(wrapped)
}

// conflictError maps repository uniqueness violations to Validation errors,
// or returns nil.
func conflictError(err error) *apperr.Error {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return apperr.Validation(msgUsernameTaken, actionUsernameTaken).WithCause(err)
	case errors.Is(err, ErrEmailTaken):
		return apperr.Validation(msgEmailTaken, actionEmailTaken).WithCause(err)
	case errors.Is(err, ErrAdminExists):
		return apperr.Validation(msgAdminExists, actionAdminExists).WithCause(err)
	}
	return nil
}

func invalidInput(err error) *apperr.Error {
	return apperr.Validation(capitalize(err.Error())+".", actionInvalidInput).WithCause(err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
