// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

// Package auth provides authentication and session management for AdminDeck.
//
// # Components
//
//   - PasswordPolicy - bcrypt hashing with a deployment pepper
//   - SessionStore - issues, validates, renews, and expires sessions
//   - Authenticator - verifies credentials with a uniform failure error
//   - Service - the facade the HTTP layer talks to
//
// Constructors validate their dependencies and return an error when one is
// missing. Repository implementations live in the postgres subpackage.
//
// # Errors
//
// Errors returned to callers are *apperr.Error values. Credential failures
// are always reported as the same Unauthorized error regardless of whether
// the email or the password was wrong.
package auth
