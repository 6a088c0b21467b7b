// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

// Package users manages the user directory: registration, profile updates,
// and lookups by username, email, or ID.
//
// Usernames and emails are unique without regard to case. The first user
// registered becomes the administrator; everyone after is a member.
package users
