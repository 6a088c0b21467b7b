// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package users

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/admindeck/admindeck/pkg/errutil"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "ada", false},
		{"valid with digits and underscore", "ada_99", false},
		{"valid at max length", strings.Repeat("a", MaxUsernameLength), false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", MaxUsernameLength+1), true},
		{"starts with digit", "1ada", true},
		{"contains space", "ada lovelace", true},
		{"contains hyphen", "ada-l", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "USER_INVALID_USERNAME")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "ada@example.com", false},
		{"valid subaddress", "ada+admin@example.com", false},
		{"empty", "", true},
		{"missing at", "ada.example.com", true},
		{"display name", "Ada <ada@example.com>", true},
		{"too long", strings.Repeat("a", MaxEmailLength) + "@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "USER_INVALID_EMAIL")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateInput_Empty(t *testing.T) {
	assert.True(t, UpdateInput{}.Empty())
	name := "ada"
	assert.False(t, UpdateInput{Username: &name}.Empty())
}
