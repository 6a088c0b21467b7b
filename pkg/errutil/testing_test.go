// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package errutil_test

import (
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/admindeck/admindeck/internal/apperr"
	"github.com/admindeck/admindeck/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	// Should not fail
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("user_id", "123").Errorf("test error")
	// Should not fail
	errutil.AssertErrorContext(t, err, "user_id", "123")
}

func TestAssertKind_ReturnsError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", apperr.NotFound("", ""))
	got := errutil.AssertKind(t, err, apperr.KindNotFound)
	assert.Equal(t, apperr.DefaultNotFoundMessage, got.Message)
}
