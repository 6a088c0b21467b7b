// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AdminDeck Contributors

package auth

// Login outcomes reported to a MetricsRecorder.
const (
	LoginSucceeded = "success"
	LoginRejected  = "rejected"
	LoginFailed    = "error"
)

// Session events reported to a MetricsRecorder.
const (
	SessionCreated  = "created"
	SessionRenewed  = "renewed"
	SessionExpired  = "expired"
	SessionRejected = "rejected"
)

// MetricsRecorder receives authentication events.
type MetricsRecorder interface {
	RecordLogin(outcome string)
	RecordSessionEvent(event string)
}

type noopMetrics struct{}

func (noopMetrics) RecordLogin(string)        {}
func (noopMetrics) RecordSessionEvent(string) {}
