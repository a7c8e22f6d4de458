package models

import "time"

// LoginLockout is the per-address failure record kept by the login guard.
// A zero LastFailureAt means no failure has been recorded since the last reset.
type LoginLockout struct {
	Address       string    `db:"address"`
	FailureCount  int       `db:"failure_count"`
	LastFailureAt time.Time `db:"last_failure_at"`
}

// LoginAttempt is one row of the login history. It is informational only and
// never consulted when deciding whether an address is locked.
type LoginAttempt struct {
	ID            string    `db:"id"`
	Username      string    `db:"username"`
	IPAddress     string    `db:"ip_address"`
	UserAgent     string    `db:"user_agent"`
	AttemptTime   time.Time `db:"attempt_time"`
	Success       bool      `db:"success"`
	FailureReason *string   `db:"failure_reason"`
	ExpiresAt     time.Time `db:"expires_at"`
}

// Failure reasons stored in the login history.
const (
	FailureReasonRateLimited  = "rate_limited"
	FailureReasonUserNotFound = "user_not_found"
	FailureReasonBadPassword  = "bad_password"
)
