package app

import "errors"

// Sentinel kinds for orchestration errors. These allow errors.Is/As from
// callers; domain validation errors pass through untouched.
var (
	// ErrNotFound covers missing schedules, sessions, and tournament
	// operations against schedules with no versus session.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition covers user-actionable state conflicts: no results to
	// process, tournament already complete, no further stage.
	ErrPrecondition = errors.New("precondition failed")

	// ErrExternal wraps failures of the event data provider, score provider,
	// and schedule repository. The engine never retries; callers own the
	// retry policy.
	ErrExternal = errors.New("external dependency failed")
)
