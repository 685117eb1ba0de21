package schedule

import "errors"

// Sentinel kinds for schedule errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoVersusSession = errors.New("no versus session in schedule")
	ErrNotScheduled    = errors.New("session has no schedule yet")
	ErrInvalidSnapshot = errors.New("invalid schedule snapshot")
)
