package bracket

import "errors"

// Sentinel kinds for bracket errors. These allow errors.Is/As from callers.
var (
	ErrTooFewAthletes     = errors.New("too few athletes for a bracket")
	ErrRosterSize         = errors.New("roster size does not match stage")
	ErrResultMismatch     = errors.New("match result names a non-participant")
	ErrStageState         = errors.New("stage not in a state for this operation")
	ErrStageIncomplete    = errors.New("stage has unresolved matches")
	ErrNoResults          = errors.New("no match results to process")
	ErrTournamentComplete = errors.New("tournament already complete")
	ErrInvalidSnapshot    = errors.New("invalid tournament snapshot")
)
