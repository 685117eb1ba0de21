package mode

import "errors"

// Sentinel kinds for mode errors.
var (
	ErrUnknownMode   = errors.New("unknown competition mode")
	ErrInvalidConfig = errors.New("invalid mode config")
	ErrEmptyRoster   = errors.New("empty roster")
	ErrNoNextStage   = errors.New("no next stage to schedule")
)
