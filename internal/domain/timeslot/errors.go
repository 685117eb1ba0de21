package timeslot

import "errors"

// Sentinel kinds for timeslot errors.
var (
	ErrParse = errors.New("malformed time slot")
)
