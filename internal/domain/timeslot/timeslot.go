// Package timeslot provides the minute-granularity time value used by every
// scheduling mode. A Slot is immutable; arithmetic returns new values.
package timeslot

import (
	"fmt"
	"time"
)

// Layout is the canonical wire format for a slot. Minute granularity,
// lexicographically sortable, round-trips exactly through Parse/String.
const Layout = "2006-01-02 15:04"

// Slot is a point in time truncated to the minute.
type Slot struct {
	t time.Time
}

// Parse builds a Slot from its canonical string form.
// Malformed input wraps ErrParse.
func Parse(s string) (Slot, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return Slot{t: t}, nil
}

// At builds a Slot from a time.Time, truncating to the minute.
func At(t time.Time) Slot {
	return Slot{t: t.Truncate(time.Minute)}
}

// Add returns a new Slot n minutes later. Negative n is allowed.
func (s Slot) Add(minutes int) Slot {
	return Slot{t: s.t.Add(time.Duration(minutes) * time.Minute)}
}

// Sub returns the whole-minute distance from other to s.
func (s Slot) Sub(other Slot) int {
	return int(s.t.Sub(other.t) / time.Minute)
}

// Before reports whether s is strictly earlier than other.
func (s Slot) Before(other Slot) bool {
	return s.t.Before(other.t)
}

// Time exposes the underlying instant.
func (s Slot) Time() time.Time {
	return s.t
}

// IsZero reports whether the slot carries no instant.
func (s Slot) IsZero() bool {
	return s.t.IsZero()
}

// String renders the canonical form accepted by Parse.
func (s Slot) String() string {
	return s.t.Format(Layout)
}

// MarshalJSON encodes the slot in its canonical string form.
func (s Slot) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes the canonical string form. An empty string yields the
// zero slot so optional snapshot fields stay optional.
func (s *Slot) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrParse, raw)
	}
	raw = raw[1 : len(raw)-1]
	if raw == "" {
		*s = Slot{}
		return nil
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
