package schedule

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/compsched/internal/domain/mode"
	"github.com/okian/compsched/internal/domain/model"
)

// Day is one competition day holding its sessions in execution order.
type Day struct {
	ID       string
	Date     string
	Sessions []*Session
}

// Schedule is the aggregate root: a competition-wide plan for one event.
type Schedule struct {
	EventID   string
	ID        string
	Days      []*Day
	Published bool
}

// New creates an empty schedule for an event.
func New(eventID string) *Schedule {
	return &Schedule{
		EventID: eventID,
		ID:      uuid.NewString(),
	}
}

// AddDay appends a day to the plan and returns it for session placement.
func (s *Schedule) AddDay(d model.Day) *Day {
	day := &Day{ID: d.ID, Date: d.Date}
	s.Days = append(s.Days, day)
	return day
}

// Publish marks the schedule visible. Idempotent.
func (s *Schedule) Publish() { s.Published = true }

// Unpublish hides the schedule. Idempotent.
func (s *Schedule) Unpublish() { s.Published = false }

// Session finds a session by id across all days.
func (s *Schedule) Session(sessionID string) (*Session, error) {
	for _, day := range s.Days {
		for _, sess := range day.Sessions {
			if sess.ID == sessionID {
				return sess, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
}

// VersusSession finds the first versus-mode session, the one tournament
// operations act on.
func (s *Schedule) VersusSession() (*Session, error) {
	for _, day := range s.Days {
		for _, sess := range day.Sessions {
			if sess.Mode == mode.Versus {
				return sess, nil
			}
		}
	}
	return nil, ErrNoVersusSession
}

// Sessions returns every session across all days in plan order.
func (s *Schedule) Sessions() []*Session {
	var out []*Session
	for _, day := range s.Days {
		out = append(out, day.Sessions...)
	}
	return out
}
