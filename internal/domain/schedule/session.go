// Package schedule holds the competition-wide plan: days of sessions, each
// session binding one workout and category pairing to a competition mode.
package schedule

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/compsched/internal/domain/mode"
	"github.com/okian/compsched/internal/domain/model"
	"github.com/okian/compsched/internal/domain/timeslot"
)

// Session binds a workout and category to a chosen competition mode and
// carries the schedule fragment the mode produced for that pairing.
type Session struct {
	ID           string
	WodID        string
	WodName      string
	CategoryID   string
	CategoryName string
	Mode         mode.Mode
	Config       mode.Config

	Result *mode.Result
}

// NewSession creates an empty session. The wod's own duration fills the
// config when the caller leaves it unset.
func NewSession(wod model.Wod, category model.Category, m mode.Mode, cfg mode.Config) *Session {
	if cfg.WodDurationMin <= 0 {
		cfg.WodDurationMin = wod.DurationMin
	}
	return &Session{
		ID:           uuid.NewString(),
		WodID:        wod.ID,
		WodName:      wod.Name,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Mode:         m,
		Config:       cfg,
	}
}

// ScheduleAthletes populates the session through its mode strategy. A
// session is populated exactly once; later changes go through Update.
func (s *Session) ScheduleAthletes(athletes []model.Athlete, start timeslot.Slot) error {
	strat, err := mode.New(s.Mode, s.Config)
	if err != nil {
		return err
	}
	res, err := strat.Schedule(athletes, start)
	if err != nil {
		return fmt.Errorf("schedule session %s/%s: %w", s.WodName, s.CategoryName, err)
	}
	s.Result = res
	return nil
}

// Update is a partial, composition-preserving mutation. A start change
// recomputes every athlete time through the mode's reschedule; a duration
// change is stored as given.
type Update struct {
	Start       *timeslot.Slot
	DurationMin *int
}

// Update applies a partial update to a populated session.
func (s *Session) Update(u Update) error {
	if s.Result == nil {
		return fmt.Errorf("%w: %s/%s", ErrNotScheduled, s.WodName, s.CategoryName)
	}
	if u.Start != nil && *u.Start != s.Result.Start {
		strat, err := mode.New(s.Mode, s.Config)
		if err != nil {
			return err
		}
		res, err := strat.Reschedule(s.Result, *u.Start)
		if err != nil {
			return err
		}
		s.Result = res
	}
	if u.DurationMin != nil {
		s.Result.DurationMin = *u.DurationMin
	}
	return nil
}

// IsValid reports whether the session holds a usable schedule.
func (s *Session) IsValid() bool {
	return s.Result != nil && len(s.Result.Assignments) > 0 && s.Result.DurationMin > 0
}

// Start returns the session's start slot, zero when unscheduled.
func (s *Session) Start() timeslot.Slot {
	if s.Result == nil {
		return timeslot.Slot{}
	}
	return s.Result.Start
}

// DurationMin returns the session's duration, zero when unscheduled.
func (s *Session) DurationMin() int {
	if s.Result == nil {
		return 0
	}
	return s.Result.DurationMin
}
