package schedule

import (
	"fmt"

	"github.com/okian/compsched/internal/domain/bracket"
	"github.com/okian/compsched/internal/domain/mode"
	"github.com/okian/compsched/internal/domain/timeslot"
)

// Snapshot is the storable, reconstructable state of a whole schedule. It is
// what crosses the repository boundary; Snapshot and Restore are exact
// inverses so mid-tournament state survives a reload.
type Snapshot struct {
	EventID    string        `json:"event_id"`
	ScheduleID string        `json:"schedule_id"`
	Published  bool          `json:"published"`
	Days       []DaySnapshot `json:"days"`
}

// DaySnapshot is the storable state of one day.
type DaySnapshot struct {
	ID       string            `json:"day_id"`
	Date     string            `json:"date"`
	Sessions []SessionSnapshot `json:"sessions"`
}

// SessionSnapshot is the storable state of one session, including the full
// tournament snapshot for versus sessions.
type SessionSnapshot struct {
	ID           string            `json:"session_id"`
	WodID        string            `json:"wod_id"`
	WodName      string            `json:"wod_name"`
	CategoryID   string            `json:"category_id"`
	CategoryName string            `json:"category_name"`
	Mode         mode.Mode         `json:"competition_mode"`
	Config       mode.Config       `json:"config"`
	Start        timeslot.Slot     `json:"start_time"`
	DurationMin  int               `json:"duration_min"`
	Assignments  []mode.Assignment `json:"athlete_schedule,omitempty"`
	Heats        []mode.HeatGroup  `json:"heats,omitempty"`
	MatchIDs     []string          `json:"match_ids,omitempty"`
	Stage        int               `json:"stage,omitempty"`
	Tournament   *bracket.Snapshot `json:"tournament,omitempty"`
}

// Snapshot exports the aggregate state.
func (s *Schedule) Snapshot() *Snapshot {
	out := &Snapshot{
		EventID:    s.EventID,
		ScheduleID: s.ID,
		Published:  s.Published,
		Days:       make([]DaySnapshot, 0, len(s.Days)),
	}
	for _, day := range s.Days {
		ds := DaySnapshot{
			ID:       day.ID,
			Date:     day.Date,
			Sessions: make([]SessionSnapshot, 0, len(day.Sessions)),
		}
		for _, sess := range day.Sessions {
			ds.Sessions = append(ds.Sessions, sess.snapshot())
		}
		out.Days = append(out.Days, ds)
	}
	return out
}

func (s *Session) snapshot() SessionSnapshot {
	out := SessionSnapshot{
		ID:           s.ID,
		WodID:        s.WodID,
		WodName:      s.WodName,
		CategoryID:   s.CategoryID,
		CategoryName: s.CategoryName,
		Mode:         s.Mode,
		Config:       s.Config,
	}
	if s.Result == nil {
		return out
	}
	out.Start = s.Result.Start
	out.DurationMin = s.Result.DurationMin
	out.Assignments = append([]mode.Assignment(nil), s.Result.Assignments...)
	out.Heats = append([]mode.HeatGroup(nil), s.Result.Heats...)
	out.Stage = s.Result.Stage
	for _, m := range s.Result.Matches {
		out.MatchIDs = append(out.MatchIDs, m.ID)
	}
	if s.Result.Tournament != nil {
		snap := s.Result.Tournament.Snapshot()
		out.Tournament = &snap
	}
	return out
}

// Restore reconstructs a schedule aggregate from its snapshot.
func Restore(snap *Snapshot) (*Schedule, error) {
	if snap == nil || snap.EventID == "" || snap.ScheduleID == "" {
		return nil, ErrInvalidSnapshot
	}
	s := &Schedule{
		EventID:   snap.EventID,
		ID:        snap.ScheduleID,
		Published: snap.Published,
	}
	for _, ds := range snap.Days {
		day := &Day{ID: ds.ID, Date: ds.Date}
		for i := range ds.Sessions {
			sess, err := restoreSession(&ds.Sessions[i])
			if err != nil {
				return nil, err
			}
			day.Sessions = append(day.Sessions, sess)
		}
		s.Days = append(s.Days, day)
	}
	return s, nil
}

func restoreSession(snap *SessionSnapshot) (*Session, error) {
	sess := &Session{
		ID:           snap.ID,
		WodID:        snap.WodID,
		WodName:      snap.WodName,
		CategoryID:   snap.CategoryID,
		CategoryName: snap.CategoryName,
		Mode:         snap.Mode,
		Config:       snap.Config,
	}
	if len(snap.Assignments) == 0 && snap.Tournament == nil {
		return sess, nil // never populated
	}

	res := &mode.Result{
		Mode:        snap.Mode,
		Start:       snap.Start,
		DurationMin: snap.DurationMin,
		Assignments: append([]mode.Assignment(nil), snap.Assignments...),
		Heats:       append([]mode.HeatGroup(nil), snap.Heats...),
		Stage:       snap.Stage,
	}
	if snap.Tournament != nil {
		t, err := bracket.FromSnapshot(*snap.Tournament)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", snap.ID, err)
		}
		res.Tournament = t
		if snap.Stage >= 1 && snap.Stage <= len(t.Stages) {
			res.Matches = t.Stages[snap.Stage-1].Matches
		} else if len(snap.MatchIDs) > 0 {
			return nil, fmt.Errorf("%w: session %s references stage %d", ErrInvalidSnapshot, snap.ID, snap.Stage)
		}
	}
	sess.Result = res
	return sess, nil
}
