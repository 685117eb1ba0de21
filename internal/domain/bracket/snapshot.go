package bracket

import (
	"fmt"

	"github.com/okian/compsched/internal/domain/model"
)

// Snapshot is the total, storable state of a tournament. Snapshot and
// FromSnapshot are exact inverses so that a mid-tournament bracket survives
// a reload with no resimulation.
type Snapshot struct {
	TotalAthletes int             `json:"total_athletes"`
	Rules         []Rule          `json:"elimination_rules"`
	Current       int             `json:"current_stage"`
	Stages        []StageSnapshot `json:"stages"`
}

// StageSnapshot is the storable state of one stage.
type StageSnapshot struct {
	ID         string          `json:"stage_id"`
	Name       string          `json:"stage_name"`
	Number     int             `json:"stage_number"`
	From       int             `json:"from_count"`
	To         int             `json:"to_count"`
	Wildcards  int             `json:"wildcard_count"`
	Status     Status          `json:"status"`
	Matches    []Match         `json:"matches,omitempty"`
	Winners    []model.Athlete `json:"winners,omitempty"`
	Promoted   []model.Athlete `json:"wildcards,omitempty"`
	Eliminated []model.Athlete `json:"eliminated,omitempty"`
}

// Snapshot exports the tournament state.
func (t *Tournament) Snapshot() Snapshot {
	out := Snapshot{
		TotalAthletes: t.TotalAthletes,
		Rules:         append([]Rule(nil), t.Rules...),
		Current:       t.Current,
		Stages:        make([]StageSnapshot, 0, len(t.Stages)),
	}
	for _, s := range t.Stages {
		ss := StageSnapshot{
			ID:         s.ID,
			Name:       s.Name,
			Number:     s.Number,
			From:       s.From,
			To:         s.To,
			Wildcards:  s.Wildcards,
			Status:     s.Status,
			Matches:    make([]Match, 0, len(s.Matches)),
			Winners:    append([]model.Athlete(nil), s.Winners...),
			Promoted:   append([]model.Athlete(nil), s.Promoted...),
			Eliminated: append([]model.Athlete(nil), s.Eliminated...),
		}
		for _, m := range s.Matches {
			mc := *m
			if m.Athlete1 != nil {
				a1 := *m.Athlete1
				mc.Athlete1 = &a1
			}
			if m.Athlete2 != nil {
				a2 := *m.Athlete2
				mc.Athlete2 = &a2
			}
			ss.Matches = append(ss.Matches, mc)
		}
		out.Stages = append(out.Stages, ss)
	}
	return out
}

// FromSnapshot reconstructs a tournament, cursor and stage internals
// included.
func FromSnapshot(snap Snapshot) (*Tournament, error) {
	if snap.TotalAthletes < 2 {
		return nil, fmt.Errorf("%w: total athletes %d", ErrInvalidSnapshot, snap.TotalAthletes)
	}
	if len(snap.Stages) != len(snap.Rules) {
		return nil, fmt.Errorf("%w: %d stages for %d rules", ErrInvalidSnapshot, len(snap.Stages), len(snap.Rules))
	}
	if snap.Current < 0 || snap.Current > len(snap.Stages) {
		return nil, fmt.Errorf("%w: cursor %d out of range", ErrInvalidSnapshot, snap.Current)
	}
	if err := validateRules(snap.TotalAthletes, snap.Rules); err != nil {
		return nil, err
	}

	t := &Tournament{
		TotalAthletes: snap.TotalAthletes,
		Rules:         append([]Rule(nil), snap.Rules...),
		Current:       snap.Current,
		Stages:        make([]*Stage, 0, len(snap.Stages)),
	}
	for _, ss := range snap.Stages {
		stage := &Stage{
			ID:         ss.ID,
			Name:       ss.Name,
			Number:     ss.Number,
			From:       ss.From,
			To:         ss.To,
			Wildcards:  ss.Wildcards,
			Status:     ss.Status,
			Winners:    append([]model.Athlete(nil), ss.Winners...),
			Promoted:   append([]model.Athlete(nil), ss.Promoted...),
			Eliminated: append([]model.Athlete(nil), ss.Eliminated...),
		}
		if ss.Status == "" {
			stage.Status = StatusPending
		}
		stage.Matches = make([]*Match, 0, len(ss.Matches))
		for _, m := range ss.Matches {
			mc := m
			if m.Athlete1 != nil {
				a1 := *m.Athlete1
				mc.Athlete1 = &a1
			}
			if m.Athlete2 != nil {
				a2 := *m.Athlete2
				mc.Athlete2 = &a2
			}
			stage.Matches = append(stage.Matches, &mc)
		}
		t.Stages = append(t.Stages, stage)
	}
	return t, nil
}
