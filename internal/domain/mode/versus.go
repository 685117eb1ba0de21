package mode

import (
	"context"
	"fmt"

	"github.com/okian/compsched/internal/domain/bracket"
	"github.com/okian/compsched/internal/domain/model"
	"github.com/okian/compsched/internal/domain/timeslot"
)

// VersusStrategy schedules head-to-head elimination rounds. Unlike the other
// modes it spans multiple scheduling passes: rounds complete asynchronously,
// results are processed, and the advancing roster is scheduled anew.
type VersusStrategy struct {
	cfg Config
}

func (v *VersusStrategy) Mode() Mode { return Versus }

// Schedule sizes a fresh tournament to the roster and schedules its opening
// stage. Only ConcurrentMatches matches run in parallel; a bye still costs
// its single slot.
func (v *VersusStrategy) Schedule(athletes []model.Athlete, start timeslot.Slot) (*Result, error) {
	if len(athletes) == 0 {
		return nil, ErrEmptyRoster
	}
	t, err := bracket.NewTournament(len(athletes), v.cfg.policy())
	if err != nil {
		return nil, err
	}
	matches, err := t.CreateCurrentStageMatches(athletes)
	if err != nil {
		return nil, err
	}
	return v.layout(t, matches, start), nil
}

// Reschedule shifts every match to the new start, preserving parallelism and
// pairing order.
func (v *VersusStrategy) Reschedule(res *Result, start timeslot.Slot) (*Result, error) {
	out := cloneResult(res)
	out.Start = start

	concurrent := v.cfg.concurrentMatches()
	wod := v.cfg.WodDurationMin
	slotByMatch := make(map[string]timeslot.Slot, len(out.Matches))
	for i, m := range out.Matches {
		slotByMatch[m.ID] = start.Add(i / concurrent * wod)
	}
	for i := range out.Assignments {
		ms, ok := slotByMatch[out.Assignments[i].MatchID]
		if !ok {
			continue
		}
		out.Assignments[i].Start = ms
		out.Assignments[i].End = ms.Add(wod)
	}
	return out, nil
}

// ProcessResults applies match results to the current stage, resolving
// wildcards through the score source once the round is fully played.
func (v *VersusStrategy) ProcessResults(ctx context.Context, res *Result, results []model.MatchResult, scores bracket.ScoreSource, filterID string) (*bracket.StageResult, error) {
	if res == nil || res.Tournament == nil {
		return nil, fmt.Errorf("%w: versus session has no tournament", ErrInvalidConfig)
	}
	return res.Tournament.ProcessStageResults(ctx, results, scores, filterID)
}

// NextStageSchedule schedules the advancing roster into the stage the cursor
// now points at. It fails once the tournament is complete, and before the
// opening stage has been played.
func (v *VersusStrategy) NextStageSchedule(res *Result, start timeslot.Slot) (*Result, error) {
	if res == nil || res.Tournament == nil {
		return nil, fmt.Errorf("%w: versus session has no tournament", ErrInvalidConfig)
	}
	t := res.Tournament
	if t.IsComplete() {
		return nil, bracket.ErrTournamentComplete
	}
	if t.Current == 0 {
		return nil, fmt.Errorf("%w: opening stage is scheduled at creation", ErrNoNextStage)
	}
	roster := t.Stages[t.Current-1].Advancing()
	matches, err := t.CreateCurrentStageMatches(roster)
	if err != nil {
		return nil, err
	}
	return v.layout(t, matches, start), nil
}

// layout computes match times and per-athlete assignments for one stage.
func (v *VersusStrategy) layout(t *bracket.Tournament, matches []*bracket.Match, start timeslot.Slot) *Result {
	concurrent := v.cfg.concurrentMatches()
	wod := v.cfg.WodDurationMin
	slots := (len(matches) + concurrent - 1) / concurrent

	res := &Result{
		Mode:        Versus,
		Start:       start,
		DurationMin: slots * wod,
		Matches:     matches,
		Stage:       t.CurrentStage().Number,
		Tournament:  t,
	}
	for i, m := range matches {
		ms := start.Add(i / concurrent * wod)
		me := ms.Add(wod)
		a := Assignment{
			Athlete: *m.Athlete1,
			MatchID: m.ID,
			Start:   ms,
			End:     me,
		}
		if m.Athlete2 != nil {
			a.OpponentID = m.Athlete2.ID
			res.Assignments = append(res.Assignments, a, Assignment{
				Athlete:    *m.Athlete2,
				MatchID:    m.ID,
				OpponentID: m.Athlete1.ID,
				Start:      ms,
				End:        me,
			})
		} else {
			res.Assignments = append(res.Assignments, a)
		}
	}
	return res
}

// cloneResult copies a result deeply enough that reschedules never mutate
// their input. Matches and the tournament are shared on purpose: they are
// the session's single source of bracket truth.
func cloneResult(res *Result) *Result {
	out := *res
	out.Assignments = append([]Assignment(nil), res.Assignments...)
	out.Heats = append([]HeatGroup(nil), res.Heats...)
	for i := range out.Heats {
		out.Heats[i].AthleteIDs = append([]string(nil), res.Heats[i].AthleteIDs...)
	}
	out.Matches = append([]*bracket.Match(nil), res.Matches...)
	return &out
}
