package mode

import (
	"github.com/okian/compsched/internal/domain/model"
	"github.com/okian/compsched/internal/domain/timeslot"
)

// simultaneousStrategy runs every athlete at once, each on a numbered
// station.
type simultaneousStrategy struct {
	cfg Config
}

func (s *simultaneousStrategy) Mode() Mode { return Simultaneous }

func (s *simultaneousStrategy) Schedule(athletes []model.Athlete, start timeslot.Slot) (*Result, error) {
	if len(athletes) == 0 {
		return nil, ErrEmptyRoster
	}

	end := start.Add(s.cfg.WodDurationMin)
	res := &Result{
		Mode:        Simultaneous,
		Start:       start,
		DurationMin: s.cfg.WodDurationMin,
		Assignments: make([]Assignment, 0, len(athletes)),
	}
	for i, a := range athletes {
		res.Assignments = append(res.Assignments, Assignment{
			Athlete: a,
			Station: i + 1,
			Start:   start,
			End:     end,
		})
	}
	return res, nil
}

func (s *simultaneousStrategy) Reschedule(res *Result, start timeslot.Slot) (*Result, error) {
	out := cloneResult(res)
	out.Start = start
	end := start.Add(s.cfg.WodDurationMin)
	for i := range out.Assignments {
		out.Assignments[i].Start = start
		out.Assignments[i].End = end
	}
	return out, nil
}
