package mode

import (
	"github.com/okian/compsched/internal/domain/model"
	"github.com/okian/compsched/internal/domain/timeslot"
)

// heatsStrategy partitions the roster into fixed-size heats run back to
// back. Heat and lane assignment is stable: first come, first assigned.
type heatsStrategy struct {
	cfg Config
}

func (h *heatsStrategy) Mode() Mode { return Heats }

func (h *heatsStrategy) Schedule(athletes []model.Athlete, start timeslot.Slot) (*Result, error) {
	if len(athletes) == 0 {
		return nil, ErrEmptyRoster
	}

	perHeat := h.cfg.athletesPerHeat()
	wod := h.cfg.WodDurationMin
	heatCount := (len(athletes) + perHeat - 1) / perHeat

	res := &Result{
		Mode:        Heats,
		Start:       start,
		DurationMin: heatCount * wod,
		Assignments: make([]Assignment, 0, len(athletes)),
		Heats:       make([]HeatGroup, 0, heatCount),
	}

	for i, a := range athletes {
		heat := i / perHeat
		lane := i%perHeat + 1
		hs := start.Add(heat * wod)

		if lane == 1 {
			res.Heats = append(res.Heats, HeatGroup{
				Number: heat + 1,
				Start:  hs,
				End:    hs.Add(wod),
			})
		}
		res.Heats[heat].AthleteIDs = append(res.Heats[heat].AthleteIDs, a.ID)
		res.Assignments = append(res.Assignments, Assignment{
			Athlete: a,
			Heat:    heat + 1,
			Lane:    lane,
			Start:   hs,
			End:     hs.Add(wod),
		})
	}
	return res, nil
}

func (h *heatsStrategy) Reschedule(res *Result, start timeslot.Slot) (*Result, error) {
	wod := h.cfg.WodDurationMin
	out := cloneResult(res)
	out.Start = start

	for i := range out.Heats {
		hs := start.Add((out.Heats[i].Number - 1) * wod)
		out.Heats[i].Start = hs
		out.Heats[i].End = hs.Add(wod)
	}
	for i := range out.Assignments {
		hs := start.Add((out.Assignments[i].Heat - 1) * wod)
		out.Assignments[i].Start = hs
		out.Assignments[i].End = hs.Add(wod)
	}
	return out, nil
}
