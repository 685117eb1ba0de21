// Package sim generates synthetic competitions and drives them end to end
// through the orchestration service. It backs the CLI demo run and the
// service-level integration tests.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/compsched/internal/domain/model"
)

// Name pools for synthetic athletes.
var (
	firstNames = []string{
		"Alex", "Brooke", "Casey", "Dana", "Eli", "Frankie", "Gray",
		"Harper", "Indie", "Jules", "Kai", "Lane", "Morgan", "Noa",
		"Oakley", "Parker", "Quinn", "Reese", "Sage", "Tatum",
	}
	lastNames = []string{
		"Stone", "Rivers", "Hale", "Fox", "Marsh", "Vega", "Lund",
		"Cruz", "Bishop", "North", "Frey", "Wilder", "Pike", "Reyes",
		"Sloan", "Archer", "Boone", "Calder", "Drake", "Ember",
	}
)

// Generator builds deterministic synthetic event data from a seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator with a fixed seed so runs reproduce.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Roster produces n distinct athletes.
func (g *Generator) Roster(n int) []model.Athlete {
	out := make([]model.Athlete, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Athlete{
			ID:        uuid.NewString(),
			FirstName: firstNames[g.rng.Intn(len(firstNames))],
			LastName:  lastNames[g.rng.Intn(len(lastNames))],
		})
	}
	return out
}

// Event produces a full synthetic event: days, roster, one category, and a
// pair of workouts.
func (g *Generator) Event(athletes, days int) *model.EventData {
	data := &model.EventData{
		EventID:  uuid.NewString(),
		Athletes: g.Roster(athletes),
		Categories: []model.Category{
			{ID: uuid.NewString(), Name: "RX"},
		},
		Wods: []model.Wod{
			{ID: uuid.NewString(), Name: "Fran", DurationMin: 15},
			{ID: uuid.NewString(), Name: "Cindy", DurationMin: 20},
		},
	}
	for i := 0; i < days; i++ {
		data.Days = append(data.Days, model.Day{
			ID:   uuid.NewString(),
			Date: fmt.Sprintf("2026-06-%02d", 12+i),
		})
	}
	return data
}
