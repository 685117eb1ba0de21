// Package mode implements the three interchangeable competition scheduling
// strategies (heats, simultaneous, versus) behind a single contract,
// dispatched through a factory keyed by a mode identifier.
package mode

import (
	"fmt"

	"github.com/okian/compsched/internal/domain/bracket"
	"github.com/okian/compsched/internal/domain/model"
	"github.com/okian/compsched/internal/domain/timeslot"
)

// Mode identifies a scheduling strategy.
type Mode string

// Known competition modes.
const (
	Heats        Mode = "heats"
	Simultaneous Mode = "simultaneous"
	Versus       Mode = "versus"
)

// Parse validates a mode identifier.
func Parse(s string) (Mode, error) {
	switch Mode(s) {
	case Heats, Simultaneous, Versus:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Default sizing constants, applied when the config leaves a field zero.
const (
	defaultAthletesPerHeat   = 8
	defaultConcurrentMatches = 1
)

// Config carries per-session scheduling parameters. WodDurationMin is
// required; the rest defaults per mode.
type Config struct {
	WodDurationMin       int     `json:"wod_duration_min"`
	AthletesPerHeat      int     `json:"athletes_per_heat,omitempty"`
	ConcurrentMatches    int     `json:"concurrent_matches,omitempty"`
	AdvancementRatio     float64 `json:"advancement_ratio,omitempty"`
	DirectEliminationMax int     `json:"direct_elimination_max,omitempty"`
}

func (c Config) validate() error {
	if c.WodDurationMin <= 0 {
		return fmt.Errorf("%w: wod_duration_min must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) athletesPerHeat() int {
	if c.AthletesPerHeat > 0 {
		return c.AthletesPerHeat
	}
	return defaultAthletesPerHeat
}

func (c Config) concurrentMatches() int {
	if c.ConcurrentMatches > 0 {
		return c.ConcurrentMatches
	}
	return defaultConcurrentMatches
}

func (c Config) policy() bracket.Policy {
	p := bracket.DefaultPolicy()
	if c.AdvancementRatio > 0 && c.AdvancementRatio < 1 {
		p.AdvancementRatio = c.AdvancementRatio
	}
	if c.DirectEliminationMax >= 2 {
		p.DirectEliminationMax = c.DirectEliminationMax
	}
	return p
}

// Assignment is one athlete's time-stamped slot in a session. Heat/Lane,
// Station, and Match/Opponent are populated per mode.
type Assignment struct {
	Athlete    model.Athlete `json:"athlete"`
	Heat       int           `json:"heat,omitempty"`
	Lane       int           `json:"lane,omitempty"`
	Station    int           `json:"station,omitempty"`
	MatchID    string        `json:"match_id,omitempty"`
	OpponentID string        `json:"opponent_id,omitempty"`
	Start      timeslot.Slot `json:"start"`
	End        timeslot.Slot `json:"end"`
}

// HeatGroup is one same-time group of athletes within a heats session.
type HeatGroup struct {
	Number     int           `json:"number"`
	AthleteIDs []string      `json:"athlete_ids"`
	Start      timeslot.Slot `json:"start"`
	End        timeslot.Slot `json:"end"`
}

// Result is the schedule fragment a strategy produces for one session.
// Heats is set for heats mode, Matches and Tournament for versus.
type Result struct {
	Mode        Mode                `json:"mode"`
	Start       timeslot.Slot       `json:"start"`
	DurationMin int                 `json:"duration_min"`
	Assignments []Assignment        `json:"athlete_schedule"`
	Heats       []HeatGroup         `json:"heats,omitempty"`
	Matches     []*bracket.Match    `json:"matches,omitempty"`
	Stage       int                 `json:"stage,omitempty"`
	Tournament  *bracket.Tournament `json:"-"`
}

// Strategy is the common contract of all competition modes. Reschedule is a
// pure time shift: composition (who is in which heat or match) is preserved
// and repeated calls with the same start are idempotent.
type Strategy interface {
	Mode() Mode
	Schedule(athletes []model.Athlete, start timeslot.Slot) (*Result, error)
	Reschedule(res *Result, start timeslot.Slot) (*Result, error)
}

// New builds the strategy for a mode identifier.
func New(m Mode, cfg Config) (Strategy, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	switch m {
	case Heats:
		return &heatsStrategy{cfg: cfg}, nil
	case Simultaneous:
		return &simultaneousStrategy{cfg: cfg}, nil
	case Versus:
		return &VersusStrategy{cfg: cfg}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, m)
}
