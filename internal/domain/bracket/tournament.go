package bracket

import (
	"context"
	"fmt"

	"github.com/okian/compsched/internal/domain/model"
)

// Tournament owns the ordered chain of elimination stages and the cursor of
// the round currently being played. The cursor advances strictly forward and
// only when the current stage has been fully resolved.
type Tournament struct {
	TotalAthletes int
	Rules         []Rule
	Stages        []*Stage
	Current       int
}

// StageResult is what one round of result processing hands back to callers.
type StageResult struct {
	StageName          string
	Winners            []model.Athlete
	Wildcards          []model.Athlete
	Eliminated         []model.Athlete
	StageComplete      bool
	NextStage          *Rule
	TournamentComplete bool
}

// BracketSummary is the read-only projection of the whole bracket exposed to
// observers, decoupled from the internal stage objects.
type BracketSummary struct {
	TotalAthletes int            `json:"total_athletes"`
	Stages        []StageSummary `json:"stages"`
	CurrentStage  int            `json:"current_stage"`
	Complete      bool           `json:"complete"`
	Champion      *model.Athlete `json:"champion,omitempty"`
}

// StageSummary describes one stage of the bracket.
type StageSummary struct {
	Name       string `json:"name"`
	Number     int    `json:"number"`
	From       int    `json:"from_count"`
	To         int    `json:"to_count"`
	Wildcards  int    `json:"wildcard_count"`
	MatchCount int    `json:"match_count"`
	Complete   bool   `json:"complete"`
}

// NewTournament derives the stage chain for the field size under the given
// policy.
func NewTournament(totalAthletes int, policy Policy) (*Tournament, error) {
	rules, err := DeriveRules(totalAthletes, policy)
	if err != nil {
		return nil, err
	}
	return NewTournamentWithRules(totalAthletes, rules)
}

// NewTournamentWithRules builds a tournament from externally supplied rules.
// The chain must strictly decrease and terminate at a single champion.
func NewTournamentWithRules(totalAthletes int, rules []Rule) (*Tournament, error) {
	if totalAthletes < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewAthletes, totalAthletes)
	}
	if err := validateRules(totalAthletes, rules); err != nil {
		return nil, err
	}
	t := &Tournament{
		TotalAthletes: totalAthletes,
		Rules:         rules,
		Stages:        make([]*Stage, 0, len(rules)),
	}
	for _, r := range rules {
		t.Stages = append(t.Stages, NewStage(r))
	}
	return t, nil
}

func validateRules(totalAthletes int, rules []Rule) error {
	if len(rules) == 0 {
		return fmt.Errorf("%w: empty rule chain", ErrInvalidSnapshot)
	}
	from := totalAthletes
	for _, r := range rules {
		if r.From != from || r.To >= r.From || r.To < 1 {
			return fmt.Errorf("%w: stage %d reduces %d to %d with chain at %d",
				ErrInvalidSnapshot, r.Number, r.From, r.To, from)
		}
		// Every match produces a winner (byes included), so a stage always
		// yields ceil(From/2) winners. A smaller quota can never be met.
		if r.To < (r.From+1)/2 {
			return fmt.Errorf("%w: stage %d advances %d of %d, fewer than its %d match winners",
				ErrInvalidSnapshot, r.Number, r.To, r.From, (r.From+1)/2)
		}
		from = r.To
	}
	if from != 1 {
		return fmt.Errorf("%w: chain ends at %d, want 1", ErrInvalidSnapshot, from)
	}
	return nil
}

// CurrentStage returns the stage being played, or nil once the tournament is
// complete.
func (t *Tournament) CurrentStage() *Stage {
	if t.IsComplete() {
		return nil
	}
	return t.Stages[t.Current]
}

// CreateCurrentStageMatches pairs the roster into the current stage.
func (t *Tournament) CreateCurrentStageMatches(athletes []model.Athlete) ([]*Match, error) {
	stage := t.CurrentStage()
	if stage == nil {
		return nil, ErrTournamentComplete
	}
	return stage.CreateMatches(athletes)
}

// ProcessStageResults applies results to the current stage and, once the
// stage is fully resolved (wildcards included), advances the cursor. The
// cursor moves at most one stage per call, never backwards.
func (t *Tournament) ProcessStageResults(ctx context.Context, results []model.MatchResult, scores ScoreSource, filterID string) (*StageResult, error) {
	stage := t.CurrentStage()
	if stage == nil {
		return nil, ErrTournamentComplete
	}
	if len(results) == 0 && !stage.matchesDone() {
		return nil, ErrNoResults
	}

	if err := stage.ApplyResults(results); err != nil {
		return nil, err
	}

	out := &StageResult{StageName: stage.Name}
	if stage.matchesDone() {
		if err := stage.Resolve(ctx, scores, filterID); err != nil {
			return nil, err
		}
		t.Current++
	}

	out.Winners = stage.Winners
	out.Wildcards = stage.Promoted
	out.Eliminated = stage.Eliminated
	out.StageComplete = stage.IsComplete()
	out.TournamentComplete = t.IsComplete()
	if !out.TournamentComplete && out.StageComplete {
		next := t.Stages[t.Current].Rule()
		out.NextStage = &next
	}
	return out, nil
}

// IsComplete reports whether every stage has been played.
func (t *Tournament) IsComplete() bool {
	return t.Current >= len(t.Stages)
}

// Champion returns the sole winner of the final stage, defined only once the
// tournament is complete.
func (t *Tournament) Champion() *model.Athlete {
	if !t.IsComplete() || len(t.Stages) == 0 {
		return nil
	}
	final := t.Stages[len(t.Stages)-1]
	advancing := final.Advancing()
	if len(advancing) != 1 {
		return nil
	}
	champion := advancing[0]
	return &champion
}

// Bracket projects the full bracket for observers.
func (t *Tournament) Bracket() BracketSummary {
	out := BracketSummary{
		TotalAthletes: t.TotalAthletes,
		Stages:        make([]StageSummary, 0, len(t.Stages)),
		CurrentStage:  t.Current,
		Complete:      t.IsComplete(),
		Champion:      t.Champion(),
	}
	for _, s := range t.Stages {
		out.Stages = append(out.Stages, StageSummary{
			Name:       s.Name,
			Number:     s.Number,
			From:       s.From,
			To:         s.To,
			Wildcards:  s.Wildcards,
			MatchCount: len(s.Matches),
			Complete:   s.IsComplete(),
		})
	}
	return out
}
