package sim

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/compsched/internal/domain/model"
)

// StaticEventData serves a fixed event, implementing app.EventDataProvider.
type StaticEventData struct {
	Data *model.EventData
}

// EventData returns the fixed event regardless of visibility rules.
func (p *StaticEventData) EventData(_ context.Context, eventID string) (*model.EventData, error) {
	if p.Data == nil || p.Data.EventID != eventID {
		return nil, fmt.Errorf("unknown event %s", eventID)
	}
	return p.Data, nil
}

// ScriptedScores implements app.ScoreProvider with deterministic per-athlete
// scores and staged match results fed in by the runner.
type ScriptedScores struct {
	mu      sync.Mutex
	results map[string][]model.MatchResult
}

// NewScriptedScores creates an empty scripted provider.
func NewScriptedScores() *ScriptedScores {
	return &ScriptedScores{results: make(map[string][]model.MatchResult)}
}

// Skill derives a stable score for an athlete from its id. Scores land in
// (0, 100) and never collide with zero, so score-absent athletes sort last.
func Skill(athleteID string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(athleteID))
	return 1 + float64(h.Sum32()%990)/10
}

// AthleteScores reports every requested athlete; unknown ids degrade to a
// zero score rather than an error.
func (p *ScriptedScores) AthleteScores(_ context.Context, athleteIDs []string, _ string) ([]model.Score, error) {
	out := make([]model.Score, 0, len(athleteIDs))
	for _, id := range athleteIDs {
		out = append(out, model.Score{
			AthleteID:   id,
			Score:       Skill(id),
			SubmittedAt: time.Now(),
		})
	}
	return out, nil
}

// SetMatchResults stages results under a filter id for the next lookup.
func (p *ScriptedScores) SetMatchResults(filterID string, results []model.MatchResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[filterID] = results
}

// MatchResults returns the staged results for a filter id.
func (p *ScriptedScores) MatchResults(_ context.Context, _ string, filterID string) ([]model.MatchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results[filterID], nil
}
