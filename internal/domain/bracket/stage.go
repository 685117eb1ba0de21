package bracket

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/okian/compsched/internal/domain/model"
)

// Status is the lifecycle state of a stage.
type Status string

// Stage lifecycle states.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusComplete   Status = "complete"
)

// ScoreSource supplies best scores for wildcard selection. Athletes without
// a submission must come back with a zero score, never as an error.
type ScoreSource interface {
	AthleteScores(ctx context.Context, athleteIDs []string, filterID string) ([]model.Score, error)
}

// Stage is one elimination round: a from-sized roster paired into matches,
// reduced to winners plus score-selected wildcards.
type Stage struct {
	ID        string
	Name      string
	Number    int
	From      int
	To        int
	Wildcards int

	Matches    []*Match
	Winners    []model.Athlete
	Promoted   []model.Athlete // wildcards selected by score
	Eliminated []model.Athlete
	Status     Status
}

// NewStage builds a pending stage from a derived or supplied rule.
func NewStage(rule Rule) *Stage {
	return &Stage{
		ID:        uuid.NewString(),
		Name:      rule.Name,
		Number:    rule.Number,
		From:      rule.From,
		To:        rule.To,
		Wildcards: rule.Wildcards,
		Status:    StatusPending,
	}
}

// Rule reconstructs the rule this stage was built from.
func (s *Stage) Rule() Rule {
	return Rule{
		Number:    s.Number,
		Name:      s.Name,
		From:      s.From,
		To:        s.To,
		Wildcards: s.Wildcards,
	}
}

// CreateMatches pairs the roster sequentially into matches of two; an odd
// tail receives a bye that auto-resolves as a win. Pairing order follows the
// input order, so seeding is the caller's concern.
func (s *Stage) CreateMatches(athletes []model.Athlete) ([]*Match, error) {
	if s.Status != StatusPending {
		return nil, fmt.Errorf("%w: stage %q already has matches", ErrStageState, s.Name)
	}
	if len(athletes) != s.From {
		return nil, fmt.Errorf("%w: stage %q expects %d, got %d", ErrRosterSize, s.Name, s.From, len(athletes))
	}

	// Copy the roster so match pointers never alias the caller's slice.
	roster := make([]model.Athlete, len(athletes))
	copy(roster, athletes)

	s.Matches = make([]*Match, 0, (len(roster)+1)/2)
	for i := 0; i < len(roster); i += 2 {
		if i+1 < len(roster) {
			s.Matches = append(s.Matches, newMatch(&roster[i], &roster[i+1]))
		} else {
			s.Matches = append(s.Matches, newMatch(&roster[i], nil))
		}
	}
	s.Status = StatusInProgress
	return s.Matches, nil
}

// ApplyResults records the outcome of completed matches. Results for unknown
// matches are ignored; results never reopen a completed match. A result
// naming an athlete outside its match's pairing rejects the whole batch
// before anything is applied.
func (s *Stage) ApplyResults(results []model.MatchResult) error {
	if s.Status == StatusPending {
		return fmt.Errorf("%w: stage %q has no matches yet", ErrStageState, s.Name)
	}
	if s.Status == StatusComplete {
		return fmt.Errorf("%w: stage %q already complete", ErrStageState, s.Name)
	}

	byID := make(map[string]*Match, len(s.Matches))
	for _, m := range s.Matches {
		byID[m.ID] = m
	}
	for _, r := range results {
		m, ok := byID[r.MatchID]
		if !ok || m.Completed {
			continue
		}
		if !m.pairs(r.WinnerID, r.LoserID) {
			return fmt.Errorf("%w: match %s pairs %s and %s, result names %s over %s",
				ErrResultMismatch, m.ID, m.Athlete1.ID, m.Athlete2.ID, r.WinnerID, r.LoserID)
		}
	}
	for _, r := range results {
		m, ok := byID[r.MatchID]
		if !ok || m.Completed {
			continue
		}
		m.WinnerID = r.WinnerID
		m.LoserID = r.LoserID
		m.WinnerScore = r.WinnerScore
		m.LoserScore = r.LoserScore
		m.Completed = true
	}

	s.Winners = s.Winners[:0]
	for _, m := range s.Matches {
		if w := m.Winner(); w != nil {
			s.Winners = append(s.Winners, *w)
		}
	}
	return nil
}

// Resolve finalizes the stage once every match is completed: wildcards are
// selected among the losers by best score under the stage's filter, the rest
// become eliminated. Calling it with open matches wraps ErrStageIncomplete.
func (s *Stage) Resolve(ctx context.Context, scores ScoreSource, filterID string) error {
	if s.Status == StatusComplete {
		return nil
	}
	if !s.matchesDone() {
		return fmt.Errorf("%w: stage %q", ErrStageIncomplete, s.Name)
	}

	losers := s.losers()
	needed := s.To - len(s.Winners)
	if needed > 0 && len(losers) > 0 {
		if needed > len(losers) {
			needed = len(losers)
		}
		ranked := rankByScore(ctx, scores, losers, filterID)
		s.Promoted = append(s.Promoted[:0], ranked[:needed]...)
		s.Eliminated = append(s.Eliminated[:0], ranked[needed:]...)
	} else {
		s.Promoted = s.Promoted[:0]
		s.Eliminated = append(s.Eliminated[:0], losers...)
	}
	s.Status = StatusComplete
	return nil
}

// Advancing returns the next-stage roster: winners then wildcards.
func (s *Stage) Advancing() []model.Athlete {
	out := make([]model.Athlete, 0, len(s.Winners)+len(s.Promoted))
	out = append(out, s.Winners...)
	out = append(out, s.Promoted...)
	return out
}

// IsComplete reports whether the advancing quota has been filled.
func (s *Stage) IsComplete() bool {
	return s.Status == StatusComplete && len(s.Winners)+len(s.Promoted) == s.To
}

func (s *Stage) matchesDone() bool {
	if len(s.Matches) == 0 {
		return false
	}
	for _, m := range s.Matches {
		if !m.Completed {
			return false
		}
	}
	return true
}

func (s *Stage) losers() []model.Athlete {
	var out []model.Athlete
	for _, m := range s.Matches {
		if l := m.Loser(); l != nil {
			out = append(out, *l)
		}
	}
	return out
}

// rankByScore sorts athletes by best score descending, stable on input order
// for ties. A failed or missing lookup degrades to a zero score so the
// bracket keeps moving; score-absent athletes are the first eliminated.
func rankByScore(ctx context.Context, scores ScoreSource, athletes []model.Athlete, filterID string) []model.Athlete {
	ids := make([]string, len(athletes))
	for i, a := range athletes {
		ids[i] = a.ID
	}

	best := make(map[string]float64, len(athletes))
	if scores != nil {
		rows, err := scores.AthleteScores(ctx, ids, filterID)
		if err == nil {
			for _, r := range rows {
				if r.Score > best[r.AthleteID] {
					best[r.AthleteID] = r.Score
				}
			}
		}
	}

	ranked := make([]model.Athlete, len(athletes))
	copy(ranked, athletes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return best[ranked[i].ID] > best[ranked[j].ID]
	})
	return ranked
}
