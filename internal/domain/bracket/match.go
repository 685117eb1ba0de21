package bracket

import (
	"github.com/google/uuid"

	"github.com/okian/compsched/internal/domain/model"
)

// Match is one head-to-head pairing within a stage. Athlete2 is nil for a
// bye; a bye auto-resolves as a win for Athlete1 with no scoring.
type Match struct {
	ID          string         `json:"match_id"`
	Athlete1    *model.Athlete `json:"athlete1"`
	Athlete2    *model.Athlete `json:"athlete2,omitempty"`
	WinnerID    string         `json:"winner_id,omitempty"`
	LoserID     string         `json:"loser_id,omitempty"`
	WinnerScore float64        `json:"winner_score,omitempty"`
	LoserScore  float64        `json:"loser_score,omitempty"`
	Completed   bool           `json:"completed"`
}

// IsBye reports whether the match has a single participant.
func (m *Match) IsBye() bool {
	return m.Athlete2 == nil
}

// Winner returns the advancing athlete, or nil while the match is open.
func (m *Match) Winner() *model.Athlete {
	if !m.Completed {
		return nil
	}
	if m.Athlete1 != nil && m.Athlete1.ID == m.WinnerID {
		return m.Athlete1
	}
	if m.Athlete2 != nil && m.Athlete2.ID == m.WinnerID {
		return m.Athlete2
	}
	return nil
}

// Loser returns the defeated athlete, or nil for byes and open matches.
func (m *Match) Loser() *model.Athlete {
	if !m.Completed || m.IsBye() {
		return nil
	}
	if m.Athlete1 != nil && m.Athlete1.ID == m.LoserID {
		return m.Athlete1
	}
	if m.Athlete2 != nil && m.Athlete2.ID == m.LoserID {
		return m.Athlete2
	}
	return nil
}

// pairs reports whether winnerID and loserID are exactly this match's two
// participants, in either order.
func (m *Match) pairs(winnerID, loserID string) bool {
	if m.IsBye() {
		return false
	}
	a, b := m.Athlete1.ID, m.Athlete2.ID
	return (winnerID == a && loserID == b) || (winnerID == b && loserID == a)
}

func newMatch(a1 *model.Athlete, a2 *model.Athlete) *Match {
	m := &Match{
		ID:       uuid.NewString(),
		Athlete1: a1,
		Athlete2: a2,
	}
	if m.IsBye() {
		// Single participant advances immediately, no score recorded.
		m.WinnerID = a1.ID
		m.Completed = true
	}
	return m
}
