package bracket

import (
	"fmt"
	"math"
)

// Policy carries the tuning constants for elimination-rule derivation.
// The defaults reproduce the historical behavior; nothing beyond monotonic
// convergence depends on their exact values, so they are configurable.
type Policy struct {
	// AdvancementRatio is the share of a large field that advances a round.
	AdvancementRatio float64
	// DirectEliminationMax is the field size at or below which a round
	// advances exactly half the field with no wildcards.
	DirectEliminationMax int
}

// DefaultPolicy returns the historical tuning values.
func DefaultPolicy() Policy {
	return Policy{
		AdvancementRatio:     0.67,
		DirectEliminationMax: 8,
	}
}

func (p Policy) normalized() Policy {
	if p.AdvancementRatio <= 0 || p.AdvancementRatio >= 1 {
		p.AdvancementRatio = 0.67
	}
	if p.DirectEliminationMax < 2 {
		p.DirectEliminationMax = 8
	}
	return p
}

// Rule describes one elimination round: a from-sized roster reduced to an
// advancing to-sized roster, topped up by wildcards when direct winners
// alone do not fill the quota.
type Rule struct {
	Number    int    `json:"stage_number"`
	Name      string `json:"stage_name"`
	From      int    `json:"from_count"`
	To        int    `json:"to_count"`
	Wildcards int    `json:"wildcard_count"`
}

// DeriveRules computes the full stage chain for a field of the given size.
// The chain is strictly decreasing and terminates at an advancing count of
// one. Fields smaller than two wrap ErrTooFewAthletes.
func DeriveRules(totalAthletes int, policy Policy) ([]Rule, error) {
	if totalAthletes < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewAthletes, totalAthletes)
	}
	policy = policy.normalized()

	var rules []Rule
	remaining := totalAthletes
	for number := 1; remaining > 1; number++ {
		// Every match produces exactly one winner, byes included, so a
		// round of n athletes yields (n+1)/2 direct winners.
		winners := (remaining + 1) / 2

		var advancing, wildcards int
		if remaining <= policy.DirectEliminationMax {
			advancing = winners
			wildcards = 0
		} else {
			target := int(math.Ceil(float64(remaining) * policy.AdvancementRatio))
			if target > remaining-1 {
				target = remaining - 1
			}
			if target < winners {
				target = winners
			}
			advancing = target
			wildcards = target - winners
		}
		rules = append(rules, Rule{
			Number:    number,
			Name:      stageName(number, remaining, advancing),
			From:      remaining,
			To:        advancing,
			Wildcards: wildcards,
		})
		remaining = advancing
	}
	return rules, nil
}

// stageName labels a round by its resulting advancing count, falling back to
// a generic label for irregular field sizes.
func stageName(number, from, to int) string {
	switch to {
	case 1:
		return "Championship"
	case 2:
		return "Finals"
	case 4:
		return "Semifinals"
	case 8:
		return "Quarterfinals"
	}
	if from == 16 {
		return "Round of 16"
	}
	return fmt.Sprintf("Stage %d (%d to %d)", number, from, to)
}
