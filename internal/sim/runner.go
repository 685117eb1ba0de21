package sim

import (
	"context"
	"fmt"

	"github.com/okian/compsched/internal/app"
	"github.com/okian/compsched/internal/domain/bracket"
	"github.com/okian/compsched/internal/domain/mode"
	"github.com/okian/compsched/internal/domain/model"
	"github.com/okian/compsched/internal/domain/schedule"
	"github.com/okian/compsched/pkg/logger"
)

// Maximum rounds before a run is declared stuck. Rule derivation converges
// well under this for any sane field size.
const maxRounds = 32

// Runner drives a synthetic versus tournament from generation to champion.
type Runner struct {
	svc    *app.Service
	scores *ScriptedScores
	data   *StaticEventData
	logger logger.Logger
}

// NewRunner wires a runner over the orchestration service and its stubs.
func NewRunner(svc *app.Service, scores *ScriptedScores, data *StaticEventData, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Noop()
	}
	return &Runner{svc: svc, scores: scores, data: data, logger: log}
}

// Run generates a schedule, then alternates result processing and next-stage
// generation until the tournament crowns a champion. It returns the final
// bracket summary.
func (r *Runner) Run(ctx context.Context, cfg mode.Config, dayStart string) (*bracket.BracketSummary, error) {
	eventID := r.data.Data.EventID
	snap, err := r.svc.GenerateSchedule(ctx, app.GenerateParams{
		EventID:  eventID,
		Mode:     mode.Versus,
		Config:   cfg,
		DayStart: dayStart,
	})
	if err != nil {
		return nil, fmt.Errorf("generate schedule: %w", err)
	}
	r.logger.Info(ctx, "schedule generated",
		logger.String("schedule_id", snap.ScheduleID),
		logger.Int("days", len(snap.Days)))

	for round := 0; round < maxRounds; round++ {
		sess, err := versusSession(snap)
		if err != nil {
			return nil, err
		}
		filterID := fmt.Sprintf("%s-stage-%d", sess.ID, sess.Stage)
		r.scores.SetMatchResults(filterID, r.playStage(sess))

		progress, err := r.svc.ProcessTournamentResults(ctx, eventID, snap.ScheduleID, filterID)
		if err != nil {
			return nil, fmt.Errorf("process results: %w", err)
		}
		r.logger.Info(ctx, "stage processed",
			logger.String("stage", progress.Stage.StageName),
			logger.Int("winners", len(progress.Stage.Winners)),
			logger.Int("wildcards", len(progress.Stage.Wildcards)))

		if progress.Stage.TournamentComplete {
			summary := progress.Bracket
			return &summary, nil
		}

		next := sess.Start.Add(sess.DurationMin + 30)
		snap, err = r.svc.GenerateNextTournamentStage(ctx, eventID, snap.ScheduleID, next.String())
		if err != nil {
			return nil, fmt.Errorf("generate next stage: %w", err)
		}
	}
	return nil, fmt.Errorf("tournament did not converge in %d rounds", maxRounds)
}

// playStage fabricates a result per open match: the stronger synthetic
// skill wins. Byes resolved themselves and need no result.
func (r *Runner) playStage(sess *schedule.SessionSnapshot) []model.MatchResult {
	if sess.Tournament == nil || sess.Stage < 1 || sess.Stage > len(sess.Tournament.Stages) {
		return nil
	}
	stage := sess.Tournament.Stages[sess.Stage-1]

	var out []model.MatchResult
	for _, m := range stage.Matches {
		if m.Completed || m.Athlete2 == nil {
			continue
		}
		winner, loser := m.Athlete1, m.Athlete2
		if Skill(loser.ID) > Skill(winner.ID) {
			winner, loser = loser, winner
		}
		out = append(out, model.MatchResult{
			MatchID:     m.ID,
			WinnerID:    winner.ID,
			LoserID:     loser.ID,
			WinnerScore: Skill(winner.ID),
			LoserScore:  Skill(loser.ID),
		})
	}
	return out
}

// versusSession locates the versus session inside a schedule snapshot.
func versusSession(snap *schedule.Snapshot) (*schedule.SessionSnapshot, error) {
	for d := range snap.Days {
		for s := range snap.Days[d].Sessions {
			if snap.Days[d].Sessions[s].Mode == mode.Versus {
				return &snap.Days[d].Sessions[s], nil
			}
		}
	}
	return nil, fmt.Errorf("no versus session in schedule %s", snap.ScheduleID)
}
