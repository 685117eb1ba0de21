package mode_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/compsched/internal/domain/bracket"
	"github.com/okian/compsched/internal/domain/mode"
	"github.com/okian/compsched/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// fixedScores serves a fixed best score per athlete, zero for the rest.
type fixedScores map[string]float64

func (f fixedScores) AthleteScores(_ context.Context, athleteIDs []string, _ string) ([]model.Score, error) {
	out := make([]model.Score, 0, len(athleteIDs))
	for _, id := range athleteIDs {
		out = append(out, model.Score{AthleteID: id, Score: f[id], SubmittedAt: time.Now()})
	}
	return out, nil
}

// firstWins completes every open match in favor of its first athlete.
func firstWins(matches []*bracket.Match) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(matches))
	for _, m := range matches {
		if m.Completed {
			continue
		}
		out = append(out, model.MatchResult{
			MatchID:     m.ID,
			WinnerID:    m.Athlete1.ID,
			LoserID:     m.Athlete2.ID,
			WinnerScore: 100,
			LoserScore:  90,
		})
	}
	return out
}

func newVersus(t *testing.T, cfg mode.Config) *mode.VersusStrategy {
	t.Helper()
	s, err := mode.New(mode.Versus, cfg)
	if err != nil {
		t.Fatalf("new versus strategy: %v", err)
	}
	return s.(*mode.VersusStrategy)
}

func TestVersusSchedule(t *testing.T) {
	Convey("Given 12 athletes, a 10 minute wod, and 2 concurrent matches", t, func() {
		strategy := newVersus(t, mode.Config{WodDurationMin: 10, ConcurrentMatches: 2})
		start := mustSlot(t, "2026-06-12 10:00")

		Convey("When scheduling the opening stage", func() {
			res, err := strategy.Schedule(athletes(12), start)
			So(err, ShouldBeNil)

			Convey("Then six matches fill three slots of two", func() {
				So(res.Matches, ShouldHaveLength, 6)
				So(res.DurationMin, ShouldEqual, 30)
				So(res.Stage, ShouldEqual, 1)
				So(res.Tournament, ShouldNotBeNil)

				So(res.Matches[0].Athlete1.ID, ShouldEqual, "a01")
				So(res.Matches[0].Athlete2.ID, ShouldEqual, "a02")
			})

			Convey("Then each athlete has a match-bound assignment", func() {
				So(res.Assignments, ShouldHaveLength, 12)
				So(res.Assignments[0].MatchID, ShouldEqual, res.Matches[0].ID)
				So(res.Assignments[0].OpponentID, ShouldEqual, "a02")
				So(res.Assignments[1].OpponentID, ShouldEqual, "a01")

				So(res.Assignments[0].Start.String(), ShouldEqual, "2026-06-12 10:00")
				So(res.Assignments[4].Start.String(), ShouldEqual, "2026-06-12 10:10")
				So(res.Assignments[10].Start.String(), ShouldEqual, "2026-06-12 10:20")
			})
		})

		Convey("When rescheduling the stage", func() {
			res, err := strategy.Schedule(athletes(12), start)
			So(err, ShouldBeNil)
			moved, err := strategy.Reschedule(res, mustSlot(t, "2026-06-12 13:00"))
			So(err, ShouldBeNil)

			Convey("Then pairings hold and slots shift together", func() {
				So(moved.Matches[0], ShouldEqual, res.Matches[0])
				So(moved.Assignments[0].Start.String(), ShouldEqual, "2026-06-12 13:00")
				So(moved.Assignments[4].Start.String(), ShouldEqual, "2026-06-12 13:10")
				So(moved.Assignments[10].Start.String(), ShouldEqual, "2026-06-12 13:20")
			})
		})
	})
}

func TestVersusProgression(t *testing.T) {
	Convey("Given an opening stage of 12", t, func() {
		strategy := newVersus(t, mode.Config{WodDurationMin: 10})
		start := mustSlot(t, "2026-06-12 10:00")
		res, err := strategy.Schedule(athletes(12), start)
		So(err, ShouldBeNil)

		Convey("When the round completes and results are processed", func() {
			scores := fixedScores{"a12": 60, "a10": 50, "a08": 40}
			stageResult, err := strategy.ProcessResults(context.Background(), res, firstWins(res.Matches), scores, "round-1")
			So(err, ShouldBeNil)

			Convey("Then winners and wildcards advance together", func() {
				So(stageResult.StageComplete, ShouldBeTrue)
				So(stageResult.Winners, ShouldHaveLength, 6)
				So(stageResult.Wildcards, ShouldHaveLength, 3)
				So(stageResult.Wildcards[0].ID, ShouldEqual, "a12")
				So(stageResult.NextStage, ShouldNotBeNil)
				So(stageResult.NextStage.From, ShouldEqual, 9)
			})

			Convey("Then the next stage schedules the advancing nine", func() {
				next, err := strategy.NextStageSchedule(res, mustSlot(t, "2026-06-12 11:00"))
				So(err, ShouldBeNil)
				So(next.Stage, ShouldEqual, 2)
				So(next.Matches, ShouldHaveLength, 5)
				So(next.Tournament, ShouldEqual, res.Tournament)

				Convey("And the odd athlete out gets a completed bye", func() {
					last := next.Matches[4]
					So(last.Athlete2, ShouldBeNil)
					So(last.Completed, ShouldBeTrue)
					So(last.WinnerID, ShouldEqual, last.Athlete1.ID)
				})
			})
		})

		Convey("When asking for a next stage before the opening round is played", func() {
			_, err := strategy.NextStageSchedule(res, start)
			So(errors.Is(err, mode.ErrNoNextStage), ShouldBeTrue)
		})

		Convey("When processing a result with no tournament attached", func() {
			_, err := strategy.ProcessResults(context.Background(), &mode.Result{}, nil, fixedScores{}, "round-1")
			So(errors.Is(err, mode.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestVersusRunsToChampion(t *testing.T) {
	Convey("Given an 8-athlete bracket played to the end", t, func() {
		strategy := newVersus(t, mode.Config{WodDurationMin: 10})
		start := mustSlot(t, "2026-06-12 10:00")
		res, err := strategy.Schedule(athletes(8), start)
		So(err, ShouldBeNil)

		var last *bracket.StageResult
		for {
			last, err = strategy.ProcessResults(context.Background(), res, firstWins(res.Matches), fixedScores{}, "round")
			So(err, ShouldBeNil)
			if last.TournamentComplete {
				break
			}
			res, err = strategy.NextStageSchedule(res, res.Start.Add(res.DurationMin))
			So(err, ShouldBeNil)
		}

		Convey("Then the first seed takes the title", func() {
			So(res.Tournament.IsComplete(), ShouldBeTrue)
			So(res.Tournament.Champion().ID, ShouldEqual, "a01")
		})

		Convey("Then a finished bracket refuses another stage", func() {
			_, err := strategy.NextStageSchedule(res, start)
			So(errors.Is(err, bracket.ErrTournamentComplete), ShouldBeTrue)
		})
	})
}
