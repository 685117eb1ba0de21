package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/compsched/internal/app"
	"github.com/okian/compsched/internal/domain/bracket"
	"github.com/okian/compsched/internal/domain/mode"
	"github.com/okian/compsched/internal/domain/model"
	"github.com/okian/compsched/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

type stubEvents struct {
	data *model.EventData
	err  error
}

func (s *stubEvents) EventData(_ context.Context, _ string) (*model.EventData, error) {
	return s.data, s.err
}

type stubScores struct {
	best       map[string]float64
	results    []model.MatchResult
	resultsErr error
}

func (s *stubScores) AthleteScores(_ context.Context, athleteIDs []string, _ string) ([]model.Score, error) {
	out := make([]model.Score, 0, len(athleteIDs))
	for _, id := range athleteIDs {
		out = append(out, model.Score{AthleteID: id, Score: s.best[id], SubmittedAt: time.Now()})
	}
	return out, nil
}

func (s *stubScores) MatchResults(_ context.Context, _, _ string) ([]model.MatchResult, error) {
	return s.results, s.resultsErr
}

type stubRepo struct {
	mu      sync.Mutex
	byID    map[string]*schedule.Snapshot
	saveErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: make(map[string]*schedule.Snapshot)}
}

func (r *stubRepo) Save(_ context.Context, snap *schedule.Snapshot) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[snap.EventID+"/"+snap.ScheduleID] = snap
	return nil
}

func (r *stubRepo) FindByID(_ context.Context, eventID, scheduleID string) (*schedule.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.byID[eventID+"/"+scheduleID]
	if !ok {
		return nil, fmt.Errorf("%w: schedule %s", app.ErrNotFound, scheduleID)
	}
	return snap, nil
}

func (r *stubRepo) FindByEventID(_ context.Context, eventID string) (*schedule.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, snap := range r.byID {
		if snap.EventID == eventID {
			return snap, nil
		}
	}
	return nil, fmt.Errorf("%w: event %s", app.ErrNotFound, eventID)
}

func (r *stubRepo) FindPublishedByEventID(_ context.Context, eventID string) (*schedule.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, snap := range r.byID {
		if snap.EventID == eventID && snap.Published {
			return snap, nil
		}
	}
	return nil, fmt.Errorf("%w: no published schedule for event %s", app.ErrNotFound, eventID)
}

func (r *stubRepo) Delete(_ context.Context, eventID, scheduleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := eventID + "/" + scheduleID
	if _, ok := r.byID[key]; !ok {
		return fmt.Errorf("%w: schedule %s", app.ErrNotFound, scheduleID)
	}
	delete(r.byID, key)
	return nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []app.Event
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, evt app.Event) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *stubPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func athletes(n int) []model.Athlete {
	out := make([]model.Athlete, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Athlete{
			ID:        fmt.Sprintf("a%02d", i),
			FirstName: fmt.Sprintf("First%02d", i),
			LastName:  fmt.Sprintf("Last%02d", i),
		})
	}
	return out
}

func twoDayEvent() *model.EventData {
	return &model.EventData{
		EventID: "event-1",
		Days: []model.Day{
			{ID: "d1", Date: "2026-06-12"},
			{ID: "d2", Date: "2026-06-13"},
		},
		Athletes:   athletes(12),
		Categories: []model.Category{{ID: "c1", Name: "RX"}},
		Wods: []model.Wod{
			{ID: "w1", Name: "Fran", DurationMin: 15},
			{ID: "w2", Name: "Cindy", DurationMin: 20},
		},
	}
}

func decideAll(matches []*bracket.Match) []model.MatchResult {
	out := make([]model.MatchResult, 0, len(matches))
	for _, m := range matches {
		if m.Completed {
			continue
		}
		out = append(out, model.MatchResult{MatchID: m.ID, WinnerID: m.Athlete1.ID, LoserID: m.Athlete2.ID})
	}
	return out
}

func TestGenerateSchedule(t *testing.T) {
	Convey("Given event data with two wods, one category, two days", t, func() {
		repo := newStubRepo()
		pub := &stubPublisher{}
		svc := app.New(&stubEvents{data: twoDayEvent()}, &stubScores{}, repo, pub)
		ctx := context.Background()

		Convey("When generating a heats schedule", func() {
			snap, err := svc.GenerateSchedule(ctx, app.GenerateParams{
				EventID:  "event-1",
				Mode:     mode.Heats,
				Config:   mode.Config{AthletesPerHeat: 4},
				DayStart: "09:00",
			})
			So(err, ShouldBeNil)

			Convey("Then pairings spread evenly across the days", func() {
				So(snap.Days, ShouldHaveLength, 2)
				So(snap.Days[0].Sessions, ShouldHaveLength, 1)
				So(snap.Days[1].Sessions, ShouldHaveLength, 1)
				So(snap.Days[0].Sessions[0].Start.String(), ShouldEqual, "2026-06-12 09:00")
				So(snap.Days[1].Sessions[0].Start.String(), ShouldEqual, "2026-06-13 09:00")
			})

			Convey("Then the snapshot is persisted and announced", func() {
				stored, err := repo.FindByID(ctx, "event-1", snap.ScheduleID)
				So(err, ShouldBeNil)
				So(stored.ScheduleID, ShouldEqual, snap.ScheduleID)
				So(pub.types(), ShouldContain, app.EventScheduleGenerated)
			})

			Convey("When regenerating for the same event", func() {
				again, err := svc.GenerateSchedule(ctx, app.GenerateParams{
					EventID: "event-1",
					Mode:    mode.Heats,
				})
				So(err, ShouldBeNil)

				Convey("Then the schedule identity is preserved", func() {
					So(again.ScheduleID, ShouldEqual, snap.ScheduleID)
				})
			})
		})

		Convey("When the mode is unknown", func() {
			_, err := svc.GenerateSchedule(ctx, app.GenerateParams{EventID: "event-1", Mode: "ladder"})
			So(errors.Is(err, mode.ErrUnknownMode), ShouldBeTrue)
		})

		Convey("When the event data provider fails", func() {
			broken := app.New(&stubEvents{err: errors.New("upstream down")}, &stubScores{}, repo, pub)
			_, err := broken.GenerateSchedule(ctx, app.GenerateParams{EventID: "event-1", Mode: mode.Heats})
			So(errors.Is(err, app.ErrExternal), ShouldBeTrue)
		})

		Convey("When the event has no days", func() {
			empty := app.New(&stubEvents{data: &model.EventData{EventID: "event-1"}}, &stubScores{}, repo, pub)
			_, err := empty.GenerateSchedule(ctx, app.GenerateParams{EventID: "event-1", Mode: mode.Heats})
			So(errors.Is(err, app.ErrPrecondition), ShouldBeTrue)
		})
	})
}

func TestPublishLifecycle(t *testing.T) {
	Convey("Given a generated schedule", t, func() {
		repo := newStubRepo()
		pub := &stubPublisher{}
		svc := app.New(&stubEvents{data: twoDayEvent()}, &stubScores{}, repo, pub)
		ctx := context.Background()

		snap, err := svc.GenerateSchedule(ctx, app.GenerateParams{EventID: "event-1", Mode: mode.Heats})
		So(err, ShouldBeNil)

		Convey("When publishing", func() {
			published, err := svc.PublishSchedule(ctx, "event-1", snap.ScheduleID)
			So(err, ShouldBeNil)
			So(published.Published, ShouldBeTrue)

			Convey("Then the published lookup finds it", func() {
				got, err := svc.GetPublishedSchedule(ctx, "event-1")
				So(err, ShouldBeNil)
				So(got.ScheduleID, ShouldEqual, snap.ScheduleID)
				So(pub.types(), ShouldContain, app.EventSchedulePublished)
			})

			Convey("When unpublishing again", func() {
				hidden, err := svc.UnpublishSchedule(ctx, "event-1", snap.ScheduleID)
				So(err, ShouldBeNil)
				So(hidden.Published, ShouldBeFalse)

				_, err = svc.GetPublishedSchedule(ctx, "event-1")
				So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When publishing an unknown schedule", func() {
			_, err := svc.PublishSchedule(ctx, "event-1", "missing")
			So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the publisher fails", func() {
			pub.err = errors.New("broker gone")
			published, err := svc.PublishSchedule(ctx, "event-1", snap.ScheduleID)

			Convey("Then the mutation still stands", func() {
				So(err, ShouldBeNil)
				So(published.Published, ShouldBeTrue)
			})
		})
	})
}

func TestUpdateSession(t *testing.T) {
	Convey("Given a generated heats schedule", t, func() {
		repo := newStubRepo()
		pub := &stubPublisher{}
		svc := app.New(&stubEvents{data: twoDayEvent()}, &stubScores{}, repo, pub)
		ctx := context.Background()

		snap, err := svc.GenerateSchedule(ctx, app.GenerateParams{
			EventID: "event-1",
			Mode:    mode.Heats,
			Config:  mode.Config{AthletesPerHeat: 4},
		})
		So(err, ShouldBeNil)
		sessionID := snap.Days[0].Sessions[0].ID

		Convey("When moving a session's start", func() {
			start := "2026-06-12 14:00"
			updated, err := svc.UpdateSession(ctx, "event-1", snap.ScheduleID, sessionID, app.SessionUpdate{StartTime: &start})
			So(err, ShouldBeNil)

			Convey("Then times shift and composition survives persistence", func() {
				sess := updated.Days[0].Sessions[0]
				So(sess.Start.String(), ShouldEqual, "2026-06-12 14:00")
				So(sess.Heats, ShouldHaveLength, 3)
				So(sess.Heats[2].AthleteIDs, ShouldResemble, snap.Days[0].Sessions[0].Heats[2].AthleteIDs)
			})
		})

		Convey("When changing only the duration", func() {
			d := 120
			updated, err := svc.UpdateSession(ctx, "event-1", snap.ScheduleID, sessionID, app.SessionUpdate{DurationMin: &d})
			So(err, ShouldBeNil)
			So(updated.Days[0].Sessions[0].DurationMin, ShouldEqual, 120)
		})

		Convey("When the session does not exist", func() {
			d := 120
			_, err := svc.UpdateSession(ctx, "event-1", snap.ScheduleID, "missing", app.SessionUpdate{DurationMin: &d})
			So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the start time is malformed", func() {
			start := "next tuesday"
			_, err := svc.UpdateSession(ctx, "event-1", snap.ScheduleID, sessionID, app.SessionUpdate{StartTime: &start})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDeleteSchedule(t *testing.T) {
	Convey("Given a stored schedule", t, func() {
		repo := newStubRepo()
		pub := &stubPublisher{}
		svc := app.New(&stubEvents{data: twoDayEvent()}, &stubScores{}, repo, pub)
		ctx := context.Background()

		snap, err := svc.GenerateSchedule(ctx, app.GenerateParams{EventID: "event-1", Mode: mode.Simultaneous})
		So(err, ShouldBeNil)

		Convey("When deleting it", func() {
			So(svc.DeleteSchedule(ctx, "event-1", snap.ScheduleID), ShouldBeNil)

			Convey("Then it is gone and the deletion announced", func() {
				_, err := svc.GetSchedule(ctx, "event-1", snap.ScheduleID)
				So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
				So(pub.types(), ShouldContain, app.EventScheduleDeleted)
			})
		})

		Convey("When deleting an unknown schedule", func() {
			err := svc.DeleteSchedule(ctx, "event-1", "missing")
			So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestTournamentFlow(t *testing.T) {
	Convey("Given a versus schedule with one wod, one category, one day", t, func() {
		data := &model.EventData{
			EventID:    "event-1",
			Days:       []model.Day{{ID: "d1", Date: "2026-06-12"}},
			Athletes:   athletes(12),
			Categories: []model.Category{{ID: "c1", Name: "RX"}},
			Wods:       []model.Wod{{ID: "w1", Name: "Fran", DurationMin: 10}},
		}
		repo := newStubRepo()
		pub := &stubPublisher{}
		scores := &stubScores{best: map[string]float64{"a12": 60, "a10": 50, "a08": 40}}
		svc := app.New(&stubEvents{data: data}, scores, repo, pub)
		ctx := context.Background()

		snap, err := svc.GenerateSchedule(ctx, app.GenerateParams{EventID: "event-1", Mode: mode.Versus})
		So(err, ShouldBeNil)
		versusSnap := snap.Days[0].Sessions[0]
		So(versusSnap.Tournament, ShouldNotBeNil)
		So(versusSnap.MatchIDs, ShouldHaveLength, 6)

		stage1 := versusSnap.Tournament.Stages[0]
		results := make([]model.MatchResult, 0, len(stage1.Matches))
		for _, m := range stage1.Matches {
			results = append(results, model.MatchResult{MatchID: m.ID, WinnerID: m.Athlete1.ID, LoserID: m.Athlete2.ID})
		}

		Convey("When processing a complete round of results", func() {
			scores.results = results
			progress, err := svc.ProcessTournamentResults(ctx, "event-1", snap.ScheduleID, "stage-1")
			So(err, ShouldBeNil)

			Convey("Then winners and score-ranked wildcards advance", func() {
				So(progress.Stage.StageComplete, ShouldBeTrue)
				So(progress.Stage.Winners, ShouldHaveLength, 6)
				So(progress.Stage.Wildcards, ShouldHaveLength, 3)
				So(progress.Stage.Wildcards[0].ID, ShouldEqual, "a12")
				So(progress.Bracket.CurrentStage, ShouldEqual, 1)
				So(pub.types(), ShouldContain, app.EventTournamentProgressed)
			})

			Convey("Then the advanced bracket is persisted", func() {
				stored, err := svc.GetSchedule(ctx, "event-1", snap.ScheduleID)
				So(err, ShouldBeNil)
				So(stored.Days[0].Sessions[0].Tournament.Current, ShouldEqual, 1)
			})

			Convey("When generating the next stage", func() {
				next, err := svc.GenerateNextTournamentStage(ctx, "event-1", snap.ScheduleID, "2026-06-12 12:00")
				So(err, ShouldBeNil)

				sess := next.Days[0].Sessions[0]
				So(sess.Stage, ShouldEqual, 2)
				So(sess.MatchIDs, ShouldHaveLength, 5)
				So(sess.Start.String(), ShouldEqual, "2026-06-12 12:00")
				So(pub.types(), ShouldContain, app.EventStageGenerated)
			})

			Convey("When asking for the bracket projection", func() {
				summary, err := svc.GetTournamentBracket(ctx, "event-1", snap.ScheduleID)
				So(err, ShouldBeNil)
				So(summary.TotalAthletes, ShouldEqual, 12)
				So(summary.Stages[0].Complete, ShouldBeTrue)
				So(summary.Complete, ShouldBeFalse)
			})
		})

		Convey("When a round completes but the next stage is not yet paired", func() {
			scores.results = results
			_, err := svc.ProcessTournamentResults(ctx, "event-1", snap.ScheduleID, "stage-1")
			So(err, ShouldBeNil)

			_, err = svc.ProcessTournamentResults(ctx, "event-1", snap.ScheduleID, "stage-1")
			So(errors.Is(err, app.ErrPrecondition), ShouldBeTrue)
		})

		Convey("When the provider reports a winner who was not in the match", func() {
			scores.results = []model.MatchResult{{
				MatchID:  results[0].MatchID,
				WinnerID: "intruder",
				LoserID:  results[0].LoserID,
			}}
			_, err := svc.ProcessTournamentResults(ctx, "event-1", snap.ScheduleID, "stage-1")

			Convey("Then the round is refused as a precondition failure", func() {
				So(errors.Is(err, app.ErrPrecondition), ShouldBeTrue)
			})

			Convey("Then the stored bracket is untouched", func() {
				stored, err := svc.GetSchedule(ctx, "event-1", snap.ScheduleID)
				So(err, ShouldBeNil)
				So(stored.Days[0].Sessions[0].Tournament.Current, ShouldEqual, 0)
			})
		})

		Convey("When the score provider has no results yet", func() {
			scores.results = nil
			_, err := svc.ProcessTournamentResults(ctx, "event-1", snap.ScheduleID, "stage-1")
			So(errors.Is(err, app.ErrPrecondition), ShouldBeTrue)
		})

		Convey("When the score provider fails", func() {
			scores.resultsErr = errors.New("scores api down")
			_, err := svc.ProcessTournamentResults(ctx, "event-1", snap.ScheduleID, "stage-1")
			So(errors.Is(err, app.ErrExternal), ShouldBeTrue)
		})

		Convey("When asking for a next stage before any results", func() {
			_, err := svc.GenerateNextTournamentStage(ctx, "event-1", snap.ScheduleID, "2026-06-12 12:00")
			So(errors.Is(err, app.ErrPrecondition), ShouldBeTrue)
		})
	})

	Convey("Given a schedule without a versus session", t, func() {
		repo := newStubRepo()
		svc := app.New(&stubEvents{data: twoDayEvent()}, &stubScores{}, repo, &stubPublisher{})
		ctx := context.Background()

		snap, err := svc.GenerateSchedule(ctx, app.GenerateParams{EventID: "event-1", Mode: mode.Heats})
		So(err, ShouldBeNil)

		Convey("When processing tournament results", func() {
			_, err := svc.ProcessTournamentResults(ctx, "event-1", snap.ScheduleID, "stage-1")
			So(errors.Is(err, app.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestTournamentRunsToChampion(t *testing.T) {
	Convey("Given a versus schedule of eight athletes", t, func() {
		data := &model.EventData{
			EventID:    "event-1",
			Days:       []model.Day{{ID: "d1", Date: "2026-06-12"}},
			Athletes:   athletes(8),
			Categories: []model.Category{{ID: "c1", Name: "RX"}},
			Wods:       []model.Wod{{ID: "w1", Name: "Fran", DurationMin: 10}},
		}
		repo := newStubRepo()
		pub := &stubPublisher{}
		scores := &stubScores{}
		svc := app.New(&stubEvents{data: data}, scores, repo, pub)
		ctx := context.Background()

		snap, err := svc.GenerateSchedule(ctx, app.GenerateParams{EventID: "event-1", Mode: mode.Versus})
		So(err, ShouldBeNil)

		Convey("When every round is played through the service", func() {
			var progress *app.TournamentProgress
			round := 0
			for {
				round++
				stored, err := svc.GetSchedule(ctx, "event-1", snap.ScheduleID)
				So(err, ShouldBeNil)
				sess := stored.Days[0].Sessions[0]

				restored, err := bracket.FromSnapshot(*sess.Tournament)
				So(err, ShouldBeNil)
				scores.results = decideAll(restored.Stages[sess.Stage-1].Matches)

				progress, err = svc.ProcessTournamentResults(ctx, "event-1", snap.ScheduleID, fmt.Sprintf("round-%d", round))
				So(err, ShouldBeNil)
				if progress.Stage.TournamentComplete {
					break
				}
				_, err = svc.GenerateNextTournamentStage(ctx, "event-1", snap.ScheduleID, "2026-06-13 10:00")
				So(err, ShouldBeNil)
			}

			Convey("Then the bracket completes with the first seed as champion", func() {
				So(round, ShouldEqual, 3)
				So(progress.Bracket.Complete, ShouldBeTrue)
				So(progress.Bracket.Champion, ShouldNotBeNil)
				So(progress.Bracket.Champion.ID, ShouldEqual, "a01")
			})

			Convey("Then further processing is a precondition failure", func() {
				scores.results = []model.MatchResult{{MatchID: "m", WinnerID: "a01", LoserID: "a02"}}
				_, err := svc.ProcessTournamentResults(ctx, "event-1", snap.ScheduleID, "again")
				So(errors.Is(err, app.ErrPrecondition), ShouldBeTrue)
			})
		})
	})
}
