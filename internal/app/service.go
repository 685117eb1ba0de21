// Package app provides the schedule orchestration service: it coordinates
// the external collaborators, drives schedule construction, and advances
// tournaments as results arrive.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/compsched/internal/domain/bracket"
	"github.com/okian/compsched/internal/domain/mode"
	"github.com/okian/compsched/internal/domain/model"
	"github.com/okian/compsched/internal/domain/schedule"
	"github.com/okian/compsched/internal/domain/timeslot"
	"github.com/okian/compsched/pkg/logger"
	"github.com/okian/compsched/pkg/metrics"
)

// Service orchestrates the schedule lifecycle over the four collaborator
// ports. The computation core underneath it is pure; every suspension point
// lives behind one of these interfaces.
type Service struct {
	events    EventDataProvider
	scores    ScoreProvider
	repo      ScheduleRepository
	publisher EventPublisher
	logger    logger.Logger
	clock     func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the notification timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// New constructs the orchestration service over its collaborator ports.
func New(events EventDataProvider, scores ScoreProvider, repo ScheduleRepository, publisher EventPublisher, opts ...Option) *Service {
	s := &Service{
		events:    events,
		scores:    scores,
		repo:      repo,
		publisher: publisher,
		logger:    logger.Noop(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateParams configures schedule generation.
type GenerateParams struct {
	EventID string
	// Mode selects the competition format applied to every workout/category
	// pairing.
	Mode mode.Mode
	// Config carries per-session sizing; a zero WodDurationMin falls back to
	// each workout's own duration.
	Config mode.Config
	// DayStart is the wall-clock start of each competition day, "15:04".
	DayStart string
}

// GenerateSchedule builds a schedule from event data, persists it, and
// announces it. An existing schedule for the event keeps its identity so the
// stored snapshot is replaced, not duplicated.
func (s *Service) GenerateSchedule(ctx context.Context, p GenerateParams) (*schedule.Snapshot, error) {
	if _, err := mode.Parse(string(p.Mode)); err != nil {
		return nil, err
	}
	dayStart := p.DayStart
	if dayStart == "" {
		dayStart = "09:00"
	}

	// Event data and any prior schedule are independent lookups.
	var (
		data  *model.EventData
		prior *schedule.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.events.EventData(gctx, p.EventID)
		if err != nil {
			return fmt.Errorf("%w: event data: %v", ErrExternal, err)
		}
		data = d
		return nil
	})
	g.Go(func() error {
		snap, err := s.findByEvent(gctx, p.EventID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		prior = snap
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(data.Days) == 0 {
		return nil, fmt.Errorf("%w: event %s has no days", ErrPrecondition, p.EventID)
	}

	sched := schedule.New(p.EventID)
	if prior != nil {
		sched.ID = prior.ScheduleID
	}
	if err := s.buildDays(sched, data, p, dayStart); err != nil {
		return nil, err
	}

	snap := sched.Snapshot()
	if err := s.persist(ctx, snap); err != nil {
		return nil, err
	}
	metrics.IncSchedulesGenerated()
	s.notify(ctx, EventScheduleGenerated, snap, map[string]any{
		"days":     len(snap.Days),
		"sessions": sessionCount(snap),
	})
	return snap, nil
}

// buildDays places one session per workout/category pairing, spreading the
// pairings evenly across days and chaining start times within each day.
func (s *Service) buildDays(sched *schedule.Schedule, data *model.EventData, p GenerateParams, dayStart string) error {
	type pairing struct {
		wod int
		cat int
	}
	var pairings []pairing
	for w := range data.Wods {
		for c := range data.Categories {
			pairings = append(pairings, pairing{wod: w, cat: c})
		}
	}
	if len(pairings) == 0 {
		return fmt.Errorf("%w: event %s has no workouts or categories", ErrPrecondition, sched.EventID)
	}

	perDay := (len(pairings) + len(data.Days) - 1) / len(data.Days)
	for i, d := range data.Days {
		day := sched.AddDay(d)
		cursor, err := timeslot.Parse(d.Date + " " + dayStart)
		if err != nil {
			return err
		}
		lo := min(i*perDay, len(pairings))
		hi := min(lo+perDay, len(pairings))
		for _, pr := range pairings[lo:hi:hi] {
			sess := schedule.NewSession(data.Wods[pr.wod], data.Categories[pr.cat], p.Mode, p.Config)
			if err := sess.ScheduleAthletes(data.Athletes, cursor); err != nil {
				return err
			}
			day.Sessions = append(day.Sessions, sess)
			cursor = cursor.Add(sess.DurationMin())
			metrics.IncSessionsScheduled(string(p.Mode))
		}
	}
	return nil
}

// GetSchedule loads a stored schedule snapshot.
func (s *Service) GetSchedule(ctx context.Context, eventID, scheduleID string) (*schedule.Snapshot, error) {
	return s.findByID(ctx, eventID, scheduleID)
}

// GetPublishedSchedule loads the published schedule for an event.
func (s *Service) GetPublishedSchedule(ctx context.Context, eventID string) (*schedule.Snapshot, error) {
	start := time.Now()
	snap, err := s.repo.FindPublishedByEventID(ctx, eventID)
	metrics.ObserveRepositoryLatency("find_published", time.Since(start))
	if err != nil {
		return nil, s.repoErr("find published schedule", err)
	}
	return snap, nil
}

// PublishSchedule makes the schedule visible. Idempotent given the same
// target state.
func (s *Service) PublishSchedule(ctx context.Context, eventID, scheduleID string) (*schedule.Snapshot, error) {
	return s.setPublished(ctx, eventID, scheduleID, true)
}

// UnpublishSchedule hides the schedule. Idempotent given the same target
// state.
func (s *Service) UnpublishSchedule(ctx context.Context, eventID, scheduleID string) (*schedule.Snapshot, error) {
	return s.setPublished(ctx, eventID, scheduleID, false)
}

func (s *Service) setPublished(ctx context.Context, eventID, scheduleID string, published bool) (*schedule.Snapshot, error) {
	sched, err := s.load(ctx, eventID, scheduleID)
	if err != nil {
		return nil, err
	}
	if published {
		sched.Publish()
	} else {
		sched.Unpublish()
	}

	snap := sched.Snapshot()
	if err := s.persist(ctx, snap); err != nil {
		return nil, err
	}
	evt := EventScheduleUnpublished
	if published {
		evt = EventSchedulePublished
		metrics.IncSchedulesPublished()
	}
	s.notify(ctx, evt, snap, nil)
	return snap, nil
}

// SessionUpdate is a partial session mutation carried by UpdateSession.
type SessionUpdate struct {
	StartTime   *string
	DurationMin *int
}

// UpdateSession applies a composition-preserving update to one session: a
// start change shifts every athlete time through the session's mode, a
// duration change is stored as given.
func (s *Service) UpdateSession(ctx context.Context, eventID, scheduleID, sessionID string, upd SessionUpdate) (*schedule.Snapshot, error) {
	sched, err := s.load(ctx, eventID, scheduleID)
	if err != nil {
		return nil, err
	}
	sess, err := sched.Session(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var domainUpd schedule.Update
	if upd.StartTime != nil {
		slot, err := timeslot.Parse(*upd.StartTime)
		if err != nil {
			return nil, err
		}
		domainUpd.Start = &slot
	}
	domainUpd.DurationMin = upd.DurationMin
	if err := sess.Update(domainUpd); err != nil {
		return nil, err
	}

	snap := sched.Snapshot()
	if err := s.persist(ctx, snap); err != nil {
		return nil, err
	}
	s.notify(ctx, EventScheduleUpdated, snap, map[string]any{"session_id": sessionID})
	return snap, nil
}

// DeleteSchedule removes the stored schedule and announces the deletion.
func (s *Service) DeleteSchedule(ctx context.Context, eventID, scheduleID string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, eventID, scheduleID)
	metrics.ObserveRepositoryLatency("delete", time.Since(start))
	if err != nil {
		return s.repoErr("delete schedule", err)
	}
	metrics.IncSchedulesDeleted()
	s.notify(ctx, EventScheduleDeleted, &schedule.Snapshot{EventID: eventID, ScheduleID: scheduleID}, nil)
	return nil
}

// TournamentProgress reports one round of result processing.
type TournamentProgress struct {
	Stage    *bracket.StageResult
	Bracket  bracket.BracketSummary
	Snapshot *schedule.Snapshot
}

// ProcessTournamentResults feeds the score provider's match results into the
// schedule's versus session, persists the advanced bracket, and announces
// the progression (champion included once complete).
func (s *Service) ProcessTournamentResults(ctx context.Context, eventID, scheduleID, filterID string) (*TournamentProgress, error) {
	sched, err := s.load(ctx, eventID, scheduleID)
	if err != nil {
		return nil, err
	}
	sess, err := sched.VersusSession()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	results, err := s.scores.MatchResults(ctx, eventID, filterID)
	if err != nil {
		return nil, fmt.Errorf("%w: match results: %v", ErrExternal, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no match results for filter %s", ErrPrecondition, filterID)
	}

	versus, err := versusStrategy(sess)
	if err != nil {
		return nil, err
	}
	stageResult, err := versus.ProcessResults(ctx, sess.Result, results, s.scores, filterID)
	if err != nil {
		return nil, mapBracketErr(err)
	}

	snap := sched.Snapshot()
	if err := s.persist(ctx, snap); err != nil {
		return nil, err
	}
	metrics.IncStagesProcessed()
	metrics.AddWildcardsPromoted(len(stageResult.Wildcards))

	payload := map[string]any{
		"stage":          stageResult.StageName,
		"stage_complete": stageResult.StageComplete,
		"complete":       stageResult.TournamentComplete,
	}
	if stageResult.TournamentComplete {
		metrics.IncTournamentsCompleted()
		if champ := sess.Result.Tournament.Champion(); champ != nil {
			payload["champion"] = champ.FullName()
			payload["champion_id"] = champ.ID
		}
	}
	s.notify(ctx, EventTournamentProgressed, snap, payload)

	return &TournamentProgress{
		Stage:    stageResult,
		Bracket:  sess.Result.Tournament.Bracket(),
		Snapshot: snap,
	}, nil
}

// GenerateNextTournamentStage schedules the advancing roster into the next
// round at the given start time, persists, and announces the new stage.
func (s *Service) GenerateNextTournamentStage(ctx context.Context, eventID, scheduleID, startTime string) (*schedule.Snapshot, error) {
	slot, err := timeslot.Parse(startTime)
	if err != nil {
		return nil, err
	}
	sched, err := s.load(ctx, eventID, scheduleID)
	if err != nil {
		return nil, err
	}
	sess, err := sched.VersusSession()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	versus, err := versusStrategy(sess)
	if err != nil {
		return nil, err
	}
	res, err := versus.NextStageSchedule(sess.Result, slot)
	if err != nil {
		return nil, mapBracketErr(err)
	}
	sess.Result = res

	snap := sched.Snapshot()
	if err := s.persist(ctx, snap); err != nil {
		return nil, err
	}
	metrics.IncSessionsScheduled(string(mode.Versus))
	s.notify(ctx, EventStageGenerated, snap, map[string]any{
		"stage":   res.Stage,
		"matches": len(res.Matches),
	})
	return snap, nil
}

// GetTournamentBracket projects the bracket of the schedule's versus session.
func (s *Service) GetTournamentBracket(ctx context.Context, eventID, scheduleID string) (*bracket.BracketSummary, error) {
	sched, err := s.load(ctx, eventID, scheduleID)
	if err != nil {
		return nil, err
	}
	sess, err := sched.VersusSession()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if sess.Result == nil || sess.Result.Tournament == nil {
		return nil, fmt.Errorf("%w: versus session not scheduled", ErrPrecondition)
	}
	summary := sess.Result.Tournament.Bracket()
	return &summary, nil
}

func versusStrategy(sess *schedule.Session) (*mode.VersusStrategy, error) {
	strat, err := mode.New(mode.Versus, sess.Config)
	if err != nil {
		return nil, err
	}
	return strat.(*mode.VersusStrategy), nil
}

// mapBracketErr converts bracket state conflicts into precondition failures.
func mapBracketErr(err error) error {
	switch {
	case errors.Is(err, bracket.ErrNoResults),
		errors.Is(err, bracket.ErrTournamentComplete),
		errors.Is(err, bracket.ErrStageIncomplete),
		errors.Is(err, bracket.ErrStageState),
		errors.Is(err, bracket.ErrResultMismatch),
		errors.Is(err, mode.ErrNoNextStage):
		return fmt.Errorf("%w: %v", ErrPrecondition, err)
	}
	return err
}

func (s *Service) load(ctx context.Context, eventID, scheduleID string) (*schedule.Schedule, error) {
	snap, err := s.findByID(ctx, eventID, scheduleID)
	if err != nil {
		return nil, err
	}
	return schedule.Restore(snap)
}

func (s *Service) findByID(ctx context.Context, eventID, scheduleID string) (*schedule.Snapshot, error) {
	start := time.Now()
	snap, err := s.repo.FindByID(ctx, eventID, scheduleID)
	metrics.ObserveRepositoryLatency("find", time.Since(start))
	if err != nil {
		return nil, s.repoErr("find schedule", err)
	}
	return snap, nil
}

func (s *Service) findByEvent(ctx context.Context, eventID string) (*schedule.Snapshot, error) {
	start := time.Now()
	snap, err := s.repo.FindByEventID(ctx, eventID)
	metrics.ObserveRepositoryLatency("find_by_event", time.Since(start))
	if err != nil {
		return nil, s.repoErr("find schedule by event", err)
	}
	return snap, nil
}

func (s *Service) persist(ctx context.Context, snap *schedule.Snapshot) error {
	start := time.Now()
	err := s.repo.Save(ctx, snap)
	metrics.ObserveRepositoryLatency("save", time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: save schedule: %v", ErrExternal, err)
	}
	return nil
}

// repoErr keeps not-found distinct from infrastructure failure.
func (s *Service) repoErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrExternal, op, err)
}

// notify publishes a lifecycle notification. Best-effort: a failure is
// logged and counted, never surfaced, so the persisted mutation stands.
func (s *Service) notify(ctx context.Context, eventType string, snap *schedule.Snapshot, payload map[string]any) {
	evt := Event{
		Type:       eventType,
		EventID:    snap.EventID,
		ScheduleID: snap.ScheduleID,
		Payload:    payload,
		Timestamp:  s.clock(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		metrics.IncPublishFailures()
		s.logger.Warn(ctx, "lifecycle notification failed",
			logger.String("event_type", eventType),
			logger.String("event_id", snap.EventID),
			logger.Error(err))
	}
}

func sessionCount(snap *schedule.Snapshot) int {
	n := 0
	for _, d := range snap.Days {
		n += len(d.Sessions)
	}
	return n
}
