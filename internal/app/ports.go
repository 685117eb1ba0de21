package app

import (
	"context"
	"time"

	"github.com/okian/compsched/internal/domain/model"
	"github.com/okian/compsched/internal/domain/schedule"
)

// EventDataProvider returns the event's days, athletes, categories, and
// workouts.
type EventDataProvider interface {
	EventData(ctx context.Context, eventID string) (*model.EventData, error)
}

// ScoreProvider returns per-athlete and per-match results for a scoring
// filter. AthleteScores must report a zero score for athletes with no
// submission rather than failing, so score-absent athletes are the first
// eliminated instead of aborting wildcard selection.
type ScoreProvider interface {
	AthleteScores(ctx context.Context, athleteIDs []string, filterID string) ([]model.Score, error)
	MatchResults(ctx context.Context, eventID, filterID string) ([]model.MatchResult, error)
}

// ScheduleRepository persists and loads schedule snapshots. Lookups for
// absent schedules must return an error wrapping ErrNotFound.
type ScheduleRepository interface {
	Save(ctx context.Context, snap *schedule.Snapshot) error
	FindByID(ctx context.Context, eventID, scheduleID string) (*schedule.Snapshot, error)
	FindByEventID(ctx context.Context, eventID string) (*schedule.Snapshot, error)
	FindPublishedByEventID(ctx context.Context, eventID string) (*schedule.Snapshot, error)
	Delete(ctx context.Context, eventID, scheduleID string) error
}

// Lifecycle notification types emitted by the service.
const (
	EventScheduleGenerated    = "schedule.generated"
	EventSchedulePublished    = "schedule.published"
	EventScheduleUnpublished  = "schedule.unpublished"
	EventScheduleUpdated      = "schedule.updated"
	EventScheduleDeleted      = "schedule.deleted"
	EventTournamentProgressed = "tournament.progressed"
	EventStageGenerated       = "tournament.stage_generated"
)

// Event is a domain lifecycle notification.
type Event struct {
	Type       string         `json:"event_type"`
	EventID    string         `json:"event_id"`
	ScheduleID string         `json:"schedule_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// EventPublisher delivers lifecycle notifications. Publishing is
// best-effort: a failure must never roll back the persisted mutation that
// preceded it.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}
