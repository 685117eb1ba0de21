// Package repository provides the in-memory schedule store. It implements
// the app.ScheduleRepository port; a persistent implementation would slot in
// behind the same interface.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/okian/compsched/internal/app"
	"github.com/okian/compsched/internal/domain/schedule"
	"github.com/okian/compsched/pkg/logger"
)

// MemoryStore keeps schedule snapshots keyed by event and schedule id.
// Snapshots are deep-copied on the way in and out so callers can never
// mutate stored state through shared slices.
type MemoryStore struct {
	mu     sync.RWMutex
	byKey  map[string]*schedule.Snapshot
	logger logger.Logger
}

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byKey:  make(map[string]*schedule.Snapshot),
		logger: logger.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(eventID, scheduleID string) string {
	return eventID + "/" + scheduleID
}

// Save stores a deep copy of the snapshot, replacing any prior version.
func (s *MemoryStore) Save(ctx context.Context, snap *schedule.Snapshot) error {
	if snap == nil || snap.EventID == "" || snap.ScheduleID == "" {
		return fmt.Errorf("incomplete snapshot: event %q schedule %q", snapEventID(snap), snapScheduleID(snap))
	}
	cp, err := clone(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.byKey[key(snap.EventID, snap.ScheduleID)] = cp
	s.mu.Unlock()

	s.logger.Debug(ctx, "schedule saved",
		logger.String("event_id", snap.EventID),
		logger.String("schedule_id", snap.ScheduleID))
	return nil
}

// FindByID returns the stored snapshot, or an error wrapping app.ErrNotFound.
func (s *MemoryStore) FindByID(_ context.Context, eventID, scheduleID string) (*schedule.Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.byKey[key(eventID, scheduleID)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: schedule %s/%s", app.ErrNotFound, eventID, scheduleID)
	}
	return clone(snap)
}

// FindByEventID returns the event's schedule regardless of visibility.
func (s *MemoryStore) FindByEventID(_ context.Context, eventID string) (*schedule.Snapshot, error) {
	return s.scan(eventID, func(*schedule.Snapshot) bool { return true })
}

// FindPublishedByEventID returns the event's schedule only if published.
func (s *MemoryStore) FindPublishedByEventID(_ context.Context, eventID string) (*schedule.Snapshot, error) {
	return s.scan(eventID, func(snap *schedule.Snapshot) bool { return snap.Published })
}

func (s *MemoryStore) scan(eventID string, match func(*schedule.Snapshot) bool) (*schedule.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, snap := range s.byKey {
		if snap.EventID == eventID && match(snap) {
			return clone(snap)
		}
	}
	return nil, fmt.Errorf("%w: schedule for event %s", app.ErrNotFound, eventID)
}

// Delete removes the stored snapshot.
func (s *MemoryStore) Delete(_ context.Context, eventID, scheduleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(eventID, scheduleID)
	if _, ok := s.byKey[k]; !ok {
		return fmt.Errorf("%w: schedule %s/%s", app.ErrNotFound, eventID, scheduleID)
	}
	delete(s.byKey, k)
	return nil
}

// Count returns the number of stored schedules.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}

// clone deep-copies a snapshot through its JSON form, the same encoding it
// crosses the persistence boundary in.
func clone(snap *schedule.Snapshot) (*schedule.Snapshot, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	var out schedule.Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &out, nil
}

func snapEventID(snap *schedule.Snapshot) string {
	if snap == nil {
		return ""
	}
	return snap.EventID
}

func snapScheduleID(snap *schedule.Snapshot) string {
	if snap == nil {
		return ""
	}
	return snap.ScheduleID
}
