// Package bus provides the in-memory domain-event sink. Publishing is
// non-blocking and best-effort: a subscriber that cannot keep up loses
// events instead of stalling schedule mutations.
package bus

import (
	"context"
	"sync"

	"github.com/okian/compsched/internal/app"
	"github.com/okian/compsched/pkg/logger"
	"github.com/okian/compsched/pkg/metrics"
)

// Default bus configuration constants.
const (
	defaultBufferSize = 1024
)

// MemoryBus implements app.EventPublisher with channel fan-out.
type MemoryBus struct {
	mu         sync.RWMutex
	subs       []chan app.Event
	bufferSize int
	closed     bool
	logger     logger.Logger
}

// Option applies a configuration option to the MemoryBus.
type Option func(*MemoryBus)

// WithBufferSize sets the per-subscriber channel buffer.
func WithBufferSize(n int) Option {
	return func(b *MemoryBus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithLogger sets a custom logger for the bus.
func WithLogger(l logger.Logger) Option {
	return func(b *MemoryBus) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a bus with configuration options.
func New(opts ...Option) *MemoryBus {
	b := &MemoryBus{
		bufferSize: defaultBufferSize,
		logger:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a consumer. The returned channel closes with the bus.
func (b *MemoryBus) Subscribe() <-chan app.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan app.Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish fans the event out to every subscriber without blocking. A full
// subscriber buffer drops the event for that subscriber.
func (b *MemoryBus) Publish(ctx context.Context, evt app.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			metrics.IncEventsDropped()
			b.logger.Warn(ctx, "subscriber buffer full, event dropped",
				logger.String("event_type", evt.Type),
				logger.String("event_id", evt.EventID))
		}
	}
	return nil
}

// Close shuts the bus down; subscriber channels are closed and further
// publishes fail with ErrClosed.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	return nil
}

// IsClosed reports whether the bus has been closed.
func (b *MemoryBus) IsClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}
