// Package metrics provides Prometheus metrics for the scheduling engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace = "compsched"
)

// Manager owns every Prometheus metric the engine emits.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scheduling metrics
	schedulesGenerated prometheus.Counter
	schedulesPublished prometheus.Counter
	schedulesDeleted   prometheus.Counter
	sessionsScheduled  *prometheus.CounterVec

	// Tournament metrics
	stagesProcessed      prometheus.Counter
	wildcardsPromoted    prometheus.Counter
	tournamentsCompleted prometheus.Counter

	// Boundary metrics
	repositoryLatency *prometheus.HistogramVec
	publishFailures   prometheus.Counter
	eventsDropped     prometheus.Counter
}

// NewManager builds a manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.schedulesGenerated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "schedules_generated_total",
		Help:      "Schedules generated from event data.",
	})
	m.schedulesPublished = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "schedules_published_total",
		Help:      "Schedule publish transitions.",
	})
	m.schedulesDeleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "schedules_deleted_total",
		Help:      "Schedules deleted.",
	})
	m.sessionsScheduled = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sessions_scheduled_total",
		Help:      "Sessions scheduled, labeled by competition mode.",
	}, []string{"mode"})
	m.stagesProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "tournament_stages_processed_total",
		Help:      "Tournament stages whose results were processed.",
	})
	m.wildcardsPromoted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "wildcards_promoted_total",
		Help:      "Losers promoted past elimination by score.",
	})
	m.tournamentsCompleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "tournaments_completed_total",
		Help:      "Tournaments that reached a champion.",
	})
	m.repositoryLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "repository_latency_seconds",
		Help:      "Schedule repository call latency, labeled by operation.",
		Buckets:   m.histogramBuckets,
	}, []string{"op"})
	m.publishFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "event_publish_failures_total",
		Help:      "Best-effort lifecycle notifications that failed to publish.",
	})
	m.eventsDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "events_dropped_total",
		Help:      "Lifecycle notifications dropped by a full subscriber buffer.",
	})

	return m
}

// Global manager instance. Nil until Init; every helper is nil-safe so
// library code can emit unconditionally.
var globalManager *Manager //nolint:gochecknoglobals // intentional singleton

// Init installs the global manager.
func Init(opts ...Option) {
	globalManager = NewManager(opts...)
}

// IncSchedulesGenerated counts a generated schedule.
func IncSchedulesGenerated() {
	if globalManager != nil {
		globalManager.schedulesGenerated.Inc()
	}
}

// IncSchedulesPublished counts a publish transition.
func IncSchedulesPublished() {
	if globalManager != nil {
		globalManager.schedulesPublished.Inc()
	}
}

// IncSchedulesDeleted counts a deleted schedule.
func IncSchedulesDeleted() {
	if globalManager != nil {
		globalManager.schedulesDeleted.Inc()
	}
}

// IncSessionsScheduled counts a scheduled session for a mode.
func IncSessionsScheduled(mode string) {
	if globalManager != nil {
		globalManager.sessionsScheduled.WithLabelValues(mode).Inc()
	}
}

// IncStagesProcessed counts a processed tournament stage.
func IncStagesProcessed() {
	if globalManager != nil {
		globalManager.stagesProcessed.Inc()
	}
}

// AddWildcardsPromoted counts wildcard promotions.
func AddWildcardsPromoted(n int) {
	if globalManager != nil && n > 0 {
		globalManager.wildcardsPromoted.Add(float64(n))
	}
}

// IncTournamentsCompleted counts a finished tournament.
func IncTournamentsCompleted() {
	if globalManager != nil {
		globalManager.tournamentsCompleted.Inc()
	}
}

// ObserveRepositoryLatency records one repository call.
func ObserveRepositoryLatency(op string, d time.Duration) {
	if globalManager != nil {
		globalManager.repositoryLatency.WithLabelValues(op).Observe(d.Seconds())
	}
}

// IncPublishFailures counts a failed best-effort publish.
func IncPublishFailures() {
	if globalManager != nil {
		globalManager.publishFailures.Inc()
	}
}

// IncEventsDropped counts a notification dropped on a full buffer.
func IncEventsDropped() {
	if globalManager != nil {
		globalManager.eventsDropped.Inc()
	}
}
