// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Layer file and env on top via Load.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the metrics/health listen address, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// DayStart is the wall-clock start of each competition day, "15:04".
	DayStart string `koanf:"day_start"`

	// WodDurationMin is the default per-workout duration in minutes, used
	// when a workout carries none of its own.
	WodDurationMin int `koanf:"wod_duration_min"`

	// AthletesPerHeat sizes heats in heats mode.
	AthletesPerHeat int `koanf:"athletes_per_heat"`

	// ConcurrentMatches bounds versus-mode parallelism.
	ConcurrentMatches int `koanf:"concurrent_matches"`

	// AdvancementRatio is the share of a large field advancing an
	// elimination round. Historical tuning value; only monotonic
	// convergence depends on it.
	AdvancementRatio float64 `koanf:"advancement_ratio"`

	// DirectEliminationMax is the field size at or below which a round
	// advances half the field with no wildcards.
	DirectEliminationMax int `koanf:"direct_elimination_max"`

	// EventBufferSize bounds each notification subscriber's buffer.
	EventBufferSize int `koanf:"event_buffer_size"`

	// SimAthletes and SimDays size the built-in simulation run.
	SimAthletes int `koanf:"sim_athletes"`
	SimDays     int `koanf:"sim_days"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		MetricsAddr:          ":9090",
		DayStart:             "09:00",
		WodDurationMin:       20,
		AthletesPerHeat:      8,
		ConcurrentMatches:    1,
		AdvancementRatio:     0.67,
		DirectEliminationMax: 8,
		EventBufferSize:      1024,
		SimAthletes:          12,
		SimDays:              2,
	}
}
