// Command compsched wires the scheduling engine with in-memory adapters,
// serves metrics and health probes, and runs a synthetic versus tournament
// end to end.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/compsched/internal/adapters/bus"
	"github.com/okian/compsched/internal/adapters/repository"
	"github.com/okian/compsched/internal/app"
	"github.com/okian/compsched/internal/config"
	"github.com/okian/compsched/internal/domain/mode"
	"github.com/okian/compsched/internal/sim"
	"github.com/okian/compsched/pkg/logger"
	"github.com/okian/compsched/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	simSeed           = 20260612
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init()

	// Metrics and health endpoints on the stdlib mux.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "serving metrics", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()

	// In-memory adapters behind the service ports.
	store := repository.NewMemoryStore(repository.WithLogger(log.Named("store")))
	events := bus.New(
		bus.WithBufferSize(cfg.EventBufferSize),
		bus.WithLogger(log.Named("bus")),
	)
	defer events.Close()

	// Drain lifecycle notifications into the log.
	notifications := events.Subscribe()
	go func() {
		for evt := range notifications {
			log.Info(ctx, "lifecycle event",
				logger.String("type", evt.Type),
				logger.String("event_id", evt.EventID),
				logger.Any("payload", evt.Payload))
		}
	}()

	gen := sim.NewGenerator(simSeed)
	data := &sim.StaticEventData{Data: gen.Event(cfg.SimAthletes, cfg.SimDays)}
	scores := sim.NewScriptedScores()

	svc := app.New(data, scores, store, events, app.WithLogger(log.Named("service")))
	runner := sim.NewRunner(svc, scores, data, log.Named("sim"))

	summary, err := runner.Run(ctx, mode.Config{
		WodDurationMin:       cfg.WodDurationMin,
		AthletesPerHeat:      cfg.AthletesPerHeat,
		ConcurrentMatches:    cfg.ConcurrentMatches,
		AdvancementRatio:     cfg.AdvancementRatio,
		DirectEliminationMax: cfg.DirectEliminationMax,
	}, cfg.DayStart)
	if err != nil {
		log.Error(ctx, "simulation failed", logger.Error(err))
		return
	}

	for _, stage := range summary.Stages {
		log.Info(ctx, "bracket stage",
			logger.String("name", stage.Name),
			logger.Int("from", stage.From),
			logger.Int("to", stage.To),
			logger.Int("wildcards", stage.Wildcards),
			logger.Bool("complete", stage.Complete))
	}
	if summary.Champion != nil {
		log.Info(ctx, "champion crowned", logger.String("champion", summary.Champion.FullName()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
