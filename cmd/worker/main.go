// Package main provides the entrypoint for the mission generation worker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yimbot/missionplanner/internal/bootstrap"
	"github.com/yimbot/missionplanner/internal/config"
	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/internal/pathstore"
	"github.com/yimbot/missionplanner/internal/resilience"
	"github.com/yimbot/missionplanner/internal/telemetry"
	"github.com/yimbot/missionplanner/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "missionplanner-worker"

func main() {
	startup := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load("")
	if err != nil {
		startup.Fatal().Err(err).Msg("invalid configuration")
	}

	log, logFile, err := bootstrap.NewLogger(cfg, serviceName, Version)
	if err != nil {
		startup.Fatal().Err(err).Msg("invalid log settings")
	}
	defer logFile.Close() //nolint:errcheck // flushed on exit
	log.Info().
		Str("build_time", BuildTime).
		Str("subscription", cfg.PubSub.SubscriptionID).
		Msg("starting mission worker")

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("worker stopped with error")
		_ = logFile.Close()
		os.Exit(1) //nolint:gocritic // log file closed above
	}
	log.Info().Msg("worker stopped")
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.App.Env,
		Component:      "worker",
		OTLPEndpoint:   cfg.Telemetry.Endpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	plannerMetrics, err := mission.NewMetrics()
	if err != nil {
		return err
	}

	store, err := bootstrap.OpenStore(ctx, cfg, resilience.NewRegistry(), log)
	if err != nil {
		return err
	}
	defer store.Close()

	// Every job plans a fresh mission, so the worker runs without a cache.
	planner := mission.NewPlanner(mission.Config{Logger: log, Metrics: plannerMetrics})
	paths := pathstore.NewService(store.Repository)
	batch := worker.NewBatchJob(worker.BatchJobConfig{
		Config: worker.BatchConfig{
			Concurrency: cfg.Worker.BatchConcurrency,
		},
		Planner: planner,
		Paths:   paths,
		Logger:  log,
	})
	processor := worker.NewProcessor(planner, paths, batch, log)

	g, gctx := errgroup.WithContext(ctx)

	server := &http.Server{
		Addr:              ":" + cfg.Worker.HealthPort,
		Handler:           healthMux(batch, store.Name),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.PubSub.ProjectID == "" {
		log.Warn().Msg("PUBSUB_PROJECT_ID not set, serving health checks only")
	} else {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSub.ProjectID,
			SubscriptionName: cfg.PubSub.SubscriptionID,
			Processor:        processor,
			JobTimeout:       cfg.Worker.JobTimeout,
			Logger:           log,
		})
		if err != nil {
			return err
		}
		defer handler.Close() //nolint:errcheck // best-effort on exit
		g.Go(func() error {
			return handler.Start(gctx)
		})
	}

	return g.Wait()
}

func healthMux(batch *worker.BatchJob, storeName string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck // client went away
			"status":  "healthy",
			"version": Version,
			"store":   storeName,
			"batches": batch.MetricsSnapshot(),
		})
	})
	return mux
}
