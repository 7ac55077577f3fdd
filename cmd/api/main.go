// Package main provides the entrypoint for the mission planner API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yimbot/missionplanner/internal/api"
	"github.com/yimbot/missionplanner/internal/api/middleware"
	"github.com/yimbot/missionplanner/internal/bootstrap"
	"github.com/yimbot/missionplanner/internal/config"
	"github.com/yimbot/missionplanner/internal/mission"
	"github.com/yimbot/missionplanner/internal/pathstore"
	"github.com/yimbot/missionplanner/internal/resilience"
	"github.com/yimbot/missionplanner/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const serviceName = "missionplanner-api"

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
		Str("env", cfg.App.Env).
		Msg("starting mission planner API")

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("api stopped with error")
		_ = logFile.Close()
		os.Exit(1) //nolint:gocritic // log file closed above
	}
	log.Info().Msg("server stopped")
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.App.Env,
		Component:      "api",
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
	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.Endpoint).
			Float64("sample_ratio", cfg.Telemetry.SampleRatio).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		return err
	}
	plannerMetrics, err := mission.NewMetrics()
	if err != nil {
		return err
	}

	registry := resilience.NewRegistry()
	store, err := bootstrap.OpenStore(ctx, cfg, registry, log)
	if err != nil {
		return err
	}
	defer store.Close()

	planner := mission.NewPlanner(mission.Config{
		Logger:    log,
		CacheTTL:  cfg.Planner.CacheTTL,
		CacheSize: cfg.Planner.CacheSize,
		Metrics:   plannerMetrics,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     httpMetrics,
		Planner:     planner,
		Paths:       pathstore.NewService(store.Repository),
		StoreName:   store.Name,
		Registry:    registry,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		RequireTLS:  cfg.App.RequireTLS,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
