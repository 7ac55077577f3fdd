// Package main runs database migrations for the Postgres path store.
//
// Usage:
//
//	dbtool [up|down|status]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/yimbot/missionplanner/internal/bootstrap"
	"github.com/yimbot/missionplanner/internal/config"
	"github.com/yimbot/missionplanner/internal/database"
)

func main() {
	startup := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load("")
	if err != nil {
		startup.Fatal().Err(err).Msg("invalid configuration")
	}
	log, logFile, err := bootstrap.NewLogger(cfg, "missionplanner-dbtool", "dev")
	if err != nil {
		startup.Fatal().Err(err).Msg("invalid log settings")
	}
	defer logFile.Close() //nolint:errcheck // flushed on exit

	command := database.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, command, log); err != nil {
		log.Error().Err(err).Msg("migration failed")
		stop()
		_ = logFile.Close()
		os.Exit(1) //nolint:gocritic // deferred calls done above
	}
}

func run(ctx context.Context, cfg config.Config, command string, log zerolog.Logger) error {
	log.Info().
		Str("command", command).
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.Database).
		Msg("running migrations")

	if err := database.Migrate(ctx, cfg.Database, command); err != nil {
		return err
	}
	log.Info().Msg("migrations complete")
	return nil
}
