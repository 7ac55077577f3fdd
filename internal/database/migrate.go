package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/pressly/goose/v3"

	"github.com/yimbot/missionplanner/internal/database/migrations"
)

// Migration commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate runs a goose command against the embedded migrations.
func Migrate(ctx context.Context, cfg Config, command string) error {
	sqlDB, err := sql.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("open sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, sqlDB, ".")
	case MigrateDown:
		err = goose.DownContext(ctx, sqlDB, ".")
	case MigrateStatus:
		err = goose.StatusContext(ctx, sqlDB, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}
