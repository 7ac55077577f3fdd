package bootstrap

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yimbot/missionplanner/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger returns the process logger and a closer for its log file.
// Development logs go to a console writer, everything else emits JSON. When
// cfg.Log.File is set, lines are also written to a rotated file.
func NewLogger(cfg config.Config, service, version string) (zerolog.Logger, io.Closer, error) {
	level, err := logLevel(cfg)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var out io.Writer = os.Stdout
	if cfg.App.Env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	var closer io.Closer = nopCloser{}
	if cfg.Log.File != "" {
		file := &lumberjack.Logger{
			Filename: cfg.Log.File,
			MaxSize:  cfg.Log.MaxSizeMB,
			MaxAge:   cfg.Log.MaxAgeDays,
			Compress: true,
		}
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	log := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Logger()
	return log, closer, nil
}

func logLevel(cfg config.Config) (zerolog.Level, error) {
	if cfg.Log.Level == "" {
		if cfg.IsProduction() {
			return zerolog.InfoLevel, nil
		}
		return zerolog.DebugLevel, nil
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
