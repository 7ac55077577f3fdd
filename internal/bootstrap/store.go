// Package bootstrap wires process-level dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yimbot/missionplanner/internal/config"
	"github.com/yimbot/missionplanner/internal/database"
	"github.com/yimbot/missionplanner/internal/pathstore"
	"github.com/yimbot/missionplanner/internal/pathstore/remote"
	"github.com/yimbot/missionplanner/internal/resilience"
)

// Store is an opened path store backend.
type Store struct {
	Name       string
	Repository pathstore.Repository
	close      func()
}

// Close releases the backend's connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore opens the backend selected by cfg.Store.Backend. The remote
// backend registers its HTTP client in registry.
func OpenStore(ctx context.Context, cfg config.Config, registry *resilience.Registry, log zerolog.Logger) (*Store, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect path database: %w", err)
		}
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("database connected")
		return &Store{
			Name:       config.StorePostgres,
			Repository: pathstore.NewPostgresRepository(pool),
			close:      pool.Close,
		}, nil

	case config.StoreRemote:
		client := remote.NewClient(remote.ClientConfig{
			BaseURL:  cfg.Store.RemoteURL,
			Registry: registry,
			Timeout:  cfg.Store.RemoteTimeout,
		})
		log.Info().Str("url", cfg.Store.RemoteURL).Msg("using remote path store")
		return &Store{Name: config.StoreRemote, Repository: client}, nil

	case config.StoreMemory:
		log.Warn().Msg("using in-memory path store, paths are lost on restart")
		return &Store{Name: config.StoreMemory, Repository: pathstore.NewInMemoryRepository()}, nil

	default:
		return nil, fmt.Errorf("unknown path store %q", cfg.Store.Backend)
	}
}
