package app

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/infra/gitstore"
	"github.com/runoshun/chores/internal/infra/jsonstore"
	"github.com/runoshun/chores/internal/infra/mongostore"
	"github.com/runoshun/chores/internal/infra/sqlstore"
)

// Store bundles a task repository with its initializer and lifecycle.
type Store struct {
	Tasks domain.TaskRepository
	Init  domain.StoreInitializer
	close func() error
}

// Close releases connections held by the backend.
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore opens the backend named by cfg.Type.
// File-based backends default their path to the data directory.
func OpenStore(ctx context.Context, cfg domain.StoreConfig, dataDir string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.Local
	}
	path := cfg.Path
	if path == "" {
		path = domain.DefaultStorePath(dataDir, cfg.Type)
	}

	switch cfg.Type {
	case domain.StoreJSON:
		s := jsonstore.New(path, jsonstore.WithLocation(loc))
		return &Store{Tasks: s, Init: s}, nil

	case domain.StoreGit:
		s := gitstore.New(path, cfg.Namespace,
			gitstore.WithLocation(loc),
			gitstore.WithMaxAttempts(cfg.MaxAttempts),
		)
		return &Store{Tasks: s, Init: s}, nil

	case domain.StoreSQLite:
		s, err := sqlstore.OpenSQLite(path,
			sqlstore.WithLocation(loc),
			sqlstore.WithMaxAttempts(cfg.MaxAttempts),
		)
		if err != nil {
			return nil, err
		}
		return &Store{Tasks: s, Init: s, close: s.Close}, nil

	case domain.StorePostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("store type %s needs store.dsn", cfg.Type)
		}
		s, err := sqlstore.OpenPostgres(ctx, cfg.DSN,
			sqlstore.WithLocation(loc),
			sqlstore.WithMaxAttempts(cfg.MaxAttempts),
		)
		if err != nil {
			return nil, err
		}
		return &Store{Tasks: s, Init: s, close: s.Close}, nil

	case domain.StoreMongo:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("store type %s needs store.dsn", cfg.Type)
		}
		s, err := mongostore.Connect(ctx, cfg.DSN, cfg.Database,
			mongostore.WithLocation(loc),
			mongostore.WithMaxAttempts(cfg.MaxAttempts),
		)
		if err != nil {
			return nil, err
		}
		return &Store{Tasks: s, Init: s, close: s.Close}, nil
	}

	return nil, fmt.Errorf("%q: %w", cfg.Type, domain.ErrUnknownStore)
}
