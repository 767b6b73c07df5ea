package state

import (
	"context"
	"fmt"

	"calculette-hq/mtranspile/pkg/config"
)

// Store persists snapshots. Load returns the most recent one, or
// ErrNotFound.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Close() error
}

// Open returns the store selected by cfg.Backend.
func Open(cfg *config.StateConfig) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("state config cannot be nil")
	}
	switch cfg.Backend {
	case "file", "":
		return NewFileStore(cfg.Path), nil
	case "sqlite":
		return NewSQLiteStore(&SQLiteConfig{Path: cfg.Path, Driver: cfg.Driver})
	default:
		return nil, fmt.Errorf("unknown state backend: %s", cfg.Backend)
	}
}
