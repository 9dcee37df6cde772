package history

import (
	"fmt"

	"backupbuddy/internal/config"
)

// NewStoreFromConfig creates a run-history Store based on the history
// config type.
func NewStoreFromConfig(cfg config.HistoryConfig) (Store, error) {
	switch cfg.Type {
	case "none", "":
		return NopStore{}, nil
	case "memory":
		return NewSQLiteStore(":memory:")
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite history requires path to be set")
		}
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}
