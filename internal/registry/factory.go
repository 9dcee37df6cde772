package registry

import (
	"fmt"

	"backupbuddy/internal/bb"
	"backupbuddy/internal/config"
)

// NewRegistryFromConfig creates a Registry implementation based on the
// registry config type.
func NewRegistryFromConfig(cfg config.RegistryConfig) (bb.Registry, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryRegistry(), nil
	case "filesystem":
		if cfg.Path == "" {
			return nil, fmt.Errorf("filesystem registry requires path to be set")
		}
		return NewFileSystemRegistry(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown registry type: %s", cfg.Type)
	}
}
