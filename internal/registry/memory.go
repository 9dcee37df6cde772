package registry

import (
	"slices"
	"sync"

	"backupbuddy/internal/bb"
)

// MemoryRegistry is an in-memory implementation of bb.Registry for tests.
type MemoryRegistry struct {
	mu        sync.Mutex
	locations map[string][]string
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{locations: make(map[string][]string)}
}

func (r *MemoryRegistry) Add(location string, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracked := r.locations[location]
	for _, p := range paths {
		if slices.Contains(tracked, p) {
			return &bb.RegistryError{Location: location, Path: p, Reason: "already tracked"}
		}
		tracked = append(tracked, p)
	}
	r.locations[location] = tracked
	return nil
}

func (r *MemoryRegistry) Remove(location string, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tracked := r.locations[location]
	for _, p := range paths {
		i := slices.Index(tracked, p)
		if i < 0 {
			return &bb.RegistryError{Location: location, Path: p, Reason: "not tracked"}
		}
		tracked = slices.Delete(tracked, i, i+1)
	}
	r.locations[location] = tracked
	return nil
}

func (r *MemoryRegistry) List(location string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.locations[location]...), nil
}

// Compile-time check that MemoryRegistry implements bb.Registry
var _ bb.Registry = (*MemoryRegistry)(nil)
