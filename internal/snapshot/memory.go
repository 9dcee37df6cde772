package snapshot

import (
	"fmt"
	"sync"

	"backupbuddy/internal/bb"
)

// MemoryStore is an in-memory implementation of bb.SnapshotStore.
// Snapshots do not survive the process; useful for tests and dry runs.
type MemoryStore struct {
	mu    sync.Mutex
	snaps map[string]*bb.Snapshot
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*bb.Snapshot)}
}

func (s *MemoryStore) Load(location, folderPath string) (*bb.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.snaps[memKey(location, folderPath)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bb.ErrSnapshotMissing, folderPath)
	}

	// Copy so callers cannot mutate the stored snapshot.
	cp := *snap
	cp.Records = append([]bb.FileRecord{}, snap.Records...)
	return &cp, nil
}

func (s *MemoryStore) Save(location string, snap *bb.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *snap
	cp.Records = append([]bb.FileRecord{}, snap.Records...)
	s.snaps[memKey(location, snap.FolderPath)] = &cp
	return nil
}

func memKey(location, folderPath string) string {
	return location + "\x00" + folderPath
}

// Compile-time check that MemoryStore implements bb.SnapshotStore
var _ bb.SnapshotStore = (*MemoryStore)(nil)
