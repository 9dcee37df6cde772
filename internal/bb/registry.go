package bb

// Registry is the tracking registry: it maps a backup location to the set
// of folders tracked for it. Pure bookkeeping; it knows nothing about
// snapshots, and removing a folder does not delete its snapshot. A folder
// removed and re-added later must be re-inited, otherwise the next run
// diffs against a stale snapshot.
type Registry interface {
	// Add starts tracking the given folder paths for a location.
	// Adding a path that is already tracked is a RegistryError.
	Add(location string, paths []string) error

	// Remove stops tracking the given folder paths for a location.
	// Removing a path that is not tracked is a RegistryError.
	Remove(location string, paths []string) error

	// List returns the tracked folder paths for a location in the order
	// they were added. An unknown location yields an empty list.
	List(location string) ([]string, error)
}

// SnapshotStore persists one Snapshot per tracked folder.
type SnapshotStore interface {
	// Load returns the stored snapshot for a folder, or an error wrapping
	// ErrSnapshotMissing if none exists.
	Load(location, folderPath string) (*Snapshot, error)

	// Save replaces the stored snapshot for snap.FolderPath. The write is
	// atomic: a crash mid-save never leaves a half-written snapshot that
	// Load would accept.
	Save(location string, snap *Snapshot) error
}
