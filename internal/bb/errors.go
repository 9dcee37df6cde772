package bb

import (
	"errors"
	"fmt"
)

// ErrSnapshotMissing is returned by SnapshotStore.Load when no snapshot
// exists for a folder. A changeset run must not proceed for that folder;
// the caller has to init first.
var ErrSnapshotMissing = errors.New("no snapshot for folder (run init first)")

// ScanError reports that a folder root could not be scanned at all.
// Per-file failures inside a readable root are collected as SkippedFiles
// instead.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string { return fmt.Sprintf("scanning %s: %v", e.Path, e.Err) }
func (e *ScanError) Unwrap() error { return e.Err }

// CopyError reports that a source file could not be copied into the
// transfer package. Any copy error suppresses the snapshot commit for the
// affected folder.
type CopyError struct {
	RelativePath string
	Err          error
}

func (e *CopyError) Error() string { return fmt.Sprintf("copying %s: %v", e.RelativePath, e.Err) }
func (e *CopyError) Unwrap() error { return e.Err }

// SnapshotWriteError reports that the atomic snapshot commit failed.
type SnapshotWriteError struct {
	FolderPath string
	Err        error
}

func (e *SnapshotWriteError) Error() string {
	return fmt.Sprintf("writing snapshot for %s: %v", e.FolderPath, e.Err)
}
func (e *SnapshotWriteError) Unwrap() error { return e.Err }

// RegistryError reports an invalid tracking operation, such as adding a
// folder twice or removing one that is not tracked.
type RegistryError struct {
	Location string
	Path     string
	Reason   string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry %s: %s: %s", e.Location, e.Path, e.Reason)
}
