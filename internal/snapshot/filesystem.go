package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/xxh3"

	"backupbuddy/internal/bb"
)

// schemaVersion tags every snapshot document. Loading a document with an
// unknown version fails instead of being silently misread, so snapshots
// stay portable across versions of the tool.
const schemaVersion = 1

// document is the on-disk JSON form of one snapshot. Timestamps round-trip
// through RFC 3339 with nanoseconds, so mtime comparisons survive reload at
// full filesystem resolution.
type document struct {
	SchemaVersion int             `json:"schema_version"`
	FolderPath    string          `json:"folder_path"`
	TakenAt       time.Time       `json:"taken_at"`
	Files         []bb.FileRecord `json:"files"`
}

// FileSystemStore is the filesystem implementation of bb.SnapshotStore.
// It keeps one JSON document per tracked folder:
//
//	<root>/
//	  <location>/
//	    <key>.json    (key = xxh3-128 hex of the folder's absolute path)
//
// Writes go to a temp file in the same directory followed by a rename, so
// a crash mid-save never leaves a half-written snapshot that Load would
// accept.
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a snapshot store rooted at the given path.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

// Load returns the stored snapshot for a folder.
func (s *FileSystemStore) Load(location, folderPath string) (*bb.Snapshot, error) {
	data, err := os.ReadFile(s.snapshotPath(location, folderPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", bb.ErrSnapshotMissing, folderPath)
		}
		return nil, fmt.Errorf("reading snapshot for %s: %w", folderPath, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot for %s: %w", folderPath, err)
	}
	if doc.SchemaVersion != schemaVersion {
		return nil, fmt.Errorf("snapshot for %s has schema version %d, want %d", folderPath, doc.SchemaVersion, schemaVersion)
	}

	return &bb.Snapshot{
		FolderPath: doc.FolderPath,
		TakenAt:    doc.TakenAt,
		Records:    doc.Files,
	}, nil
}

// Save atomically replaces the stored snapshot for snap.FolderPath.
func (s *FileSystemStore) Save(location string, snap *bb.Snapshot) error {
	doc := document{
		SchemaVersion: schemaVersion,
		FolderPath:    snap.FolderPath,
		TakenAt:       snap.TakenAt,
		Files:         snap.Records,
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return &bb.SnapshotWriteError{FolderPath: snap.FolderPath, Err: err}
	}

	destPath := s.snapshotPath(location, snap.FolderPath)
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &bb.SnapshotWriteError{FolderPath: snap.FolderPath, Err: err}
	}

	// Create temp file in the same directory to ensure atomic rename works
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &bb.SnapshotWriteError{FolderPath: snap.FolderPath, Err: err}
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return &bb.SnapshotWriteError{FolderPath: snap.FolderPath, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &bb.SnapshotWriteError{FolderPath: snap.FolderPath, Err: err}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return &bb.SnapshotWriteError{FolderPath: snap.FolderPath, Err: err}
	}

	success = true
	return nil
}

// snapshotPath maps (location, folder) to the snapshot file path. The file
// name is a hash of the folder path rather than the path itself, so nested
// folders and path separators never leak into file names.
func (s *FileSystemStore) snapshotPath(location, folderPath string) string {
	key := fmt.Sprintf("%x", xxh3.Hash128([]byte(folderPath)).Bytes())
	return filepath.Join(s.root, location, key+".json")
}

// Compile-time check that FileSystemStore implements bb.SnapshotStore
var _ bb.SnapshotStore = (*FileSystemStore)(nil)
