package bb

import "time"

// FileRecord describes one regular file within a tracked folder.
// RelativePath is relative to the folder root, uses forward slashes, and
// never carries a location-specific prefix, so records are portable between
// the source tree and a backup destination. Path comparison is
// case-sensitive; folders on case-insensitive filesystems are assumed to
// keep a stable casing between runs.
type FileRecord struct {
	RelativePath string    `json:"path"`
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"mtime"`
	// Checksum is the xxh3-128 hex digest of the file content.
	// Populated only when checksum mode is enabled.
	Checksum string `json:"checksum,omitempty"`
}

// Snapshot is the recorded state of one tracked folder as of the last
// successful sync or init. It is replaced wholesale on commit, never
// patched incrementally.
type Snapshot struct {
	FolderPath string
	TakenAt    time.Time
	Records    []FileRecord
}

// Index returns the snapshot's records keyed by relative path.
func (s *Snapshot) Index() map[string]FileRecord {
	idx := make(map[string]FileRecord, len(s.Records))
	for _, r := range s.Records {
		idx[r.RelativePath] = r
	}
	return idx
}

// Listing is the result of scanning one folder: the current records plus
// any files that could not be read and were skipped.
type Listing struct {
	Records []FileRecord
	Skipped []SkippedFile
}

// SkippedFile identifies a file the scanner listed but could not read.
type SkippedFile struct {
	RelativePath string
	Reason       string
}
