package bb

import "time"

// FolderResult is the per-folder outcome of a changeset run.
type FolderResult struct {
	FolderPath  string
	Added       int
	Modified    int
	Deleted     int
	BytesCopied int64
	Skipped     []SkippedFile
	// Err is nil for a committed folder. A non-nil Err means the folder's
	// snapshot was left untouched and the run can be safely retried.
	Err error
}

// OK reports whether the folder's changeset was built and committed.
func (r *FolderResult) OK() bool { return r.Err == nil }

// RunSummary is the user-visible result of one changeset run for a
// backup location. RunID identifies the run in logs and in the package's
// run.log.
type RunSummary struct {
	RunID       string
	Location    string
	PackageRoot string
	StartedAt   time.Time
	FinishedAt  time.Time
	Folders     []FolderResult
}

// Failed reports whether any folder in the run failed.
func (s *RunSummary) Failed() bool {
	for i := range s.Folders {
		if !s.Folders[i].OK() {
			return true
		}
	}
	return false
}

// Counts returns run-wide totals: committed folders, failed folders,
// files copied into the package, and manifest entries written.
func (s *RunSummary) Counts() (ok, failed, copied, deleted int) {
	for i := range s.Folders {
		f := &s.Folders[i]
		if f.OK() {
			ok++
		} else {
			failed++
			continue
		}
		copied += f.Added + f.Modified
		deleted += f.Deleted
	}
	return ok, failed, copied, deleted
}
