package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"backupbuddy/internal/bb"
)

// runLogName is the plain-text run report dropped into the package root,
// so the package carries its own record when copied to the destination.
const runLogName = "run.log"

// writeRunLog renders the run summary as plain text into the package root.
func writeRunLog(packageRoot string, summary *bb.RunSummary) error {
	return os.WriteFile(filepath.Join(packageRoot, runLogName), []byte(RenderSummary(summary)), 0644)
}

// RenderSummary formats a run summary as plain text: one line per folder,
// then totals, then any skipped files. The CLI prints a colored variant of
// the same information.
func RenderSummary(summary *bb.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "run:      %s\n", summary.RunID)
	fmt.Fprintf(&b, "location: %s\n", summary.Location)
	fmt.Fprintf(&b, "package:  %s\n", summary.PackageRoot)
	fmt.Fprintf(&b, "started:  %s\n", summary.StartedAt.UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(&b, "finished: %s\n\n", summary.FinishedAt.UTC().Format("2006-01-02T15:04:05Z"))

	for i := range summary.Folders {
		f := &summary.Folders[i]
		if f.OK() {
			fmt.Fprintf(&b, "ok      %s  added=%d modified=%d deleted=%d\n",
				f.FolderPath, f.Added, f.Modified, f.Deleted)
		} else {
			fmt.Fprintf(&b, "failed  %s  %v\n", f.FolderPath, f.Err)
		}
		for _, skip := range f.Skipped {
			fmt.Fprintf(&b, "        skipped %s (%s)\n", skip.RelativePath, skip.Reason)
		}
	}

	ok, failed, copied, deleted := summary.Counts()
	fmt.Fprintf(&b, "\nfolders: %d ok, %d failed; files copied: %d, deletions listed: %d\n",
		ok, failed, copied, deleted)

	return b.String()
}
