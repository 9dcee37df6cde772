package main

import (
	"fmt"

	"backupbuddy/internal/bb"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen).SprintFunc()
	failColor = color.New(color.FgRed).SprintFunc()
	skipColor = color.New(color.FgYellow).SprintFunc()
)

// printSummary renders a run summary to stdout: one line per folder, skipped
// files indented below their folder, totals at the end.
func printSummary(summary *bb.RunSummary) {
	fmt.Printf("Package: %s\n\n", summary.PackageRoot)

	for i := range summary.Folders {
		f := &summary.Folders[i]
		if f.OK() {
			fmt.Printf("%s  %s  added=%d modified=%d deleted=%d (%s copied)\n",
				okColor("ok    "), f.FolderPath, f.Added, f.Modified, f.Deleted,
				humanize.IBytes(uint64(f.BytesCopied)))
		} else {
			fmt.Printf("%s  %s  %v\n", failColor("failed"), f.FolderPath, f.Err)
		}
		for _, skip := range f.Skipped {
			fmt.Printf("        %s %s (%s)\n", skipColor("skipped"), skip.RelativePath, skip.Reason)
		}
	}

	ok, failed, copied, deleted := summary.Counts()
	fmt.Printf("\nFolders: %d ok, %d failed. Files copied: %d, deletions listed: %d.\n",
		ok, failed, copied, deleted)
	fmt.Println("Copy the additions subtree to the destination, then run apply-deletions with each manifest.")
}
