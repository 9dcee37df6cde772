package bb

import "io"

// PackageBuilder materializes a changeset into a transfer package: an
// additions subtree of added/modified files plus one deletion manifest per
// folder. The core's job ends here; applying the package at the backup
// destination is a manual, external step.
type PackageBuilder interface {
	// AddFile copies src into the additions subtree for folderName at the
	// given relative path (forward slashes).
	AddFile(folderName, relativePath string, src io.Reader) error

	// WriteManifest writes the deletion manifest for folderName: one
	// relative path per line, newline-terminated, no quoting. An empty
	// deleted list still produces an (empty) manifest.
	WriteManifest(folderName string, deleted []string) error

	// Root returns the package root directory, or "" for builders that
	// are not backed by the filesystem.
	Root() string
}
