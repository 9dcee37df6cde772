package bb

import "io"

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real
// filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// Scan recursively enumerates the regular files under a folder root,
	// producing one FileRecord per file. Symlinks are skipped, empty
	// directories contribute nothing, and files that cannot be read are
	// collected as skips rather than aborting the scan. An unreadable or
	// missing root fails with a ScanError.
	Scan(root *Path) (*Listing, error)

	// Open opens a file under a folder root for reading. relativePath
	// uses forward slashes, as produced by Scan.
	Open(root *Path, relativePath string) (io.ReadCloser, error)
}
