package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/zeebo/xxh3"

	"backupbuddy/internal/bb"
)

// OSFilesystemManager is the real filesystem implementation of
// bb.FilesystemManager. It performs actual filesystem operations using the
// os package.
type OSFilesystemManager struct {
	ignore   []string
	checksum bool
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem. ignorePatterns come from the config and apply to every
// scanned folder, on top of any per-folder .bbignore file. When checksum is
// true, scans attach an xxh3-128 content digest to every record.
func NewOSFilesystemManager(ignorePatterns []string, checksum bool) *OSFilesystemManager {
	return &OSFilesystemManager{
		ignore:   ignorePatterns,
		checksum: checksum,
	}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*bb.Path, error) {
	// Convert to absolute path
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	// Lstat so a symlink shows up as a symlink rather than its target
	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	// Check for special file types we don't support
	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	}
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return bb.NewPath(absPath, info.IsDir(), info), nil
}

// Scan recursively enumerates regular files under root.
//
// Symlinks are skipped, never followed. Directories contribute no records,
// so an empty directory is invisible to the snapshot. Files that cannot be
// statted or read are collected as skips; the scan keeps going.
func (m *OSFilesystemManager) Scan(root *bb.Path) (*bb.Listing, error) {
	if !root.IsDir() {
		return nil, &bb.ScanError{Path: root.String(), Err: fmt.Errorf("not a directory")}
	}

	matcher, err := m.matcherFor(root)
	if err != nil {
		return nil, &bb.ScanError{Path: root.String(), Err: err}
	}

	listing := &bb.Listing{}
	rootPath := root.String()

	walkErr := filepath.WalkDir(rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == rootPath {
				// Unreadable root aborts the whole scan.
				return err
			}
			listing.Skipped = append(listing.Skipped, bb.SkippedFile{
				RelativePath: relSlash(rootPath, p),
				Reason:       err.Error(),
			})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			// Symlink policy: skip, consistently, whether it points at a
			// file or a directory.
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel := relSlash(rootPath, p)
		if matcher.Match(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			listing.Skipped = append(listing.Skipped, bb.SkippedFile{RelativePath: rel, Reason: err.Error()})
			return nil
		}

		rec := bb.FileRecord{
			RelativePath: rel,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
		}
		if m.checksum {
			sum, err := checksumFile(p)
			if err != nil {
				listing.Skipped = append(listing.Skipped, bb.SkippedFile{RelativePath: rel, Reason: err.Error()})
				return nil
			}
			rec.Checksum = sum
		}

		listing.Records = append(listing.Records, rec)
		return nil
	})
	if walkErr != nil {
		return nil, &bb.ScanError{Path: rootPath, Err: walkErr}
	}

	sort.Slice(listing.Records, func(i, j int) bool {
		return listing.Records[i].RelativePath < listing.Records[j].RelativePath
	})

	return listing, nil
}

// Open opens a file under a folder root for reading.
func (m *OSFilesystemManager) Open(root *bb.Path, relativePath string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(root.String(), filepath.FromSlash(relativePath)))
}

// matcherFor builds the ignore matcher for one folder: config-level
// patterns plus the folder's .bbignore file, if present.
func (m *OSFilesystemManager) matcherFor(root *bb.Path) (*IgnoreMatcher, error) {
	patterns := append([]string{}, m.ignore...)

	filePatterns, err := ParseIgnoreFile(filepath.Join(root.String(), ignoreFileName))
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, filePatterns...)

	return NewIgnoreMatcher(patterns), nil
}

// checksumFile computes the xxh3-128 hex digest of a file's content.
func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum128().Bytes()), nil
}

// relSlash returns p relative to root, in forward-slash form.
func relSlash(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		// Walk only hands us paths under root; fall back to the absolute
		// path rather than dropping the entry.
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// Compile-time check that OSFilesystemManager implements bb.FilesystemManager
var _ bb.FilesystemManager = (*OSFilesystemManager)(nil)
