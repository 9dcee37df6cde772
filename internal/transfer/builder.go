package transfer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"backupbuddy/internal/bb"
)

const (
	transferDirName  = "to_transfer"
	additionsDirName = "additions"
	manifestSuffix   = "_deleted_paths.txt"
)

// Package is the filesystem implementation of bb.PackageBuilder. It writes
// a transfer package with the layout the external copy/delete tooling
// expects:
//
//	<root>/
//	  to_transfer/
//	    additions/
//	      <folderName>/<relativePath...>   (added + modified files)
//	    <folderName>_deleted_paths.txt     (deletion manifests)
//	  run.log                              (written by the app layer)
//
// File writes are temp-file + rename so the package never contains a
// half-copied file. Concurrent use is serialized; per-folder scanning may
// parallelize upstream but all package writes funnel through one mutex.
type Package struct {
	root        string
	transferDir string
	mu          sync.Mutex
}

// NewPackage creates a transfer package rooted at the given directory.
func NewPackage(root string) (*Package, error) {
	transferDir := filepath.Join(root, transferDirName)
	if err := os.MkdirAll(transferDir, 0755); err != nil {
		return nil, fmt.Errorf("creating transfer directory: %w", err)
	}
	return &Package{root: root, transferDir: transferDir}, nil
}

// Root returns the package root directory.
func (p *Package) Root() string { return p.root }

// AddFile copies src into the additions subtree for folderName.
func (p *Package) AddFile(folderName, relativePath string, src io.Reader) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	destPath := filepath.Join(p.transferDir, additionsDirName, folderName, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating additions directory: %w", err)
	}
	return writeFileAtomic(destPath, src)
}

// WriteManifest writes the deletion manifest for folderName: one relative
// path per line, newline-terminated, forward slashes, no quoting. Consumers
// treat each line as a literal relative path. An empty deleted list still
// produces an empty manifest file.
func (p *Package) WriteManifest(folderName string, deleted []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var buf []byte
	for _, path := range deleted {
		buf = append(buf, path...)
		buf = append(buf, '\n')
	}

	destPath := filepath.Join(p.transferDir, folderName+manifestSuffix)
	return writeFileAtomic(destPath, bytes.NewReader(buf))
}

// Timestamp formats a run time the way package roots are named:
// year_month_day__hour_minute_second__microseconds. Lexicographic order of
// package directories therefore matches chronological order.
func Timestamp(t time.Time) string {
	return t.Format("2006_01_02__15_04_05") + fmt.Sprintf("__%06d", t.Nanosecond()/1000)
}

// writeFileAtomic writes data from r to destPath via temp file + rename.
func writeFileAtomic(destPath string, r io.Reader) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that Package implements bb.PackageBuilder
var _ bb.PackageBuilder = (*Package)(nil)
