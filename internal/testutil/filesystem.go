package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"backupbuddy/internal/bb"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
	// OpenErr, when set, makes Open fail for this file, simulating a
	// source file that vanished or became unreadable mid-copy.
	OpenErr error
	// StatErr, when set, makes Scan collect this file as skipped.
	StatErr error
}

// MockFilesystemManager is an in-memory filesystem for testing.
type MockFilesystemManager struct {
	files map[string]*MockFile
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     time.Now(),
	}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.files[path] = &MockFile{
		Permissions: 0755,
		ModTime:     time.Now(),
		IsDirectory: true,
	}
}

// UpdateFile replaces a file's content and mtime.
func (m *MockFilesystemManager) UpdateFile(path string, content []byte, modTime time.Time) {
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     modTime,
	}
}

// RemoveFile deletes a file from the mock filesystem.
func (m *MockFilesystemManager) RemoveFile(path string) {
	delete(m.files, path)
}

// FailOpen makes subsequent opens of path fail with the given error.
func (m *MockFilesystemManager) FailOpen(path string, err error) {
	if f, ok := m.files[path]; ok {
		f.OpenErr = err
	}
}

// FailStat makes Scan collect path as a skipped file.
func (m *MockFilesystemManager) FailStat(path string, err error) {
	if f, ok := m.files[path]; ok {
		f.StatErr = err
	}
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*bb.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}

	info := &mockFileInfo{
		name:    filepath.Base(absPath),
		size:    int64(len(file.Content)),
		mode:    file.Permissions,
		modTime: file.ModTime,
		isDir:   file.IsDirectory,
	}

	return bb.NewPath(absPath, file.IsDirectory, info), nil
}

func (m *MockFilesystemManager) Scan(root *bb.Path) (*bb.Listing, error) {
	if !root.IsDir() {
		return nil, &bb.ScanError{Path: root.String(), Err: fmt.Errorf("not a directory")}
	}
	if _, ok := m.files[root.String()]; !ok {
		return nil, &bb.ScanError{Path: root.String(), Err: fmt.Errorf("root not found")}
	}

	prefix := root.String() + "/"
	listing := &bb.Listing{}

	for path, file := range m.files {
		if file.IsDirectory || !strings.HasPrefix(path, prefix) {
			continue
		}
		rel := strings.TrimPrefix(path, prefix)
		if file.StatErr != nil {
			listing.Skipped = append(listing.Skipped, bb.SkippedFile{RelativePath: rel, Reason: file.StatErr.Error()})
			continue
		}
		listing.Records = append(listing.Records, bb.FileRecord{
			RelativePath: rel,
			Size:         int64(len(file.Content)),
			ModTime:      file.ModTime,
		})
	}

	sort.Slice(listing.Records, func(i, j int) bool {
		return listing.Records[i].RelativePath < listing.Records[j].RelativePath
	})
	return listing, nil
}

func (m *MockFilesystemManager) Open(root *bb.Path, relativePath string) (io.ReadCloser, error) {
	path := root.String() + "/" + relativePath
	file, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if file.OpenErr != nil {
		return nil, file.OpenErr
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

// mockFileInfo implements fs.FileInfo for mock files.
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (i *mockFileInfo) Name() string       { return i.name }
func (i *mockFileInfo) Size() int64        { return i.size }
func (i *mockFileInfo) Mode() fs.FileMode  { return i.mode }
func (i *mockFileInfo) ModTime() time.Time { return i.modTime }
func (i *mockFileInfo) IsDir() bool        { return i.isDir }
func (i *mockFileInfo) Sys() any           { return nil }

// Compile-time check that MockFilesystemManager implements bb.FilesystemManager
var _ bb.FilesystemManager = (*MockFilesystemManager)(nil)
