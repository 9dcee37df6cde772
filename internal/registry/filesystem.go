package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"backupbuddy/internal/bb"
)

// schemaVersion tags the registry document so future format changes fail
// loudly instead of being misread.
const schemaVersion = 1

// document is the on-disk JSON form of the registry. The top-level key name
// matches the original tool's config so a reader of old packages finds
// familiar structure.
type document struct {
	SchemaVersion int                 `json:"schema_version"`
	Locations     map[string][]string `json:"backup_locations"`
}

// FileSystemRegistry is the filesystem implementation of bb.Registry: a
// single JSON file mapping each backup location to its ordered folder list.
// The file is loaded on every call and saved with a temp-file + rename, so
// concurrent runs fenced by the advisory lock never observe a partial
// write.
type FileSystemRegistry struct {
	path string
}

// NewFileSystemRegistry creates a registry backed by the given file.
// The file is created lazily on first Add.
func NewFileSystemRegistry(path string) (*FileSystemRegistry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}
	return &FileSystemRegistry{path: path}, nil
}

// Add starts tracking folders for a location.
func (r *FileSystemRegistry) Add(location string, paths []string) error {
	doc, err := r.load()
	if err != nil {
		return err
	}

	tracked := doc.Locations[location]
	for _, p := range paths {
		if slices.Contains(tracked, p) {
			return &bb.RegistryError{Location: location, Path: p, Reason: "already tracked"}
		}
		tracked = append(tracked, p)
	}
	doc.Locations[location] = tracked

	return r.save(doc)
}

// Remove stops tracking folders for a location.
func (r *FileSystemRegistry) Remove(location string, paths []string) error {
	doc, err := r.load()
	if err != nil {
		return err
	}

	tracked := doc.Locations[location]
	for _, p := range paths {
		i := slices.Index(tracked, p)
		if i < 0 {
			return &bb.RegistryError{Location: location, Path: p, Reason: "not tracked"}
		}
		tracked = slices.Delete(tracked, i, i+1)
	}
	doc.Locations[location] = tracked

	return r.save(doc)
}

// List returns the folders tracked for a location, in insertion order.
func (r *FileSystemRegistry) List(location string) ([]string, error) {
	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return append([]string{}, doc.Locations[location]...), nil
}

func (r *FileSystemRegistry) load() (*document, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{SchemaVersion: schemaVersion, Locations: map[string][]string{}}, nil
		}
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}
	if doc.SchemaVersion != schemaVersion {
		return nil, fmt.Errorf("registry has schema version %d, want %d", doc.SchemaVersion, schemaVersion)
	}
	if doc.Locations == nil {
		doc.Locations = map[string][]string{}
	}
	return &doc, nil
}

func (r *FileSystemRegistry) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp registry file: %w", err)
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
		return fmt.Errorf("writing registry: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp registry file: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("replacing registry: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemRegistry implements bb.Registry
var _ bb.Registry = (*FileSystemRegistry)(nil)
