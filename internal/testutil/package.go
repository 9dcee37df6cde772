package testutil

import (
	"fmt"
	"io"

	"backupbuddy/internal/bb"
)

// MemoryPackage collects transfer package contents in memory.
type MemoryPackage struct {
	// Files maps folder name to relative path to content.
	Files map[string]map[string][]byte
	// Manifests maps folder name to the deleted paths written for it.
	Manifests map[string][]string

	failAdd map[string]error
}

// NewMemoryPackage creates an empty in-memory package builder.
func NewMemoryPackage() *MemoryPackage {
	return &MemoryPackage{
		Files:     make(map[string]map[string][]byte),
		Manifests: make(map[string][]string),
		failAdd:   make(map[string]error),
	}
}

// FailAddFile makes AddFile fail for the given folder name and relative path.
func (p *MemoryPackage) FailAddFile(folderName, relativePath string, err error) {
	p.failAdd[folderName+"/"+relativePath] = err
}

func (p *MemoryPackage) AddFile(folderName, relativePath string, src io.Reader) error {
	if err, ok := p.failAdd[folderName+"/"+relativePath]; ok {
		return err
	}
	content, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	if p.Files[folderName] == nil {
		p.Files[folderName] = make(map[string][]byte)
	}
	p.Files[folderName][relativePath] = content
	return nil
}

func (p *MemoryPackage) WriteManifest(folderName string, deleted []string) error {
	if _, ok := p.Manifests[folderName]; ok {
		return fmt.Errorf("manifest already written for %s", folderName)
	}
	p.Manifests[folderName] = append([]string{}, deleted...)
	return nil
}

func (p *MemoryPackage) Root() string {
	return ""
}

// Compile-time check that MemoryPackage implements bb.PackageBuilder
var _ bb.PackageBuilder = (*MemoryPackage)(nil)
