package bb

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// Service is the orchestration layer that coordinates the registry, the
// scanner, the diff engine, the changeset builder, and the snapshot store
// to perform the high-level operations needed by the CLI.
//
// One Service invocation processes one backup location to completion.
// Service itself is synchronous and single-threaded; callers that might run
// concurrently are expected to hold the registry's advisory lock.
type Service struct {
	registry  Registry
	snapshots SnapshotStore
	fsmgr     FilesystemManager
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewService creates a new Service with the provided dependencies.
func NewService(registry Registry, snapshots SnapshotStore, fsmgr FilesystemManager, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		registry:  registry,
		snapshots: snapshots,
		fsmgr:     fsmgr,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// AddFolders registers folders for tracking under a location.
// Every path must point to an existing directory.
func (s *Service) AddFolders(location string, paths []*Path) error {
	folders := make([]string, 0, len(paths))
	for _, p := range paths {
		if !p.IsDir() {
			return fmt.Errorf("path is not a directory: %s", p.String())
		}
		folders = append(folders, p.String())
	}

	if err := s.registry.Add(location, folders); err != nil {
		return err
	}

	for _, f := range folders {
		s.logger.Info("folder tracked", "location", location, "path", f)
	}
	return nil
}

// RemoveFolders stops tracking folders under a location. The paths need not
// exist on disk anymore. The folders' snapshots are kept; re-adding a folder
// later requires an explicit re-init, otherwise the next run would diff
// against the stale snapshot.
func (s *Service) RemoveFolders(location string, paths []string) error {
	if err := s.registry.Remove(location, paths); err != nil {
		return err
	}
	for _, f := range paths {
		s.logger.Info("folder untracked", "location", location, "path", f)
	}
	return nil
}

// ListFolders returns the folders tracked under a location, in the order
// they were added.
func (s *Service) ListFolders(location string) ([]string, error) {
	return s.registry.List(location)
}

// InitFolders seeds a snapshot for each given folder from a fresh scan,
// without producing a changeset. This is the only way a snapshot comes into
// being without a prior diff, and re-initing a folder wipes its previous
// snapshot. Fails on the first folder that cannot be scanned or saved.
// Returns the number of snapshots written.
func (s *Service) InitFolders(location string, paths []*Path) (int, error) {
	for _, p := range paths {
		if !p.IsDir() {
			return 0, fmt.Errorf("path is not a directory: %s", p.String())
		}
	}

	for i, p := range paths {
		listing, err := s.fsmgr.Scan(p)
		if err != nil {
			return i, err
		}
		for _, skip := range listing.Skipped {
			s.logger.Warn("file skipped during init", "folder", p.String(), "path", skip.RelativePath, "reason", skip.Reason)
		}

		snap := &Snapshot{
			FolderPath: p.String(),
			TakenAt:    s.clock.Now(),
			Records:    listing.Records,
		}
		if err := s.snapshots.Save(location, snap); err != nil {
			return i, err
		}
		s.logger.Info("snapshot initialized", "location", location, "folder", p.String(), "files", len(listing.Records))
	}

	return len(paths), nil
}

// InitAll seeds snapshots for every folder tracked under a location.
// Returns the number of snapshots written.
func (s *Service) InitAll(location string) (int, error) {
	folders, err := s.registry.List(location)
	if err != nil {
		return 0, err
	}
	if len(folders) == 0 {
		return 0, fmt.Errorf("no folders tracked for location %q", location)
	}

	paths := make([]*Path, 0, len(folders))
	for _, f := range folders {
		p, err := s.fsmgr.Resolve(f)
		if err != nil {
			return 0, fmt.Errorf("resolving tracked folder: %w", err)
		}
		paths = append(paths, p)
	}

	return s.InitFolders(location, paths)
}

// GenerateChangesets runs scan -> diff -> build -> commit for every folder
// tracked under a location, writing into the given package builder.
//
// Failures are per-folder: a folder that cannot be scanned, has no snapshot,
// or suffers a copy failure is reported in the summary and its stored
// snapshot is left untouched, while sibling folders keep going. The snapshot
// commit is the last step for each folder, so a failed folder's run can be
// redone and reproduces the same changeset.
func (s *Service) GenerateChangesets(location string, builder PackageBuilder) (*RunSummary, error) {
	folders, err := s.registry.List(location)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("no folders tracked for location %q", location)
	}

	summary := &RunSummary{
		RunID:       s.idgen.New(),
		Location:    location,
		PackageRoot: builder.Root(),
		StartedAt:   s.clock.Now(),
	}
	s.logger.Info("changeset run started", "run", summary.RunID, "location", location, "folders", len(folders))

	for _, folder := range folders {
		result := s.processFolder(location, folder, builder)
		if result.Err != nil {
			s.logger.Error("folder failed", "location", location, "folder", folder, "error", result.Err)
		} else {
			s.logger.Info("folder committed",
				"location", location, "folder", folder,
				"added", result.Added, "modified", result.Modified, "deleted", result.Deleted)
		}
		summary.Folders = append(summary.Folders, result)
	}

	summary.FinishedAt = s.clock.Now()
	return summary, nil
}

// processFolder builds and commits the changeset for a single folder.
func (s *Service) processFolder(location, folder string, builder PackageBuilder) FolderResult {
	result := FolderResult{FolderPath: folder}
	folderName := filepath.Base(folder)

	root, err := s.fsmgr.Resolve(folder)
	if err != nil {
		result.Err = &ScanError{Path: folder, Err: err}
		return result
	}
	if !root.IsDir() {
		result.Err = &ScanError{Path: folder, Err: errors.New("not a directory")}
		return result
	}

	prev, err := s.snapshots.Load(location, folder)
	if err != nil {
		result.Err = err
		return result
	}

	listing, err := s.fsmgr.Scan(root)
	if err != nil {
		result.Err = err
		return result
	}
	result.Skipped = listing.Skipped

	current := carryForward(prev, listing)
	cs := Diff(prev, current)
	result.Added = len(cs.Added)
	result.Modified = len(cs.Modified)
	result.Deleted = len(cs.Deleted)

	// Copy added and modified files into the additions subtree. Copy
	// failures are collected so the summary can name every bad file, but
	// a single failure is enough to suppress the commit below.
	var copyErrs []error
	for _, rec := range append(append([]FileRecord{}, cs.Added...), cs.Modified...) {
		if err := s.copyFile(builder, root, folderName, rec); err != nil {
			copyErrs = append(copyErrs, err)
			continue
		}
		result.BytesCopied += rec.Size
	}

	if err := builder.WriteManifest(folderName, cs.Deleted); err != nil {
		result.Err = fmt.Errorf("writing deletion manifest for %s: %w", folderName, err)
		return result
	}

	if len(copyErrs) > 0 {
		result.Err = errors.Join(copyErrs...)
		return result
	}

	// Commit point: only now does the stored snapshot advance.
	snap := &Snapshot{
		FolderPath: folder,
		TakenAt:    s.clock.Now(),
		Records:    current,
	}
	if err := s.snapshots.Save(location, snap); err != nil {
		result.Err = err
		return result
	}

	return result
}

// carryForward merges the previous records of scan-skipped files into the
// current listing. A file the scanner could not read this run must not be
// classified as deleted, and it keeps its previous record in the committed
// snapshot, so a later run diffs it against real state.
func carryForward(prev *Snapshot, listing *Listing) []FileRecord {
	if len(listing.Skipped) == 0 {
		return listing.Records
	}

	idx := prev.Index()
	records := listing.Records
	for _, skip := range listing.Skipped {
		if old, ok := idx[skip.RelativePath]; ok {
			records = append(records, old)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].RelativePath < records[j].RelativePath })
	return records
}

// copyFile streams one source file into the package builder.
func (s *Service) copyFile(builder PackageBuilder, root *Path, folderName string, rec FileRecord) error {
	src, err := s.fsmgr.Open(root, rec.RelativePath)
	if err != nil {
		return &CopyError{RelativePath: rec.RelativePath, Err: err}
	}
	defer src.Close()

	if err := builder.AddFile(folderName, rec.RelativePath, src); err != nil {
		return &CopyError{RelativePath: rec.RelativePath, Err: err}
	}

	s.logger.Debug("file copied", "folder", folderName, "path", rec.RelativePath)
	return nil
}
