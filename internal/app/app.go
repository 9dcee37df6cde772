package app

import (
	"fmt"
	"os"
	"path/filepath"

	"backupbuddy/internal/bb"
	"backupbuddy/internal/config"
	"backupbuddy/internal/fs"
	"backupbuddy/internal/history"
	"backupbuddy/internal/registry"
	"backupbuddy/internal/snapshot"
	"backupbuddy/internal/transfer"
)

// lockFileName is the advisory lock under the base directory that fences
// concurrent mutating runs.
const lockFileName = "bb.lock"

// App is the application layer between the CLI and the core Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and records mutating runs in the history
// store. The caller must call Close when done.
type App struct {
	cfg       *config.Config
	registry  bb.Registry
	snapshots bb.SnapshotStore
	fsmgr     bb.FilesystemManager
	history   history.Store
	service   *bb.Service
	logger    bb.Logger
	clock     bb.Clock

	operation string
	opID      string
	runID     int64
	status    string
	counts    history.Counts
	lock      *registry.Lock
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "AddFolders", "Backup").
func NewApp(cfg *config.Config, operation string) (*App, error) {
	fsmgr := fs.NewOSFilesystemManager(cfg.Scan.Ignore, cfg.Scan.Checksum)

	reg, err := registry.NewRegistryFromConfig(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("creating registry: %w", err)
	}

	snaps, err := snapshot.NewStoreFromConfig(cfg.Snapshots)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot store: %w", err)
	}

	hist, err := history.NewStoreFromConfig(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("creating history store: %w", err)
	}

	idgen := bb.UUIDGenerator{}
	opID := idgen.New()
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		hist.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	adapter := &slogAdapter{l: logger}
	svc := bb.NewService(reg, snaps, fsmgr, adapter, bb.RealClock{}, idgen)

	return &App{
		cfg:       cfg,
		registry:  reg,
		snapshots: snaps,
		fsmgr:     fsmgr,
		history:   hist,
		service:   svc,
		logger:    adapter,
		clock:     bb.RealClock{},
		operation: operation,
		opID:      opID,
		status:    "success",
		logFile:   logFile,
	}, nil
}

// beginRun acquires the advisory lock and records the run's start.
// Only mutating commands call it; read-only commands record nothing and
// never contend on the lock.
func (a *App) beginRun(location string) error {
	if a.lock == nil {
		l, err := registry.Acquire(filepath.Join(a.cfg.BaseDir, lockFileName))
		if err != nil {
			return err
		}
		a.lock = l
	}

	if a.runID == 0 {
		id, err := a.history.Begin(a.opID, a.operation, location, a.clock.Now())
		if err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		a.runID = id
	}
	return nil
}

// AddFolders resolves the given paths and registers them for tracking.
func (a *App) AddFolders(location string, rawPaths []string) error {
	if err := a.beginRun(location); err != nil {
		return err
	}

	paths := make([]*bb.Path, 0, len(rawPaths))
	for _, raw := range rawPaths {
		p, err := a.fsmgr.Resolve(raw)
		if err != nil {
			a.status = "error"
			return fmt.Errorf("resolving path: %w", err)
		}
		paths = append(paths, p)
	}

	if err := a.service.AddFolders(location, paths); err != nil {
		a.status = "error"
		return err
	}
	return nil
}

// RemoveFolders stops tracking the given paths. They need not exist on disk.
func (a *App) RemoveFolders(location string, rawPaths []string) error {
	if err := a.beginRun(location); err != nil {
		return err
	}

	paths := make([]string, 0, len(rawPaths))
	for _, raw := range rawPaths {
		abs, err := filepath.Abs(raw)
		if err != nil {
			a.status = "error"
			return fmt.Errorf("resolving path: %w", err)
		}
		paths = append(paths, abs)
	}

	if err := a.service.RemoveFolders(location, paths); err != nil {
		a.status = "error"
		return err
	}
	return nil
}

// ListFolders returns the folders tracked for a location.
func (a *App) ListFolders(location string) ([]string, error) {
	return a.service.ListFolders(location)
}

// InitFolders seeds snapshots for the given folders without producing a
// changeset. Returns the number of snapshots written.
func (a *App) InitFolders(location string, rawPaths []string) (int, error) {
	if err := a.beginRun(location); err != nil {
		return 0, err
	}

	paths := make([]*bb.Path, 0, len(rawPaths))
	for _, raw := range rawPaths {
		p, err := a.fsmgr.Resolve(raw)
		if err != nil {
			a.status = "error"
			return 0, fmt.Errorf("resolving path: %w", err)
		}
		paths = append(paths, p)
	}

	n, err := a.service.InitFolders(location, paths)
	if err != nil {
		a.status = "error"
		return n, err
	}
	a.counts.FoldersOK = n
	return n, nil
}

// InitAll seeds snapshots for every folder tracked under a location.
func (a *App) InitAll(location string) (int, error) {
	if err := a.beginRun(location); err != nil {
		return 0, err
	}

	n, err := a.service.InitAll(location)
	if err != nil {
		a.status = "error"
		return n, err
	}
	a.counts.FoldersOK = n
	return n, nil
}

// Backup generates a transfer package for a location: scan -> diff -> build
// -> snapshot commit for every tracked folder. The package lands under
// <package_dir>/<location>/<timestamp>/ and a run log is written into the
// package root.
func (a *App) Backup(location string) (*bb.RunSummary, error) {
	if err := a.beginRun(location); err != nil {
		return nil, err
	}

	root := filepath.Join(a.cfg.PackageDir, location, transfer.Timestamp(a.clock.Now()))
	pkg, err := transfer.NewPackage(root)
	if err != nil {
		a.status = "error"
		return nil, fmt.Errorf("creating transfer package: %w", err)
	}

	summary, err := a.service.GenerateChangesets(location, pkg)
	if err != nil {
		a.status = "error"
		return nil, err
	}

	ok, failed, copied, deleted := summary.Counts()
	a.counts = history.Counts{FoldersOK: ok, FoldersFailed: failed, FilesCopied: copied, FilesDeleted: deleted}
	if summary.Failed() {
		a.status = "error"
	}

	if err := writeRunLog(root, summary); err != nil {
		// The package itself is fine; a missing run log is not worth
		// failing the run over.
		a.logger.Warn("writing run log", "error", err)
	}

	return summary, nil
}

// ApplyDeletions runs the deletion pass for one manifest against a
// destination root.
func (a *App) ApplyDeletions(manifestPath, destRoot string) (*transfer.ApplyResult, error) {
	return transfer.ApplyManifest(manifestPath, destRoot)
}

// History returns the most recent recorded runs.
func (a *App) History(limit int) ([]*history.Run, error) {
	return a.history.Recent(limit)
}

// Close finalizes the run record and releases all resources.
func (a *App) Close() error {
	var firstErr error

	if a.runID != 0 {
		if err := a.history.Finish(a.runID, a.status, a.clock.Now(), a.counts); err != nil {
			firstErr = fmt.Errorf("finishing run record: %w", err)
		}
	}

	if err := a.history.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing history store: %w", err)
	}

	if a.lock != nil {
		if err := a.lock.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
