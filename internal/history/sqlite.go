package history

import (
	"database/sql"
	"fmt"
	"time"

	"backupbuddy/internal/history/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Run is one recorded CLI run that touched tracking state or produced a
// transfer package.
type Run struct {
	ID            int64
	OpID          string // the run's operation UUID, also stamped on log lines
	Operation     string
	Location      string
	StartedAt     time.Time
	FinishedAt    sql.NullTime
	Status        string // "running", "success" or "error"
	FoldersOK     int64
	FoldersFailed int64
	FilesCopied   int64
	FilesDeleted  int64
}

// Counts are the run-wide totals recorded when a run finishes.
type Counts struct {
	FoldersOK     int
	FoldersFailed int
	FilesCopied   int
	FilesDeleted  int
}

// Store records run history. Mutating CLI commands begin a run on startup
// and finish it on exit; read-only commands record nothing.
type Store interface {
	Begin(opID, operation, location string, startedAt time.Time) (int64, error)
	Finish(id int64, status string, finishedAt time.Time, counts Counts) error
	Recent(limit int) ([]*Run, error)
	Close() error
}

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the run-history database at
// path and migrates it to the latest schema. path can be ":memory:" for
// tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating run history: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection.
// Exported for tools and tests that need a properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must not
	// open a second one or the migrated schema disappears.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) Begin(opID, operation, location string, startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (op_id, operation, location, started_at) VALUES (?, ?, ?, ?)`,
		opID, operation, location, startedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("recording run start: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting run id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Finish(id int64, status string, finishedAt time.Time, counts Counts) error {
	_, err := s.db.Exec(
		`UPDATE runs
		 SET finished_at = ?, status = ?, folders_ok = ?, folders_failed = ?, files_copied = ?, files_deleted = ?
		 WHERE id = ?`,
		finishedAt, status, counts.FoldersOK, counts.FoldersFailed, counts.FilesCopied, counts.FilesDeleted, id,
	)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(limit int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, op_id, operation, location, started_at, finished_at, status,
		        folders_ok, folders_failed, files_copied, files_deleted
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.OpID, &r.Operation, &r.Location, &r.StartedAt, &r.FinishedAt,
			&r.Status, &r.FoldersOK, &r.FoldersFailed, &r.FilesCopied, &r.FilesDeleted); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NopStore is a Store that records nothing. Used with history type "none".
type NopStore struct{}

func (NopStore) Begin(string, string, string, time.Time) (int64, error) { return 0, nil }
func (NopStore) Finish(int64, string, time.Time, Counts) error          { return nil }
func (NopStore) Recent(int) ([]*Run, error)                             { return nil, nil }
func (NopStore) Close() error                                           { return nil }

// Compile-time checks
var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = NopStore{}
)
