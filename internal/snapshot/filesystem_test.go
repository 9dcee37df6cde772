package snapshot_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"backupbuddy/internal/bb"
	"backupbuddy/internal/snapshot"
)

func newStore(t *testing.T) (*snapshot.FileSystemStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := snapshot.NewFileSystemStore(dir)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	return store, dir
}

func TestFileSystemStore(t *testing.T) {
	taken := time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)

	t.Run("round-trips a snapshot", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)

		snap := &bb.Snapshot{
			FolderPath: "/home/user/docs",
			TakenAt:    taken,
			Records: []bb.FileRecord{
				{RelativePath: "a.txt", Size: 10, ModTime: taken.Add(-time.Hour)},
				{RelativePath: "sub/b.txt", Size: 20, ModTime: taken.Add(-2 * time.Hour), Checksum: "abcd"},
			},
		}
		if err := store.Save("nas", snap); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load("nas", "/home/user/docs")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.FolderPath != snap.FolderPath {
			t.Errorf("FolderPath = %q, want %q", got.FolderPath, snap.FolderPath)
		}
		if !got.TakenAt.Equal(taken) {
			t.Errorf("TakenAt = %v, want %v", got.TakenAt, taken)
		}
		if len(got.Records) != 2 {
			t.Fatalf("records = %d, want 2", len(got.Records))
		}
		if !got.Records[0].ModTime.Equal(snap.Records[0].ModTime) {
			t.Errorf("mtime did not survive reload: %v vs %v", got.Records[0].ModTime, snap.Records[0].ModTime)
		}
		if got.Records[1].Checksum != "abcd" {
			t.Errorf("checksum = %q, want %q", got.Records[1].Checksum, "abcd")
		}
	})

	t.Run("missing snapshot is ErrSnapshotMissing", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)

		_, err := store.Load("nas", "/never/seen")
		if !errors.Is(err, bb.ErrSnapshotMissing) {
			t.Errorf("Load() error = %v, want ErrSnapshotMissing", err)
		}
	})

	t.Run("save replaces the previous snapshot", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)

		first := &bb.Snapshot{FolderPath: "/d", TakenAt: taken, Records: []bb.FileRecord{
			{RelativePath: "a.txt", Size: 1, ModTime: taken},
		}}
		second := &bb.Snapshot{FolderPath: "/d", TakenAt: taken.Add(time.Hour), Records: []bb.FileRecord{
			{RelativePath: "b.txt", Size: 2, ModTime: taken},
		}}
		if err := store.Save("nas", first); err != nil {
			t.Fatalf("first Save() error = %v", err)
		}
		if err := store.Save("nas", second); err != nil {
			t.Fatalf("second Save() error = %v", err)
		}

		got, err := store.Load("nas", "/d")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(got.Records) != 1 || got.Records[0].RelativePath != "b.txt" {
			t.Errorf("records = %v, want [b.txt]", got.Records)
		}
	})

	t.Run("locations are isolated", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)

		snap := &bb.Snapshot{FolderPath: "/d", TakenAt: taken}
		if err := store.Save("nas", snap); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		if _, err := store.Load("offsite", "/d"); !errors.Is(err, bb.ErrSnapshotMissing) {
			t.Errorf("Load(offsite) error = %v, want ErrSnapshotMissing", err)
		}
	})

	t.Run("rejects unknown schema version", func(t *testing.T) {
		t.Parallel()
		store, dir := newStore(t)

		snap := &bb.Snapshot{FolderPath: "/d", TakenAt: taken}
		if err := store.Save("nas", snap); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		// Rewrite the stored document with a bumped version.
		entries, err := os.ReadDir(filepath.Join(dir, "nas"))
		if err != nil || len(entries) != 1 {
			t.Fatalf("ReadDir() = %v, %v", entries, err)
		}
		path := filepath.Join(dir, "nas", entries[0].Name())
		if err := os.WriteFile(path, []byte(`{"schema_version": 99, "folder_path": "/d", "files": []}`), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if _, err := store.Load("nas", "/d"); err == nil {
			t.Error("Load() expected schema version error")
		}
	})

	t.Run("corrupt document fails load", func(t *testing.T) {
		t.Parallel()
		store, dir := newStore(t)

		snap := &bb.Snapshot{FolderPath: "/d", TakenAt: taken}
		if err := store.Save("nas", snap); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		entries, _ := os.ReadDir(filepath.Join(dir, "nas"))
		path := filepath.Join(dir, "nas", entries[0].Name())
		if err := os.WriteFile(path, []byte("{truncated"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if _, err := store.Load("nas", "/d"); err == nil {
			t.Error("Load() expected decode error")
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		t.Parallel()
		store, dir := newStore(t)

		snap := &bb.Snapshot{FolderPath: "/d", TakenAt: taken}
		if err := store.Save("nas", snap); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		entries, err := os.ReadDir(filepath.Join(dir, "nas"))
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 1 {
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("directory entries = %v, want exactly one snapshot", names)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	t.Run("callers cannot mutate stored records", func(t *testing.T) {
		t.Parallel()
		store := snapshot.NewMemoryStore()

		snap := &bb.Snapshot{FolderPath: "/d", Records: []bb.FileRecord{{RelativePath: "a.txt", Size: 1}}}
		if err := store.Save("nas", snap); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, _ := store.Load("nas", "/d")
		got.Records[0].Size = 999

		again, _ := store.Load("nas", "/d")
		if again.Records[0].Size != 1 {
			t.Errorf("stored record mutated: size = %d", again.Records[0].Size)
		}
	})
}
