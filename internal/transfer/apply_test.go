package transfer_test

import (
	"os"
	"path/filepath"
	"testing"

	"backupbuddy/internal/transfer"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs_deleted_paths.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func writeDest(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(full, []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func TestApplyManifest(t *testing.T) {
	t.Run("deletes listed paths", func(t *testing.T) {
		t.Parallel()
		dest := t.TempDir()
		writeDest(t, dest, "old.txt", "sub/gone.txt", "keep.txt")
		manifest := writeManifest(t, "old.txt\nsub/gone.txt\n")

		result, err := transfer.ApplyManifest(manifest, dest)
		if err != nil {
			t.Fatalf("ApplyManifest() error = %v", err)
		}
		if len(result.Deleted) != 2 {
			t.Errorf("Deleted = %v, want 2 paths", result.Deleted)
		}
		if _, err := os.Stat(filepath.Join(dest, "old.txt")); !os.IsNotExist(err) {
			t.Error("old.txt still present")
		}
		if _, err := os.Stat(filepath.Join(dest, "keep.txt")); err != nil {
			t.Errorf("keep.txt removed: %v", err)
		}
	})

	t.Run("missing paths are reported, not fatal", func(t *testing.T) {
		t.Parallel()
		dest := t.TempDir()
		writeDest(t, dest, "present.txt")
		manifest := writeManifest(t, "absent.txt\npresent.txt\n")

		result, err := transfer.ApplyManifest(manifest, dest)
		if err != nil {
			t.Fatalf("ApplyManifest() error = %v", err)
		}
		if len(result.Missing) != 1 || result.Missing[0] != "absent.txt" {
			t.Errorf("Missing = %v, want [absent.txt]", result.Missing)
		}
		if len(result.Deleted) != 1 || result.Deleted[0] != "present.txt" {
			t.Errorf("Deleted = %v, want [present.txt]", result.Deleted)
		}
	})

	t.Run("empty manifest deletes nothing", func(t *testing.T) {
		t.Parallel()
		dest := t.TempDir()
		writeDest(t, dest, "keep.txt")
		manifest := writeManifest(t, "")

		result, err := transfer.ApplyManifest(manifest, dest)
		if err != nil {
			t.Fatalf("ApplyManifest() error = %v", err)
		}
		if len(result.Deleted) != 0 || len(result.Missing) != 0 {
			t.Errorf("result = %+v, want empty", result)
		}
	})

	t.Run("rejects entries that escape the destination", func(t *testing.T) {
		t.Parallel()
		dest := t.TempDir()
		manifest := writeManifest(t, "../outside.txt\n")

		if _, err := transfer.ApplyManifest(manifest, dest); err == nil {
			t.Error("ApplyManifest() expected error for escaping path")
		}
	})

	t.Run("rejects absolute entries", func(t *testing.T) {
		t.Parallel()
		dest := t.TempDir()
		manifest := writeManifest(t, "/etc/passwd\n")

		if _, err := transfer.ApplyManifest(manifest, dest); err == nil {
			t.Error("ApplyManifest() expected error for absolute path")
		}
	})

	t.Run("missing manifest file is an error", func(t *testing.T) {
		t.Parallel()
		if _, err := transfer.ApplyManifest(filepath.Join(t.TempDir(), "nope.txt"), t.TempDir()); err == nil {
			t.Error("ApplyManifest() expected error for missing manifest")
		}
	})
}
