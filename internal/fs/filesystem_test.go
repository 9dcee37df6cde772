package fs_test

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"backupbuddy/internal/bb"
	"backupbuddy/internal/fs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func mustResolve(t *testing.T, m *fs.OSFilesystemManager, path string) *bb.Path {
	t.Helper()
	p, err := m.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve(%s) error = %v", path, err)
	}
	return p
}

func relPaths(records []bb.FileRecord) []string {
	paths := make([]string, 0, len(records))
	for _, r := range records {
		paths = append(paths, r.RelativePath)
	}
	return paths
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	t.Run("resolves directories and files", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "hello")

		m := fs.NewOSFilesystemManager(nil, false)

		p := mustResolve(t, m, dir)
		if !p.IsDir() {
			t.Error("IsDir() = false for directory")
		}
		f := mustResolve(t, m, filepath.Join(dir, "a.txt"))
		if f.IsDir() {
			t.Error("IsDir() = true for regular file")
		}
	})

	t.Run("fails for missing path", func(t *testing.T) {
		t.Parallel()
		m := fs.NewOSFilesystemManager(nil, false)
		if _, err := m.Resolve(filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("Resolve() expected error for missing path")
		}
	})

	t.Run("rejects symlinks", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("symlinks need privileges on windows")
		}
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "target.txt"), "x")
		link := filepath.Join(dir, "link.txt")
		if err := os.Symlink(filepath.Join(dir, "target.txt"), link); err != nil {
			t.Fatalf("Symlink() error = %v", err)
		}

		m := fs.NewOSFilesystemManager(nil, false)
		if _, err := m.Resolve(link); err == nil {
			t.Error("Resolve() expected error for symlink")
		}
	})
}

func TestOSFilesystemManager_Scan(t *testing.T) {
	t.Run("records use forward-slash relative paths", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "one")
		writeFile(t, filepath.Join(dir, "sub", "deep", "b.txt"), "two")

		m := fs.NewOSFilesystemManager(nil, false)
		listing, err := m.Scan(mustResolve(t, m, dir))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}

		got := relPaths(listing.Records)
		want := []string{"a.txt", "sub/deep/b.txt"}
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("Scan() = %v, want %v", got, want)
		}
	})

	t.Run("empty directories contribute nothing", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "empty", "nested"), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}

		m := fs.NewOSFilesystemManager(nil, false)
		listing, err := m.Scan(mustResolve(t, m, dir))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(listing.Records) != 0 {
			t.Errorf("Scan() = %v, want empty", relPaths(listing.Records))
		}
	})

	t.Run("symlinks are skipped, not followed", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("symlinks need privileges on windows")
		}
		dir := t.TempDir()
		outside := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "one")
		writeFile(t, filepath.Join(outside, "secret.txt"), "outside")
		if err := os.Symlink(outside, filepath.Join(dir, "linked-dir")); err != nil {
			t.Fatalf("Symlink() error = %v", err)
		}
		if err := os.Symlink(filepath.Join(dir, "a.txt"), filepath.Join(dir, "linked-file")); err != nil {
			t.Fatalf("Symlink() error = %v", err)
		}

		m := fs.NewOSFilesystemManager(nil, false)
		listing, err := m.Scan(mustResolve(t, m, dir))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if got := relPaths(listing.Records); len(got) != 1 || got[0] != "a.txt" {
			t.Errorf("Scan() = %v, want [a.txt]", got)
		}
	})

	t.Run("scanning a file fails", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "one")

		m := fs.NewOSFilesystemManager(nil, false)
		p := mustResolve(t, m, filepath.Join(dir, "a.txt"))
		if _, err := m.Scan(p); err == nil {
			t.Error("Scan() expected error for non-directory root")
		}
	})

	t.Run("config ignore patterns apply", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "keep.txt"), "x")
		writeFile(t, filepath.Join(dir, "junk.tmp"), "x")
		writeFile(t, filepath.Join(dir, "sub", "also.tmp"), "x")
		writeFile(t, filepath.Join(dir, "build", "out.txt"), "x")

		m := fs.NewOSFilesystemManager([]string{"*.tmp", "build/**"}, false)
		listing, err := m.Scan(mustResolve(t, m, dir))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if got := relPaths(listing.Records); len(got) != 1 || got[0] != "keep.txt" {
			t.Errorf("Scan() = %v, want [keep.txt]", got)
		}
	})

	t.Run("per-folder ignore file applies and is itself ignored", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ".bbignore"), "# logs\n*.log\n")
		writeFile(t, filepath.Join(dir, "keep.txt"), "x")
		writeFile(t, filepath.Join(dir, "noise.log"), "x")

		m := fs.NewOSFilesystemManager(nil, false)
		listing, err := m.Scan(mustResolve(t, m, dir))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if got := relPaths(listing.Records); len(got) != 1 || got[0] != "keep.txt" {
			t.Errorf("Scan() = %v, want [keep.txt]", got)
		}
	})

	t.Run("checksum mode attaches digests", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "same content")
		writeFile(t, filepath.Join(dir, "b.txt"), "same content")
		writeFile(t, filepath.Join(dir, "c.txt"), "different")

		m := fs.NewOSFilesystemManager(nil, true)
		listing, err := m.Scan(mustResolve(t, m, dir))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(listing.Records) != 3 {
			t.Fatalf("Scan() = %v", relPaths(listing.Records))
		}
		a, b, c := listing.Records[0], listing.Records[1], listing.Records[2]
		if a.Checksum == "" {
			t.Fatal("checksum empty in checksum mode")
		}
		if a.Checksum != b.Checksum {
			t.Errorf("identical content, different checksums: %s vs %s", a.Checksum, b.Checksum)
		}
		if a.Checksum == c.Checksum {
			t.Error("different content, same checksum")
		}
	})

	t.Run("metadata mode leaves checksum empty", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "x")

		m := fs.NewOSFilesystemManager(nil, false)
		listing, err := m.Scan(mustResolve(t, m, dir))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if listing.Records[0].Checksum != "" {
			t.Errorf("checksum = %q, want empty", listing.Records[0].Checksum)
		}
	})
}

func TestOSFilesystemManager_Open(t *testing.T) {
	t.Run("opens by relative path", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "sub", "b.txt"), "payload")

		m := fs.NewOSFilesystemManager(nil, false)
		rc, err := m.Open(mustResolve(t, m, dir), "sub/b.txt")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if string(content) != "payload" {
			t.Errorf("content = %q, want %q", content, "payload")
		}
	})
}
