package registry

import (
	"fmt"
	"os"
	"path/filepath"
)

// Lock is an advisory single-holder lock implemented as an O_EXCL lock
// file. It fences registry mutation and changeset runs against a second
// concurrent process; a held lock makes the second process fail fast with
// a clear error rather than risk interleaved writes. There is no stale-lock
// takeover: if the process died without releasing, the user removes the
// lock file by hand (its content names the owning PID).
type Lock struct {
	path string
}

// Acquire takes the lock at the given path, failing if it is already held.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("another run holds the lock at %s (remove it if no run is active)", path)
		}
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}

	fmt.Fprintf(f, "%d\n", os.Getpid())
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing lock file: %w", err)
	}

	return &Lock{path: path}, nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("releasing lock: %w", err)
	}
	return nil
}
