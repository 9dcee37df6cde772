package transfer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// ApplyResult reports the outcome of a deletion pass over one manifest.
type ApplyResult struct {
	Deleted []string // relative paths removed under the destination root
	Missing []string // listed paths that were not present (reported, not an error)
}

// ApplyManifest deletes each path listed in a deletion manifest under
// destRoot. This is the counterpart of the manual two-phase apply: the user
// first copies the additions subtree onto the destination, then runs the
// deletion pass with the folder's manifest.
//
// Each manifest line is a literal relative path; a path that is missing at
// the destination is reported in the result rather than failing the pass.
// Lines that are empty, absolute, or escape destRoot are rejected.
func ApplyManifest(manifestPath, destRoot string) (*ApplyResult, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	result := &ApplyResult{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(line)) {
			return result, fmt.Errorf("manifest entry escapes destination root: %q", line)
		}

		target := filepath.Join(destRoot, filepath.FromSlash(line))
		if _, err := os.Lstat(target); err != nil {
			if os.IsNotExist(err) {
				result.Missing = append(result.Missing, line)
				continue
			}
			return result, fmt.Errorf("checking %s: %w", line, err)
		}

		if err := os.Remove(target); err != nil {
			return result, fmt.Errorf("deleting %s: %w", line, err)
		}
		result.Deleted = append(result.Deleted, line)
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("reading manifest: %w", err)
	}

	return result, nil
}
