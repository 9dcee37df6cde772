package bb

import "sort"

// Changeset classifies the difference between a stored snapshot and a
// current listing. A relative path appears in at most one bucket;
// unchanged paths are omitted entirely.
type Changeset struct {
	Added    []FileRecord
	Modified []FileRecord
	Deleted  []string
}

// Empty reports whether the changeset contains no entries.
func (c *Changeset) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Deleted) == 0
}

// Diff compares a previous snapshot against the current listing of the same
// folder and returns the resulting changeset.
//
// A path only in current is added; a path only in previous is deleted; a
// path in both is modified iff size or mtime differ. This is a deliberate
// metadata-only comparison: a file rewritten with identical size and mtime
// goes undetected. When both records carry a content checksum it is compared
// as well, which closes that gap at scan cost (see checksum mode in the
// scan config).
//
// A path whose type changed between runs never shows up as modified:
// directories contribute no records, so a file replaced by a directory is
// simply deleted, and a directory replaced by a file is simply added.
//
// Buckets are sorted by relative path so output is deterministic.
func Diff(previous *Snapshot, current []FileRecord) *Changeset {
	prev := previous.Index()

	cs := &Changeset{}
	seen := make(map[string]bool, len(current))

	for _, rec := range current {
		seen[rec.RelativePath] = true
		old, ok := prev[rec.RelativePath]
		switch {
		case !ok:
			cs.Added = append(cs.Added, rec)
		case recordChanged(old, rec):
			cs.Modified = append(cs.Modified, rec)
		}
	}

	for path := range prev {
		if !seen[path] {
			cs.Deleted = append(cs.Deleted, path)
		}
	}

	sort.Slice(cs.Added, func(i, j int) bool { return cs.Added[i].RelativePath < cs.Added[j].RelativePath })
	sort.Slice(cs.Modified, func(i, j int) bool { return cs.Modified[i].RelativePath < cs.Modified[j].RelativePath })
	sort.Strings(cs.Deleted)

	return cs
}

// recordChanged reports whether a file changed between two records of the
// same relative path.
func recordChanged(prev, cur FileRecord) bool {
	if prev.Size != cur.Size {
		return true
	}
	if !prev.ModTime.Equal(cur.ModTime) {
		return true
	}
	if prev.Checksum != "" && cur.Checksum != "" && prev.Checksum != cur.Checksum {
		return true
	}
	return false
}
