package core

import (
	"github.com/huangsam/codetrend/schema"
)

// CarryForward fills in the files a revision did not re-scan with their
// entries from the previous revision, then drops the files the revision deleted.
//
// On the seed revision nothing is carried: only freshly scanned files appear.
// Directories are never carried as leaves since aggregation recomputes them.
func CarryForward(current, previous schema.ResultSet, tracked, trackedDirs, deleted []string, isSeed bool) schema.ResultSet {
	if isSeed {
		return current
	}
	merged := make(schema.ResultSet, len(tracked))
	for p, e := range current {
		merged[p] = e
	}

	dirs := make(map[string]struct{}, len(trackedDirs))
	for _, d := range trackedDirs {
		dirs[d] = struct{}{}
	}

	for _, p := range tracked {
		if _, ok := merged[p]; ok {
			continue
		}
		if _, isDir := dirs[p]; isDir {
			continue
		}
		prev, ok := previous[p]
		if !ok || prev.IsDirectory() {
			continue
		}
		merged[p] = prev
	}

	for _, p := range deleted {
		delete(merged, p)
	}
	return merged
}
