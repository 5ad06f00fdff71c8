package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across packages.
var (
	ErrDirtyTree          = errors.New("working tree has uncommitted changes to tracked files")
	ErrNoHistory          = errors.New("no revisions found")
	ErrInvalidRepository  = errors.New("not a valid git repository")
	ErrRevisionNotFound   = errors.New("revision not found")
	ErrDuplicateRevision  = errors.New("revision already indexed")
	ErrRevisionNotIndexed = errors.New("revision not indexed")
	ErrUnknownMetric      = errors.New("unknown metric")
	ErrUnknownCollector   = errors.New("unknown collector")
	ErrEmptyIndex         = errors.New("index is empty. Run 'codetrend build' first")
	ErrThresholdBreached  = errors.New("threshold breached")
)

// DirtyTreeError lists the paths that make a working tree dirty.
type DirtyTreeError struct {
	Paths []string
}

// Error implements the error interface.
func (e *DirtyTreeError) Error() string {
	const shown = 5
	paths := e.Paths
	suffix := ""
	if len(paths) > shown {
		suffix = fmt.Sprintf(" (and %d more)", len(paths)-shown)
		paths = paths[:shown]
	}
	return fmt.Sprintf("%s: %s%s. Commit or stash them first", ErrDirtyTree, strings.Join(paths, ", "), suffix)
}

// Unwrap allows errors.Is(err, ErrDirtyTree).
func (e *DirtyTreeError) Unwrap() error {
	return ErrDirtyTree
}
