// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/codetrend/schema"
)

// CommitInfo is the metadata of a single commit as reported by git log.
type CommitInfo struct {
	Hash        string
	Parents     []string
	AuthorName  string
	AuthorEmail string
	Date        int64
	Message     string
}

// FileChanges lists the paths touched by a commit relative to its first parent.
type FileChanges struct {
	Added    []string
	Modified []string
	Deleted  []string
}

// GitClient defines the git operations needed to walk a repository's history.
// This allows revision sources to be tested without a real git executable.
type GitClient interface {
	// Run executes a git command and returns its standard output.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetRepoRoot returns the absolute path of the repository containing contextPath.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetUncommittedPaths lists modified and staged paths in the working tree,
	// plus untracked paths when includeUntracked is set.
	GetUncommittedPaths(ctx context.Context, repoPath string, includeUntracked bool) ([]string, error)

	// GetCurrentRef returns the checked out branch name, or the HEAD hash when detached.
	GetCurrentRef(ctx context.Context, repoPath string) (string, error)

	// ListCommits returns at most maxCount commits reachable from HEAD, newest first.
	ListCommits(ctx context.Context, repoPath string, maxCount int) ([]CommitInfo, error)

	// GetCommit resolves a ref or hash prefix to a single commit.
	GetCommit(ctx context.Context, repoPath string, ref string) (CommitInfo, error)

	// ListFilesAtRef returns all tracked files at a specific reference.
	ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error)

	// GetChangedFiles returns the files added, modified and deleted between two refs.
	GetChangedFiles(ctx context.Context, repoPath string, baseRef string, targetRef string) (FileChanges, error)

	// Checkout switches the working tree to the given ref.
	Checkout(ctx context.Context, repoPath string, ref string) error
}

// RevisionSource enumerates revisions of a project and switches the working tree between them.
type RevisionSource interface {
	// Name identifies the source; the index keeps one listing per name.
	Name() string

	// Revisions returns at most maxCount revisions, newest first. A dirty tree
	// yields schema.ErrDirtyTree and an empty history yields schema.ErrNoHistory.
	Revisions(ctx context.Context, path string, maxCount int) ([]schema.Revision, error)

	// Checkout switches the working tree to the revision.
	Checkout(ctx context.Context, rev schema.Revision) error

	// Restore returns the working tree to the state it had before any checkout.
	Restore(ctx context.Context) error

	// Find resolves a search term (such as a hash prefix) to a revision.
	Find(ctx context.Context, term string) (schema.Revision, error)
}

// Collector is a pluggable analyzer producing named metrics for source files.
type Collector interface {
	// Name is the unique collector name (e.g. "raw").
	Name() string

	// Description is a one-line human readable summary.
	Description() string

	// Metrics lists the metrics this collector declares.
	Metrics() []schema.Metric

	// Run analyzes the targets below root. Per-file failures are reported as
	// error entries in the result set; an error return means the whole run failed.
	Run(ctx context.Context, root string, targets []string) (schema.ResultSet, error)
}

// IndexStore is the durable, revision-keyed store of analysis results for one source.
type IndexStore interface {
	// Archiver returns the source name this store is keyed by.
	Archiver() string

	// Exists reports whether a listing has been persisted before.
	Exists() (bool, error)

	// Load reads the listing; an empty or missing store yields an empty index.
	Load() (*schema.Index, error)

	// Append records a revision in the index and persists its results immediately.
	Append(rev schema.IndexedRevision, results schema.ResultTree) error

	// Save persists the listing.
	Save() error

	// Get loads the result tree of an indexed revision.
	Get(key string) (schema.ResultTree, error)

	// Contains reports whether a revision key has been indexed.
	Contains(key string) bool

	// Revisions lists indexed revisions newest first.
	Revisions() []schema.IndexedRevision

	// Last returns the newest indexed revision.
	Last() (schema.IndexedRevision, bool)
}

// StoreManager hands out index stores for the configured backend.
type StoreManager interface {
	// GetIndexStore returns the store holding the listing of the named source.
	GetIndexStore(archiver string) IndexStore

	// GetStatus returns status information about the backend.
	GetStatus() (schema.StoreStatus, error)
}
