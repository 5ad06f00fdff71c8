package revsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// GitArchiver is the index listing name of the git source.
const GitArchiver = "git"

// GitSource walks commits of a git repository.
type GitSource struct {
	client      contract.GitClient
	root        string
	originalRef string
}

var _ contract.RevisionSource = &GitSource{} // Compile-time check

// NewGitSource records the checked out ref so Restore can return to it.
func NewGitSource(ctx context.Context, client contract.GitClient, root string) (*GitSource, error) {
	ref, err := client.GetCurrentRef(ctx, root)
	if err != nil {
		// An unborn branch has no ref to return to
		if !hasHistory(ctx, client, root) {
			return &GitSource{client: client, root: root}, nil
		}
		return nil, fmt.Errorf("failed to determine current ref: %w", err)
	}
	return &GitSource{client: client, root: root, originalRef: ref}, nil
}

// Name implements the RevisionSource interface.
func (s *GitSource) Name() string {
	return GitArchiver
}

// Root returns the repository root.
func (s *GitSource) Root() string {
	return s.root
}

// Revisions implements the RevisionSource interface.
// The oldest commit of the window lists every tracked file as added.
func (s *GitSource) Revisions(ctx context.Context, _ string, maxCount int) ([]schema.Revision, error) {
	dirty, err := s.client.GetUncommittedPaths(ctx, s.root, false)
	if err != nil {
		return nil, err
	}
	if len(dirty) > 0 {
		return nil, &schema.DirtyTreeError{Paths: dirty}
	}
	if !hasHistory(ctx, s.client, s.root) {
		return nil, fmt.Errorf("%w in %s", schema.ErrNoHistory, s.root)
	}

	commits, err := s.client.ListCommits(ctx, s.root, maxCount)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("%w in %s", schema.ErrNoHistory, s.root)
	}

	revs := make([]schema.Revision, 0, len(commits))
	for i, commit := range commits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		oldest := i == len(commits)-1
		rev, err := s.describe(ctx, commit, oldest)
		if err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}
	return revs, nil
}

// describe fills in the tracked files and changes of a commit.
func (s *GitSource) describe(ctx context.Context, commit contract.CommitInfo, allAdded bool) (schema.Revision, error) {
	tracked, err := s.client.ListFilesAtRef(ctx, s.root, commit.Hash)
	if err != nil {
		return schema.Revision{}, fmt.Errorf("failed to list files of %s: %w", commit.Hash, err)
	}

	rev := commitToRevision(commit)
	rev.TrackedFiles = tracked
	rev.TrackedDirs = contract.ParentDirs(tracked)

	if allAdded || len(commit.Parents) == 0 {
		rev.AddedFiles = tracked
		return rev, nil
	}
	changes, err := s.client.GetChangedFiles(ctx, s.root, commit.Parents[0], commit.Hash)
	if err != nil {
		return schema.Revision{}, fmt.Errorf("failed to diff %s: %w", commit.Hash, err)
	}
	rev.AddedFiles = changes.Added
	rev.ModifiedFiles = changes.Modified
	rev.DeletedFiles = changes.Deleted
	return rev, nil
}

// Checkout implements the RevisionSource interface.
func (s *GitSource) Checkout(ctx context.Context, rev schema.Revision) error {
	return s.client.Checkout(ctx, s.root, rev.Key)
}

// Restore implements the RevisionSource interface.
func (s *GitSource) Restore(ctx context.Context) error {
	if s.originalRef == "" {
		return nil
	}
	return s.client.Checkout(ctx, s.root, s.originalRef)
}

// Find implements the RevisionSource interface.
func (s *GitSource) Find(ctx context.Context, term string) (schema.Revision, error) {
	commit, err := s.client.GetCommit(ctx, s.root, term)
	if err != nil {
		if errors.Is(err, schema.ErrRevisionNotFound) {
			return schema.Revision{}, err
		}
		return schema.Revision{}, fmt.Errorf("%w: %s: %w", schema.ErrRevisionNotFound, term, err)
	}
	return commitToRevision(commit), nil
}

func commitToRevision(commit contract.CommitInfo) schema.Revision {
	return schema.Revision{
		Key:         commit.Hash,
		AuthorName:  commit.AuthorName,
		AuthorEmail: commit.AuthorEmail,
		Date:        commit.Date,
		Message:     commit.Message,
	}
}

// hasHistory reports whether HEAD points at a commit.
func hasHistory(ctx context.Context, client contract.GitClient, root string) bool {
	_, err := client.Run(ctx, root, "rev-parse", "--verify", "-q", "HEAD")
	return err == nil
}
