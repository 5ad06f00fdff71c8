// Package revsource enumerates project revisions from git history or a plain directory.
package revsource

import (
	"context"
	"errors"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// Rooted is implemented by sources that know their project root.
type Rooted interface {
	Root() string
}

// Open picks the git source when path is inside a repository and falls back
// to the filesystem source otherwise. Other git errors are returned as is.
func Open(ctx context.Context, client contract.GitClient, path string) (contract.RevisionSource, error) {
	root, err := client.GetRepoRoot(ctx, path)
	if errors.Is(err, schema.ErrInvalidRepository) {
		contract.LogDebug("%s is not a git repository, using the filesystem source", path)
		return NewFilesystemSource(path), nil
	}
	if err != nil {
		return nil, err
	}
	return NewGitSource(ctx, client, root)
}
