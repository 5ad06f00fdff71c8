package revsource

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// FilesystemArchiver is the index listing name of the filesystem source.
const FilesystemArchiver = "filesystem"

// FilesystemSource treats a plain directory as a single revision.
// Checkout and Restore are no-ops.
type FilesystemSource struct {
	root string
}

var _ contract.RevisionSource = &FilesystemSource{} // Compile-time check

// NewFilesystemSource creates a source rooted at a directory.
func NewFilesystemSource(root string) *FilesystemSource {
	return &FilesystemSource{root: root}
}

// Name implements the RevisionSource interface.
func (s *FilesystemSource) Name() string {
	return FilesystemArchiver
}

// Root returns the directory the source walks.
func (s *FilesystemSource) Root() string {
	return s.root
}

// Revisions implements the RevisionSource interface.
// The key is derived from the root's modification time, so touching the
// directory produces a new revision.
func (s *FilesystemSource) Revisions(ctx context.Context, _ string, _ int) ([]schema.Revision, error) {
	rev, err := s.current()
	if err != nil {
		return nil, err
	}

	tracked, err := walkFiles(ctx, s.root)
	if err != nil {
		return nil, err
	}
	rev.TrackedFiles = tracked
	rev.TrackedDirs = contract.ParentDirs(tracked)
	rev.AddedFiles = tracked
	return []schema.Revision{rev}, nil
}

// current builds the revision header from the root's modification time.
func (s *FilesystemSource) current() (schema.Revision, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return schema.Revision{}, fmt.Errorf("failed to stat %s: %w", s.root, err)
	}
	mtime := info.ModTime()
	seconds := float64(mtime.UnixNano()) / 1e9
	sum := sha1.Sum([]byte(strconv.FormatFloat(seconds, 'f', -1, 64)))
	return schema.Revision{
		Key:         hex.EncodeToString(sum[:])[:7],
		AuthorName:  "Local User",
		AuthorEmail: "-",
		Date:        mtime.Unix(),
		Message:     "None",
	}, nil
}

// Checkout implements the RevisionSource interface.
func (s *FilesystemSource) Checkout(context.Context, schema.Revision) error {
	return nil
}

// Restore implements the RevisionSource interface.
func (s *FilesystemSource) Restore(context.Context) error {
	return nil
}

// Find implements the RevisionSource interface.
// Only the current revision can be found.
func (s *FilesystemSource) Find(_ context.Context, term string) (schema.Revision, error) {
	rev, err := s.current()
	if err != nil {
		return schema.Revision{}, err
	}
	if term == "" || len(term) > len(rev.Key) || rev.Key[:len(term)] != term {
		return schema.Revision{}, fmt.Errorf("%w: %s", schema.ErrRevisionNotFound, term)
	}
	return rev, nil
}

// walkFiles lists regular files below root as root-relative slash paths, skipping .git.
func walkFiles(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, contract.NormalizePath(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}
