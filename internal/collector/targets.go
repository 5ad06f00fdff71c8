package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/codetrend/internal/contract"
)

// FilterTargets keeps the root-relative paths a collector would analyze:
// matching extensions, not excluded, and not hidden.
func FilterTargets(paths []string, opts Options) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if accepts(p, opts) {
			out = append(out, p)
		}
	}
	return out
}

func accepts(rel string, opts Options) bool {
	if !contract.HasExtension(rel, opts.extensions()) {
		return false
	}
	if contract.ShouldIgnore(rel, opts.Excludes) {
		return false
	}
	for part := range strings.SplitSeq(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}

// ExpandTargets resolves targets relative to root into the sorted, de-duplicated
// list of files to analyze. Directories are walked; targets that no longer
// exist are skipped.
func ExpandTargets(ctx context.Context, root string, targets []string, opts Options) ([]string, error) {
	seen := make(map[string]struct{})
	add := func(rel string) {
		if accepts(rel, opts) {
			seen[rel] = struct{}{}
		}
	}

	for _, target := range targets {
		rel := contract.NormalizePath(target)
		full := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				contract.LogDebug("Skipping missing target %s", rel)
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", full, err)
		}
		if !info.IsDir() {
			add(rel)
			continue
		}
		if err := walkDir(ctx, root, full, add); err != nil {
			return nil, err
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	slices.Sort(files)
	return files, nil
}

// walkDir reports every regular file below dir, skipping hidden directories.
func walkDir(ctx context.Context, root, dir string, visit func(rel string)) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		visit(contract.NormalizePath(rel))
		return nil
	})
}
