package contract

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// RootPath is the canonical key of the project root directory.
const RootPath = ""

// DefaultCachePath returns the directory holding the file index store and the SQLite database.
func DefaultCachePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".codetrend"
	}
	return filepath.Join(homeDir, ".codetrend")
}

// ArchiverKey names the index listing of one source over one project, so that
// several projects can share a cache path.
func ArchiverKey(sourceName, repoPath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(repoPath)))
	return fmt.Sprintf("%s-%x", sourceName, sum[:6])
}

// GetDBFilePath returns the path to the SQLite DB file for index storage.
func GetDBFilePath(cachePath string) string {
	return filepath.Join(cachePath, "codetrend.db")
}

// ExpandHome expands a leading "~/" to the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return filepath.Clean(p), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, strings.TrimPrefix(p, "~")), nil
}

// NormalizePath returns the canonical form of a root-relative path:
// forward slashes, no "./" prefix and no trailing slash. The root is "".
func NormalizePath(p string) string {
	p = filepath.ToSlash(p)
	p = path.Clean(p)
	if p == "." || p == "/" {
		return RootPath
	}
	return strings.TrimPrefix(p, "./")
}

// RelativeTo turns a path reported by a collector into a canonical root-relative path.
// Relative inputs are assumed to already be relative to root.
func RelativeTo(root, p string) (string, error) {
	if !filepath.IsAbs(p) {
		return NormalizePath(p), nil
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", fmt.Errorf("path %q is not below %q: %w", p, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is outside project root: %s", p)
	}
	return NormalizePath(rel), nil
}

// ParentPaths returns every ancestor directory of a canonical path, root first.
// ParentPaths("src/foo/bar.py") is ["", "src", "src/foo"].
func ParentPaths(p string) []string {
	if p == RootPath {
		return nil
	}
	parents := []string{RootPath}
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			parents = append(parents, p[:i])
		}
	}
	return parents
}

// IsAncestor reports whether dir is a proper ancestor of p. Component boundaries
// are respected, so "src" is an ancestor of "src/a.py" but not of "srcx/a.py".
func IsAncestor(dir, p string) bool {
	if p == dir {
		return false
	}
	if dir == RootPath {
		return p != RootPath
	}
	return strings.HasPrefix(p, dir) && p[len(dir)] == '/'
}

// IsWithin reports whether p is filter itself or one of its descendants.
// An empty filter matches everything.
func IsWithin(filter, p string) bool {
	return filter == RootPath || p == filter || IsAncestor(filter, p)
}

// ParentDirs derives the set of directories implied by a list of file paths, root included.
func ParentDirs(files []string) []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, f := range files {
		for _, d := range ParentPaths(f) {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}
