package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/huangsam/codetrend/schema"
)

// Field and record separators used in git log output (ASCII unit and record separators).
const (
	gitFieldSep  = "\x1f"
	gitRecordSep = "\x1e"
	gitLogFormat = "--pretty=format:%H%x1f%P%x1f%an%x1f%ae%x1f%at%x1f%s%x1e"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q (%w): %s. If this is not a Git repository, verify the path or run 'git init'", repoPath, exitErr, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return "", fmt.Errorf("%w: %s", schema.ErrInvalidRepository, contextPath)
	} else if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetUncommittedPaths implements the GitClient interface.
func (c *LocalGitClient) GetUncommittedPaths(ctx context.Context, repoPath string, includeUntracked bool) ([]string, error) {
	untracked := "--untracked-files=no"
	if includeUntracked {
		untracked = "--untracked-files=all"
	}
	out, err := c.Run(ctx, repoPath, "status", "--porcelain", "-z", untracked)
	if err != nil {
		return nil, err
	}
	return parsePorcelain(string(out)), nil
}

// GetCurrentRef implements the GitClient interface.
func (c *LocalGitClient) GetCurrentRef(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "symbolic-ref", "--short", "-q", "HEAD")
	if err == nil {
		if ref := strings.TrimSpace(string(out)); ref != "" {
			return ref, nil
		}
	}
	// Detached HEAD
	out, err = c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ListCommits implements the GitClient interface.
func (c *LocalGitClient) ListCommits(ctx context.Context, repoPath string, maxCount int) ([]CommitInfo, error) {
	args := []string{"log", gitLogFormat}
	if maxCount > 0 {
		args = append(args, "-n", strconv.Itoa(maxCount))
	}
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return parseCommitLog(string(out))
}

// GetCommit implements the GitClient interface.
func (c *LocalGitClient) GetCommit(ctx context.Context, repoPath string, ref string) (CommitInfo, error) {
	out, err := c.Run(ctx, repoPath, "log", "-n", "1", gitLogFormat, ref+"^{commit}", "--")
	if err != nil {
		return CommitInfo{}, fmt.Errorf("%w: %s", schema.ErrRevisionNotFound, ref)
	}
	commits, err := parseCommitLog(string(out))
	if err != nil {
		return CommitInfo{}, err
	}
	if len(commits) == 0 {
		return CommitInfo{}, fmt.Errorf("%w: %s", schema.ErrRevisionNotFound, ref)
	}
	return commits[0], nil
}

// ListFilesAtRef implements the GitClient interface.
func (c *LocalGitClient) ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error) {
	out, err := c.Run(ctx, repoPath, "ls-tree", "-r", "-z", "--name-only", ref)
	if err != nil {
		return nil, err
	}
	return splitNUL(string(out)), nil
}

// GetChangedFiles implements the GitClient interface.
// An empty baseRef means targetRef is a root commit, so every file it tracks is added.
func (c *LocalGitClient) GetChangedFiles(ctx context.Context, repoPath string, baseRef string, targetRef string) (FileChanges, error) {
	if baseRef == "" {
		files, err := c.ListFilesAtRef(ctx, repoPath, targetRef)
		if err != nil {
			return FileChanges{}, err
		}
		return FileChanges{Added: files}, nil
	}
	out, err := c.Run(ctx, repoPath, "diff", "--name-status", "-z", "-M", "-C", baseRef, targetRef)
	if err != nil {
		return FileChanges{}, err
	}
	return parseNameStatus(string(out)), nil
}

// Checkout implements the GitClient interface.
func (c *LocalGitClient) Checkout(ctx context.Context, repoPath string, ref string) error {
	_, err := c.Run(ctx, repoPath, "checkout", "-q", ref)
	return err
}

// parseCommitLog parses records produced with gitLogFormat.
func parseCommitLog(out string) ([]CommitInfo, error) {
	var commits []CommitInfo
	for record := range strings.SplitSeq(out, gitRecordSep) {
		record = strings.TrimLeft(record, "\r\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := strings.Split(record, gitFieldSep)
		if len(fields) < 6 {
			return nil, fmt.Errorf("malformed git log record: %q", record)
		}
		date, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed commit date %q: %w", fields[4], err)
		}
		commits = append(commits, CommitInfo{
			Hash:        strings.TrimSpace(fields[0]),
			Parents:     strings.Fields(fields[1]),
			AuthorName:  fields[2],
			AuthorEmail: fields[3],
			Date:        date,
			Message:     strings.Join(fields[5:], gitFieldSep),
		})
	}
	return commits, nil
}

// splitNUL splits NUL-terminated git output. Paths in -z output are never quoted.
func splitNUL(out string) []string {
	fields := strings.Split(out, "\x00")
	if n := len(fields); n > 0 && fields[n-1] == "" {
		fields = fields[:n-1]
	}
	if fields == nil {
		return []string{}
	}
	return fields
}

// parseNameStatus parses `git diff --name-status -z -M -C` output, where the
// status and each path are separate NUL-terminated fields.
// A rename counts as deleting the old path and adding the new one; a copy adds the new path.
func parseNameStatus(out string) FileChanges {
	var changes FileChanges
	fields := splitNUL(out)
	for i := 0; i < len(fields); {
		status := fields[i]
		i++
		if status == "" {
			continue
		}
		paths := 1
		if status[0] == 'R' || status[0] == 'C' {
			paths = 2
		}
		if i+paths > len(fields) {
			break
		}
		switch status[0] {
		case 'A':
			changes.Added = append(changes.Added, fields[i])
		case 'M', 'T':
			changes.Modified = append(changes.Modified, fields[i])
		case 'D':
			changes.Deleted = append(changes.Deleted, fields[i])
		case 'R':
			changes.Deleted = append(changes.Deleted, fields[i])
			changes.Added = append(changes.Added, fields[i+1])
		case 'C':
			changes.Added = append(changes.Added, fields[i+1])
		}
		i += paths
	}
	return changes
}

// parsePorcelain extracts paths from `git status --porcelain -z` output.
// A rename or copy entry is followed by its source path, which is skipped.
func parsePorcelain(out string) []string {
	var paths []string
	fields := splitNUL(out)
	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 {
			continue
		}
		paths = append(paths, entry[3:])
		if entry[0] == 'R' || entry[0] == 'C' {
			i++
		}
	}
	return paths
}
