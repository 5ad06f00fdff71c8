package revsource

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test User", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// newTestRepo creates a repository with three commits on main.
func newTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q", "-b", "main")
	writeFile(t, dir, "a.py", "x = 1\n")
	writeFile(t, dir, "pkg/b.py", "def f():\n    return 2\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "first")
	writeFile(t, dir, "a.py", "x = 1\ny = 2\n")
	writeFile(t, dir, "c.py", "z = 3\n")
	gitCmd(t, dir, "add", ".")
	gitCmd(t, dir, "commit", "-q", "-m", "second")
	gitCmd(t, dir, "rm", "-q", "c.py")
	gitCmd(t, dir, "commit", "-q", "-m", "third")
	return dir
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("git repository", func(t *testing.T) {
		repo := newTestRepo(t)
		source, err := Open(ctx, contract.NewLocalGitClient(), repo)
		require.NoError(t, err)
		assert.Equal(t, GitArchiver, source.Name())
	})

	t.Run("plain directory falls back", func(t *testing.T) {
		client := new(contract.MockGitClient)
		client.On("GetRepoRoot", ctx, "/tmp/plain").Return("", schema.ErrInvalidRepository)
		source, err := Open(ctx, client, "/tmp/plain")
		require.NoError(t, err)
		assert.Equal(t, FilesystemArchiver, source.Name())
	})

	t.Run("other errors are fatal", func(t *testing.T) {
		client := new(contract.MockGitClient)
		client.On("GetRepoRoot", ctx, "/tmp/x").Return("", errors.New("git not installed"))
		_, err := Open(ctx, client, "/tmp/x")
		assert.Error(t, err)
	})
}

func TestGitSource_Revisions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	source, err := NewGitSource(ctx, contract.NewLocalGitClient(), repo)
	require.NoError(t, err)

	revs, err := source.Revisions(ctx, repo, 10)
	require.NoError(t, err)
	require.Len(t, revs, 3)

	third, second, first := revs[0], revs[1], revs[2]
	assert.Equal(t, "third", third.Message)
	assert.Equal(t, []string{"c.py"}, third.DeletedFiles)
	assert.ElementsMatch(t, []string{"a.py", "pkg/b.py"}, third.TrackedFiles)

	assert.Equal(t, []string{"c.py"}, second.AddedFiles)
	assert.Equal(t, []string{"a.py"}, second.ModifiedFiles)
	assert.ElementsMatch(t, []string{"", "pkg"}, second.TrackedDirs)

	assert.ElementsMatch(t, []string{"a.py", "pkg/b.py"}, first.AddedFiles)
	assert.Equal(t, "Test User", first.AuthorName)

	// A window that excludes the root commit still treats its oldest commit as fully added
	window, err := source.Revisions(ctx, repo, 1)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.ElementsMatch(t, []string{"a.py", "pkg/b.py"}, window[0].AddedFiles)
}

func TestGitSource_NonASCIIPaths(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	ctx := context.Background()
	repo := t.TempDir()
	gitCmd(t, repo, "init", "-q", "-b", "main")
	writeFile(t, repo, "café.py", "x = 1\n")
	gitCmd(t, repo, "add", ".")
	gitCmd(t, repo, "commit", "-q", "-m", "first")
	writeFile(t, repo, "café.py", "x = 2\n")
	writeFile(t, repo, "données/ünï.py", "y = 1\n")
	gitCmd(t, repo, "add", ".")
	gitCmd(t, repo, "commit", "-q", "-m", "second")

	source, err := Open(ctx, contract.NewLocalGitClient(), repo)
	require.NoError(t, err)
	revs, err := source.Revisions(ctx, repo, 10)
	require.NoError(t, err)
	require.Len(t, revs, 2)

	assert.ElementsMatch(t, []string{"café.py", "données/ünï.py"}, revs[0].TrackedFiles)
	assert.ElementsMatch(t, []string{"", "données"}, revs[0].TrackedDirs)
	assert.Equal(t, []string{"café.py"}, revs[0].ModifiedFiles)
	assert.Equal(t, []string{"données/ünï.py"}, revs[0].AddedFiles)
	assert.Equal(t, []string{"café.py"}, revs[1].AddedFiles)
	for _, p := range revs[0].TrackedFiles {
		assert.FileExists(t, filepath.Join(repo, filepath.FromSlash(p)))
	}
}

func TestGitSource_CheckoutRestore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	source, err := NewGitSource(ctx, contract.NewLocalGitClient(), repo)
	require.NoError(t, err)

	revs, err := source.Revisions(ctx, repo, 10)
	require.NoError(t, err)

	require.NoError(t, source.Checkout(ctx, revs[1]))
	assert.FileExists(t, filepath.Join(repo, "c.py"))

	require.NoError(t, source.Restore(ctx))
	assert.NoFileExists(t, filepath.Join(repo, "c.py"))
	ref, err := contract.NewLocalGitClient().GetCurrentRef(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, "main", ref)

	found, err := source.Find(ctx, revs[2].Key[:7])
	require.NoError(t, err)
	assert.Equal(t, revs[2].Key, found.Key)

	_, err = source.Find(ctx, "deadbeefdeadbeef")
	assert.ErrorIs(t, err, schema.ErrRevisionNotFound)
}

func TestGitSource_DirtyTree(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	source, err := NewGitSource(ctx, contract.NewLocalGitClient(), repo)
	require.NoError(t, err)

	// Untracked files do not make the tree dirty
	writeFile(t, repo, "notes.txt", "hello\n")
	_, err = source.Revisions(ctx, repo, 10)
	require.NoError(t, err)

	writeFile(t, repo, "a.py", "changed = True\n")
	_, err = source.Revisions(ctx, repo, 10)
	require.ErrorIs(t, err, schema.ErrDirtyTree)
	var dirty *schema.DirtyTreeError
	require.ErrorAs(t, err, &dirty)
	assert.Equal(t, []string{"a.py"}, dirty.Paths)
}

func TestGitSource_NoHistory(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
	ctx := context.Background()
	repo := t.TempDir()
	gitCmd(t, repo, "init", "-q", "-b", "main")

	source, err := NewGitSource(ctx, contract.NewLocalGitClient(), repo)
	require.NoError(t, err)
	_, err = source.Revisions(ctx, repo, 10)
	assert.ErrorIs(t, err, schema.ErrNoHistory)
}

func TestGitSource_WithMockClient(t *testing.T) {
	ctx := context.Background()
	client := new(contract.MockGitClient)
	client.On("GetCurrentRef", ctx, "/repo").Return("main", nil)
	client.On("GetUncommittedPaths", ctx, "/repo", false).Return([]string{}, nil)
	client.On("Run", ctx, "/repo", "rev-parse", "--verify", "-q", "HEAD").Return([]byte("bbb\n"), nil)
	client.On("ListCommits", ctx, "/repo", 5).Return([]contract.CommitInfo{
		{Hash: "bbb", Parents: []string{"aaa"}, AuthorName: "B", Date: 200, Message: "second"},
		{Hash: "aaa", AuthorName: "A", Date: 100, Message: "first"},
	}, nil)
	client.On("ListFilesAtRef", ctx, "/repo", "bbb").Return([]string{"src/x.py", "y.py"}, nil)
	client.On("ListFilesAtRef", ctx, "/repo", "aaa").Return([]string{"src/x.py"}, nil)
	client.On("GetChangedFiles", ctx, "/repo", "aaa", "bbb").Return(contract.FileChanges{Added: []string{"y.py"}}, nil)
	client.On("Checkout", ctx, "/repo", "main").Return(nil)

	source, err := NewGitSource(ctx, client, "/repo")
	require.NoError(t, err)
	revs, err := source.Revisions(ctx, "/repo", 5)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, []string{"y.py"}, revs[0].AddedFiles)
	assert.Equal(t, []string{"src/x.py"}, revs[1].AddedFiles)
	assert.Equal(t, []string{"", "src"}, revs[1].TrackedDirs)

	require.NoError(t, source.Restore(ctx))
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "GetChangedFiles", ctx, "/repo", mock.Anything, "aaa")
}

func TestFilesystemSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "x = 1\n")
	writeFile(t, dir, "pkg/b.py", "y = 2\n")
	writeFile(t, dir, ".git/config", "ignored\n")

	source := NewFilesystemSource(dir)
	assert.Equal(t, FilesystemArchiver, source.Name())

	revs, err := source.Revisions(ctx, dir, 50)
	require.NoError(t, err)
	require.Len(t, revs, 1)
	rev := revs[0]
	assert.Len(t, rev.Key, 7)
	assert.Equal(t, "Local User", rev.AuthorName)
	assert.Equal(t, "-", rev.AuthorEmail)
	assert.Equal(t, "None", rev.Message)
	assert.ElementsMatch(t, []string{"a.py", "pkg/b.py"}, rev.TrackedFiles)
	assert.ElementsMatch(t, rev.TrackedFiles, rev.AddedFiles)

	// The key is stable while the directory is untouched
	again, err := source.Revisions(ctx, dir, 50)
	require.NoError(t, err)
	assert.Equal(t, rev.Key, again[0].Key)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(dir, future, future))
	touched, err := source.Revisions(ctx, dir, 50)
	require.NoError(t, err)
	assert.NotEqual(t, rev.Key, touched[0].Key)

	found, err := source.Find(ctx, touched[0].Key[:4])
	require.NoError(t, err)
	assert.Equal(t, touched[0].Key, found.Key)
	_, err = source.Find(ctx, "zzzzzzz")
	assert.ErrorIs(t, err, schema.ErrRevisionNotFound)

	assert.NoError(t, source.Checkout(ctx, rev))
	assert.NoError(t, source.Restore(ctx))
}
