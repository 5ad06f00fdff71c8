package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCachePath(t *testing.T) {
	path := DefaultCachePath()
	assert.NotEmpty(t, path)
	assert.True(t, strings.HasSuffix(path, ".codetrend"))

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, homeDir), "path %s should start with home dir %s", path, homeDir)
	assert.Equal(t, filepath.Join(path, "codetrend.db"), GetDBFilePath(path))
}

func TestExpandHome(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/cache")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "cache"), got)

	got, err = ExpandHome("/var/tmp/../cache")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/var/cache"), got)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"src/main.py", "src/main.py"},
		{"./src/main.py", "src/main.py"},
		{"src/../lib/utils.py", "lib/utils.py"},
		{"src/", "src"},
		{".", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.input))
		})
	}
}

func TestRelativeTo(t *testing.T) {
	root := filepath.FromSlash("/home/user/project")

	tests := []struct {
		name        string
		path        string
		expected    string
		expectError bool
	}{
		{"absolute within root", filepath.Join(root, "src", "main.py"), "src/main.py", false},
		{"already relative", "src/main.py", "src/main.py", false},
		{"root itself", root, "", false},
		{"outside root", filepath.FromSlash("/tmp/file.py"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RelativeTo(root, tt.path)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParentPaths(t *testing.T) {
	assert.Equal(t, []string{"", "src", "src/foo"}, ParentPaths("src/foo/bar.py"))
	assert.Equal(t, []string{""}, ParentPaths("setup.py"))
	assert.Nil(t, ParentPaths(""))
}

func TestIsAncestor(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		path     string
		expected bool
	}{
		{"root is ancestor of file", "", "a.py", true},
		{"root is not its own ancestor", "", "", false},
		{"direct parent", "src", "src/a.py", true},
		{"deep descendant", "src", "src/sub/a.py", true},
		{"sibling with common prefix", "src", "srcx/a.py", false},
		{"self", "src", "src", false},
		{"child is not ancestor of parent", "src/sub", "src", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAncestor(tt.dir, tt.path))
		})
	}
}

func TestIsWithin(t *testing.T) {
	assert.True(t, IsWithin("", "a.py"))
	assert.True(t, IsWithin("src", "src"))
	assert.True(t, IsWithin("src", "src/a.py"))
	assert.False(t, IsWithin("src", "srcx/a.py"))
}

func TestParentDirs(t *testing.T) {
	dirs := ParentDirs([]string{"a.py", "src/b.py", "src/sub/c.py", "src/d.py"})
	assert.Equal(t, []string{"", "src", "src/sub"}, dirs)
}

func TestArchiverKey(t *testing.T) {
	key := ArchiverKey("git", "/work/project")
	assert.True(t, strings.HasPrefix(key, "git-"))
	assert.Len(t, key, len("git-")+12)
	assert.Equal(t, key, ArchiverKey("git", "/work/project/"))
	assert.NotEqual(t, key, ArchiverKey("git", "/work/other"))
	assert.NotEqual(t, key, ArchiverKey("filesystem", "/work/project"))
}
