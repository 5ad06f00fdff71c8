package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock of GitClient.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	ret := m.Called(ctx, contextPath)
	return ret.String(0), ret.Error(1)
}

// GetUncommittedPaths implements the GitClient interface.
func (m *MockGitClient) GetUncommittedPaths(ctx context.Context, repoPath string, includeUntracked bool) ([]string, error) {
	ret := m.Called(ctx, repoPath, includeUntracked)
	paths, _ := ret.Get(0).([]string)
	return paths, ret.Error(1)
}

// GetCurrentRef implements the GitClient interface.
func (m *MockGitClient) GetCurrentRef(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// ListCommits implements the GitClient interface.
func (m *MockGitClient) ListCommits(ctx context.Context, repoPath string, maxCount int) ([]CommitInfo, error) {
	ret := m.Called(ctx, repoPath, maxCount)
	commits, _ := ret.Get(0).([]CommitInfo)
	return commits, ret.Error(1)
}

// GetCommit implements the GitClient interface.
func (m *MockGitClient) GetCommit(ctx context.Context, repoPath string, ref string) (CommitInfo, error) {
	ret := m.Called(ctx, repoPath, ref)
	commit, _ := ret.Get(0).(CommitInfo)
	return commit, ret.Error(1)
}

// ListFilesAtRef implements the GitClient interface.
func (m *MockGitClient) ListFilesAtRef(ctx context.Context, repoPath string, ref string) ([]string, error) {
	ret := m.Called(ctx, repoPath, ref)
	files, _ := ret.Get(0).([]string)
	return files, ret.Error(1)
}

// GetChangedFiles implements the GitClient interface.
func (m *MockGitClient) GetChangedFiles(ctx context.Context, repoPath string, baseRef string, targetRef string) (FileChanges, error) {
	ret := m.Called(ctx, repoPath, baseRef, targetRef)
	changes, _ := ret.Get(0).(FileChanges)
	return changes, ret.Error(1)
}

// Checkout implements the GitClient interface.
func (m *MockGitClient) Checkout(ctx context.Context, repoPath string, ref string) error {
	ret := m.Called(ctx, repoPath, ref)
	return ret.Error(0)
}
