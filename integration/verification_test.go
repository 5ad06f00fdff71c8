//go:build basic

// Package integration contains integration tests for codetrend.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or use: go test -tags database ./integration for the SQL backends
package integration

import (
	"encoding/json"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/codetrend/schema"
)

// TestBuildAndQueryFileBackend indexes the fixture repository with the file
// backend and checks the answers against git.
func TestBuildAndQueryFileBackend(t *testing.T) {
	repo := newFixtureRepo(t)
	t.Setenv("CODETREND_CACHE_PATH", t.TempDir())
	t.Setenv("CODETREND_STORE_BACKEND", "file")

	_, err := runCodetrend(t, repo, "build")
	require.NoError(t, err)

	// A second build finds nothing new
	_, err = runCodetrend(t, repo, "build")
	require.NoError(t, err)

	out, err := runCodetrend(t, repo, "index", "--output", "json")
	require.NoError(t, err)
	var revisions []schema.IndexedRevision
	require.NoError(t, json.Unmarshal([]byte(out), &revisions))
	require.Len(t, revisions, len(fixtureCommits))
	assert.Equal(t, "Document add", revisions[0].Message)

	t.Run("report matches line counts from git", func(t *testing.T) {
		out, err := runCodetrend(t, repo, "report", "app.py", "--metrics", "raw.loc", "--output", "json")
		require.NoError(t, err)
		var report schema.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		require.Len(t, report.Rows, len(fixtureCommits))

		for _, row := range report.Rows {
			content, err := exec.Command("git", "-C", repo, "show", row.Revision.Key+":app.py").Output()
			require.NoError(t, err)
			assert.Equal(t, float64(strings.Count(string(content), "\n")), row.Values[0].Value, row.Revision.Message)
		}
	})

	t.Run("deleted files leave directory totals", func(t *testing.T) {
		out, err := runCodetrend(t, repo, "rank", "pkg", "--metrics", "raw.loc", "--output", "json")
		require.NoError(t, err)
		var result schema.RankResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		require.Len(t, result.Rows, 1)
		assert.Equal(t, "pkg/util.py", result.Rows[0].Path)
		assert.Equal(t, 3.0, result.Total)
	})

	t.Run("function report", func(t *testing.T) {
		out, err := runCodetrend(t, repo, "report", "app.py:main", "--metrics", "cyclomatic.complexity", "--output", "json")
		require.NoError(t, err)
		var report schema.Report
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		assert.Equal(t, 2.0, report.Rows[0].Values[0].Value)
	})

	t.Run("threshold breach fails", func(t *testing.T) {
		_, err := runCodetrend(t, repo, "rank", "--metrics", "cyclomatic.complexity", "--threshold", "1")
		assert.Error(t, err)
		_, err = runCodetrend(t, repo, "rank", "--metrics", "cyclomatic.complexity", "--threshold", "10")
		assert.NoError(t, err)
	})
}
