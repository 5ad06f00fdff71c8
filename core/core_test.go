package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/codetrend/internal/collector"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/internal/iocache"
	"github.com/huangsam/codetrend/schema"
)

func TestOpenProject(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)
	cfg.Collectors = []string{"raw", "cyclomatic"}

	client := &contract.MockGitClient{}
	client.On("GetRepoRoot", mock.Anything, cfg.RepoPath).Return("", schema.ErrInvalidRepository)

	store := newTestStore(t, t.TempDir())
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetIndexStore", contract.ArchiverKey("filesystem", cfg.RepoPath)).Return(store)

	project, err := OpenProject(ctx, cfg, client, mgr)
	require.NoError(t, err)
	assert.Equal(t, "filesystem", project.Source.Name())
	assert.Equal(t, []string{"raw", "cyclomatic"}, collectorNames(project.Collectors))
	assert.Same(t, store, project.Store)
	mgr.AssertExpectations(t)

	t.Run("unknown collector", func(t *testing.T) {
		bad := cfg.Clone()
		bad.Collectors = []string{"nope"}
		_, err := OpenProject(ctx, bad, client, mgr)
		assert.Error(t, err)
	})

	t.Run("missing store", func(t *testing.T) {
		empty := &iocache.MockStoreManager{}
		empty.On("GetIndexStore", mock.Anything).Return(nil)
		_, err := OpenProject(ctx, cfg, client, empty)
		assert.ErrorContains(t, err, "not available")
	})
}

func TestListMetrics(t *testing.T) {
	infos := ListMetrics(collector.All(collector.Options{}))
	require.NotEmpty(t, infos)

	var names []string
	for _, info := range infos {
		names = append(names, info.QualifiedName(info.Collector))
		assert.NotEmpty(t, info.Description)
	}
	for _, addr := range DefaultReportMetrics {
		assert.Contains(t, names, addr)
	}
	assert.Contains(t, names, DefaultRankMetric)
}

func TestRankOptionsFromConfig(t *testing.T) {
	cfg := &contract.Config{
		Revision:    "abc",
		PathFilter:  "pkg",
		Ascending:   true,
		ResultLimit: 10,
		Metrics:     []string{"raw.loc", "raw.sloc"},
	}
	opts := RankOptionsFromConfig(cfg)
	assert.Equal(t, "raw.loc", opts.Metric)
	assert.Equal(t, "abc", opts.Revision)
	assert.Equal(t, "pkg", opts.PathFilter)
	assert.True(t, opts.Ascending)
	assert.Equal(t, 10, opts.Limit)
	assert.Nil(t, opts.Threshold)

	cfg.HasThreshold = true
	cfg.Threshold = 0
	opts = RankOptionsFromConfig(cfg)
	require.NotNil(t, opts.Threshold)
	assert.Equal(t, 0.0, *opts.Threshold)
}
