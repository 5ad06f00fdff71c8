// Package core has the index build and the queries answered from the index.
package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/codetrend/internal/collector"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/internal/outwriter"
	"github.com/huangsam/codetrend/internal/revsource"
	"github.com/huangsam/codetrend/schema"
)

// ExecutorFunc defines the function signature for executing the index commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// Project bundles what every command needs to work on one project's index.
type Project struct {
	Source     contract.RevisionSource
	Collectors []contract.Collector
	Store      contract.IndexStore
}

// OpenProject picks the revision source of cfg.RepoPath, resolves the configured
// collectors and opens the matching index store.
func OpenProject(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.StoreManager) (*Project, error) {
	source, err := revsource.Open(ctx, client, cfg.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open revision source: %w", err)
	}
	collectors, err := collector.Resolve(cfg.Collectors, collector.OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	store := mgr.GetIndexStore(contract.ArchiverKey(source.Name(), cfg.RepoPath))
	if store == nil {
		return nil, fmt.Errorf("index store for %s is not available", cfg.RepoPath)
	}
	return &Project{Source: source, Collectors: collectors, Store: store}, nil
}

// ExecuteBuild updates the index of the configured project.
func ExecuteBuild(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	project, err := OpenProject(ctx, cfg, contract.NewLocalGitClient(), mgr)
	if err != nil {
		return err
	}
	if !collector.Available() {
		contract.LogWarn("Python collectors are unavailable in this build", collector.ErrNoCGO)
	}
	logHeader(ctx, cfg, "build")
	if err := Build(ctx, cfg, project.Source, project.Collectors, project.Store); err != nil {
		return err
	}
	contract.LogInfo("Completed in %s.", time.Since(start).Round(time.Millisecond))
	return nil
}

// GetIndexResults returns the indexed revisions, newest first, within cfg.ResultLimit.
func GetIndexResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.IndexedRevision, error) {
	project, err := OpenProject(ctx, cfg, contract.NewLocalGitClient(), mgr)
	if err != nil {
		return nil, err
	}
	revisions := project.Store.Revisions()
	if len(revisions) == 0 {
		return nil, schema.ErrEmptyIndex
	}
	if cfg.ResultLimit > 0 && len(revisions) > cfg.ResultLimit {
		revisions = revisions[:cfg.ResultLimit]
	}
	return revisions, nil
}

// ExecuteIndex prints the indexed revisions, newest first.
func ExecuteIndex(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	revisions, err := GetIndexResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteIndex(revisions, cfg)
}

// GetReportResults returns the history of path, which may be a file, a
// directory or a "file:name" detail key.
func GetReportResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, path string) (schema.Report, error) {
	project, err := OpenProject(ctx, cfg, contract.NewLocalGitClient(), mgr)
	if err != nil {
		return schema.Report{}, err
	}
	logHeader(ctx, cfg, "report "+displayPath(path))
	return BuildReport(project.Store, project.Collectors, path, cfg.Metrics, cfg.ResultLimit)
}

// ExecuteReport prints the history of cfg.PathFilter, or of a "file:name"
// detail key when detail is set.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, detail string) error {
	path := cfg.PathFilter
	if detail != "" {
		path += ":" + detail
	}
	report, err := GetReportResults(ctx, cfg, mgr, path)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteReport(report, cfg)
}

// RankOptionsFromConfig maps the rank flags onto RankOptions.
func RankOptionsFromConfig(cfg *contract.Config) RankOptions {
	opts := RankOptions{
		Revision:   cfg.Revision,
		PathFilter: cfg.PathFilter,
		Ascending:  cfg.Ascending,
		Limit:      cfg.ResultLimit,
	}
	if len(cfg.Metrics) > 0 {
		opts.Metric = cfg.Metrics[0]
	}
	if cfg.HasThreshold {
		threshold := cfg.Threshold
		opts.Threshold = &threshold
	}
	return opts
}

// GetRankResults ranks the files of the configured revision.
func GetRankResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.RankResult, error) {
	project, err := OpenProject(ctx, cfg, contract.NewLocalGitClient(), mgr)
	if err != nil {
		return schema.RankResult{}, err
	}
	logHeader(ctx, cfg, "rank")
	return RankFiles(project.Store, project.Collectors, RankOptionsFromConfig(cfg))
}

// ExecuteRank prints the files of a revision ordered by a metric. A breached
// threshold is reported as schema.ErrThresholdBreached after printing.
func ExecuteRank(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, err := GetRankResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteRank(result, cfg); err != nil {
		return err
	}
	if result.Breached {
		return fmt.Errorf("%w: %s crossed %v", schema.ErrThresholdBreached, result.Column, *result.Threshold)
	}
	return nil
}

// GetDiffResults compares the working tree with the newest indexed revision.
func GetDiffResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, paths []string) (schema.DiffResult, error) {
	project, err := OpenProject(ctx, cfg, contract.NewLocalGitClient(), mgr)
	if err != nil {
		return schema.DiffResult{}, err
	}
	logHeader(ctx, cfg, "diff")
	return DiffFiles(ctx, cfg, project.Collectors, project.Store, DiffOptions{
		Paths:   paths,
		Metrics: cfg.Metrics,
		All:     cfg.AllFiles,
	})
}

// ExecuteDiff prints the changes of the working tree against the newest indexed revision.
func ExecuteDiff(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, paths []string) error {
	result, err := GetDiffResults(ctx, cfg, mgr, paths)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDiff(result, cfg)
}

// ExecuteListMetrics prints every collector's declared metrics.
func ExecuteListMetrics(cfg *contract.Config) error {
	return outwriter.NewOutWriter().WriteMetrics(ListMetrics(collector.All(collector.OptionsFromConfig(cfg))), cfg)
}

// ListMetrics flattens the metric declarations of the collectors.
func ListMetrics(collectors []contract.Collector) []schema.MetricInfo {
	var out []schema.MetricInfo
	for _, c := range collectors {
		for _, m := range c.Metrics() {
			out = append(out, schema.MetricInfo{Collector: c.Name(), Description: c.Description(), Metric: m})
		}
	}
	return out
}

// logHeader prints a one-line summary of the command on stderr.
func logHeader(ctx context.Context, cfg *contract.Config, action string) {
	if shouldSuppressHeader(ctx) {
		return
	}
	repoName := filepath.Base(cfg.RepoPath)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}
	if cfg.UseEmojis {
		contract.LogInfo("🔎 Repo: %s (%s)", repoName, action)
		return
	}
	contract.LogInfo("Repo: %s (%s)", repoName, action)
}
