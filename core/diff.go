package core

import (
	"context"
	"maps"
	"reflect"
	"slices"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// DiffOptions select what DiffFiles compares.
type DiffOptions struct {
	Paths   []string // Root-relative files or directories; empty means the whole project
	Metrics []string // Metric addresses; empty means DefaultReportMetrics
	All     bool     // Keep rows whose values did not change
}

// DiffFiles analyzes the working tree and compares it with the newest indexed
// revision. Function and class details are compared as "file:name" rows.
// Nothing is written to the index.
func DiffFiles(ctx context.Context, cfg *contract.Config, collectors []contract.Collector, store contract.IndexStore, opts DiffOptions) (schema.DiffResult, error) {
	resolved, err := resolveMetrics(collectors, opts.Metrics, DefaultReportMetrics)
	if err != nil {
		return schema.DiffResult{}, err
	}
	last, ok := store.Last()
	if !ok {
		return schema.DiffResult{}, schema.ErrEmptyIndex
	}
	before, err := store.Get(last.Key)
	if err != nil {
		return schema.DiffResult{}, err
	}

	targets := slices.Clone(opts.Paths)
	if len(targets) == 0 {
		targets = []string{cfg.PathFilter}
	}
	for i, t := range targets {
		targets[i] = contract.NormalizePath(t)
	}

	needed := neededCollectors(collectors, resolved)
	sets, err := runCollectors(ctx, cfg.RepoPath, needed, targets, cfg.CollectorTimeout)
	if err != nil {
		return schema.DiffResult{}, err
	}
	after := make(schema.ResultTree, len(needed))
	for i, c := range needed {
		after[c.Name()] = sets[i]
	}

	metrics, columns := metricsOf(resolved)
	result := schema.DiffResult{Revision: last.Revision, Metrics: metrics, Columns: columns}
	for _, key := range diffKeys(after) {
		row := schema.DiffRow{
			Path:   key,
			Values: make([]schema.MetricValue, len(resolved)),
			Before: make([]any, len(resolved)),
		}
		changed := false
		for i, r := range resolved {
			b := r.valueIn(before, key)
			a := r.valueIn(after, key)
			row.Before[i] = b
			row.Values[i] = metricValue(r, b, a, b != nil && a != nil)
			if !reflect.DeepEqual(a, b) {
				changed = true
			}
		}
		if changed || opts.All {
			result.Rows = append(result.Rows, row)
		}
	}
	return result, nil
}

// neededCollectors keeps the collectors that declare one of the resolved metrics.
func neededCollectors(collectors []contract.Collector, resolved []resolvedMetric) []contract.Collector {
	var out []contract.Collector
	for _, c := range collectors {
		if slices.ContainsFunc(resolved, func(r resolvedMetric) bool { return r.collector == c.Name() }) {
			out = append(out, c)
		}
	}
	return out
}

// diffKeys lists every analyzed file followed by its "file:name" detail keys.
func diffKeys(tree schema.ResultTree) []string {
	files := make(map[string]map[string]struct{})
	for _, rs := range tree {
		for path, entry := range rs {
			if entry.IsDirectory() {
				continue
			}
			subs, ok := files[path]
			if !ok {
				subs = make(map[string]struct{})
				files[path] = subs
			}
			for sub := range entry.Detailed {
				subs[sub] = struct{}{}
			}
		}
	}
	var keys []string
	for _, path := range slices.Sorted(maps.Keys(files)) {
		keys = append(keys, path)
		for _, sub := range slices.Sorted(maps.Keys(files[path])) {
			keys = append(keys, path+":"+sub)
		}
	}
	return keys
}
