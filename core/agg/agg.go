// Package agg rolls per-file metric results up to every ancestor directory.
package agg

import (
	"maps"
	"slices"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// Aggregate recomputes the directory totals of a result set.
//
// Roots are the ancestors of every current leaf plus previousRoots. For each
// root and each metric, the metric's reducer is applied to the values found on
// the root's descendant leaves, visited in path order. A metric that no leaf
// carries is left out of the total rather than reported as zero. Directory
// entries already present in results are ignored as inputs, so aggregating an
// aggregated set reproduces the same totals.
//
// The returned roots are the ancestors of the current leaves only; a root kept
// alive by previousRoots gets one empty entry and is then forgotten.
func Aggregate(results schema.ResultSet, metrics []schema.Metric, previousRoots []string) (schema.ResultSet, []string) {
	leaves := results.Files()
	paths := slices.Sorted(maps.Keys(leaves))

	// values[root][metric] holds the metric values of every descendant leaf
	values := make(map[string]map[string][]any)
	for _, p := range paths {
		entry := leaves[p]
		for _, root := range contract.ParentPaths(p) {
			byMetric, ok := values[root]
			if !ok {
				byMetric = make(map[string][]any)
				values[root] = byMetric
			}
			for _, m := range metrics {
				if v, ok := entry.Total[m.Name]; ok && v != nil {
					byMetric[m.Name] = append(byMetric[m.Name], v)
				}
			}
		}
	}
	roots := slices.Sorted(maps.Keys(values))

	out := make(schema.ResultSet, len(leaves)+len(roots))
	maps.Copy(out, leaves)

	for _, root := range roots {
		out[root] = schema.NewDirectoryEntry(reduce(values[root], metrics))
	}

	// Inherited roots that lost every leaf, including stale directory entries in the input
	for _, root := range previousRoots {
		if _, ok := out[root]; !ok {
			out[root] = schema.NewDirectoryEntry(nil)
		}
	}
	for p, e := range results {
		if _, ok := out[p]; !ok && e.IsDirectory() {
			out[p] = schema.NewDirectoryEntry(nil)
		}
	}
	return out, roots
}

// reduce applies every metric's reducer to the collected values.
func reduce(byMetric map[string][]any, metrics []schema.Metric) schema.Metrics {
	total := make(schema.Metrics, len(byMetric))
	for _, m := range metrics {
		vals := byMetric[m.Name]
		if len(vals) == 0 {
			continue
		}
		reducer := m.Aggregate
		if reducer == nil {
			reducer = ByName(m.AggregateName)
		}
		if reducer == nil {
			continue
		}
		if v := reducer(vals); v != nil {
			total[m.Name] = v
		}
	}
	return total
}

// RootsOf returns the directory keys of an aggregated result set.
func RootsOf(results schema.ResultSet) []string {
	var roots []string
	for p, e := range results {
		if e.IsDirectory() {
			roots = append(roots, p)
		}
	}
	slices.Sort(roots)
	return roots
}
