package core

import (
	"fmt"
	"slices"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// BuildReport collects the values of the requested metrics for a path (a file,
// a directory or a "file:function" key) over the newest limit revisions.
// Each value carries its change against the next older revision shown.
func BuildReport(store contract.IndexStore, collectors []contract.Collector, path string, addrs []string, limit int) (schema.Report, error) {
	resolved, err := resolveMetrics(collectors, addrs, DefaultReportMetrics)
	if err != nil {
		return schema.Report{}, err
	}
	revisions := store.Revisions()
	if len(revisions) == 0 {
		return schema.Report{}, schema.ErrEmptyIndex
	}
	if limit > 0 && len(revisions) > limit {
		revisions = revisions[:limit]
	}

	metrics, columns := metricsOf(resolved)
	report := schema.Report{Path: path, Metrics: metrics, Columns: columns}

	previous := make([]any, len(resolved))
	seen := make([]bool, len(resolved))
	found := false
	rows := make([]schema.ReportRow, 0, len(revisions))
	for _, rev := range slices.Backward(revisions) {
		tree, err := store.Get(rev.Key)
		if err != nil {
			return schema.Report{}, fmt.Errorf("failed to load revision %s: %w", rev.ShortKey(), err)
		}
		row := schema.ReportRow{Revision: rev.Revision, Values: make([]schema.MetricValue, len(resolved))}
		for i, r := range resolved {
			value := r.valueIn(tree, path)
			row.Values[i] = metricValue(r, previous[i], value, seen[i] && value != nil)
			if value != nil {
				previous[i], seen[i], found = value, true, true
			}
		}
		rows = append(rows, row)
	}
	if !found {
		return schema.Report{}, fmt.Errorf("no indexed data for %q", displayPath(path))
	}
	slices.Reverse(rows)
	report.Rows = rows
	return report, nil
}

// displayPath names the project root for messages.
func displayPath(p string) string {
	if p == contract.RootPath {
		return "."
	}
	return p
}
