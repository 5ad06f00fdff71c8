package core

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// RankOptions select what RankFiles orders and how.
type RankOptions struct {
	Revision   string   // Key or prefix; empty means the newest revision
	Metric     string   // Metric address; empty means DefaultRankMetric
	PathFilter string   // Only files within this path
	Ascending  bool     // Lowest values first
	Limit      int      // Maximum rows, 0 for all
	Threshold  *float64 // Optional breach threshold
}

// RankFiles orders the files of one indexed revision by a metric. Files with
// no value (including failed ones) are left out. The total applies the metric's
// reducer to every ranked file before the limit is applied. With a threshold,
// the result is breached when the total is on the wrong side of it: below for
// aim-high metrics, above otherwise.
func RankFiles(store contract.IndexStore, collectors []contract.Collector, opts RankOptions) (schema.RankResult, error) {
	addr := opts.Metric
	if addr == "" {
		addr = DefaultRankMetric
	}
	resolved, err := resolveMetrics(collectors, []string{addr}, nil)
	if err != nil {
		return schema.RankResult{}, err
	}
	r := resolved[0]

	rev, err := FindRevision(store, opts.Revision)
	if err != nil {
		return schema.RankResult{}, err
	}
	if !rev.HasCollector(r.collector) {
		return schema.RankResult{}, fmt.Errorf("collector %s did not run on revision %s", r.collector, rev.ShortKey())
	}
	tree, err := store.Get(rev.Key)
	if err != nil {
		return schema.RankResult{}, err
	}

	var rows []schema.RankRow
	for path := range tree[r.collector].Files() {
		if !contract.IsWithin(opts.PathFilter, path) {
			continue
		}
		value := r.valueIn(tree, path)
		if value == nil {
			continue
		}
		rows = append(rows, schema.RankRow{Path: path, Value: value})
	}
	sortRankRows(rows, opts.Ascending)

	result := schema.RankResult{
		Revision:  rev.Revision,
		Metric:    r.metric,
		Column:    r.column(),
		Ascending: opts.Ascending,
		Threshold: opts.Threshold,
	}
	if len(rows) > 0 {
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = row.Value
		}
		if r.metric.Aggregate != nil {
			result.Total = r.metric.Aggregate(values)
		}
		if opts.Threshold != nil {
			result.Breached = breaches(r.metric, result.Total, *opts.Threshold)
		}
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	result.Rows = rows
	return result, nil
}

// sortRankRows orders numeric values numerically and anything else as text,
// breaking ties by path.
func sortRankRows(rows []schema.RankRow, ascending bool) {
	slices.SortFunc(rows, func(a, b schema.RankRow) int {
		c := compareValues(a.Value, b.Value)
		if !ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
}

func compareValues(a, b any) int {
	af, aok := schema.AsFloat(a)
	bf, bok := schema.AsFloat(b)
	switch {
	case aok && bok:
		return cmp.Compare(af, bf)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// breaches reports whether a numeric total is worse than the threshold.
// Non-numeric totals never breach.
func breaches(m schema.Metric, total any, threshold float64) bool {
	f, ok := schema.AsFloat(total)
	if !ok {
		return false
	}
	if m.Directionality == schema.AimHigh {
		return f < threshold
	}
	return f > threshold
}
