package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/codetrend/internal/collector"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// DefaultReportMetrics are shown by report and diff when no metrics are requested.
var DefaultReportMetrics = []string{"raw.loc", "cyclomatic.complexity", "maintainability.mi"}

// DefaultRankMetric orders files for rank when no metric is requested.
const DefaultRankMetric = "maintainability.mi"

// resolvedMetric is a metric together with the collector declaring it.
type resolvedMetric struct {
	collector string
	metric    schema.Metric
}

// column returns the qualified collector.metric name.
func (r resolvedMetric) column() string {
	return r.metric.QualifiedName(r.collector)
}

// valueIn looks up the metric for a path or "file:function" key in a result tree.
// Failed entries have no values.
func (r resolvedMetric) valueIn(tree schema.ResultTree, key string) any {
	rs, ok := tree[r.collector]
	if !ok {
		return nil
	}
	if e, ok := rs[key]; ok {
		if _, failed := e.Err(); failed {
			return nil
		}
	}
	metrics, ok := rs.Lookup(key)
	if !ok {
		return nil
	}
	return metrics[r.metric.Name]
}

// resolveMetrics resolves metric addresses against the collectors. When addrs
// is empty the defaults are used and the ones no collector declares are skipped.
func resolveMetrics(collectors []contract.Collector, addrs, defaults []string) ([]resolvedMetric, error) {
	lenient := len(addrs) == 0
	if lenient {
		addrs = defaults
	}
	out := make([]resolvedMetric, 0, len(addrs))
	for _, addr := range addrs {
		name, m, err := collector.LookupMetric(collectors, addr)
		if err != nil {
			if lenient {
				continue
			}
			return nil, err
		}
		out = append(out, resolvedMetric{collector: name, metric: m})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: none of %s", schema.ErrUnknownMetric, strings.Join(addrs, ", "))
	}
	return out, nil
}

// metricsOf returns the metrics of resolved addresses, in order.
func metricsOf(resolved []resolvedMetric) ([]schema.Metric, []string) {
	metrics := make([]schema.Metric, len(resolved))
	columns := make([]string, len(resolved))
	for i, r := range resolved {
		metrics[i] = r.metric
		columns[i] = r.column()
	}
	return metrics, columns
}

// FindRevision resolves a revision key or key prefix among the indexed
// revisions. An empty term selects the newest revision.
func FindRevision(store contract.IndexStore, term string) (schema.IndexedRevision, error) {
	if term == "" {
		last, ok := store.Last()
		if !ok {
			return schema.IndexedRevision{}, schema.ErrEmptyIndex
		}
		return last, nil
	}
	var matches []schema.IndexedRevision
	for _, rev := range store.Revisions() {
		if rev.Key == term {
			return rev, nil
		}
		if strings.HasPrefix(rev.Key, term) {
			matches = append(matches, rev)
		}
	}
	switch len(matches) {
	case 0:
		return schema.IndexedRevision{}, fmt.Errorf("%w: %s", schema.ErrRevisionNotIndexed, term)
	case 1:
		return matches[0], nil
	default:
		return schema.IndexedRevision{}, fmt.Errorf("revision prefix %q is ambiguous (%d matches)", term, len(matches))
	}
}

// metricValue pairs a value with its change from before.
func metricValue(r resolvedMetric, before, after any, hasBefore bool) schema.MetricValue {
	mv := schema.MetricValue{Metric: r.column(), Value: after}
	if !hasBefore {
		return mv
	}
	mv.Label = contract.GetPlainLabel(r.metric, before, after)
	b, ok1 := schema.AsFloat(before)
	a, ok2 := schema.AsFloat(after)
	if ok1 && ok2 {
		delta := a - b
		mv.Delta = &delta
	}
	return mv
}
