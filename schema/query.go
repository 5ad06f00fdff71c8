package schema

// MetricValue is one metric's value at a revision, with its change from the
// previous value when there is one.
type MetricValue struct {
	Metric string   `json:"metric"`          // Qualified name, collector.metric
	Value  any      `json:"value"`           // nil when the path had no value
	Delta  *float64 `json:"delta,omitempty"` // Only for numeric values with a predecessor
	Label  string   `json:"label,omitempty"` // Better, Worse or Unchanged
}

// ReportRow holds the metric values of one path at one indexed revision.
type ReportRow struct {
	Revision Revision      `json:"revision"`
	Values   []MetricValue `json:"values"`
}

// Report is the history of a path across indexed revisions, newest first.
type Report struct {
	Path    string      `json:"path"`
	Metrics []Metric    `json:"metrics"`
	Columns []string    `json:"columns"` // Qualified metric names in display order
	Rows    []ReportRow `json:"rows"`
}

// RankRow is one file's value in a ranking.
type RankRow struct {
	Rank  int    `json:"rank"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// RankResult orders the files of one revision by a metric.
type RankResult struct {
	Revision  Revision  `json:"revision"`
	Metric    Metric    `json:"metric"`
	Column    string    `json:"column"`
	Ascending bool      `json:"ascending"`
	Rows      []RankRow `json:"rows"`
	Total     any       `json:"total"` // Metric reducer applied to every ranked file
	Threshold *float64  `json:"threshold,omitempty"`
	Breached  bool      `json:"breached"` // Some file is on the wrong side of Threshold
}

// DiffRow compares one path or "file:function" key between the index and the working tree.
type DiffRow struct {
	Path   string        `json:"path"`
	Values []MetricValue `json:"values"` // Value is the working tree value, Delta is against Before
	Before []any         `json:"before"`
}

// DiffResult holds the working tree changes against the latest indexed revision.
type DiffResult struct {
	Revision Revision  `json:"revision"`
	Metrics  []Metric  `json:"metrics"`
	Columns  []string  `json:"columns"`
	Rows     []DiffRow `json:"rows"`
}

// MetricInfo describes one declared metric for listings.
type MetricInfo struct {
	Collector   string `json:"collector"`
	Description string `json:"collector_description"`
	Metric
}
