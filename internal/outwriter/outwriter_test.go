package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/codetrend/internal/collector"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

func testRevision(key string, date int64) schema.Revision {
	return schema.Revision{Key: key, AuthorName: "Alice", AuthorEmail: "alice@example.com", Date: date, Message: "Fix parser\n\nLonger body"}
}

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{Output: output, Precision: 2, Width: 160}
}

func sampleReport() schema.Report {
	loc := collector.RawMetrics[0]
	delta := 2.0
	return schema.Report{
		Path:    "pkg/a.py",
		Metrics: []schema.Metric{loc},
		Columns: []string{"raw.loc"},
		Rows: []schema.ReportRow{
			{Revision: testRevision("bbbbbbbbbb", 200), Values: []schema.MetricValue{{Metric: "raw.loc", Value: 12.0, Delta: &delta, Label: contract.UnchangedValue}}},
			{Revision: testRevision("aaaaaaaaaa", 100), Values: []schema.MetricValue{{Metric: "raw.loc", Value: 10.0}}},
		},
	}
}

func sampleRank(threshold *float64, breached bool) schema.RankResult {
	return schema.RankResult{
		Revision: testRevision("cccccccccc", 300),
		Metric:   collector.CyclomaticMetrics[0],
		Column:   "cyclomatic.complexity",
		Rows: []schema.RankRow{
			{Rank: 1, Path: "pkg/b.py", Value: 7.0},
			{Rank: 2, Path: "a.py", Value: 3.0},
		},
		Total:     5.0,
		Threshold: threshold,
		Breached:  breached,
	}
}

func TestWriteIndex(t *testing.T) {
	revisions := []schema.IndexedRevision{
		schema.NewIndexedRevision(testRevision("bbbbbbbbbb", 200), []string{"raw", "cyclomatic"}),
		schema.NewIndexedRevision(testRevision("aaaaaaaaaa", 100), []string{"raw"}),
	}

	t.Run("table", func(t *testing.T) {
		cfg := testConfig(schema.TextOut)
		cfg.Message = true
		var buf bytes.Buffer
		require.NoError(t, writeIndexTable(&buf, revisions, cfg))
		out := buf.String()
		assert.Contains(t, out, "bbbbbbb")
		assert.Contains(t, out, "raw,cyclomatic")
		assert.Contains(t, out, "Fix parser")
		assert.NotContains(t, out, "Longer body")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeIndexCSV(&buf, revisions, testConfig(schema.CSVOut)))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"revision", "author_name", "author_email", "date", "collectors"}, records[0])
		assert.Equal(t, "bbbbbbbbbb", records[1][0])
		assert.Equal(t, "raw|cyclomatic", records[1][4])
	})
}

func TestWriteReport(t *testing.T) {
	report := sampleReport()

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReportTable(&buf, report, testConfig(schema.TextOut)))
		out := buf.String()
		assert.Contains(t, out, "History of pkg/a.py")
		assert.Contains(t, out, "12 (+2)")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReportCSV(&buf, report, testConfig(schema.CSVOut)))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"revision", "author_name", "date", "raw.loc", "raw.loc_delta"}, records[0])
		assert.Equal(t, []string{"12", "+2"}, records[1][3:])
		assert.Equal(t, []string{"10", ""}, records[2][3:])
	})

	t.Run("json to file", func(t *testing.T) {
		cfg := testConfig(schema.JSONOut)
		cfg.OutputFile = filepath.Join(t.TempDir(), "report.json")
		require.NoError(t, NewOutWriter().WriteReport(report, cfg))

		content, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(content, &decoded))
		assert.Equal(t, "pkg/a.py", decoded["path"])
		assert.Len(t, decoded["rows"], 2)
	})
}

func TestWriteRank(t *testing.T) {
	t.Run("table without threshold", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRankTable(&buf, sampleRank(nil, false), testConfig(schema.TextOut)))
		out := buf.String()
		assert.Contains(t, out, "by cyclomatic.complexity (descending)")
		assert.Contains(t, out, "pkg/b.py")
		assert.Contains(t, out, "Total (mean): 5")
		assert.NotContains(t, out, "Threshold")
	})

	t.Run("table with breached threshold", func(t *testing.T) {
		threshold := 5.0
		var buf bytes.Buffer
		require.NoError(t, writeRankTable(&buf, sampleRank(&threshold, true), testConfig(schema.TextOut)))
		assert.Contains(t, buf.String(), "Threshold 5: breached")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRankCSV(&buf, sampleRank(nil, false), testConfig(schema.CSVOut)))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"1", "pkg/b.py", "7", "cccccccccc"}, records[1])
	})
}

func TestWriteDiff(t *testing.T) {
	loc := collector.RawMetrics[0]
	delta := 2.0
	result := schema.DiffResult{
		Revision: testRevision("dddddddddd", 400),
		Metrics:  []schema.Metric{loc},
		Columns:  []string{"raw.loc"},
		Rows: []schema.DiffRow{
			{Path: "a.py", Values: []schema.MetricValue{{Value: 12.0, Delta: &delta}}, Before: []any{10.0}},
			{Path: "new.py", Values: []schema.MetricValue{{Value: 4.0}}, Before: []any{nil}},
		},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeDiffTable(&buf, result, testConfig(schema.TextOut)))
		out := buf.String()
		assert.Contains(t, out, "Working tree against ddddddd")
		assert.Contains(t, out, "10 -> 12 (+2)")
		assert.Contains(t, out, "- -> 4")
	})

	t.Run("no changes", func(t *testing.T) {
		var buf bytes.Buffer
		empty := schema.DiffResult{Revision: result.Revision}
		require.NoError(t, writeDiffTable(&buf, empty, testConfig(schema.TextOut)))
		assert.Contains(t, buf.String(), "No changes.")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeDiffCSV(&buf, result, testConfig(schema.CSVOut)))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"path", "raw.loc_before", "raw.loc_after", "raw.loc_delta"}, records[0])
		assert.Equal(t, []string{"a.py", "10", "12", "+2"}, records[1])
		assert.Equal(t, []string{"new.py", "", "4", ""}, records[2])
	})
}

func TestWriteMetrics(t *testing.T) {
	var metrics []schema.MetricInfo
	for _, m := range collector.CyclomaticMetrics {
		metrics = append(metrics, schema.MetricInfo{Collector: "cyclomatic", Description: "Cyclomatic Complexity", Metric: m})
	}

	var buf bytes.Buffer
	require.NoError(t, writeMetricsText(&buf, metrics))
	assert.Contains(t, buf.String(), "cyclomatic: Cyclomatic Complexity")
	assert.Contains(t, buf.String(), "cyclomatic.complexity")

	buf.Reset()
	require.NoError(t, writeMetricsCSV(&buf, metrics))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"cyclomatic.complexity", "cyclomatic", "Cyclomatic Complexity", "numeric", "aim-low", "mean"}, records[1])
}

func TestGetMaxTablePathWidth(t *testing.T) {
	assert.Equal(t, 70, GetMaxTablePathWidth(&contract.Config{Width: 300}, 2))
	assert.Equal(t, 15, GetMaxTablePathWidth(&contract.Config{Width: 40}, 4))
	assert.Equal(t, 60, GetMaxTablePathWidth(&contract.Config{Width: 100}, 2))
}
