// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// formatWriters holds one rendering per output mode.
type formatWriters struct {
	text func(io.Writer) error
	csv  func(io.Writer) error
	json func(io.Writer) error
}

// dispatch renders to cfg.OutputFile (stdout when empty) in the configured format.
func dispatch(cfg *contract.Config, what string, writers formatWriters) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, writers.json, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON %s: %w", what, err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, writers.csv, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV %s: %w", what, err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, writers.text, "Wrote table"); err != nil {
			return fmt.Errorf("error writing %s table: %w", what, err)
		}
	}
	return nil
}

// WriteIndex prints indexed revisions using the configured output format.
func (ow *OutWriter) WriteIndex(revisions []schema.IndexedRevision, cfg *contract.Config) error {
	return dispatch(cfg, "index", formatWriters{
		text: func(w io.Writer) error { return writeIndexTable(w, revisions, cfg) },
		csv:  func(w io.Writer) error { return writeIndexCSV(w, revisions, cfg) },
		json: func(w io.Writer) error { return writeJSON(w, revisions) },
	})
}

// WriteReport prints the history of a path using the configured output format.
func (ow *OutWriter) WriteReport(report schema.Report, cfg *contract.Config) error {
	return dispatch(cfg, "report", formatWriters{
		text: func(w io.Writer) error { return writeReportTable(w, report, cfg) },
		csv:  func(w io.Writer) error { return writeReportCSV(w, report, cfg) },
		json: func(w io.Writer) error { return writeJSON(w, report) },
	})
}

// WriteRank prints a ranking using the configured output format.
func (ow *OutWriter) WriteRank(result schema.RankResult, cfg *contract.Config) error {
	return dispatch(cfg, "rank", formatWriters{
		text: func(w io.Writer) error { return writeRankTable(w, result, cfg) },
		csv:  func(w io.Writer) error { return writeRankCSV(w, result, cfg) },
		json: func(w io.Writer) error { return writeJSON(w, result) },
	})
}

// WriteDiff prints working tree changes using the configured output format.
func (ow *OutWriter) WriteDiff(result schema.DiffResult, cfg *contract.Config) error {
	return dispatch(cfg, "diff", formatWriters{
		text: func(w io.Writer) error { return writeDiffTable(w, result, cfg) },
		csv:  func(w io.Writer) error { return writeDiffCSV(w, result, cfg) },
		json: func(w io.Writer) error { return writeJSON(w, result) },
	})
}

// WriteMetrics prints the declared metrics using the configured output format.
func (ow *OutWriter) WriteMetrics(metrics []schema.MetricInfo, cfg *contract.Config) error {
	return dispatch(cfg, "metrics", formatWriters{
		text: func(w io.Writer) error { return writeMetricsText(w, metrics) },
		csv:  func(w io.Writer) error { return writeMetricsCSV(w, metrics) },
		json: func(w io.Writer) error { return writeJSON(w, metrics) },
	})
}
