// Package parquet provides data structures and functions for exporting the
// revision index to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/codetrend/schema"
	"github.com/parquet-go/parquet-go"
)

// RevisionRow represents one indexed revision.
type RevisionRow struct {
	// Archiver is the revision source the revision belongs to
	Archiver string `parquet:"archiver,snappy"`

	// RevisionKey is the revision identifier (commit hash for git)
	RevisionKey string `parquet:"revision_key,snappy"`

	// AuthorName is the revision author
	AuthorName string `parquet:"author_name,snappy"`

	// AuthorEmail is the revision author's email
	AuthorEmail string `parquet:"author_email,snappy"`

	// RevisionDate is when the revision was authored (stored as TIMESTAMP with nanosecond precision)
	RevisionDate time.Time `parquet:"revision_date,snappy"`

	// Message is the revision summary line
	Message string `parquet:"message,snappy"`

	// Collectors is the comma separated list of collectors that ran
	Collectors string `parquet:"collectors,snappy"`
}

// MetricRow represents one metric value of one path in one revision.
type MetricRow struct {
	// RevisionKey references the parent revision
	RevisionKey string `parquet:"revision_key,snappy"`

	// RevisionDate duplicates the revision date for convenient time series queries
	RevisionDate time.Time `parquet:"revision_date,snappy"`

	// Collector is the collector that produced the value
	Collector string `parquet:"collector,snappy"`

	// Path is the root-relative path; directories hold aggregated values
	Path string `parquet:"path,snappy"`

	// Kind is either file or directory
	Kind string `parquet:"kind,snappy"`

	// Metric is the metric name within the collector
	Metric string `parquet:"metric,snappy"`

	// NumericValue holds numeric metric values (nullable)
	NumericValue *float64 `parquet:"numeric_value,optional,snappy"`

	// StringValue holds string metric values such as ranks and errors (nullable)
	StringValue *string `parquet:"string_value,optional,snappy"`
}

// WriteRevisionsParquet writes a slice of RevisionRow structs to a Parquet file.
func WriteRevisionsParquet(data []RevisionRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteMetricsParquet writes a slice of MetricRow structs to a Parquet file.
func WriteMetricsParquet(data []MetricRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

func writeParquet[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRevision converts an indexed revision to its Parquet row.
func ConvertRevision(archiver string, rev schema.IndexedRevision) RevisionRow {
	return RevisionRow{
		Archiver:     archiver,
		RevisionKey:  rev.Key,
		AuthorName:   rev.AuthorName,
		AuthorEmail:  rev.AuthorEmail,
		RevisionDate: rev.Time().UTC(),
		Message:      rev.Message,
		Collectors:   strings.Join(rev.Collectors, ","),
	}
}

// ConvertResults flattens a revision's result tree to one row per metric value.
// Rows are ordered by collector, path and metric so exports are reproducible.
func ConvertResults(rev schema.IndexedRevision, results schema.ResultTree) []MetricRow {
	var rows []MetricRow
	date := rev.Time().UTC()
	for _, collector := range sortedKeys(results) {
		set := results[collector]
		for _, path := range sortedKeys(set) {
			entry := set[path]
			for _, metric := range sortedKeys(entry.Total) {
				row := MetricRow{
					RevisionKey:  rev.Key,
					RevisionDate: date,
					Collector:    collector,
					Path:         path,
					Kind:         string(entry.Kind),
					Metric:       metric,
				}
				switch v := entry.Total[metric].(type) {
				case float64:
					row.NumericValue = &v
				case int:
					f := float64(v)
					row.NumericValue = &f
				case string:
					row.StringValue = &v
				default:
					s := fmt.Sprint(v)
					row.StringValue = &s
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
