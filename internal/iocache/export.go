package iocache

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/huangsam/codetrend/internal/parquet"
)

// ExecuteStoreExport writes every indexed revision and its metric values to Parquet files.
func ExecuteStoreExport(w io.Writer, mgr *IndexStoreManager, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := mgr.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalRevisions == 0 {
		return errors.New("no indexed revisions found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total revisions: %d\n", status.TotalRevisions)

	archivers := make([]string, 0, len(status.Archivers))
	for name := range status.Archivers {
		archivers = append(archivers, name)
	}
	slices.Sort(archivers)

	var revisionRows []parquet.RevisionRow
	var metricRows []parquet.MetricRow
	for _, archiver := range archivers {
		store, ok := mgr.GetIndexStore(archiver).(*IndexStoreImpl)
		if !ok {
			return fmt.Errorf("unexpected store type for %s", archiver)
		}
		index, err := store.Load()
		if err != nil {
			return err
		}
		for _, key := range index.Keys() {
			blob, err := store.GetBlob(key)
			if err != nil {
				return err
			}
			rev, _ := index.Get(key)
			revisionRows = append(revisionRows, parquet.ConvertRevision(archiver, rev))
			metricRows = append(metricRows, parquet.ConvertResults(rev, blob.Results)...)
		}
	}

	revisionsFile := outputFile + ".revisions.parquet"
	if err := parquet.WriteRevisionsParquet(revisionRows, revisionsFile); err != nil {
		return fmt.Errorf("failed to write revisions: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d revisions to: %s\n", len(revisionRows), revisionsFile)

	metricsFile := outputFile + ".metrics.parquet"
	if err := parquet.WriteMetricsParquet(metricRows, metricsFile); err != nil {
		return fmt.Errorf("failed to write metric values: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d metric values to: %s\n", len(metricRows), metricsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - Apache Spark")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	return nil
}
