package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// writeTable renders rows under headers with right-aligned cells.
func writeTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// formatDelta renders a change with its sign, dropping decimals for whole
// numeric changes.
func formatDelta(m schema.Metric, delta float64, precision int) string {
	if m.ValueType == schema.NumericValue && delta == math.Trunc(delta) {
		return fmt.Sprintf("%+d", int64(delta))
	}
	return fmt.Sprintf("%+.*f", precision, delta)
}

// formatMetricValue renders a value followed by its change, if any. With
// colors the change takes the color of its label.
func formatMetricValue(m schema.Metric, v schema.MetricValue, precision int, colors bool) string {
	text := m.Format(v.Value, precision)
	if v.Delta == nil || *v.Delta == 0 {
		return text
	}
	delta := "(" + formatDelta(m, *v.Delta, precision) + ")"
	if colors {
		delta = contract.ColorizeDelta(v.Label, delta)
	}
	return text + " " + delta
}

// formatPlainDelta renders a change for machine readable outputs. It is empty
// when there is no change to report.
func formatPlainDelta(m schema.Metric, v schema.MetricValue, precision int) string {
	if v.Delta == nil {
		return ""
	}
	return formatDelta(m, *v.Delta, precision)
}
