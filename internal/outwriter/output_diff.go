package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

func writeDiffTable(w io.Writer, result schema.DiffResult, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "Working tree against %s\n", result.Revision.ShortKey()); err != nil {
		return err
	}
	if len(result.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No changes.")
		return err
	}

	pathWidth := GetMaxTablePathWidth(cfg, len(result.Columns))
	headers := append([]string{"Path"}, result.Columns...)
	data := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		cells := []string{contract.TruncatePath(row.Path, pathWidth)}
		for i, v := range row.Values {
			m := result.Metrics[i]
			before := m.Format(row.Before[i], cfg.Precision)
			after := formatMetricValue(m, v, cfg.Precision, cfg.UseColors)
			if before == m.Format(v.Value, cfg.Precision) {
				cells = append(cells, after)
				continue
			}
			cells = append(cells, before+" -> "+after)
		}
		data = append(data, cells)
	}
	return writeTable(w, headers, data)
}

func writeDiffCSV(w io.Writer, result schema.DiffResult, cfg *contract.Config) error {
	header := []string{"path"}
	for _, col := range result.Columns {
		header = append(header, col+"_before", col+"_after", col+"_delta")
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range result.Rows {
			cells := []string{row.Path}
			for i, v := range row.Values {
				m := result.Metrics[i]
				cells = append(cells, plainValue(m, row.Before[i], cfg.Precision), plainValue(m, v.Value, cfg.Precision), formatPlainDelta(m, v, cfg.Precision))
			}
			if err := cw.Write(cells); err != nil {
				return err
			}
		}
		return nil
	})
}

// plainValue formats a value for CSV, leaving missing values empty.
func plainValue(m schema.Metric, v any, precision int) string {
	if v == nil {
		return ""
	}
	return m.Format(v, precision)
}
