package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

func reportTitle(path string) string {
	if path == contract.RootPath {
		return "."
	}
	return path
}

func writeReportTable(w io.Writer, report schema.Report, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "History of %s\n", reportTitle(report.Path)); err != nil {
		return err
	}
	headers := []string{"Revision", "Author", "Date", "Age"}
	headers = append(headers, report.Columns...)
	if cfg.Message {
		headers = append(headers, "Message")
	}
	data := make([][]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		cells := revisionCells(row.Revision)
		for i, v := range row.Values {
			cells = append(cells, formatMetricValue(report.Metrics[i], v, cfg.Precision, cfg.UseColors))
		}
		if cfg.Message {
			cells = append(cells, truncateText(firstLine(row.Revision.Message), GetMaxTablePathWidth(cfg, len(headers)-1)))
		}
		data = append(data, cells)
	}
	return writeTable(w, headers, data)
}

func writeReportCSV(w io.Writer, report schema.Report, cfg *contract.Config) error {
	header := []string{"revision", "author_name", "date"}
	for _, col := range report.Columns {
		header = append(header, col, col+"_delta")
	}
	if cfg.Message {
		header = append(header, "message")
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range report.Rows {
			cells := []string{row.Revision.Key, row.Revision.AuthorName, row.Revision.Time().Format(contract.DateTimeFormat)}
			for i, v := range row.Values {
				m := report.Metrics[i]
				cells = append(cells, plainValue(m, v.Value, cfg.Precision), formatPlainDelta(m, v, cfg.Precision))
			}
			if cfg.Message {
				cells = append(cells, row.Revision.Message)
			}
			if err := cw.Write(cells); err != nil {
				return err
			}
		}
		return nil
	})
}
