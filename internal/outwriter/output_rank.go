package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

func writeRankTable(w io.Writer, result schema.RankResult, cfg *contract.Config) error {
	order := "descending"
	if result.Ascending {
		order = "ascending"
	}
	if _, err := fmt.Fprintf(w, "Revision %s by %s (%s)\n", result.Revision.ShortKey(), result.Column, order); err != nil {
		return err
	}

	pathWidth := GetMaxTablePathWidth(cfg, 2)
	data := make([][]string, 0, len(result.Rows)+1)
	for _, row := range result.Rows {
		data = append(data, []string{
			strconv.Itoa(row.Rank),
			contract.TruncatePath(row.Path, pathWidth),
			result.Metric.Format(row.Value, cfg.Precision),
		})
	}
	if err := writeTable(w, []string{"Rank", "Path", result.Column}, data); err != nil {
		return err
	}

	total := fmt.Sprintf("Total (%s): %s", result.Metric.AggregateName, result.Metric.Format(result.Total, cfg.Precision))
	if _, err := fmt.Fprintln(w, total); err != nil {
		return err
	}
	if result.Threshold == nil {
		return nil
	}
	status := fmt.Sprintf("Threshold %s: ok", result.Metric.Format(*result.Threshold, cfg.Precision))
	if result.Breached {
		status = fmt.Sprintf("Threshold %s: breached", result.Metric.Format(*result.Threshold, cfg.Precision))
		if cfg.UseColors {
			status = contract.WorseColor.Sprint(status)
		}
	}
	_, err := fmt.Fprintln(w, status)
	return err
}

func writeRankCSV(w io.Writer, result schema.RankResult, cfg *contract.Config) error {
	header := []string{"rank", "path", result.Column, "revision"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range result.Rows {
			cells := []string{
				strconv.Itoa(row.Rank),
				row.Path,
				result.Metric.Format(row.Value, cfg.Precision),
				result.Revision.Key,
			}
			if err := cw.Write(cells); err != nil {
				return err
			}
		}
		return nil
	})
}
