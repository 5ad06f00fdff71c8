package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/codetrend/schema"
)

// writeMetricsText lists metrics grouped under their collector.
func writeMetricsText(w io.Writer, metrics []schema.MetricInfo) error {
	current := ""
	for _, info := range metrics {
		if info.Collector != current {
			current = info.Collector
			if _, err := fmt.Fprintf(w, "%s: %s\n", info.Collector, info.Description); err != nil {
				return err
			}
		}
		line := fmt.Sprintf("  %-28s %-13s %-8s %-7s %s\n",
			info.QualifiedName(info.Collector), info.Directionality, info.ValueType, info.AggregateName, info.Metric.Description)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeMetricsCSV(w io.Writer, metrics []schema.MetricInfo) error {
	header := []string{"metric", "collector", "description", "value_type", "directionality", "aggregate"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, info := range metrics {
			row := []string{
				info.QualifiedName(info.Collector),
				info.Collector,
				info.Metric.Description,
				string(info.ValueType),
				string(info.Directionality),
				info.AggregateName,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
