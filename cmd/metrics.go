package cmd

import (
	"github.com/huangsam/codetrend/core"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/spf13/cobra"
)

// listMetricsCmd lists every declared metric.
var listMetricsCmd = &cobra.Command{
	Use:   "list-metrics",
	Short: "List the collectors and the metrics they record.",
	Long: `Show every collector with its metrics, their value type, which direction is
better and how file values are combined into directory totals.

Use the 'collector.metric' names with --metrics on report, rank and diff.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := readConfig(cmd); err != nil {
			return err
		}
		return contract.ProcessOutputInputs(cfg, input)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteListMetrics(cfg)
	},
}
