package cmd

import (
	"github.com/huangsam/codetrend/core"
	"github.com/spf13/cobra"
)

// rankCmd orders the files of a revision by a metric.
var rankCmd = &cobra.Command{
	Use:   "rank [path]",
	Short: "Rank the files of an indexed revision by a metric.",
	Long: `Order the files under a path by one metric at an indexed revision, highest
values first unless --asc is given. The total line applies the metric's reducer
to every ranked file.

With --threshold the command exits with an error when the total is worse than
the threshold: below it for metrics where higher is better, above it otherwise.
This makes rank usable as a CI gate.

Examples:
  # Least maintainable files at the newest indexed revision
  codetrend rank --metrics maintainability.mi --asc

  # Most complex files of a package at an older revision
  codetrend rank src/ -m cyclomatic.complexity -r 3f2a1bc

  # Fail when the mean maintainability index drops below 20
  codetrend rank -m maintainability.mi --threshold 20`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteRank(rootCtx, cfg, storeManager)
	},
}
