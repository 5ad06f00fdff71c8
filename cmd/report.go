package cmd

import (
	"os"
	"strings"

	"github.com/huangsam/codetrend/core"
	"github.com/spf13/cobra"
)

// reportTarget is the file or directory given to report.
var reportTarget struct {
	path   string
	detail string
}

// splitDetail separates a "file:name" argument. An argument naming an existing
// path is never split.
func splitDetail(arg string) (path, detail string) {
	if _, err := os.Stat(arg); err == nil {
		return arg, ""
	}
	i := strings.LastIndex(arg, ":")
	if i <= 0 || i == len(arg)-1 {
		return arg, ""
	}
	return arg[:i], arg[i+1:]
}

// reportCmd shows the history of a path.
var reportCmd = &cobra.Command{
	Use:   "report <path[:function]>",
	Short: "Show how the metrics of a file, directory or function changed across revisions.",
	Long: `Print the indexed values of the selected metrics for a path, newest revision
first, with the change from the previous revision shown.

A file may be followed by ':name' to report on one of its functions, methods or
classes. Methods are named 'Class.method'.

Metrics are addressed as 'collector.metric' or by a bare metric name when only one
collector declares it. The default set is raw.loc, cyclomatic.complexity and
maintainability.mi. Use 'codetrend list-metrics' to see every metric.

Examples:
  # Lines of code and complexity of a module
  codetrend report src/app.py

  # Follow one function
  codetrend report src/app.py:handle_request -m cyclomatic.complexity

  # Totals of a package as CSV
  codetrend report src/ --metrics raw.sloc,halstead.volume --output csv`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		reportTarget.path, reportTarget.detail = splitDetail(args[0])
		return sharedSetup(rootCtx, cmd, reportTarget.path)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteReport(rootCtx, cfg, storeManager, reportTarget.detail)
	},
}
