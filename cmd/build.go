package cmd

import (
	"github.com/huangsam/codetrend/core"
	"github.com/spf13/cobra"
)

// buildCmd indexes the revisions of a project.
var buildCmd = &cobra.Command{
	Use:   "build [project-path]",
	Short: "Run the collectors over the project's revisions and update the index.",
	Long: `Walk the revisions of a project, oldest first, and store the metrics of every
collector in the index.

Only files added or modified by a revision are analyzed again. Values of untouched
files are carried forward and directory totals are recomputed from them. Revisions
already in the index are skipped, so running build again only processes new history.

Outside of a git repository the project directory itself is indexed as one revision.
The working tree must be clean since revisions are checked out in place.

Examples:
  # Index the last 50 commits of the current repository
  codetrend build

  # Index more history with only the raw and cyclomatic collectors
  codetrend build --max-revisions 200 --collectors raw,cyclomatic

  # Give up on a collector that runs longer than a minute per revision
  codetrend build --collector-timeout 1m`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteBuild(rootCtx, cfg, storeManager)
	},
}

// indexCmd lists the indexed revisions.
var indexCmd = &cobra.Command{
	Use:   "index [project-path]",
	Short: "List the indexed revisions, newest first.",
	Long: `Show every revision stored in the index of a project with its author, date
and the collectors that ran against it.

Examples:
  # Show the 10 newest indexed revisions with their messages
  codetrend index --limit 10 --message`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteIndex(rootCtx, cfg, storeManager)
	},
}
