package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/huangsam/codetrend/core"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/spf13/cobra"
)

// diffCmd compares the working tree with the newest indexed revision.
var diffCmd = &cobra.Command{
	Use:   "diff [files...]",
	Short: "Compare the working tree against the newest indexed revision.",
	Long: `Run the collectors on the current files and show how their metrics differ from
the newest indexed revision. Nothing is written to the index.

Functions and classes are compared too and shown as 'file:name' rows. Without
arguments the whole project is compared.

Examples:
  # What did my uncommitted changes do to complexity?
  codetrend diff src/app.py -m cyclomatic.complexity

  # Every file, changed or not
  codetrend diff --all`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return sharedSetup(rootCtx, cmd, ".")
	},
	RunE: func(_ *cobra.Command, args []string) error {
		paths, err := projectPaths(cfg.RepoPath, args)
		if err != nil {
			return err
		}
		return core.ExecuteDiff(rootCtx, cfg, storeManager, paths)
	},
}

// projectPaths turns command line paths into project relative paths.
func projectPaths(root string, args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		rel, err := contract.RelativeTo(root, abs)
		if err != nil {
			return nil, fmt.Errorf("%s is outside of the project: %w", arg, err)
		}
		paths = append(paths, rel)
	}
	return paths, nil
}
