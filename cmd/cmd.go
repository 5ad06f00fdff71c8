// Package cmd defines the command-line interface for codetrend.
package cmd

import (
	"strings"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(listMetricsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Persistent flags are shared by every command
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file")
	pf.String("path", "", "Restrict the command to this project relative path")
	pf.Int("max-revisions", contract.DefaultMaxRevisions, "Maximum number of revisions to index")
	pf.String("collectors", strings.Join(contract.DefaultCollectors, ","), "Comma-separated list of collectors to run")
	pf.String("exclude", "", "Comma-separated list of path prefixes or patterns to ignore")
	pf.String("extensions", strings.Join(contract.DefaultExtensions, ","), "Comma-separated list of source file extensions")
	pf.String("collector-timeout", "", "Abandon a collector after this duration (e.g. 30s, 0 disables)")
	pf.String("cache-path", "", "Directory of the index (default $HOME/.codetrend)")
	pf.String("store-backend", "file", "Index backend: file or sqlite or mysql or postgresql")
	pf.String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	pf.String("output", "text", "Output format: text or csv or json")
	pf.String("output-file", "", "Write output to this file instead of stdout")
	pf.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	pf.IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	pf.Int("width", 0, "Terminal width override (0 = auto-detect)")
	pf.String("color", "yes", "Enable colored changes in output (yes/no/true/false/1/0)")
	pf.String("emoji", "no", "Enable emojis in headers (yes/no/true/false/1/0)")
	pf.BoolP("verbose", "v", false, "Print debug logs")
	if err := viper.BindPFlags(pf); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	reportCmd.Flags().StringP("metrics", "m", "", "Comma-separated metrics to show (e.g. raw.loc,cyclomatic.complexity)")
	reportCmd.Flags().Bool("message", false, "Include commit messages")

	rankCmd.Flags().StringP("metrics", "m", "", "Metric to rank by (default maintainability.mi)")
	rankCmd.Flags().StringP("revision", "r", "", "Revision key or prefix (default newest indexed)")
	rankCmd.Flags().Bool("asc", false, "Show lowest values first")
	rankCmd.Flags().Float64("threshold", 0, "Exit non-zero when the total is worse than this value")

	diffCmd.Flags().StringP("metrics", "m", "", "Comma-separated metrics to compare")
	diffCmd.Flags().BoolP("all", "a", false, "Show unchanged files and functions too")

	indexCmd.Flags().Bool("message", false, "Include commit messages")

	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 for latest)")
}
