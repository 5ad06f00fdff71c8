package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// storeManager is the index store manager used by every command.
var storeManager contract.StoreManager = iocache.Manager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "codetrend",
	Short: "Track code metrics of a project across its revisions.",
	Long: `Codetrend runs code metric collectors over the revisions of a project and keeps
the results in an index, so you can see how every file, directory and function evolved.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".codetrend") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("CODETREND")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("max-revisions", contract.DefaultMaxRevisions)
	viper.SetDefault("collectors", strings.Join(contract.DefaultCollectors, ","))
	viper.SetDefault("extensions", strings.Join(contract.DefaultExtensions, ","))
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", "text")
	viper.SetDefault("store-backend", "file")
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("emoji", "no")
}

// readConfig merges the config file, env and flags of cmd into input.
func readConfig(cmd *cobra.Command) error {
	// Flags are bound per invocation, so commands can share flag names.
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	input.ThresholdSet = viper.IsSet("threshold")
	return nil
}

// sharedSetup unmarshals config, validates it against the project at repoPath
// and opens the index store.
func sharedSetup(ctx context.Context, cmd *cobra.Command, repoPath string) error {
	if err := readConfig(cmd); err != nil {
		return err
	}
	input.RepoPathStr = repoPath

	client := contract.NewLocalGitClient()
	if err := contract.ProcessAndValidate(ctx, cfg, client, input); err != nil {
		return err
	}
	contract.SetVerbose(cfg.Verbose)

	if err := iocache.InitStores(cfg.StoreBackend, cfg.CachePath, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize index store: %w", err)
	}
	return nil
}

// sharedSetupWrapper uses the first positional argument as the project path.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	repoPath := "."
	if len(args) > 0 {
		repoPath = args[0]
	}
	return sharedSetup(rootCtx, cmd, repoPath)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetStoreManager replaces the index store manager.
func SetStoreManager(mgr contract.StoreManager) {
	storeManager = mgr
}
