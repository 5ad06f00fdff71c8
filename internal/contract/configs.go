package contract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/codetrend/schema"
)

// Default values for configuration.
const (
	DefaultMaxRevisions = 50
	DefaultResultLimit  = 25
	MaxResultLimit      = 1000
	DefaultPrecision    = 2
	MaxPrecision        = 6
)

// DefaultCollectors lists the collectors run when none are configured.
var DefaultCollectors = []string{"raw", "cyclomatic", "maintainability", "halstead"}

// DefaultExtensions lists the source file extensions analyzed when none are configured.
var DefaultExtensions = []string{".py"}

// DefaultExcludes lists path patterns that are never analyzed.
var DefaultExcludes = []string{
	".git/", ".tox/", ".venv/", "venv/", "__pycache__/", ".eggs/", "node_modules/",
	"build/", "dist/", "site-packages/",
}

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for a command.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath   string // Absolute project root (git top-level when inside a repository)
	PathFilter string // Root-relative path the command is restricted to

	MaxRevisions     int
	Collectors       []string
	Excludes         []string
	Extensions       []string
	CollectorTimeout time.Duration // 0 disables the per-collector timeout

	CachePath      string
	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	Output      schema.OutputMode
	OutputFile  string
	Precision   int
	ResultLimit int
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	UseEmojis   bool
	Verbose     bool

	Metrics      []string // Metrics shown by report, rank and diff
	Revision     string   // Revision queried by rank (empty = latest)
	Ascending    bool     // Rank order
	Threshold    float64  // Rank breach threshold
	HasThreshold bool     // Threshold was set explicitly
	Message      bool     // Include commit messages in reports
	AllFiles     bool     // Diff every file, not only changed ones
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Path             string `mapstructure:"path"`
	MaxRevisions     int    `mapstructure:"max-revisions"`
	Collectors       string `mapstructure:"collectors"`
	Exclude          string `mapstructure:"exclude"`
	Extensions       string `mapstructure:"extensions"`
	CollectorTimeout string `mapstructure:"collector-timeout"`
	CachePath        string `mapstructure:"cache-path"`
	StoreBackend     string `mapstructure:"store-backend"`
	StoreDBConnect   string `mapstructure:"store-db-connect"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Limit            int    `mapstructure:"limit"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Emoji            string `mapstructure:"emoji"`
	Verbose          bool   `mapstructure:"verbose"`

	// --- Fields from report/rank/diff Flags() ---
	Metrics   string  `mapstructure:"metrics"`
	Revision  string  `mapstructure:"revision"`
	Asc       bool    `mapstructure:"asc"`
	Threshold float64 `mapstructure:"threshold"`
	Message   bool    `mapstructure:"message"`
	All       bool    `mapstructure:"all"`

	// ThresholdSet is set manually when the --threshold flag was changed.
	ThresholdSet bool
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Collectors = slices.Clone(c.Collectors)
	clone.Excludes = slices.Clone(c.Excludes)
	clone.Extensions = slices.Clone(c.Extensions)
	clone.Metrics = slices.Clone(c.Metrics)
	return &clone
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBuildInputs(cfg, input); err != nil {
		return err
	}
	if err := validateStoreConfigs(cfg, input); err != nil {
		return err
	}
	if err := validateQueryInputs(cfg, input); err != nil {
		return err
	}
	if err := resolveRepoPathAndFilter(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ProcessOutputInputs validates only the output fields.
func ProcessOutputInputs(cfg *Config, input *ConfigRawInput) error {
	return validateSimpleInputs(cfg, input)
}

// ProcessStoreInputs validates only the index backend fields. Store management
// commands use it since they do not need a project.
func ProcessStoreInputs(cfg *Config, input *ConfigRawInput) error {
	return validateStoreConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.FileBackend, schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(defaultString(input.Color, "yes"))
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	emojis, err := ParseBoolString(defaultString(input.Emoji, "no"))
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(defaultString(input.Output, string(schema.TextOut))))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}
	return nil
}

// validateBuildInputs processes the fields that shape an index build.
func validateBuildInputs(cfg *Config, input *ConfigRawInput) error {
	if input.MaxRevisions <= 0 {
		return fmt.Errorf("max-revisions must be greater than 0 (received %d)", input.MaxRevisions)
	}
	cfg.MaxRevisions = input.MaxRevisions

	cfg.Collectors = SplitList(input.Collectors)
	if len(cfg.Collectors) == 0 {
		cfg.Collectors = slices.Clone(DefaultCollectors)
	}

	cfg.Extensions = nil
	for _, ext := range SplitList(input.Extensions) {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions = append(cfg.Extensions, strings.ToLower(ext))
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = slices.Clone(DefaultExtensions)
	}

	cfg.Excludes = slices.Clone(DefaultExcludes)
	cfg.Excludes = append(cfg.Excludes, SplitList(input.Exclude)...)

	cfg.CollectorTimeout = 0
	if input.CollectorTimeout != "" && input.CollectorTimeout != "0" {
		d, err := time.ParseDuration(input.CollectorTimeout)
		if err != nil {
			return fmt.Errorf("invalid collector-timeout '%s'. Expected a duration like 30s or 2m: %w", input.CollectorTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("collector-timeout cannot be negative (received %s)", d)
		}
		cfg.CollectorTimeout = d
	}
	return nil
}

// validateStoreConfigs validates the index backend configuration.
func validateStoreConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(defaultString(input.StoreBackend, string(schema.FileBackend))))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be file, sqlite, mysql, postgresql", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	cfg.CachePath = input.CachePath
	if cfg.CachePath == "" {
		cfg.CachePath = DefaultCachePath()
	}
	cachePath, err := ExpandHome(cfg.CachePath)
	if err != nil {
		return fmt.Errorf("invalid cache-path '%s': %w", input.CachePath, err)
	}
	cfg.CachePath = cachePath
	return nil
}

// validateQueryInputs processes the fields used by report, rank and diff.
func validateQueryInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Metrics = SplitList(input.Metrics)
	cfg.Revision = strings.TrimSpace(input.Revision)
	cfg.Ascending = input.Asc
	cfg.Threshold = input.Threshold
	cfg.HasThreshold = input.ThresholdSet
	cfg.Message = input.Message
	cfg.AllFiles = input.All
	return nil
}

// resolveRepoPathAndFilter resolves the project root and sets the implicit path filter.
// A path outside of any git repository is its own root.
func resolveRepoPathAndFilter(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, statErr := os.Stat(absSearchPath)
	if statErr != nil {
		return fmt.Errorf("path %q does not exist: %w", searchPath, statErr)
	}
	contextPath := absSearchPath
	if !info.IsDir() {
		contextPath = filepath.Dir(absSearchPath)
	}

	root, err := client.GetRepoRoot(ctx, contextPath)
	switch {
	case errors.Is(err, schema.ErrInvalidRepository):
		root = contextPath
	case err != nil:
		return err
	}
	cfg.RepoPath = filepath.Clean(root)

	if input.Path != "" { // User-provided --path flag takes precedence
		cfg.PathFilter = NormalizePath(strings.TrimSuffix(input.Path, "/"))
		return nil
	}

	if absSearchPath != cfg.RepoPath {
		rel, err := filepath.Rel(cfg.RepoPath, absSearchPath)
		if err != nil {
			return err
		}
		if rel != "." {
			cfg.PathFilter = filepath.ToSlash(rel)
		}
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
