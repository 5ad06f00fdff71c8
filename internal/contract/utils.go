package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/huangsam/codetrend/schema"
)

// Change label constants.
const (
	BetterValue    = "Better"    // Metric moved in its preferred direction
	WorseValue     = "Worse"     // Metric moved against its preferred direction
	UnchangedValue = "Unchanged" // Metric did not move, or has no direction
)

// Color variables for console output.
var (
	BetterColor = color.New(color.FgGreen)           // BetterColor marks an improvement.
	WorseColor  = color.New(color.FgRed, color.Bold) // WorseColor marks a regression.
	InfoColor   = color.New(color.FgCyan)            // InfoColor marks informational lines.
	DimColor    = color.New(color.Faint)             // DimColor marks secondary details.
)

var verbose atomic.Bool

// SetVerbose enables or disables debug logging.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// GetPlainLabel returns a plain text label describing how a metric moved
// between two values. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(m schema.Metric, before, after any) string {
	better, comparable := m.IsBetter(before, after)
	switch {
	case !comparable:
		return UnchangedValue
	case better:
		return BetterValue
	default:
		return WorseValue
	}
}

// ColorizeDelta applies the color matching a change label to text.
func ColorizeDelta(label, text string) string {
	switch label {
	case BetterValue:
		return BetterColor.Sprint(text)
	case WorseValue:
		return WorseColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' match a
// directory component anywhere in the path. Patterns starting with '.' are
// treated as suffix (extension) matches.
// A user can provide patterns like "vendor/", "tests/", "*_pb2.py".
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		// If the pattern contains glob characters, try filepath.Match.
		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			// Also try matching against the base filename (e.g. *_pb2.py)
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		// Handle directory, suffix, or substring matches
		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) || strings.Contains(path, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// HasExtension reports whether path ends with one of the extensions (case-insensitive).
func HasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	if err == nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warn %s\n", msg)
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs an informational message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// LogDebug logs a message to stderr when verbose output is enabled.
func LogDebug(format string, args ...any) {
	if !verbose.Load() {
		return
	}
	_, _ = fmt.Fprint(os.Stderr, DimColor.Sprintf("Debug "+format, args...)+"\n")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
// Without this check, small maxWidth values could cause slice bounds errors in the truncation calculation.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
