// Package collector implements the metric collectors run against each revision.
//
// Every collector parses Python sources with tree-sitter and reports one
// entry per file. A file that cannot be read or parsed yields an error entry
// instead of failing the whole run.
package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// Collector names.
const (
	RawName             = "raw"
	CyclomaticName      = "cyclomatic"
	MaintainabilityName = "maintainability"
	HalsteadName        = "halstead"
)

// Options configures how collectors pick and process their files.
type Options struct {
	Extensions []string
	Excludes   []string
	Workers    int // Files analyzed concurrently by one collector (0 = number of CPUs)
}

// OptionsFromConfig derives collector options from the runtime configuration.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{Extensions: cfg.Extensions, Excludes: cfg.Excludes}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return contract.DefaultExtensions
	}
	return o.Extensions
}

// analyzeFunc computes the entry of a single source file.
type analyzeFunc func(ctx context.Context, src []byte) (schema.Entry, error)

// factory builds a collector for the given options.
type factory func(opts Options) contract.Collector

// registry is the lookup table of known collectors, in display order.
var registry = []struct {
	name string
	new  factory
}{
	{RawName, NewRaw},
	{CyclomaticName, NewCyclomatic},
	{MaintainabilityName, NewMaintainability},
	{HalsteadName, NewHalstead},
}

// Names lists every registered collector.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, r := range registry {
		names = append(names, r.name)
	}
	return names
}

// ByName builds the named collector.
func ByName(name string, opts Options) (contract.Collector, error) {
	for _, r := range registry {
		if r.name == name {
			return r.new(opts), nil
		}
	}
	return nil, fmt.Errorf("%w: %s (available: %s)", schema.ErrUnknownCollector, name, strings.Join(Names(), ", "))
}

// Resolve builds the named collectors in the given order, rejecting unknown and repeated names.
func Resolve(names []string, opts Options) ([]contract.Collector, error) {
	out := make([]contract.Collector, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("collector %s listed more than once", name)
		}
		seen[name] = true
		c, err := ByName(name, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// All builds every registered collector.
func All(opts Options) []contract.Collector {
	out := make([]contract.Collector, 0, len(registry))
	for _, r := range registry {
		out = append(out, r.new(opts))
	}
	return out
}

// pythonCollector runs an analyzer over every Python file of its targets.
type pythonCollector struct {
	name        string
	description string
	metrics     []schema.Metric
	opts        Options
	analyze     analyzeFunc
}

var _ contract.Collector = &pythonCollector{} // Compile-time check

// Name implements the Collector interface.
func (c *pythonCollector) Name() string {
	return c.name
}

// Description implements the Collector interface.
func (c *pythonCollector) Description() string {
	return c.description
}

// Metrics implements the Collector interface.
func (c *pythonCollector) Metrics() []schema.Metric {
	return slices.Clone(c.metrics)
}

type fileResult struct {
	key   string
	entry schema.Entry
}

// Run implements the Collector interface.
// Result keys are the absolute paths of the analyzed files when root is absolute.
func (c *pythonCollector) Run(ctx context.Context, root string, targets []string) (schema.ResultSet, error) {
	if !Available() {
		return nil, ErrNoCGO
	}
	files, err := ExpandTargets(ctx, root, targets, c.opts)
	if err != nil {
		return nil, err
	}
	contract.LogDebug("Running %s collector on %d files", c.name, len(files))

	fileCh := make(chan string, len(files))
	resultCh := make(chan fileResult, len(files))
	errCh := make(chan error, 1)
	var wg sync.WaitGroup

	for range min(c.opts.workers(), max(len(files), 1)) {
		wg.Go(func() {
			for rel := range fileCh {
				if ctx.Err() != nil {
					continue
				}
				full := filepath.Join(root, filepath.FromSlash(rel))
				entry, err := c.analyzeFile(ctx, full)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					continue
				}
				resultCh <- fileResult{key: full, entry: entry}
			}
		})
	}

	for _, f := range files {
		fileCh <- f
	}
	close(fileCh)
	wg.Wait()
	close(resultCh)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	results := make(schema.ResultSet, len(files))
	for r := range resultCh {
		results[r.key] = r.entry
	}
	return results, nil
}

// analyzeFile reads and analyzes one file. Only cancellation is returned as an
// error; every other failure becomes an error entry.
func (c *pythonCollector) analyzeFile(ctx context.Context, full string) (schema.Entry, error) {
	src, err := os.ReadFile(full)
	if err != nil {
		return schema.NewErrorEntry(fmt.Sprintf("failed to read file: %v", err)), nil
	}
	entry, err := c.analyze(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return schema.Entry{}, ctx.Err()
		}
		contract.LogDebug("Failed to run %s collector on %s: %v", c.name, full, err)
		return schema.NewErrorEntry(err.Error()), nil
	}
	return entry, nil
}
