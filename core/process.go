package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/huangsam/codetrend/core/agg"
	"github.com/huangsam/codetrend/internal/collector"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// revisionState is what one processed revision hands to the next.
type revisionState struct {
	results schema.ResultTree   // Aggregated results per collector
	roots   map[string][]string // Directory keys per collector
	seed    bool                // No revision has been processed yet in this build
}

// initialState is the state before the seed revision.
func initialState() revisionState {
	return revisionState{
		results: schema.ResultTree{},
		roots:   map[string][]string{},
		seed:    true,
	}
}

// revisionProcessor analyzes single revisions for a build.
type revisionProcessor struct {
	cfg        *contract.Config
	source     contract.RevisionSource
	collectors []contract.Collector
	store      contract.IndexStore
	progress   *Progress
	opts       collector.Options
}

// processRevision checks out rev, runs every collector on its targets, merges
// the unchanged files of prev, aggregates directories and persists the result.
func (rp *revisionProcessor) processRevision(ctx context.Context, prev revisionState, rev schema.Revision) (revisionState, schema.IndexedRevision, error) {
	if err := rp.source.Checkout(ctx, rev); err != nil {
		return prev, schema.IndexedRevision{}, fmt.Errorf("failed to checkout revision %s: %w", rev.ShortKey(), err)
	}

	targets := rp.targets(rev, prev.seed)
	contract.LogDebug("Revision %s: %d targets (seed=%t)", rev.ShortKey(), len(targets), prev.seed)

	raw, err := runCollectors(ctx, rp.cfg.RepoPath, rp.collectors, targets, rp.cfg.CollectorTimeout)
	if err != nil {
		return prev, schema.IndexedRevision{}, err
	}

	next := revisionState{
		results: make(schema.ResultTree, len(rp.collectors)),
		roots:   make(map[string][]string, len(rp.collectors)),
	}
	for i, c := range rp.collectors {
		name := c.Name()
		if len(targets) > 0 && len(raw[i]) == 0 {
			contract.LogWarn(fmt.Sprintf("Collector %s produced no results for revision %s", name, rev.ShortKey()), nil)
		}
		merged := CarryForward(raw[i], prev.results[name], rev.TrackedFiles, rev.TrackedDirs, rev.DeletedFiles, prev.seed)
		aggregated, roots := agg.Aggregate(merged, c.Metrics(), prev.roots[name])
		next.results[name] = aggregated
		next.roots[name] = roots
	}

	indexed := schema.NewIndexedRevision(rev, collectorNames(rp.collectors))
	if err := rp.store.Append(indexed, next.results); err != nil {
		return prev, schema.IndexedRevision{}, err
	}
	if rp.progress != nil {
		rp.progress.Advance(len(rp.collectors))
	}
	return next, indexed, nil
}

// targets returns the files a revision needs analyzed: every tracked file on
// the seed, only the added and modified ones afterwards.
func (rp *revisionProcessor) targets(rev schema.Revision, seed bool) []string {
	var candidates []string
	if seed {
		candidates = rev.TrackedFiles
	} else {
		candidates = append(slices.Clone(rev.AddedFiles), rev.ModifiedFiles...)
	}

	within := make([]string, 0, len(candidates))
	for _, p := range candidates {
		p = contract.NormalizePath(p)
		if contract.IsWithin(rp.cfg.PathFilter, p) {
			within = append(within, p)
		}
	}
	filtered := collector.FilterTargets(within, rp.opts)
	slices.Sort(filtered)
	return slices.Compact(filtered)
}

// runCollectors fans the targets out to every collector and waits for all of
// them. A failing collector yields an error entry for each target instead of
// failing the revision; only cancellation of ctx is returned as an error.
// The returned result sets are root-relative and in collector order.
func runCollectors(ctx context.Context, root string, collectors []contract.Collector, targets []string, timeout time.Duration) ([]schema.ResultSet, error) {
	out := make([]schema.ResultSet, len(collectors))
	if len(targets) == 0 {
		for i := range out {
			out[i] = schema.ResultSet{}
		}
		return out, nil
	}

	var g errgroup.Group
	for i, c := range collectors {
		g.Go(func() error {
			results, err := runCollector(ctx, c, root, targets, timeout)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				contract.LogWarn(fmt.Sprintf("Collector %s failed", c.Name()), err)
				out[i] = errorResults(targets, err.Error())
				return nil
			}
			normalized, err := normalizeResults(root, results)
			if err != nil {
				contract.LogWarn(fmt.Sprintf("Collector %s returned unusable paths", c.Name()), err)
				out[i] = errorResults(targets, err.Error())
				return nil
			}
			out[i] = normalized
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// runCollector runs one collector, giving up after timeout when it is positive.
func runCollector(ctx context.Context, c contract.Collector, root string, targets []string, timeout time.Duration) (schema.ResultSet, error) {
	if timeout <= 0 {
		return c.Run(ctx, root, targets)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		results schema.ResultSet
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, err := c.Run(runCtx, root, targets)
		done <- outcome{results, err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("timed out after %s", timeout)
		}
		return o.results, o.err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("timed out after %s", timeout)
	}
}

// normalizeResults rewrites the keys of a collector's output to canonical root-relative paths.
func normalizeResults(root string, results schema.ResultSet) (schema.ResultSet, error) {
	out := make(schema.ResultSet, len(results))
	for p, entry := range results {
		rel, err := contract.RelativeTo(root, p)
		if err != nil {
			return nil, err
		}
		out[rel] = entry
	}
	return out, nil
}

// errorResults records the same failure for every target file.
func errorResults(targets []string, msg string) schema.ResultSet {
	out := make(schema.ResultSet, len(targets))
	for _, t := range targets {
		out[t] = schema.NewErrorEntry(msg)
	}
	return out
}
