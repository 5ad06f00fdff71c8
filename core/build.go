package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/codetrend/internal/collector"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// Build brings the index of source up to date.
//
// Revisions are fetched newest first, replayed oldest first and skipped when
// already indexed, so running Build twice without new history is a no-op.
// The first revision processed is scanned in full; later ones only rescan
// their added and modified files and inherit everything else. Each revision is
// persisted, listing included, as soon as it is processed, so a crash never
// leaves stored blobs missing from the listing. An error aborts the remaining
// revisions but keeps the ones already stored, and the working tree is always
// restored once checkouts may have happened.
func Build(ctx context.Context, cfg *contract.Config, source contract.RevisionSource, collectors []contract.Collector, store contract.IndexStore) (err error) {
	if len(collectors) == 0 {
		return errors.New("no collectors configured")
	}

	revisions, err := source.Revisions(ctx, cfg.RepoPath, cfg.MaxRevisions)
	if err != nil {
		return err
	}
	if len(revisions) == 0 {
		return schema.ErrNoHistory
	}
	defer func() {
		if rerr := source.Restore(context.WithoutCancel(ctx)); rerr != nil {
			contract.LogWarn("Failed to restore the working tree", rerr)
			if err == nil {
				err = fmt.Errorf("failed to restore the working tree: %w", rerr)
			}
		}
	}()

	if _, err := store.Load(); err != nil {
		return err
	}
	pending := pendingRevisions(revisions, store)
	contract.LogInfo("Found %d revisions from '%s' archiver in '%s'.", len(revisions), source.Name(), cfg.RepoPath)
	contract.LogInfo("Running collectors: %s", strings.Join(collectorNames(collectors), ", "))
	contract.LogInfo("Processing %d revisions (%d already indexed).", len(pending), len(revisions)-len(pending))
	if len(pending) == 0 {
		return nil
	}

	progress := NewProgress(len(pending) * len(collectors))
	rp := &revisionProcessor{
		cfg:        cfg,
		source:     source,
		collectors: collectors,
		store:      store,
		progress:   progress,
		opts:       collector.OptionsFromConfig(cfg),
	}

	state := initialState()
	processed := 0
	for _, rev := range pending {
		if err := ctx.Err(); err != nil {
			progress.Finish()
			return saveAfterFailure(store, err)
		}
		progress.SetLabel(rev.ShortKey())
		next, _, perr := rp.processRevision(ctx, state, rev)
		if perr != nil {
			progress.Finish()
			contract.LogWarn(fmt.Sprintf("Aborting after %d of %d revisions", processed, len(pending)), nil)
			return saveAfterFailure(store, fmt.Errorf("revision %s: %w", rev.ShortKey(), perr))
		}
		if err := store.Save(); err != nil {
			progress.Finish()
			return fmt.Errorf("failed to save the index listing after %s: %w", rev.ShortKey(), err)
		}
		state = next
		processed++
	}
	progress.Finish()

	contract.LogInfo("Processed %d revisions.", processed)
	return nil
}

// pendingRevisions reverses newest-first revisions and drops those already indexed.
func pendingRevisions(revisions []schema.Revision, store contract.IndexStore) []schema.Revision {
	pending := make([]schema.Revision, 0, len(revisions))
	for _, rev := range slices.Backward(revisions) {
		if store.Contains(rev.Key) {
			continue
		}
		pending = append(pending, rev)
	}
	return pending
}

// saveAfterFailure writes the listing so revisions stored before a failure stay
// indexed, then returns the original error.
func saveAfterFailure(store contract.IndexStore, cause error) error {
	if err := store.Save(); err != nil {
		contract.LogWarn("Failed to save the index listing", err)
	}
	return cause
}

// collectorNames lists collector names in order.
func collectorNames(collectors []contract.Collector) []string {
	names := make([]string, 0, len(collectors))
	for _, c := range collectors {
		names = append(names, c.Name())
	}
	return names
}
