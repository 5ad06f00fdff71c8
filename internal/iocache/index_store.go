package iocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

var errStoreNotInitialized = errors.New("index store is not initialized. Call InitStores first")

// IndexStoreImpl keeps the listing of one archiver in memory and writes
// result blobs through to the backend as they are appended.
type IndexStoreImpl struct {
	mu       sync.Mutex
	archiver string
	backend  Backend
	index    *schema.Index
}

var _ contract.IndexStore = &IndexStoreImpl{} // Compile-time check

// NewIndexStore creates a store for one archiver.
func NewIndexStore(archiver string, backend Backend) *IndexStoreImpl {
	return &IndexStoreImpl{archiver: archiver, backend: backend}
}

// Archiver implements the IndexStore interface.
func (s *IndexStoreImpl) Archiver() string {
	return s.archiver
}

// Exists implements the IndexStore interface.
func (s *IndexStoreImpl) Exists() (bool, error) {
	return s.backend.ListingExists(s.archiver)
}

// Load implements the IndexStore interface.
// The listing is read from the backend once; later calls return the in-memory index.
func (s *IndexStoreImpl) Load() (*schema.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *IndexStoreImpl) loadLocked() (*schema.Index, error) {
	if s.index != nil {
		return s.index, nil
	}
	revs, err := s.backend.ReadListing(s.archiver)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s index listing: %w", s.archiver, err)
	}
	index := schema.NewIndex()
	for _, rev := range revs {
		if err := index.Add(rev); err != nil {
			contract.LogWarn("Skipping listing entry", err)
		}
	}
	s.index = index
	return index, nil
}

// Append implements the IndexStore interface.
func (s *IndexStoreImpl) Append(rev schema.IndexedRevision, results schema.ResultTree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadLocked()
	if err != nil {
		return err
	}
	if index.Contains(rev.Key) {
		return fmt.Errorf("%w: %s", schema.ErrDuplicateRevision, rev.Key)
	}

	// A blob without a listing entry is left over from an interrupted build.
	exists, err := s.backend.BlobExists(s.archiver, rev.Key)
	if err != nil {
		return err
	}
	if exists {
		contract.LogDebug("Replacing orphaned blob for revision %s", rev.ShortKey())
	}

	payload, err := json.Marshal(schema.RevisionBlob{Revision: rev, Results: results})
	if err != nil {
		return fmt.Errorf("failed to encode results of revision %s: %w", rev.Key, err)
	}
	if err := s.backend.WriteBlob(s.archiver, rev.Key, payload); err != nil {
		return fmt.Errorf("failed to store results of revision %s: %w", rev.Key, err)
	}
	return index.Add(rev)
}

// Save implements the IndexStore interface.
func (s *IndexStoreImpl) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	revs := make([]schema.IndexedRevision, 0, s.index.Len())
	for _, key := range s.index.Keys() {
		rev, _ := s.index.Get(key)
		revs = append(revs, rev)
	}
	if err := s.backend.WriteListing(s.archiver, revs); err != nil {
		return fmt.Errorf("failed to write %s index listing: %w", s.archiver, err)
	}
	return nil
}

// Contains implements the IndexStore interface.
// Listing read failures are reported as absent keys.
func (s *IndexStoreImpl) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.loadLocked()
	return err == nil && index.Contains(key)
}

// Revisions implements the IndexStore interface.
func (s *IndexStoreImpl) Revisions() []schema.IndexedRevision {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.loadLocked()
	if err != nil {
		return nil
	}
	return index.Newest()
}

// Last implements the IndexStore interface.
func (s *IndexStoreImpl) Last() (schema.IndexedRevision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, err := s.loadLocked()
	if err != nil {
		return schema.IndexedRevision{}, false
	}
	return index.Last()
}

// Get implements the IndexStore interface.
func (s *IndexStoreImpl) Get(key string) (schema.ResultTree, error) {
	blob, err := s.GetBlob(key)
	if err != nil {
		return nil, err
	}
	return blob.Results, nil
}

// GetBlob loads the full blob of an indexed revision.
func (s *IndexStoreImpl) GetBlob(key string) (schema.RevisionBlob, error) {
	s.mu.Lock()
	index, err := s.loadLocked()
	s.mu.Unlock()
	if err != nil {
		return schema.RevisionBlob{}, err
	}
	if !index.Contains(key) {
		return schema.RevisionBlob{}, fmt.Errorf("%w: %s", schema.ErrRevisionNotIndexed, key)
	}

	payload, err := s.backend.ReadBlob(s.archiver, key)
	if err != nil {
		return schema.RevisionBlob{}, fmt.Errorf("failed to read results of revision %s: %w", key, err)
	}
	var blob schema.RevisionBlob
	if err := json.Unmarshal(payload, &blob); err != nil {
		return schema.RevisionBlob{}, fmt.Errorf("failed to decode results of revision %s: %w", key, err)
	}
	if blob.Results == nil {
		blob.Results = schema.ResultTree{}
	}
	return blob, nil
}
