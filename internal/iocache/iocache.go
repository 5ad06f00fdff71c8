// Package iocache persists the revision index and its per-revision result blobs.
package iocache

import (
	"sync"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

// Backend is the storage medium behind every index store. A backend holds one
// listing per archiver plus one blob per indexed revision.
type Backend interface {
	// Name returns the backend kind.
	Name() schema.DatabaseBackend

	// Location describes where data lives, without credentials.
	Location() string

	// ListingExists reports whether a listing was ever written for the archiver.
	ListingExists(archiver string) (bool, error)

	// ReadListing returns the archiver's revisions in insertion order.
	ReadListing(archiver string) ([]schema.IndexedRevision, error)

	// WriteListing replaces the archiver's listing.
	WriteListing(archiver string, revs []schema.IndexedRevision) error

	// BlobExists reports whether a blob was written for the revision key.
	BlobExists(archiver, key string) (bool, error)

	// WriteBlob stores the encoded result tree of one revision.
	WriteBlob(archiver, key string, payload []byte) error

	// ReadBlob returns the encoded result tree of one revision.
	ReadBlob(archiver, key string) ([]byte, error)

	// Status summarizes what the backend holds.
	Status() (schema.StoreStatus, error)

	// Close releases any held resources.
	Close() error
}

// IndexStoreManager hands out one IndexStore per archiver on a shared backend.
type IndexStoreManager struct {
	sync.RWMutex // Protects the backend pointer and store map
	backend      Backend
	stores       map[string]*IndexStoreImpl
}

var _ contract.StoreManager = &IndexStoreManager{} // Compile-time check

// NewIndexStoreManager wraps a backend.
func NewIndexStoreManager(backend Backend) *IndexStoreManager {
	return &IndexStoreManager{backend: backend, stores: make(map[string]*IndexStoreImpl)}
}

// GetIndexStore returns the IndexStore for an archiver, creating it on first use.
func (mgr *IndexStoreManager) GetIndexStore(archiver string) contract.IndexStore {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.backend == nil {
		return nil
	}
	if mgr.stores == nil {
		mgr.stores = make(map[string]*IndexStoreImpl)
	}
	if store, ok := mgr.stores[archiver]; ok {
		return store
	}
	store := NewIndexStore(archiver, mgr.backend)
	mgr.stores[archiver] = store
	return store
}

// GetStatus returns status information about the backend.
func (mgr *IndexStoreManager) GetStatus() (schema.StoreStatus, error) {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.backend == nil {
		return schema.StoreStatus{}, errStoreNotInitialized
	}
	return mgr.backend.Status()
}

// Backend returns the shared backend.
func (mgr *IndexStoreManager) Backend() Backend {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.backend
}

// close releases the backend and forgets every handed out store.
func (mgr *IndexStoreManager) close() error {
	mgr.Lock()
	defer mgr.Unlock()
	if mgr.backend == nil {
		return nil
	}
	err := mgr.backend.Close()
	mgr.backend = nil
	mgr.stores = nil
	return err
}
