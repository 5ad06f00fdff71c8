package iocache

import (
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetIndexStore implements the StoreManager interface.
func (m *MockStoreManager) GetIndexStore(archiver string) contract.IndexStore {
	ret := m.Called(archiver)
	store, _ := ret.Get(0).(contract.IndexStore)
	return store
}

// GetStatus implements the StoreManager interface.
func (m *MockStoreManager) GetStatus() (schema.StoreStatus, error) {
	ret := m.Called()
	return ret.Get(0).(schema.StoreStatus), ret.Error(1)
}

// MockIndexStore is a mock implementation of IndexStore for testing.
type MockIndexStore struct {
	mock.Mock
}

var _ contract.IndexStore = &MockIndexStore{} // Compile-time check

// Archiver implements the IndexStore interface.
func (m *MockIndexStore) Archiver() string {
	return m.Called().String(0)
}

// Exists implements the IndexStore interface.
func (m *MockIndexStore) Exists() (bool, error) {
	ret := m.Called()
	return ret.Bool(0), ret.Error(1)
}

// Load implements the IndexStore interface.
func (m *MockIndexStore) Load() (*schema.Index, error) {
	ret := m.Called()
	index, _ := ret.Get(0).(*schema.Index)
	return index, ret.Error(1)
}

// Append implements the IndexStore interface.
func (m *MockIndexStore) Append(rev schema.IndexedRevision, results schema.ResultTree) error {
	return m.Called(rev, results).Error(0)
}

// Save implements the IndexStore interface.
func (m *MockIndexStore) Save() error {
	return m.Called().Error(0)
}

// Get implements the IndexStore interface.
func (m *MockIndexStore) Get(key string) (schema.ResultTree, error) {
	ret := m.Called(key)
	results, _ := ret.Get(0).(schema.ResultTree)
	return results, ret.Error(1)
}

// Contains implements the IndexStore interface.
func (m *MockIndexStore) Contains(key string) bool {
	return m.Called(key).Bool(0)
}

// Revisions implements the IndexStore interface.
func (m *MockIndexStore) Revisions() []schema.IndexedRevision {
	revs, _ := m.Called().Get(0).([]schema.IndexedRevision)
	return revs
}

// Last implements the IndexStore interface.
func (m *MockIndexStore) Last() (schema.IndexedRevision, bool) {
	ret := m.Called()
	rev, _ := ret.Get(0).(schema.IndexedRevision)
	return rev, ret.Bool(1)
}
