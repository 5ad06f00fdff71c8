package revsource

import (
	"context"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
	"github.com/stretchr/testify/mock"
)

// MockRevisionSource is a mock implementation of RevisionSource for testing.
type MockRevisionSource struct {
	mock.Mock
}

var _ contract.RevisionSource = &MockRevisionSource{} // Compile-time check

// Name implements the RevisionSource interface.
func (m *MockRevisionSource) Name() string {
	return m.Called().String(0)
}

// Revisions implements the RevisionSource interface.
func (m *MockRevisionSource) Revisions(ctx context.Context, path string, maxCount int) ([]schema.Revision, error) {
	ret := m.Called(ctx, path, maxCount)
	revs, _ := ret.Get(0).([]schema.Revision)
	return revs, ret.Error(1)
}

// Checkout implements the RevisionSource interface.
func (m *MockRevisionSource) Checkout(ctx context.Context, rev schema.Revision) error {
	return m.Called(ctx, rev).Error(0)
}

// Restore implements the RevisionSource interface.
func (m *MockRevisionSource) Restore(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Find implements the RevisionSource interface.
func (m *MockRevisionSource) Find(ctx context.Context, term string) (schema.Revision, error) {
	ret := m.Called(ctx, term)
	rev, _ := ret.Get(0).(schema.Revision)
	return rev, ret.Error(1)
}
