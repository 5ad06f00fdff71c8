package collector

import (
	"context"

	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
	"github.com/stretchr/testify/mock"
)

// MockCollector is a mock implementation of Collector for testing.
type MockCollector struct {
	mock.Mock
}

var _ contract.Collector = &MockCollector{} // Compile-time check

// Name implements the Collector interface.
func (m *MockCollector) Name() string {
	return m.Called().String(0)
}

// Description implements the Collector interface.
func (m *MockCollector) Description() string {
	return m.Called().String(0)
}

// Metrics implements the Collector interface.
func (m *MockCollector) Metrics() []schema.Metric {
	metrics, _ := m.Called().Get(0).([]schema.Metric)
	return metrics
}

// Run implements the Collector interface.
func (m *MockCollector) Run(ctx context.Context, root string, targets []string) (schema.ResultSet, error) {
	ret := m.Called(ctx, root, targets)
	results, _ := ret.Get(0).(schema.ResultSet)
	return results, ret.Error(1)
}
