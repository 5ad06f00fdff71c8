package core

import (
	"testing"

	"github.com/huangsam/codetrend/schema"
	"github.com/stretchr/testify/assert"
)

func loc(v float64) schema.Entry {
	return schema.NewFileEntry(schema.Metrics{"loc": v}, nil)
}

func TestCarryForward(t *testing.T) {
	previous := schema.ResultSet{
		"a.py":     loc(10),
		"b.py":     loc(20),
		"c.py":     loc(30),
		"d.py":     loc(40),
		"pkg":      schema.NewDirectoryEntry(schema.Metrics{"loc": 99}),
		"pkg/e.py": loc(99),
	}

	tests := []struct {
		name     string
		current  schema.ResultSet
		tracked  []string
		dirs     []string
		deleted  []string
		isSeed   bool
		expected schema.ResultSet
	}{
		{
			name:     "unchanged files inherit previous values",
			current:  schema.ResultSet{"a.py": loc(11)},
			tracked:  []string{"a.py", "b.py", "c.py"},
			expected: schema.ResultSet{"a.py": loc(11), "b.py": loc(20), "c.py": loc(30)},
		},
		{
			name:     "deleted files are removed",
			current:  schema.ResultSet{"a.py": loc(11)},
			tracked:  []string{"a.py", "b.py"},
			deleted:  []string{"d.py", "b.py"},
			expected: schema.ResultSet{"a.py": loc(11)},
		},
		{
			name:     "tracked directories are never carried",
			current:  schema.ResultSet{},
			tracked:  []string{"pkg", "pkg/e.py"},
			dirs:     []string{"pkg"},
			expected: schema.ResultSet{"pkg/e.py": loc(99)},
		},
		{
			name:     "files without previous data stay absent",
			current:  schema.ResultSet{},
			tracked:  []string{"new.py", "a.py"},
			expected: schema.ResultSet{"a.py": loc(10)},
		},
		{
			name:     "seed revision carries nothing",
			current:  schema.ResultSet{"a.py": loc(1)},
			tracked:  []string{"a.py", "b.py", "c.py"},
			deleted:  []string{"a.py"},
			isSeed:   true,
			expected: schema.ResultSet{"a.py": loc(1)},
		},
		{
			name:     "fresh error entries are kept over previous values",
			current:  schema.ResultSet{"a.py": schema.NewErrorEntry("boom")},
			tracked:  []string{"a.py"},
			expected: schema.ResultSet{"a.py": schema.NewErrorEntry("boom")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CarryForward(tt.current, previous, tt.tracked, tt.dirs, tt.deleted, tt.isSeed)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCarryForward_DoesNotMutateInputs(t *testing.T) {
	current := schema.ResultSet{"a.py": loc(1)}
	previous := schema.ResultSet{"b.py": loc(2)}

	_ = CarryForward(current, previous, []string{"a.py", "b.py"}, nil, []string{"a.py"}, false)

	assert.Equal(t, schema.ResultSet{"a.py": loc(1)}, current)
	assert.Equal(t, schema.ResultSet{"b.py": loc(2)}, previous)
}
