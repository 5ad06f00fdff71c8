package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/codetrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	aimLow := schema.Metric{Name: "complexity", ValueType: schema.NumericValue, Directionality: schema.AimLow}
	aimHigh := schema.Metric{Name: "mi", ValueType: schema.NumericValue, Directionality: schema.AimHigh}
	info := schema.Metric{Name: "loc", ValueType: schema.NumericValue, Directionality: schema.Informational}
	rank := schema.Metric{Name: "rank", ValueType: schema.StringValue, Directionality: schema.Informational}

	tests := []struct {
		name     string
		metric   schema.Metric
		before   any
		after    any
		expected string
	}{
		{"aim-low decreased", aimLow, 10.0, 5.0, BetterValue},
		{"aim-low increased", aimLow, 5.0, 10.0, WorseValue},
		{"aim-high increased", aimHigh, 50.0, 60.0, BetterValue},
		{"aim-high decreased", aimHigh, 60.0, 50.0, WorseValue},
		{"unchanged", aimHigh, 60.0, 60.0, UnchangedValue},
		{"informational", info, 100.0, 200.0, UnchangedValue},
		{"string values", rank, "A", "B", UnchangedValue},
		{"missing before", aimLow, nil, 3.0, UnchangedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.metric, tt.before, tt.after))
		})
	}
}

func TestColorizeDelta(t *testing.T) {
	tests := []struct {
		name  string
		label string
	}{
		{"better", BetterValue},
		{"worse", WorseValue},
		{"unchanged", UnchangedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ColorizeDelta(tt.label, "+1.5")
			// Should contain the plain text
			assert.Contains(t, result, "+1.5")
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		// Verify file was created
		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		excludes   []string
		wantIgnore bool
	}{
		{
			name:       "empty excludes",
			path:       "src/main.py",
			excludes:   []string{},
			wantIgnore: false,
		},
		{
			name:       "prefix match",
			path:       "vendor/lib/file.py",
			excludes:   []string{"vendor/"},
			wantIgnore: true,
		},
		{
			name:       "nested directory match",
			path:       "src/pkg/__pycache__/mod.py",
			excludes:   []string{"__pycache__/"},
			wantIgnore: true,
		},
		{
			name:       "directory pattern does not match partial names",
			path:       "src/mybuild/mod.py",
			excludes:   []string{"build/"},
			wantIgnore: false,
		},
		{
			name:       "suffix match",
			path:       "proto/service_pb2.pyi",
			excludes:   []string{".pyi"},
			wantIgnore: true,
		},
		{
			name:       "glob match basename",
			path:       "proto/service_pb2.py",
			excludes:   []string{"*_pb2.py"},
			wantIgnore: true,
		},
		{
			name:       "glob match with test prefix",
			path:       "tests/test_unit.py",
			excludes:   []string{"test_*.py"},
			wantIgnore: true,
		},
		{
			name:       "substring match",
			path:       "src/generated/code.py",
			excludes:   []string{"generated"},
			wantIgnore: true,
		},
		{
			name:       "no match",
			path:       "src/core/engine.py",
			excludes:   []string{"vendor/", "node_modules/", ".pyi"},
			wantIgnore: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldIgnore(tt.path, tt.excludes)
			assert.Equal(t, tt.wantIgnore, got)
		})
	}
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("src/a.py", []string{".py"}))
	assert.True(t, HasExtension("src/A.PY", []string{".py"}))
	assert.False(t, HasExtension("src/a.pyc", []string{".py"}))
	assert.False(t, HasExtension("Makefile", []string{".py"}))
	assert.True(t, HasExtension("stubs/a.pyi", []string{".py", ".pyi"}))
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{"fits", "src/a.py", 20, "src/a.py"},
		{"truncated", "src/very/long/path/module.py", 12, "...module.py"},
		{"width too small", "src/a.py", 3, "src/a.py"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncatePath(tt.path, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
