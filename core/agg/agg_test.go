package agg

import (
	"testing"

	"github.com/huangsam/codetrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	locMetric = schema.Metric{
		Name: "loc", ValueType: schema.NumericValue, Directionality: schema.Informational,
		AggregateName: SumName, Aggregate: Sum,
	}
	complexityMetric = schema.Metric{
		Name: "complexity", ValueType: schema.NumericValue, Directionality: schema.AimLow,
		AggregateName: MeanName, Aggregate: Mean,
	}
	rankMetric = schema.Metric{
		Name: "rank", ValueType: schema.StringValue, Directionality: schema.Informational,
		AggregateName: ModeName, Aggregate: Mode,
	}
)

func leaf(m schema.Metrics) schema.Entry {
	return schema.NewFileEntry(m, nil)
}

func TestAggregate_SumAcrossNestedDirectories(t *testing.T) {
	results := schema.ResultSet{
		"src/file1.py":     leaf(schema.Metrics{"loc": 100.0}),
		"src/file2.py":     leaf(schema.Metrics{"loc": 200.0}),
		"src/sub/file3.py": leaf(schema.Metrics{"loc": 50.0}),
	}

	out, roots := Aggregate(results, []schema.Metric{locMetric}, nil)

	assert.Equal(t, []string{"", "src", "src/sub"}, roots)
	assert.Equal(t, 350.0, out[""].Total["loc"])
	assert.Equal(t, 350.0, out["src"].Total["loc"])
	assert.Equal(t, 50.0, out["src/sub"].Total["loc"])
	assert.True(t, out["src"].IsDirectory())
	assert.Nil(t, out["src"].Detailed, "directory entries have no detail section")
	assert.Equal(t, 100.0, out["src/file1.py"].Total["loc"], "leaves are untouched")
}

func TestAggregate_MissingMetricIsSkipped(t *testing.T) {
	results := schema.ResultSet{
		"pkg/a.py": leaf(schema.Metrics{"complexity": 5.0}),
		"pkg/b.py": leaf(schema.Metrics{"complexity": 10.0}),
		"pkg/c.py": leaf(schema.Metrics{"complexity": 15.0}),
		"pkg/d.py": schema.NewErrorEntry("invalid syntax"),
	}

	out, _ := Aggregate(results, []schema.Metric{complexityMetric, locMetric}, nil)

	assert.Equal(t, 10.0, out["pkg"].Total["complexity"])
	_, hasLoc := out["pkg"].Total["loc"]
	assert.False(t, hasLoc, "a metric no leaf carries is absent, not zero")
	msg, failed := out["pkg/d.py"].Err()
	assert.True(t, failed)
	assert.Equal(t, "invalid syntax", msg)
}

func TestAggregate_Idempotent(t *testing.T) {
	results := schema.ResultSet{
		"a.py":       leaf(schema.Metrics{"loc": 10.0, "complexity": 2.0, "rank": "A"}),
		"src/b.py":   leaf(schema.Metrics{"loc": 20.0, "complexity": 4.0, "rank": "B"}),
		"src/c/d.py": leaf(schema.Metrics{"loc": 30.0, "complexity": 9.0, "rank": "B"}),
	}
	metrics := []schema.Metric{locMetric, complexityMetric, rankMetric}

	first, roots1 := Aggregate(results, metrics, nil)
	second, roots2 := Aggregate(first, metrics, roots1)

	assert.Equal(t, first, second)
	assert.Equal(t, roots1, roots2)
	assert.Equal(t, 5.0, first[""].Total["complexity"])
	assert.Equal(t, "B", first[""].Total["rank"])
}

func TestAggregate_StaleDirectoryTotalsAreRecomputed(t *testing.T) {
	results := schema.ResultSet{
		"src/a.py": leaf(schema.Metrics{"loc": 10.0}),
		"src":      schema.NewDirectoryEntry(schema.Metrics{"loc": 9999.0}),
	}

	out, _ := Aggregate(results, []schema.Metric{locMetric}, nil)

	assert.Equal(t, 10.0, out["src"].Total["loc"])
}

func TestAggregate_RemovedDirectoryDisappearsAfterOnePass(t *testing.T) {
	metrics := []schema.Metric{locMetric}
	before := schema.ResultSet{
		"keep/a.py": leaf(schema.Metrics{"loc": 1.0}),
		"gone/b.py": leaf(schema.Metrics{"loc": 2.0}),
	}
	_, prevRoots := Aggregate(before, metrics, nil)
	require.Contains(t, prevRoots, "gone")

	// gone/b.py deleted in the next revision
	after := schema.ResultSet{"keep/a.py": before["keep/a.py"]}
	out, roots := Aggregate(after, metrics, prevRoots)

	require.Contains(t, out, "gone", "the emptied directory gets one empty entry")
	assert.True(t, out["gone"].IsDirectory())
	assert.Empty(t, out["gone"].Total)
	assert.NotContains(t, roots, "gone")

	next, _ := Aggregate(schema.ResultSet{"keep/a.py": before["keep/a.py"]}, metrics, roots)
	assert.NotContains(t, next, "gone", "the directory is gone on the following pass")
}

func TestAggregate_AncestryRespectsPathComponents(t *testing.T) {
	results := schema.ResultSet{
		"src/a.py":  leaf(schema.Metrics{"loc": 1.0}),
		"srcx/b.py": leaf(schema.Metrics{"loc": 5.0}),
	}

	out, _ := Aggregate(results, []schema.Metric{locMetric}, nil)

	assert.Equal(t, 1.0, out["src"].Total["loc"])
	assert.Equal(t, 5.0, out["srcx"].Total["loc"])
	assert.Equal(t, 6.0, out[""].Total["loc"])
}

func TestAggregate_UsesReducerNameWhenFunctionMissing(t *testing.T) {
	decoded := schema.Metric{Name: "loc", AggregateName: MaxName}
	results := schema.ResultSet{
		"a.py": leaf(schema.Metrics{"loc": 3.0}),
		"b.py": leaf(schema.Metrics{"loc": 7.0}),
	}

	out, _ := Aggregate(results, []schema.Metric{decoded}, nil)

	assert.Equal(t, 7.0, out[""].Total["loc"])
}

func TestAggregate_Empty(t *testing.T) {
	out, roots := Aggregate(schema.ResultSet{}, []schema.Metric{locMetric}, nil)
	assert.Empty(t, out)
	assert.Empty(t, roots)
}

func TestRootsOf(t *testing.T) {
	out, _ := Aggregate(schema.ResultSet{"a/b/c.py": leaf(schema.Metrics{"loc": 1.0})}, []schema.Metric{locMetric}, nil)
	assert.Equal(t, []string{"", "a", "a/b"}, RootsOf(out))
}
