package collector

import (
	"fmt"
	"strings"

	"github.com/huangsam/codetrend/core/agg"
	"github.com/huangsam/codetrend/internal/contract"
	"github.com/huangsam/codetrend/schema"
)

func metric(name, description string, vt schema.ValueType, dir schema.Directionality, reducer string) schema.Metric {
	return schema.Metric{
		Name:           name,
		Description:    description,
		ValueType:      vt,
		Directionality: dir,
		AggregateName:  reducer,
		Aggregate:      agg.ByName(reducer),
	}
}

// RawMetrics are the line counts reported by the raw collector.
var RawMetrics = []schema.Metric{
	metric("loc", "Lines of Code", schema.NumericValue, schema.Informational, agg.SumName),
	metric("lloc", "L Lines of Code", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("sloc", "S Lines of Code", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("comments", "Multi-line comments", schema.NumericValue, schema.AimHigh, agg.SumName),
	metric("multi", "Multi lines", schema.NumericValue, schema.Informational, agg.SumName),
	metric("blank", "blank lines", schema.NumericValue, schema.Informational, agg.SumName),
	metric("single_comments", "Single comment lines", schema.NumericValue, schema.Informational, agg.SumName),
}

// CyclomaticMetrics are the complexity measures reported by the cyclomatic collector.
var CyclomaticMetrics = []schema.Metric{
	metric("complexity", "Cyclomatic Complexity", schema.NumericValue, schema.AimLow, agg.MeanName),
}

// MaintainabilityMetrics are the maintainability index measures.
var MaintainabilityMetrics = []schema.Metric{
	metric("rank", "Maintainability Ranking", schema.StringValue, schema.Informational, agg.ModeName),
	metric("mi", "Maintainability Index", schema.NumericValue, schema.AimHigh, agg.MeanName),
}

// HalsteadMetrics are the Halstead software science measures.
var HalsteadMetrics = []schema.Metric{
	metric("h1", "Unique Operators", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("h2", "Unique Operands", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("N1", "Number of Operators", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("N2", "Number of Operands", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("vocabulary", "Unique vocabulary (h1 + h2)", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("length", "Length of application", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("volume", "Code volume", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("difficulty", "Difficulty", schema.NumericValue, schema.AimLow, agg.SumName),
	metric("effort", "Effort", schema.NumericValue, schema.AimLow, agg.SumName),
}

// NewRaw creates the raw line counting collector.
func NewRaw(opts Options) contract.Collector {
	return &pythonCollector{
		name:        RawName,
		description: "Raw Python statistics",
		metrics:     RawMetrics,
		opts:        opts,
		analyze:     analyzeRaw,
	}
}

// NewCyclomatic creates the cyclomatic complexity collector.
func NewCyclomatic(opts Options) contract.Collector {
	return &pythonCollector{
		name:        CyclomaticName,
		description: "Cyclomatic Complexity of modules",
		metrics:     CyclomaticMetrics,
		opts:        opts,
		analyze:     analyzeCyclomatic,
	}
}

// NewMaintainability creates the maintainability index collector.
func NewMaintainability(opts Options) contract.Collector {
	return &pythonCollector{
		name:        MaintainabilityName,
		description: "Maintainability index (lines of code and branching)",
		metrics:     MaintainabilityMetrics,
		opts:        opts,
		analyze:     analyzeMaintainability,
	}
}

// NewHalstead creates the Halstead metrics collector.
func NewHalstead(opts Options) contract.Collector {
	return &pythonCollector{
		name:        HalsteadName,
		description: "Halstead metrics",
		metrics:     HalsteadMetrics,
		opts:        opts,
		analyze:     analyzeHalstead,
	}
}

// LookupMetric resolves "collector.metric" or a bare metric name against the given collectors.
// A bare name matching metrics of several collectors resolves to the first.
func LookupMetric(collectors []contract.Collector, addr string) (string, schema.Metric, error) {
	name, metricName, qualified := splitAddress(addr)
	for _, c := range collectors {
		if qualified && c.Name() != name {
			continue
		}
		for _, m := range c.Metrics() {
			if m.Name == metricName {
				return c.Name(), m, nil
			}
		}
	}
	return "", schema.Metric{}, unknownMetric(addr)
}

// splitAddress splits "collector.metric" at the first dot.
func splitAddress(addr string) (string, string, bool) {
	if c, m, ok := strings.Cut(addr, "."); ok {
		return c, m, true
	}
	return "", addr, false
}

func unknownMetric(addr string) error {
	return fmt.Errorf("%w: %s", schema.ErrUnknownMetric, addr)
}
