package schema

import "fmt"

// Reducer folds an ordered list of same-typed metric values into one value.
type Reducer func(values []any) any

// Metric describes one named measurement declared by a collector.
type Metric struct {
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	ValueType      ValueType      `json:"value_type"`
	Directionality Directionality `json:"directionality"`
	AggregateName  string         `json:"aggregate"`
	Aggregate      Reducer        `json:"-"`
}

// QualifiedName returns the metric addressed as collector.metric.
func (m Metric) QualifiedName(collector string) string {
	return collector + "." + m.Name
}

// Format renders a metric value for display using the given precision.
func (m Metric) Format(v any, precision int) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case float64:
		if m.ValueType == NumericValue && val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.*f", precision, val)
	case int:
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// IsBetter reports whether moving from before to after is an improvement.
// Informational metrics and non-numeric values are never better or worse.
func (m Metric) IsBetter(before, after any) (better bool, comparable bool) {
	b, ok1 := AsFloat(before)
	a, ok2 := AsFloat(after)
	if !ok1 || !ok2 || a == b || m.Directionality == Informational {
		return false, false
	}
	if m.Directionality == AimHigh {
		return a > b, true
	}
	return a < b, true
}

// AsFloat converts a numeric metric value into a float64.
func AsFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	default:
		return 0, false
	}
}
