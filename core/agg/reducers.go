package agg

import "github.com/huangsam/codetrend/schema"

// Reducer names as stored alongside a metric.
const (
	SumName  = "sum"
	MeanName = "mean"
	ModeName = "mode"
	MinName  = "min"
	MaxName  = "max"
)

var reducers = map[string]schema.Reducer{
	SumName:  Sum,
	MeanName: Mean,
	ModeName: Mode,
	MinName:  Min,
	MaxName:  Max,
}

// ByName looks up a reducer, returning nil for unknown names.
func ByName(name string) schema.Reducer {
	return reducers[name]
}

// Sum adds the numeric values. Non-numeric values are skipped.
func Sum(values []any) any {
	total, n := 0.0, 0
	for _, v := range values {
		if f, ok := schema.AsFloat(v); ok {
			total += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return total
}

// Mean is the arithmetic mean of the numeric values.
func Mean(values []any) any {
	total, n := 0.0, 0
	for _, v := range values {
		if f, ok := schema.AsFloat(v); ok {
			total += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return total / float64(n)
}

// Mode returns the most frequent value; the first one seen wins ties.
func Mode(values []any) any {
	counts := make(map[any]int, len(values))
	var order []any
	for _, v := range values {
		if !hashable(v) {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	var best any
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// Min returns the smallest numeric value.
func Min(values []any) any {
	return extreme(values, func(a, b float64) bool { return a < b })
}

// Max returns the largest numeric value.
func Max(values []any) any {
	return extreme(values, func(a, b float64) bool { return a > b })
}

func extreme(values []any, better func(a, b float64) bool) any {
	var best float64
	found := false
	for _, v := range values {
		f, ok := schema.AsFloat(v)
		if !ok {
			continue
		}
		if !found || better(f, best) {
			best, found = f, true
		}
	}
	if !found {
		return nil
	}
	return best
}

func hashable(v any) bool {
	switch v.(type) {
	case string, float64, float32, int, int64, int32, bool:
		return true
	default:
		return false
	}
}
