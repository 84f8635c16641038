// Package stats provides percentile and aggregate math over latency and cost
// samples. All functions are pure; callers own ordering and filtering.
package stats

import (
	"math"
	"sort"
)

// Percentile computes the p-th percentile of values using linear
// interpolation at rank k=(n-1)*p/100, truncated to an integer. Returns nil
// for an empty input and the single value for n=1.
func Percentile(values []int, p float64) *int {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	if len(sorted) == 1 {
		v := sorted[0]
		return &v
	}

	k := float64(len(sorted)-1) * (p / 100)
	lower := sorted[int(math.Floor(k))]
	upper := sorted[int(math.Ceil(k))]
	if lower == upper {
		return &lower
	}
	v := int(float64(lower) + float64(upper-lower)*(k-math.Floor(k)))
	return &v
}

// PercentileFloat is the floating-point variant used by timeout calibration,
// which interpolates on raw samples before any truncation. Returns 0 for an
// empty input.
func PercentileFloat(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}

	k := float64(len(sorted)-1) * (p / 100)
	lower := sorted[int(math.Floor(k))]
	upper := sorted[int(math.Ceil(k))]
	if lower == upper {
		return lower
	}
	return lower + (upper-lower)*(k-math.Floor(k))
}

// Mean returns the truncated integer mean of values, or nil for an empty
// input.
func Mean(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	m := sum / len(values)
	return &m
}
