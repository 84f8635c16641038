package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile_Empty(t *testing.T) {
	assert.Nil(t, Percentile(nil, 50))
	assert.Nil(t, Percentile([]int{}, 99))
}

func TestPercentile_SingleValue(t *testing.T) {
	for _, p := range []float64{0, 50, 95, 99, 100} {
		got := Percentile([]int{42}, p)
		require.NotNil(t, got)
		assert.Equal(t, 42, *got)
	}
}

func TestPercentile_ElevenSamples(t *testing.T) {
	// 11 sorted samples give whole and fractional ranks worth checking by
	// hand: k = (n-1)*p/100.
	values := []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110}

	p50 := Percentile(values, 50) // k=5.0 -> exactly the 6th value
	require.NotNil(t, p50)
	assert.Equal(t, 60, *p50)

	p95 := Percentile(values, 95) // k=9.5 -> halfway between 100 and 110
	require.NotNil(t, p95)
	assert.Equal(t, 105, *p95)

	p99 := Percentile(values, 99) // k=9.9 -> 100 + 0.9*10
	require.NotNil(t, p99)
	assert.Equal(t, 109, *p99)
}

func TestPercentile_FractionalRank(t *testing.T) {
	values := []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	got := Percentile(values, 50) // k=4.5 -> 50 + 0.5*10
	require.NotNil(t, got)
	assert.Equal(t, 55, *got)
}

func TestPercentile_Unsorted(t *testing.T) {
	got := Percentile([]int{30, 10, 20}, 100)
	require.NotNil(t, got)
	assert.Equal(t, 30, *got)
}

func TestPercentileFloat(t *testing.T) {
	assert.Equal(t, 0.0, PercentileFloat(nil, 99))
	assert.Equal(t, 1.5, PercentileFloat([]float64{1.5}, 99))
	assert.InDelta(t, 109.0, PercentileFloat([]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110}, 99), 1e-9)
}

func TestMean(t *testing.T) {
	assert.Nil(t, Mean(nil))

	got := Mean([]int{10, 20, 31})
	require.NotNil(t, got)
	assert.Equal(t, 20, *got) // truncated

	one := Mean([]int{7})
	require.NotNil(t, one)
	assert.Equal(t, 7, *one)
}
