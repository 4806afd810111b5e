package chemstat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// direct computes the cross-correlation without the FFT.
func direct(a, b []float64) []float64 {
	n := len(a)
	var ma, mb float64
	for i := range a {
		ma += a[i] / float64(n)
		mb += b[i] / float64(n)
	}
	var saa, sbb float64
	for i := range a {
		saa += (a[i] - ma) * (a[i] - ma)
		sbb += (b[i] - mb) * (b[i] - mb)
	}
	ret := make([]float64, n)
	for k := range ret {
		for t := 0; t+k < n; t++ {
			ret[k] += (a[t] - ma) * (b[t+k] - mb)
		}
		ret[k] /= math.Sqrt(saa * sbb)
	}
	return ret
}

func TestAutoCorr(Te *testing.T) {
	r, err := AutoCorr([]float64{1, -1, 1, -1})
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{1, -0.75, 0.5, -0.25}, r, 1e-12)

	series := make([]float64, 50)
	for i := range series {
		series[i] = math.Sin(float64(i)/3) + 0.1*float64(i%7)
	}
	r, err = AutoCorr(series)
	require.NoError(Te, err)
	assert.InDelta(Te, 1, r[0], 1e-12)
	assert.InDeltaSlice(Te, direct(series, series), r, 1e-10)
}

func TestCrossCorr(Te *testing.T) {
	a := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	b := []float64{2, 7, 1, 8, 2, 8, 1, 8, 2, 8}
	r, err := CrossCorr(a, b)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, direct(a, b), r, 1e-10)
}

func TestCrossCorrErrors(Te *testing.T) {
	_, err := CrossCorr([]float64{1, 2}, []float64{1, 2, 3})
	assert.Error(Te, err)
	_, err = CrossCorr(nil, nil)
	assert.Error(Te, err)
	_, err = AutoCorr([]float64{100, 100, 100})
	assert.Error(Te, err)
}

func TestCorrelationTime(Te *testing.T) {
	assert.InDelta(Te, 1.25, CorrelationTime([]float64{1, 0.5, 0.25, -0.1, 0.3}), 1e-12)
	assert.Equal(Te, 0.5, CorrelationTime([]float64{1}))
	assert.Equal(Te, 0.5, CorrelationTime(nil))
}
