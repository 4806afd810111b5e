/*
 * timecorr.go, part of protarea.
 *
 *
 * Copyright 2026 The protarea authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package chemstat contains statistics for the time series produced along a trajectory,
// such as the area of a slice in each frame.
package chemstat

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func cmplxConjMul(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("complex conjugate multiplication of slices: Both slices should have the same len %d, %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] = cmplx.Conj(dst[i]) * v
	}
}

// centered returns the deviations of c from its mean, zero-padded to twice its length,
// and the sum of the squared deviations.
func centered(c []float64) ([]complex128, float64) {
	mean := stat.Mean(c, nil)
	dev := make([]float64, len(c))
	pad := make([]complex128, 2*len(c))
	for i, v := range c {
		dev[i] = v - mean
		pad[i] = complex(dev[i], 0)
	}
	return pad, floats.Dot(dev, dev)
}

// CrossCorr returns the normalized cross-correlation of the series c1 and c2 for the lags
// 0 to len(c1)-1:
//
//	r(k) = sum_t (c1[t]-<c1>)(c2[t+k]-<c2>) / sqrt(sum_t (c1[t]-<c1>)^2 * sum_t (c2[t]-<c2>)^2)
//
// It returns an error if the series have different lengths, are empty, or if any of them
// is constant.
func CrossCorr(c1, c2 []float64) ([]float64, error) {
	if len(c1) != len(c2) {
		return nil, fmt.Errorf("chemstat: series of different lengths %d, %d", len(c1), len(c2))
	}
	if len(c1) == 0 {
		return nil, fmt.Errorf("chemstat: empty series")
	}
	c1pad, ss1 := centered(c1)
	c2pad, ss2 := centered(c2)
	if ss1 == 0 || ss2 == 0 {
		return nil, fmt.Errorf("chemstat: constant series, correlation undefined")
	}
	//padding to twice the length avoids the circular wrapping of the FFT.
	f := fourier.NewCmplxFFT(len(c1pad))
	f.Coefficients(c1pad, c1pad)
	f.Coefficients(c2pad, c2pad)
	cmplxConjMul(c1pad, c2pad)
	f.Sequence(c1pad, c1pad)
	norm := 1 / (float64(len(c1pad)) * math.Sqrt(ss1*ss2)) //the FFT is not normalized
	ret := make([]float64, len(c1))
	for i := range ret {
		ret[i] = real(c1pad[i]) * norm
	}
	return ret, nil
}

// AutoCorr returns the normalized autocorrelation of the series c. See CrossCorr.
func AutoCorr(c []float64) ([]float64, error) {
	return CrossCorr(c, c)
}

// CorrelationTime returns the integrated correlation time, in frames, of the normalized
// autocorrelation acf: 1/2 plus the sum of acf from lag 1 up to its first non-positive value.
func CorrelationTime(acf []float64) float64 {
	tau := 0.5
	for _, v := range acf[min(1, len(acf)):] {
		if v <= 0 {
			break
		}
		tau += v
	}
	return tau
}
