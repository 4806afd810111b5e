/*
 * slices.go, part of protarea.
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

package protarea

import (
	"fmt"
	"math"
)

const (
	//fraction of a layer under which zmax is considered to be reached by the last step.
	boundaryTol float64 = 1e-9
	maxSlices   int     = 1 << 24
)

// Boundaries returns the ascending Z values zmin, zmin+layer, zmin+2*layer... up to zmax.
// If the last full step falls short of zmax, zmax is added as the last boundary, so the
// remaining thinner band is also analyzed. It returns a ConfigurationError for non-positive
// layers, zmax <= zmin, or non-finite values.
func Boundaries(zmin, zmax, layer float64) ([]float64, error) {
	for _, v := range []float64{zmin, zmax, layer} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, newError(ConfigurationError, fmt.Sprintf("Non-finite slicing parameters zmin=%v zmax=%v layer=%v", zmin, zmax, layer), "Boundaries")
		}
	}
	if layer <= 0 {
		return nil, newError(ConfigurationError, fmt.Sprintf("The layer thickness must be positive, got %v", layer), "Boundaries")
	}
	if zmax <= zmin {
		return nil, newError(ConfigurationError, fmt.Sprintf("zmax (%v) must be larger than zmin (%v)", zmax, zmin), "Boundaries")
	}
	steps := math.Floor((zmax-zmin)/layer + boundaryTol)
	if steps > float64(maxSlices) {
		return nil, newError(ConfigurationError, fmt.Sprintf("Too many slices: %v", steps), "Boundaries")
	}
	n := int(steps)
	ret := make([]float64, 0, n+2)
	for k := 0; k <= n; k++ {
		ret = append(ret, zmin+float64(k)*layer) //no accumulated rounding
	}
	if n == 0 || zmax-ret[n] > boundaryTol*layer {
		ret = append(ret, zmax)
	} else {
		ret[n] = zmax
	}
	return ret, nil
}

// Ranges returns the len(bounds)-1 bands between consecutive boundaries.
func Ranges(bounds []float64) []Range {
	if len(bounds) < 2 {
		return nil
	}
	ret := make([]Range, len(bounds)-1)
	for i := range ret {
		ret[i] = Range{Lower: bounds[i], Upper: bounds[i+1]}
	}
	return ret
}
