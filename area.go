/*
 * area.go, part of protarea.
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

	"github.com/rmera/protarea/voro"
)

// SliceArea returns the area covered by the protein points of the set: the sum of the
// areas of their Voronoi cells in a tessellation of all the points of the set.
//
// A set without protein points has zero area, and no tessellation is done.
// An unbounded protein cell gives a DataConsistencyError. A degenerate protein cell
// (less than 3 distinct corners, or collapsed area) gives a GeometryError, unless tolerant
// is true, in which case that cell contributes zero. A protein point that repeats
// the position of an earlier point contributes zero, as that cell is already counted.
func SliceArea(set *PointSet, tolerant bool) (float64, error) {
	area, _, err := sliceArea(set, tolerant)
	return area, err
}

// sliceArea is SliceArea, but it also returns the number of degenerate cells
// that were ignored.
func sliceArea(set *PointSet, tolerant bool) (float64, int, error) {
	p := len(set.Protein)
	if p == 0 {
		return 0, 0, nil
	}
	D, err := voro.Tessellate(set.All())
	if err != nil {
		return 0, 0, newError(GeometryError, "Tessellation failed", "SliceArea").wrap(err)
	}
	var area float64
	ignored := 0
	for i := 0; i < p; i++ {
		if D.DuplicateOf[i] >= 0 {
			continue
		}
		if !D.Bounded(i) {
			return 0, ignored, newError(DataConsistencyError, fmt.Sprintf("Voronoi cell of protein point %d at (%.3f, %.3f) is unbounded", i, set.Protein[i].X, set.Protein[i].Y), "SliceArea")
		}
		poly, err := D.Polygon(i)
		if err != nil {
			return 0, ignored, newError(DataConsistencyError, "Can't build cell polygon", "SliceArea").wrap(err)
		}
		if voro.Degenerate(poly) {
			if tolerant {
				ignored++
				continue
			}
			return 0, ignored, newError(GeometryError, fmt.Sprintf("Degenerate Voronoi cell for protein point %d at (%.3f, %.3f), %d corners", i, set.Protein[i].X, set.Protein[i].Y, len(voro.Simplify(poly))), "SliceArea")
		}
		area += voro.PolygonArea(poly)
	}
	return area, ignored, nil
}
