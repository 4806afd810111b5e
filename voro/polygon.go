/*
 * polygon.go, part of protarea.
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

package voro

import "math"

//relative size, with respect to the squared extent of a polygon, under
//which its area is considered to have collapsed.
const collapsedArea = 1e-12

//PolygonArea returns the area of the polygon with the given corners, which must
//be ordered (either direction) and not self-intersecting. It uses the shoelace
//formula. Polygons with less than 3 corners have zero area.
func PolygonArea(vertices []Point) float64 {
	n := len(vertices)
	if n < 3 {
		return 0
	}
	//Everything is taken relative to the first corner, which keeps the products small.
	o := vertices[0]
	var s float64
	for i := 1; i < n-1; i++ {
		ax, ay := vertices[i].X-o.X, vertices[i].Y-o.Y
		bx, by := vertices[i+1].X-o.X, vertices[i+1].Y-o.Y
		s += ax*by - bx*ay
	}
	return math.Abs(s) / 2
}

//Simplify returns the corners of the polygon without consecutive repeated
//corners (including the last-first pair). Cells often have repeated corners when
//4 or more input points lie on the same circle. The original slice is not modified.
func Simplify(vertices []Point) []Point {
	ret := make([]Point, 0, len(vertices))
	for _, v := range vertices {
		if len(ret) > 0 && ret[len(ret)-1] == v {
			continue
		}
		ret = append(ret, v)
	}
	for len(ret) > 1 && ret[0] == ret[len(ret)-1] {
		ret = ret[:len(ret)-1]
	}
	return ret
}

//Degenerate returns true if the polygon has less than 3 distinct corners, or if
//its area is negligible compared with its extent.
func Degenerate(vertices []Point) bool {
	v := Simplify(vertices)
	if len(v) < 3 {
		return true
	}
	minx, miny := math.Inf(1), math.Inf(1)
	maxx, maxy := math.Inf(-1), math.Inf(-1)
	for _, p := range v {
		minx = math.Min(minx, p.X)
		maxx = math.Max(maxx, p.X)
		miny = math.Min(miny, p.Y)
		maxy = math.Max(maxy, p.Y)
	}
	extent := math.Max(maxx-minx, maxy-miny)
	return PolygonArea(v) <= collapsedArea*extent*extent
}
