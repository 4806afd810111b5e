/*
 * voronoi.go, part of protarea.
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

/*
Package voro builds 2D Voronoi diagrams and measures the areas of their cells.

The diagram is obtained as the dual of a Delaunay triangulation, which is built
incrementally (Bowyer-Watson). The vertices of the cell of a point are the
circumcenters of the triangles around that point, visited counter-clockwise, so
regions come out as simple polygons ready for the shoelace formula.

Points on the convex hull of the input have unbounded cells. Their regions contain
the NoVertex sentinel.
*/
package voro

import (
	"fmt"
	"math"
)

//NoVertex marks, in a region, an edge that goes to infinity.
const NoVertex = -1

//Point is a point in the plane.
type Point struct {
	X float64
	Y float64
}

//Add returns the point translated by d.
func (P Point) Add(d Point) Point {
	return Point{P.X + d.X, P.Y + d.Y}
}

func (P Point) finite() bool {
	return !math.IsNaN(P.X) && !math.IsNaN(P.Y) && !math.IsInf(P.X, 0) && !math.IsInf(P.Y, 0)
}

//Diagram is a 2D Voronoi diagram.
type Diagram struct {
	//Vertices of the diagram.
	Vertices []Point
	//Regions contains, for each region, the indexes in Vertices of its corners,
	//counter-clockwise. NoVertex in the list means the region is unbounded.
	//Regions of repeated points are empty.
	Regions [][]int
	//PointRegion gives the region of each input point.
	PointRegion []int
	//DuplicateOf is, for each input point, the index of an earlier point
	//with the same coordinates, or -1.
	DuplicateOf []int
}

//Tessellate builds the Voronoi diagram for the given points. Points repeated
//exactly get no cell of their own: their region is empty and DuplicateOf
//points to the first occurrence.
func Tessellate(points []Point) (*Diagram, error) {
	if len(points) == 0 {
		return nil, Error{"No points to tessellate", []string{"Tessellate"}}
	}
	for i, p := range points {
		if !p.finite() {
			return nil, Error{fmt.Sprintf("Point %d has non-finite coordinates (%v, %v)", i, p.X, p.Y), []string{"Tessellate"}}
		}
	}
	T := newTriangulation(points)
	dup := make([]int, len(points))
	//identical points sort together, lowest index first, so the
	//owner of a repeated position is always its earliest occurrence.
	for _, i := range T.insertionOrder() {
		dup[i] = T.insert(i)
	}
	return T.diagram(dup), nil
}

//diagram builds the dual of the triangulation.
func (T *triangulation) diagram(dup []int) *Diagram {
	D := &Diagram{
		Vertices:    make([]Point, 0, len(T.tris)/2),
		Regions:     make([][]int, T.nreal),
		PointRegion: make([]int, T.nreal),
		DuplicateOf: dup,
	}
	centers := make([]int, len(T.tris))
	for i, tri := range T.tris {
		centers[i] = NoVertex
		if tri.dead || T.enclosing(tri.v[0]) || T.enclosing(tri.v[1]) || T.enclosing(tri.v[2]) {
			continue
		}
		c := circumcenter(T.pts[tri.v[0]], T.pts[tri.v[1]], T.pts[tri.v[2]])
		if !c.finite() {
			continue
		}
		centers[i] = len(D.Vertices)
		D.Vertices = append(D.Vertices, c.Add(T.center))
	}
	incident := T.incident()
	for i := 0; i < T.nreal; i++ {
		D.PointRegion[i] = i
		if dup[i] >= 0 {
			D.Regions[i] = []int{}
			continue
		}
		D.Regions[i] = T.fan(i, incident[i], centers)
	}
	return D
}

//fan walks counter-clockwise around the point i, starting from the triangle t0,
//and returns the vertices of its Voronoi cell.
func (T *triangulation) fan(i, t0 int, centers []int) []int {
	if t0 < 0 {
		return []int{NoVertex}
	}
	region := make([]int, 0, 8)
	t := t0
	for range T.tris {
		region = append(region, centers[t])
		tri := T.tris[t]
		k := 0
		for tri.v[k] != i {
			k++
		}
		t = tri.n[(k+1)%3]
		if t < 0 {
			return append(region, NoVertex)
		}
		if t == t0 {
			return region
		}
	}
	return append(region, NoVertex) //the walk did not close. Shouldn't happen.
}

//Bounded returns true if the region for the input point i is bounded.
//The empty regions of repeated points count as bounded.
func (D *Diagram) Bounded(i int) bool {
	for _, v := range D.Regions[D.PointRegion[i]] {
		if v == NoVertex {
			return false
		}
	}
	return true
}

//Polygon returns the corners of the cell of the input point i, counter-clockwise.
//It returns an error if the cell is unbounded.
func (D *Diagram) Polygon(i int) ([]Point, error) {
	region := D.Regions[D.PointRegion[i]]
	ret := make([]Point, 0, len(region))
	for _, v := range region {
		if v == NoVertex {
			return nil, Error{fmt.Sprintf("Region of point %d is unbounded", i), []string{"Polygon"}}
		}
		ret = append(ret, D.Vertices[v])
	}
	return ret, nil
}

//Errors

//Error is the error type for the voro package.
type Error struct {
	message string
	deco    []string
}

func (err Error) Error() string {
	return fmt.Sprintf("voro: %s", err.message)
}

//Decorate adds the name of a calling function to the error and returns
//the complete list.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
