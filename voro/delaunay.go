/*
 * delaunay.go, part of protarea.
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

import (
	"math"
	"sort"
)

//how far, in units of the point cloud span, the enclosing triangle reaches.
const enclosingFactor float64 = 100

//triangle keeps its vertices counter-clockwise. n[k] is the triangle
//across the edge opposite to v[k], or -1 if there is none (only possible
//for the edges of the enclosing triangle).
type triangle struct {
	v    [3]int
	n    [3]int
	dead bool
}

//edge of a cavity, from a to b (counter-clockwise as seen from the cavity),
//with out being the triangle on the other side.
type cavityEdge struct {
	a, b int
	out  int
}

//triangulation is an incremental (Bowyer-Watson) Delaunay triangulation.
//The points are stored shifted so the center of their bounding box is the
//origin. The last 3 points are the vertices of the enclosing triangle.
type triangulation struct {
	pts      []Point
	nreal    int
	center   Point
	span     float64
	tris     []triangle
	last     int
	mark     []uint32
	epoch    uint32
	cavity   []int
	stack    []int
	boundary []cavityEdge
}

func newTriangulation(points []Point) *triangulation {
	T := new(triangulation)
	T.nreal = len(points)
	minx, miny := math.Inf(1), math.Inf(1)
	maxx, maxy := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minx = math.Min(minx, p.X)
		maxx = math.Max(maxx, p.X)
		miny = math.Min(miny, p.Y)
		maxy = math.Max(maxy, p.Y)
	}
	T.center = Point{(minx + maxx) / 2, (miny + maxy) / 2}
	T.span = math.Max(maxx-minx, maxy-miny)
	if T.span == 0 {
		T.span = 1 //a single point, or all of them on top of each other.
	}
	T.pts = make([]Point, 0, len(points)+3)
	for _, p := range points {
		T.pts = append(T.pts, Point{p.X - T.center.X, p.Y - T.center.Y})
	}
	m := enclosingFactor * T.span
	T.pts = append(T.pts, Point{-4 * m, -2 * m}, Point{4 * m, -2 * m}, Point{0, 4 * m})
	s := T.nreal
	T.tris = make([]triangle, 0, 2*len(points)+1)
	T.addTriangle(triangle{v: [3]int{s, s + 1, s + 2}, n: [3]int{-1, -1, -1}})
	return T
}

func (T *triangulation) enclosing(v int) bool {
	return v >= T.nreal
}

func (T *triangulation) addTriangle(t triangle) int {
	T.tris = append(T.tris, t)
	T.mark = append(T.mark, 0)
	return len(T.tris) - 1
}

func (T *triangulation) marked(t int) bool {
	return T.mark[t] == T.epoch
}

func (T *triangulation) setMark(t int) {
	T.mark[t] = T.epoch
}

//insertionOrder returns the indexes of the real points sorted in vertical strips,
//alternating the direction of each strip, so consecutive points are close to each
//other and the point location walk stays short.
func (T *triangulation) insertionOrder() []int {
	n := T.nreal
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	strips := int(math.Sqrt(float64(n) / 4))
	if strips < 1 {
		strips = 1
	}
	strip := make([]int, n)
	for i, p := range T.pts[:n] {
		s := int((p.X/T.span + 0.5) * float64(strips))
		strip[i] = min(max(s, 0), strips-1)
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if strip[i] != strip[j] {
			return strip[i] < strip[j]
		}
		yi, yj := T.pts[i].Y, T.pts[j].Y
		if yi != yj {
			if strip[i]%2 == 0 {
				return yi < yj
			}
			return yi > yj
		}
		return i < j
	})
	return order
}

//locate returns a triangle containing p (possibly on its border), walking
//from the last created triangle. It falls back to a linear scan if the walk
//does not converge.
func (T *triangulation) locate(p Point) int {
	t := T.last
	if T.tris[t].dead {
		t = T.anyAlive()
	}
	limit := len(T.tris) + 3
	for step := 0; step < limit; step++ {
		tri := &T.tris[t]
		next := -1
		for j := 0; j < 3; j++ {
			k := (j + step) % 3
			a := T.pts[tri.v[(k+1)%3]]
			b := T.pts[tri.v[(k+2)%3]]
			if orient(a, b, p) < 0 {
				next = tri.n[k]
				break
			}
		}
		if next < 0 {
			return t
		}
		t = next
	}
	for i, tri := range T.tris {
		if !tri.dead && T.contains(i, p) {
			return i
		}
	}
	return t
}

func (T *triangulation) contains(t int, p Point) bool {
	tri := T.tris[t]
	for k := 0; k < 3; k++ {
		if orient(T.pts[tri.v[(k+1)%3]], T.pts[tri.v[(k+2)%3]], p) < 0 {
			return false
		}
	}
	return true
}

func (T *triangulation) anyAlive() int {
	for i := len(T.tris) - 1; i >= 0; i-- {
		if !T.tris[i].dead {
			return i
		}
	}
	panic("voro: triangulation without live triangles") //always a bug in this package.
}

func (T *triangulation) inCircumcircle(t int, p Point) bool {
	v := T.tris[t].v
	return inCircle(T.pts[v[0]], T.pts[v[1]], T.pts[v[2]], p) > 0
}

//insert adds the point with index pi to the triangulation. If the point coincides
//with an already inserted one, nothing is done and the index of that point is
//returned. Otherwise it returns -1.
func (T *triangulation) insert(pi int) int {
	p := T.pts[pi]
	t := T.locate(p)
	for _, v := range T.tris[t].v {
		if T.pts[v] == p {
			return v
		}
	}
	T.epoch++
	T.cavity = T.cavity[:0]
	T.stack = append(T.stack[:0], t)
	T.setMark(t)
	for len(T.stack) > 0 {
		c := T.stack[len(T.stack)-1]
		T.stack = T.stack[:len(T.stack)-1]
		T.cavity = append(T.cavity, c)
		for _, nb := range T.tris[c].n {
			if nb < 0 || T.marked(nb) {
				continue
			}
			if T.inCircumcircle(nb, p) {
				T.setMark(nb)
				T.stack = append(T.stack, nb)
			}
		}
	}
	T.cavityBoundary(p)
	first := len(T.tris)
	for _, e := range T.boundary {
		idx := T.addTriangle(triangle{v: [3]int{e.a, e.b, pi}, n: [3]int{-1, -1, e.out}})
		if e.out >= 0 {
			T.relink(e.out, e.b, e.a, idx)
		}
	}
	for i := first; i < len(T.tris); i++ {
		a, b := T.tris[i].v[0], T.tris[i].v[1]
		for j := first; j < len(T.tris); j++ {
			if T.tris[j].v[0] == b {
				T.tris[i].n[0] = j
			}
			if T.tris[j].v[1] == a {
				T.tris[i].n[1] = j
			}
		}
	}
	for _, c := range T.cavity {
		T.tris[c].dead = true
	}
	T.last = first
	return -1
}

//cavityBoundary collects the border of the cavity. Rounding errors in the
//in-circle test can leave a border edge that does not face p, which would
//give an inverted triangle. Such cavities are grown across the offending edge
//until every border edge sees p.
func (T *triangulation) cavityBoundary(p Point) {
	for {
		T.boundary = T.boundary[:0]
		grow := -1
	search:
		for _, c := range T.cavity {
			tri := T.tris[c]
			for k := 0; k < 3; k++ {
				nb := tri.n[k]
				if nb >= 0 && T.marked(nb) {
					continue
				}
				a, b := tri.v[(k+1)%3], tri.v[(k+2)%3]
				if nb >= 0 && orient(T.pts[a], T.pts[b], p) <= 0 {
					grow = nb
					break search
				}
				T.boundary = append(T.boundary, cavityEdge{a: a, b: b, out: nb})
			}
		}
		if grow < 0 {
			return
		}
		T.setMark(grow)
		T.cavity = append(T.cavity, grow)
	}
}

//relink makes the triangle t point to nt across its edge from a to b.
func (T *triangulation) relink(t, a, b, nt int) {
	tri := &T.tris[t]
	for k := 0; k < 3; k++ {
		if tri.v[(k+1)%3] == a && tri.v[(k+2)%3] == b {
			tri.n[k] = nt
			return
		}
	}
}

//incident returns, for each point, one live triangle that has it as a vertex, or -1.
func (T *triangulation) incident() []int {
	ret := make([]int, len(T.pts))
	for i := range ret {
		ret[i] = -1
	}
	for i, tri := range T.tris {
		if tri.dead {
			continue
		}
		for _, v := range tri.v {
			ret[v] = i
		}
	}
	return ret
}

//orient is twice the signed area of abc, positive if counter-clockwise.
func orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

//inCircle is positive if d lies inside the circle through the counter-clockwise a, b, c.
func inCircle(a, b, c, d Point) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy
	return ad*(bdx*cdy-cdx*bdy) + bd*(cdx*ady-adx*cdy) + cd*(adx*bdy-bdx*ady)
}

//circumcenter of the triangle abc. It is not finite for collinear points.
func circumcenter(a, b, c Point) Point {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	return Point{a.X + (cy*b2-by*c2)/d, a.Y + (bx*c2-cx*b2)/d}
}
