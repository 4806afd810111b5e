/*
 * periodic.go, part of protarea.
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
	"github.com/rmera/protarea/voro"
)

// translations are the offsets, in box units, of the 8 cells around the central one.
// The order is fixed, and is the order in which the images appear in a PointSet.
var translations = [8][2]float64{
	{1, 0},
	{1, 1},
	{1, -1},
	{-1, 0},
	{-1, 1},
	{-1, -1},
	{0, 1},
	{0, -1},
}

// PointSet contains the XY projections of the atoms in one Z slice.
// Images are copies of all the slice atoms (protein or not) translated to the
// 8 neighbouring periodic cells. They bound the cells of the protein points.
type PointSet struct {
	Protein    []voro.Point
	NonProtein []voro.Point
	Images     []voro.Point
}

// Len returns the total number of points in the set.
func (P *PointSet) Len() int {
	return len(P.Protein) + len(P.NonProtein) + len(P.Images)
}

// All returns all the points in the set, protein first, then non-protein, then images.
// The first len(P.Protein) elements are always the protein points.
func (P *PointSet) All() []voro.Point {
	ret := make([]voro.Point, 0, P.Len())
	ret = append(ret, P.Protein...)
	ret = append(ret, P.NonProtein...)
	return append(ret, P.Images...)
}

// BuildPointSet projects the particles onto the XY plane and separates protein from
// non-protein points, keeping their order. If periodic is true, it also adds the
// images of every particle in the 8 cells around the box, which requires box.X
// and box.Y to be positive and finite.
func BuildPointSet(particles []Particle, box Box, periodic bool) (*PointSet, error) {
	P := new(PointSet)
	for _, p := range particles {
		if p.Protein {
			P.Protein = append(P.Protein, voro.Point{X: p.X, Y: p.Y})
		} else {
			P.NonProtein = append(P.NonProtein, voro.Point{X: p.X, Y: p.Y})
		}
	}
	if !periodic {
		return P, nil
	}
	if err := box.planarCheck("BuildPointSet"); err != nil {
		return nil, err
	}
	P.Images = make([]voro.Point, 0, len(translations)*len(particles))
	for _, t := range translations {
		d := voro.Point{X: t[0] * box.X, Y: t[1] * box.Y}
		for _, p := range particles {
			P.Images = append(P.Images, voro.Point{X: p.X, Y: p.Y}.Add(d))
		}
	}
	return P, nil
}
