/*
 * particle.go, part of protarea.
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
	"context"
	"fmt"
	"io"
	"math"

	v3 "github.com/rmera/protarea/v3"
)

// Particle is one atom in a frame. Protein marks atoms belonging to the protein.
type Particle struct {
	X, Y, Z float64
	Protein bool
}

// Box contains the extents of an orthorhombic simulation box.
type Box struct {
	X, Y, Z float64
}

// planarCheck returns an error unless the X and Y extents of the box are positive, finite numbers.
func (B Box) planarCheck(caller string) error {
	for _, v := range []float64{B.X, B.Y} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return newError(ConfigurationError, fmt.Sprintf("Box X and Y must be positive and finite, got %v, %v", B.X, B.Y), caller)
		}
	}
	return nil
}

// Range is an open interval along Z: only values strictly between Lower and Upper
// belong to it.
type Range struct {
	Lower float64
	Upper float64
}

// Contains returns true if Lower < z < Upper.
func (R Range) Contains(z float64) bool {
	return z > R.Lower && z < R.Upper
}

// Frame is an immutable snapshot of the atoms of one trajectory frame.
type Frame struct {
	Index     int //position of the frame in the trajectory
	Box       Box
	Particles []Particle
}

// NewFrame builds a frame from a coordinate matrix and the protein mask for its atoms.
func NewFrame(index int, coords *v3.Matrix, protein []bool, box Box) (*Frame, error) {
	n := coords.NVecs()
	if n != len(protein) {
		return nil, newError(ConfigurationError, fmt.Sprintf("%d coordinates but %d atoms in the protein mask", n, len(protein)), "NewFrame")
	}
	F := &Frame{Index: index, Box: box, Particles: make([]Particle, n)}
	for i := range F.Particles {
		v := coords.Vec(i)
		F.Particles[i] = Particle{X: v[0], Y: v[1], Z: v[2], Protein: protein[i]}
	}
	return F, nil
}

// SelectZ returns the particles of the frame whose Z coordinate lies strictly within R,
// in their original order. Particles exactly on Lower or Upper are not selected.
func (F *Frame) SelectZ(R Range) []Particle {
	ret := make([]Particle, 0, len(F.Particles)/8)
	for _, p := range F.Particles {
		if R.Contains(p.Z) {
			ret = append(ret, p)
		}
	}
	return ret
}

// FrameSlice is a FrameSource serving frames already in memory.
type FrameSlice struct {
	frames []*Frame
	next   int
}

// NewFrameSlice returns a FrameSource that delivers the given frames in order.
func NewFrameSlice(frames ...*Frame) *FrameSlice {
	return &FrameSlice{frames: frames}
}

// Next returns the next frame, or io.EOF.
func (S *FrameSlice) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if S.next >= len(S.frames) {
		return nil, io.EOF
	}
	S.next++
	return S.frames[S.next-1], nil
}
