/*
 * trajsource.go, part of protarea.
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
	"errors"
	"fmt"
	"io"

	v3 "github.com/rmera/protarea/v3"
)

// TrajSource is a FrameSource that reads frames from a Traj, using a Topology to
// tell protein from non-protein atoms.
type TrajSource struct {
	traj     Traj
	protein  []bool
	coords   *v3.Matrix
	box      []float64
	fallback Box
	skip     int
	stride   int
	read     int //frames read from traj so far
}

// NewTrajSource returns a FrameSource for the trajectory t and the topology top.
// The first skip frames are not analyzed; after that, only one frame every stride
// is (stride <= 1 means all frames). If a frame carries no box, fallback is used.
func NewTrajSource(t Traj, top *Topology, fallback Box, skip, stride int) (*TrajSource, error) {
	if t.Len() != top.Len() {
		return nil, newError(ConfigurationError, fmt.Sprintf("Trajectory has %d atoms, topology has %d", t.Len(), top.Len()), "NewTrajSource")
	}
	if !t.Readable() {
		return nil, newError(ConfigurationError, "Trajectory is not readable", "NewTrajSource")
	}
	return &TrajSource{
		traj:     t,
		protein:  top.ProteinMask(),
		coords:   v3.Zeros(t.Len()),
		box:      make([]float64, 9),
		fallback: fallback,
		skip:     max(skip, 0),
		stride:   max(stride, 1),
	}, nil
}

func (S *TrajSource) wanted(i int) bool {
	return i >= S.skip && (i-S.skip)%S.stride == 0
}

// Next reads frames until one that should be analyzed is found, and returns it.
// It returns io.EOF at the end of the trajectory.
func (S *TrajSource) Next(ctx context.Context) (*Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		i := S.read
		var err error
		if S.wanted(i) {
			clear(S.box)
			err = S.traj.Next(S.coords, S.box)
		} else {
			err = S.traj.Next(nil)
		}
		if err != nil {
			var last LastFrameError
			if errors.As(err, &last) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("reading frame %d: %w", i, err)
		}
		S.read++
		if !S.wanted(i) {
			continue
		}
		//the box comes as 3 vectors, only the diagonal is used.
		box := Box{S.box[0], S.box[4], S.box[8]}
		if box.X == 0 && box.Y == 0 {
			box = S.fallback
		}
		return NewFrame(i, S.coords, S.protein, box)
	}
}
