/*
 * table.go, part of protarea.
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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AreaTable contains the protein area for each analyzed frame (rows) and Z slice
// (columns). It is read-only: all methods return copies.
type AreaTable struct {
	bounds []float64   //slice boundaries, one more than the columns
	frames []int       //trajectory index of each row
	rows   [][]float64 //row-major
}

// Dims returns the number of frames and slices in the table.
func (T *AreaTable) Dims() (int, int) {
	return len(T.rows), max(len(T.bounds)-1, 0)
}

// At returns the area for the frame row f and the slice s.
func (T *AreaTable) At(f, s int) float64 {
	return T.rows[f][s]
}

// Row returns a copy of the areas for the frame row f.
func (T *AreaTable) Row(f int) []float64 {
	return append([]float64(nil), T.rows[f]...)
}

// Rows returns a copy of the whole table.
func (T *AreaTable) Rows() [][]float64 {
	ret := make([][]float64, len(T.rows))
	for i := range T.rows {
		ret[i] = T.Row(i)
	}
	return ret
}

// Column returns the time series of areas for the slice s.
func (T *AreaTable) Column(s int) []float64 {
	ret := make([]float64, len(T.rows))
	for i, r := range T.rows {
		ret[i] = r[s]
	}
	return ret
}

// Boundaries returns the Z boundaries of the slices. Slice s goes from
// Boundaries()[s] to Boundaries()[s+1].
func (T *AreaTable) Boundaries() []float64 {
	return append([]float64(nil), T.bounds...)
}

// Frames returns the trajectory index of the frame in each row.
func (T *AreaTable) Frames() []int {
	return append([]int(nil), T.frames...)
}

// SliceCenters returns the Z value at the middle of each slice.
func (T *AreaTable) SliceCenters() []float64 {
	_, s := T.Dims()
	ret := make([]float64, s)
	for i := range ret {
		ret[i] = (T.bounds[i] + T.bounds[i+1]) / 2
	}
	return ret
}

// Mean returns the average area, over all frames, for each slice.
// It returns NaNs for an empty table.
func (T *AreaTable) Mean() []float64 {
	_, s := T.Dims()
	ret := make([]float64, s)
	for i := range ret {
		if len(T.rows) == 0 {
			ret[i] = math.NaN()
			continue
		}
		ret[i] = stat.Mean(T.Column(i), nil)
	}
	return ret
}

// StdDev returns the sample standard deviation of the area, over all frames, for each slice.
// It is zero if the table has only one frame.
func (T *AreaTable) StdDev() []float64 {
	_, s := T.Dims()
	ret := make([]float64, s)
	if len(T.rows) < 2 {
		return ret
	}
	for i := range ret {
		ret[i] = stat.StdDev(T.Column(i), nil)
	}
	return ret
}

// Totals returns, for each frame, the sum of the areas of all slices.
func (T *AreaTable) Totals() []float64 {
	ret := make([]float64, len(T.rows))
	for i, r := range T.rows {
		ret[i] = floats.Sum(r)
	}
	return ret
}

type jsonTable struct {
	Boundaries []float64   `json:"boundaries"`
	Frames     []int       `json:"frames"`
	Areas      [][]float64 `json:"areas"`
}

func (T *AreaTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonTable{Boundaries: T.bounds, Frames: T.frames, Areas: T.rows})
}

func (T *AreaTable) UnmarshalJSON(b []byte) error {
	var a jsonTable
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Frames) != len(a.Areas) {
		return fmt.Errorf("protarea: %d frame indexes for %d rows", len(a.Frames), len(a.Areas))
	}
	for i, r := range a.Areas {
		if len(r) != len(a.Boundaries)-1 {
			return fmt.Errorf("protarea: row %d has %d values, but there are %d slices", i, len(r), len(a.Boundaries)-1)
		}
	}
	T.bounds = a.Boundaries
	T.frames = a.Frames
	T.rows = a.Areas
	return nil
}

// WriteText writes the table as whitespace-separated text: a comment line with the
// slice centers, then one line per frame, starting with the frame index.
func (T *AreaTable) WriteText(w io.Writer) error {
	b := bufio.NewWriter(w)
	fmt.Fprint(b, "# frame")
	for _, z := range T.SliceCenters() {
		fmt.Fprintf(b, " %.3f", z)
	}
	fmt.Fprintln(b)
	for i, r := range T.rows {
		fmt.Fprintf(b, "%d", T.frames[i])
		for _, v := range r {
			fmt.Fprintf(b, " %.4f", v)
		}
		fmt.Fprintln(b)
	}
	return b.Flush()
}
