/*
 * histo.go, part of protarea.
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

// Package histo builds histograms of the area values of each slice along a trajectory.
package histo

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Data is one histogram. Bin i counts the values v with dividers[i] <= v < dividers[i+1].
// Values outside the dividers are not counted, but are included in the total.
type Data struct {
	id         int
	normalized bool
	total      int
	dividers   []float64
	histo      []float64
}

// NewData returns a new histogram from the dividers and rawdata given.
// rawdata can be nil. In that case, an empty histogram is created.
// If an ID for the histogram is given, it will be set. If not, the ID will be -1.
func NewData(dividers []float64, rawdata []float64, ID ...int) (*Data, error) {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		return nil, fmt.Errorf("histo: at least 2 ascending dividers are needed, got %v", dividers)
	}
	d := &Data{id: -1, dividers: slices.Clone(dividers)}
	if len(ID) > 0 {
		d.id = ID[0]
	}
	d.histo = make([]float64, len(dividers)-1)
	d.AddData(rawdata...)
	return d, nil
}

// Dividers returns n+1 equally spaced dividers from min to max, for n bins.
func Dividers(min, max float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	if max <= min {
		max = min + 1
	}
	return floats.Span(make([]float64, n+1), min, max)
}

// ID returns the ID of the histogram
func (D *Data) ID() int {
	return D.id
}

// Total returns the number of values given to the histogram, counted or not.
func (D *Data) Total() int {
	return D.total
}

// AddData adds the given data point(s) to the histogram
func (D *Data) AddData(points ...float64) {
	if len(points) == 0 {
		return
	}
	norma := D.normalized
	D.UnNormalize()
	data := slices.Clone(points)
	sort.Float64s(data)
	//stat.Histogram panics with values off the limits, so they are removed first.
	mini := sort.SearchFloat64s(data, D.dividers[0])
	maxi := sort.SearchFloat64s(data, D.dividers[len(D.dividers)-1])
	if mini < maxi {
		floats.Add(D.histo, stat.Histogram(nil, D.dividers, data[mini:maxi], nil))
	}
	D.total += len(points)
	if norma {
		D.Normalize()
	}
}

// Normalized Returns true if the histogram is normalized
func (D *Data) Normalized() bool {
	return D.normalized
}

// Normalize divides each bin by the total number of values.
func (D *Data) Normalize() {
	if D.normalized || D.total == 0 {
		return
	}
	floats.Scale(1/float64(D.total), D.histo)
	D.normalized = true
}

// UnNormalize reverts Normalize.
func (D *Data) UnNormalize() {
	if !D.normalized {
		return
	}
	floats.Scale(float64(D.total), D.histo)
	D.normalized = false
}

// Dividers returns a copy of the dividers of the histogram.
func (D *Data) Dividers() []float64 {
	return slices.Clone(D.dividers)
}

// Copy returns a copy of the bins of the histogram.
func (D *Data) Copy() []float64 {
	return slices.Clone(D.histo)
}

// Sum returns the sum of all bins.
func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

type jsonData struct {
	ID         int       `json:"id"`
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonData{ID: D.id, Normalized: D.normalized, Total: D.total, Dividers: D.dividers, Histo: D.histo})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a jsonData
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) != len(a.Histo)+1 {
		return fmt.Errorf("histo: %d dividers for %d bins", len(a.Dividers), len(a.Histo))
	}
	D.id = a.ID
	D.normalized = a.Normalized
	D.total = a.Total
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}

// String prints a -hopefully- pretty string representation of
// the histogram. The representation uses 3 lines of text
func (D *Data) String() string {
	ret := fmt.Sprintf("ID: %d, Normalized: %v, TotalData: %d\n", D.id, D.normalized, D.total)
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

// Columns returns one histogram per column of the given table (rows are frames,
// columns are slices). All share n bins from 0 to just above the largest value, so
// every value is counted. The ID of each histogram is its column.
func Columns(rows [][]float64, n int) ([]*Data, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("histo: no data")
	}
	max := 0.0
	for _, r := range rows {
		if len(r) != len(rows[0]) {
			return nil, fmt.Errorf("histo: rows of different lengths")
		}
		if len(r) > 0 {
			max = floats.Max(append([]float64{max}, r...))
		}
	}
	//the top divider is excluded from the last bin.
	dividers := Dividers(0, max*(1+1e-9)+1e-9, n)
	ret := make([]*Data, len(rows[0]))
	col := make([]float64, len(rows))
	for c := range ret {
		for i, r := range rows {
			col[i] = r[c]
		}
		var err error
		if ret[c], err = NewData(dividers, col, c); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
