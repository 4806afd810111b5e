/*
 * areaplot.go, part of protarea
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

// Package areaplot draws the protein area profiles in an AreaTable.
// The image format is taken from the extension of the file name (png, svg, pdf, eps...).
package areaplot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rmera/protarea"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const heatColors = 64

// Size of the saved images.
var (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// errorPoints are points with symmetric vertical error bars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Profile plots the mean area, over all frames, of each slice against the Z coordinate
// of the slice center, with error bars of one standard deviation, and saves the plot
// to filename.
func Profile(T *protarea.AreaTable, title, filename string) error {
	frames, slices := T.Dims()
	if frames == 0 || slices == 0 {
		return fmt.Errorf("areaplot: Profile: empty table")
	}
	z := T.SliceCenters()
	mean := T.Mean()
	sd := T.StdDev()
	data := errorPoints{XYs: make(plotter.XYs, slices), YErrors: make(plotter.YErrors, slices)}
	for i := range z {
		data.XYs[i].X = z[i]
		data.XYs[i].Y = mean[i]
		data.YErrors[i].Low = sd[i]
		data.YErrors[i].High = sd[i]
	}
	p := basicPlot(title, "Z (A)", "Area (A^2)")
	line, err := plotter.NewLine(data.XYs)
	if err != nil {
		return fmt.Errorf("areaplot: Profile: %w", err)
	}
	line.Color = color.RGBA{R: 200, B: 40, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	if frames > 1 {
		bars, err := plotter.NewYErrorBars(data)
		if err != nil {
			return fmt.Errorf("areaplot: Profile: %w", err)
		}
		bars.Color = color.Gray{Y: 90}
		p.Add(bars)
	}
	p.Y.Min = math.Min(p.Y.Min, 0)
	return p.Save(Width, Height, filename)
}

// areaGrid shows the AreaTable as a grid with frames in the X axis and
// slice centers in the Y axis.
type areaGrid struct {
	T      *protarea.AreaTable
	frames []int
	z      []float64
}

func (G areaGrid) Dims() (c, r int) {
	return G.T.Dims()
}

func (G areaGrid) Z(c, r int) float64 {
	return G.T.At(c, r)
}

func (G areaGrid) X(c int) float64 {
	return float64(G.frames[c])
}

func (G areaGrid) Y(r int) float64 {
	return G.z[r]
}

// HeatMap plots the area of every slice in every frame as a heat map, with the
// trajectory frame in the X axis and the Z coordinate in the Y axis, and saves it
// to filename.
func HeatMap(T *protarea.AreaTable, title, filename string) error {
	frames, slices := T.Dims()
	if frames == 0 || slices == 0 {
		return fmt.Errorf("areaplot: HeatMap: empty table")
	}
	grid := areaGrid{T: T, frames: T.Frames(), z: T.SliceCenters()}
	h := plotter.NewHeatMap(grid, palette.Heat(heatColors, 1))
	if h.Max <= h.Min {
		//all cells equal
		h.Max = h.Min + 1
	}
	p := basicPlot(title, "Frame", "Z (A)")
	p.Add(h)
	return p.Save(Width, Height, filename)
}
