/*
Copyright © 2019 the xsection authors.
This file is part of xsection.

xsection is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

xsection is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with xsection.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package dem reads digital elevation models and samples elevations from
// them.
package dem

import (
	"errors"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

var (
	// ErrOutside is returned when a point is outside of a grid.
	ErrOutside = errors.New("dem: point outside of elevation grid")

	// ErrNoData is returned when there is no elevation at a point.
	ErrNoData = errors.New("dem: no elevation data at point")
)

// Grid holds elevations on a regular grid of square cells.
type Grid struct {
	NCols, NRows int

	// X0 and Y0 are the coordinates of the lower-left corner of the
	// grid.
	X0, Y0   float64
	CellSize float64

	// Data holds the elevation of each cell by row, from the northern
	// row to the southern row. Cells without data are NaN.
	Data []float64

	// SR is the spatial reference of the grid, if known.
	SR *proj.SR
}

// Bounds returns the extent of the grid.
func (g *Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.X0, Y: g.Y0},
		Max: geom.Point{X: g.X0 + float64(g.NCols)*g.CellSize, Y: g.Y0 + float64(g.NRows)*g.CellSize},
	}
}

func (g *Grid) check() error {
	if g.NCols < 1 || g.NRows < 1 {
		return fmt.Errorf("dem: invalid grid size %d×%d", g.NCols, g.NRows)
	}
	if !(g.CellSize > 0) {
		return fmt.Errorf("dem: invalid cell size %g", g.CellSize)
	}
	if len(g.Data) != g.NCols*g.NRows {
		return fmt.Errorf("dem: grid has %d values; want %d", len(g.Data), g.NCols*g.NRows)
	}
	return nil
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// SampleZ returns the elevation at (x, y), interpolated bilinearly
// between the centers of the four nearest cells. Cells without data are
// left out of the interpolation. Points in the outer half of the edge cells
// take the value of the edge.
func (g *Grid) SampleZ(x, y float64) (float64, error) {
	b := g.Bounds()
	if math.IsNaN(x) || math.IsNaN(y) || x < b.Min.X || x > b.Max.X || y < b.Min.Y || y > b.Max.Y {
		return math.NaN(), fmt.Errorf("%w: (%g, %g)", ErrOutside, x, y)
	}
	fx := clamp((x-g.X0)/g.CellSize-0.5, 0, float64(g.NCols-1))
	fy := clamp((b.Max.Y-y)/g.CellSize-0.5, 0, float64(g.NRows-1))
	i0, j0 := int(fx), int(fy)
	i1, j1 := i0+1, j0+1
	if i1 > g.NCols-1 {
		i1 = i0
	}
	if j1 > g.NRows-1 {
		j1 = j0
	}
	tx, ty := fx-float64(i0), fy-float64(j0)

	var sum, weight float64
	for _, c := range []struct {
		i, j int
		w    float64
	}{
		{i0, j0, (1 - tx) * (1 - ty)},
		{i1, j0, tx * (1 - ty)},
		{i0, j1, (1 - tx) * ty},
		{i1, j1, tx * ty},
	} {
		v := g.Data[c.j*g.NCols+c.i]
		if c.w == 0 || math.IsNaN(v) {
			continue
		}
		sum += v * c.w
		weight += c.w
	}
	if weight == 0 {
		return math.NaN(), fmt.Errorf("%w: (%g, %g)", ErrNoData, x, y)
	}
	return sum / weight, nil
}

// Open reads an elevation grid from an Esri ASCII grid (.asc) or a
// netCDF file (.nc or .grd). variable names the elevation variable in
// netCDF files and defaults to "z". The spatial reference is read from a
// .prj file next to filename, if there is one.
func Open(filename, variable string) (*Grid, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("dem: %w", err)
	}
	defer f.Close()

	var g *Grid
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".asc", ".txt":
		g, err = ReadASCII(f)
	case ".nc", ".grd":
		if variable == "" {
			variable = "z"
		}
		g, err = ReadNetCDF(f, variable)
	default:
		return nil, fmt.Errorf("dem: unsupported elevation file type %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("dem: reading %s: %w", filename, err)
	}

	prj := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".prj"
	if b, err := ioutil.ReadFile(prj); err == nil {
		if g.SR, err = proj.Parse(string(b)); err != nil {
			return nil, fmt.Errorf("dem: parsing %s: %w", prj, err)
		}
	}
	return g, nil
}
