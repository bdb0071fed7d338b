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

package dem

import (
	"fmt"
	"math"

	"github.com/ctessum/cdf"
)

// ReadNetCDF reads the two-dimensional elevation variable from a
// netCDF-3 file following the COARDS conventions, such as grids written
// by GMT. The variable's dimensions are latitude (or y) then longitude
// (or x), and each dimension must have a coordinate variable of the same
// name holding evenly spaced cell centers. Values equal to the
// variable's _FillValue are missing.
func ReadNetCDF(r cdf.ReaderWriterAt, variable string) (*Grid, error) {
	nc, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("dem: opening netCDF file: %w", err)
	}
	dims := nc.Header.Dimensions(variable)
	if len(dims) != 2 {
		return nil, fmt.Errorf("dem: netCDF variable %q has dimensions %v; want [y x]", variable, dims)
	}
	ys, err := readVar(nc, dims[0])
	if err != nil {
		return nil, err
	}
	xs, err := readVar(nc, dims[1])
	if err != nil {
		return nil, err
	}
	data, err := readVar(nc, variable)
	if err != nil {
		return nil, err
	}
	if len(xs) < 2 || len(ys) < 2 {
		return nil, fmt.Errorf("dem: netCDF grid must be at least 2×2 but is %d×%d", len(xs), len(ys))
	}
	dx, err := spacing(xs)
	if err != nil {
		return nil, fmt.Errorf("dem: dimension %s: %w", dims[1], err)
	}
	dy, err := spacing(ys)
	if err != nil {
		return nil, fmt.Errorf("dem: dimension %s: %w", dims[0], err)
	}
	if dx <= 0 {
		return nil, fmt.Errorf("dem: dimension %s must increase", dims[1])
	}
	if math.Abs(math.Abs(dy)-dx) > 1e-6*dx {
		return nil, fmt.Errorf("dem: grid cells must be square but are %g by %g", dx, math.Abs(dy))
	}

	g := &Grid{
		NCols:    len(xs),
		NRows:    len(ys),
		X0:       xs[0] - dx/2,
		Y0:       math.Min(ys[0], ys[len(ys)-1]) - math.Abs(dy)/2,
		CellSize: dx,
		Data:     data,
	}
	if dy > 0 {
		// Rows are stored from south to north.
		g.Data = make([]float64, len(data))
		for j := 0; j < g.NRows; j++ {
			copy(g.Data[j*g.NCols:(j+1)*g.NCols], data[(g.NRows-1-j)*g.NCols:(g.NRows-j)*g.NCols])
		}
	}
	if err := g.check(); err != nil {
		return nil, err
	}
	return g, nil
}

// spacing returns the interval between the evenly spaced values in v.
func spacing(v []float64) (float64, error) {
	d := v[1] - v[0]
	for i := 2; i < len(v); i++ {
		if math.Abs(v[i]-v[i-1]-d) > 1e-6*math.Abs(d) {
			return 0, fmt.Errorf("values are not evenly spaced")
		}
	}
	if d == 0 {
		return 0, fmt.Errorf("values are not distinct")
	}
	return d, nil
}

// readVar reads a numeric variable, replacing fill values with NaN.
func readVar(nc *cdf.File, v string) ([]float64, error) {
	r := nc.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("dem: reading netCDF variable %s: %w", v, err)
	}
	data, err := toFloat64(buf)
	if err != nil {
		return nil, fmt.Errorf("dem: netCDF variable %s: %w", v, err)
	}
	if fill := nc.Header.GetAttribute(v, "_FillValue"); fill != nil {
		f, err := toFloat64(fill)
		if err != nil || len(f) == 0 {
			return nil, fmt.Errorf("dem: invalid _FillValue for %s: %v", v, fill)
		}
		for i, d := range data {
			if d == f[0] {
				data[i] = math.NaN()
			}
		}
	}
	return data, nil
}

func toFloat64(v interface{}) ([]float64, error) {
	switch t := v.(type) {
	case []float64:
		return t, nil
	case []float32:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}
