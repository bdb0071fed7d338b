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
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadASCII reads a grid in the Esri ASCII format: a header of
// ncols, nrows, xllcorner (or xllcenter), yllcorner (or yllcenter),
// cellsize and an optional nodata_value, followed by the values of each
// row from north to south.
func ReadASCII(r io.Reader) (*Grid, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	s.Split(bufio.ScanWords)

	g := new(Grid)
	noData := math.NaN()
	var centered bool
	var tok string
	for s.Scan() {
		tok = s.Text()
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			break
		}
		key := strings.ToLower(tok)
		if !s.Scan() {
			return nil, fmt.Errorf("dem: missing value for header %s", key)
		}
		v, err := strconv.ParseFloat(s.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("dem: header %s: %w", key, err)
		}
		switch key {
		case "ncols":
			g.NCols = int(v)
		case "nrows":
			g.NRows = int(v)
		case "xllcorner":
			g.X0 = v
		case "yllcorner":
			g.Y0 = v
		case "xllcenter":
			g.X0, centered = v, true
		case "yllcenter":
			g.Y0, centered = v, true
		case "cellsize":
			g.CellSize = v
		case "nodata_value":
			noData = v
		default:
			return nil, fmt.Errorf("dem: unknown header %s", key)
		}
		tok = ""
	}
	if centered {
		g.X0 -= g.CellSize / 2
		g.Y0 -= g.CellSize / 2
	}
	n := g.NCols * g.NRows
	if n <= 0 {
		return nil, fmt.Errorf("dem: invalid grid size %d×%d", g.NCols, g.NRows)
	}
	g.Data = make([]float64, 0, n)
	for tok != "" {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("dem: value %d: %w", len(g.Data), err)
		}
		if v == noData {
			v = math.NaN()
		}
		g.Data = append(g.Data, v)
		tok = ""
		if s.Scan() {
			tok = s.Text()
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("dem: %w", err)
	}
	if err := g.check(); err != nil {
		return nil, err
	}
	return g, nil
}
