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

package xsection

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// Sentinel values substituted for missing borehole attributes.
const (
	MissingCollarElevation = 10000.
	MissingDepth           = 5000.
	MissingDEMElevation    = -999.
)

// PointZ is a map-view point with an elevation.
type PointZ struct {
	X, Y, Z float64
}

// ToCrossSectionView converts p, located at measure m along the section
// line, to cross-section view, where X is the measure and Y is the
// elevation multiplied by the vertical exaggeration ve.
func ToCrossSectionView(p PointZ, m, ve float64) geom.Point {
	return geom.Point{X: m, Y: p.Z * ve}
}

// ToMapView converts the cross-section view point p back to map view,
// using idx to find the map-view position at measure p.X.
func ToMapView(p geom.Point, idx *VertexIndex, ve float64) (PointZ, error) {
	if ve == 0 {
		return PointZ{}, ErrZeroExaggeration
	}
	xy, err := idx.PositionAtMeasure(p.X)
	return PointZ{X: xy.X, Y: xy.Y, Z: p.Y / ve}, err
}

// StickLog is a vertical line in cross-section view representing a
// borehole or a borehole interval.
type StickLog struct {
	Top, Bottom geom.Point
}

// LineString returns the stick log as a two-point line.
func (s StickLog) LineString() geom.LineString {
	return geom.LineString{s.Top, s.Bottom}
}

// Names of the stick log values reported in substitution errors.
const (
	collarValue = "collar elevation"
	depthValue  = "depth"
)

// BuildStickLog returns the stick log for a borehole located at
// cross-section distance topX with the given collar elevation and depth.
// A NaN collar elevation is replaced with MissingCollarElevation and a
// NaN or negative depth is replaced with MissingDepth. The stick log is
// always returned, together with one *RecordError of kind
// ErrMissingAttribute for each substituted value.
func BuildStickLog(topX, collar, depth, ve float64) (StickLog, []*RecordError) {
	var errs []*RecordError
	if math.IsNaN(collar) {
		collar = MissingCollarElevation
		errs = append(errs, &RecordError{Field: collarValue, Kind: ErrMissingAttribute,
			Err: fmt.Errorf("substituted %g", MissingCollarElevation)})
	}
	if math.IsNaN(depth) || depth < 0 {
		depth = MissingDepth
		errs = append(errs, &RecordError{Field: depthValue, Kind: ErrMissingAttribute,
			Err: fmt.Errorf("substituted %g", MissingDepth)})
	}
	return StickLog{
		Top:    geom.Point{X: topX, Y: collar * ve},
		Bottom: geom.Point{X: topX, Y: (collar - depth) * ve},
	}, errs
}

// Rescale multiplies the X coordinates of g by sx and the Y coordinates
// by sy. The result has the same type, number of parts and number of
// points as g.
func Rescale(g geom.Geom, sx, sy float64) (geom.Geom, error) {
	return mapVertices(g, func(p geom.Point) geom.Point {
		return geom.Point{X: p.X * sx, Y: p.Y * sy}
	})
}

// mapVertices returns a copy of g with f applied to every vertex.
func mapVertices(g geom.Geom, f func(geom.Point) geom.Point) (geom.Geom, error) {
	path := func(pts []geom.Point) []geom.Point {
		o := make([]geom.Point, len(pts))
		for i, p := range pts {
			o[i] = f(p)
		}
		return o
	}
	switch t := g.(type) {
	case geom.Point:
		return f(t), nil
	case *geom.Point:
		p := f(*t)
		return &p, nil
	case geom.MultiPoint:
		return geom.MultiPoint(path(t)), nil
	case geom.LineString:
		return geom.LineString(path(t)), nil
	case geom.MultiLineString:
		o := make(geom.MultiLineString, len(t))
		for i, l := range t {
			o[i] = path(l)
		}
		return o, nil
	case geom.Polygon:
		o := make(geom.Polygon, len(t))
		for i, r := range t {
			o[i] = path(r)
		}
		return o, nil
	case geom.MultiPolygon:
		o := make(geom.MultiPolygon, len(t))
		for i, poly := range t {
			o[i] = make(geom.Polygon, len(poly))
			for j, r := range poly {
				o[i][j] = path(r)
			}
		}
		return o, nil
	default:
		return nil, fmt.Errorf("%w: unsupported geometry type %T", ErrInvalidGeometry, g)
	}
}
