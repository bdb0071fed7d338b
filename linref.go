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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"gonum.org/v1/gonum/floats"
)

// Vertex is a vertex of a measured polyline.
type Vertex struct {
	// M is the measure, the distance along the line from its start.
	M float64

	// X and Y are the map-view coordinates and Z is the elevation.
	X, Y, Z float64
}

// MeasuredPolyline is a route: an ordered sequence of vertices whose
// measures do not decrease along the line.
type MeasuredPolyline struct {
	ID       string
	Vertices []Vertex
	SR       *proj.SR
}

// LineString returns the map-view geometry of the route.
func (r *MeasuredPolyline) LineString() geom.LineString {
	l := make(geom.LineString, len(r.Vertices))
	for i, v := range r.Vertices {
		l[i] = geom.Point{X: v.X, Y: v.Y}
	}
	return l
}

// Length returns the difference between the largest and smallest measure.
func (r *MeasuredPolyline) Length() float64 {
	if len(r.Vertices) == 0 {
		return 0
	}
	m := make([]float64, len(r.Vertices))
	for i, v := range r.Vertices {
		m[i] = v.M
	}
	return floats.Max(m) - floats.Min(m)
}

// Sentinel is the position returned by PositionAtMeasure when an
// interpolated position cannot be computed.
var Sentinel = geom.Point{X: 9999, Y: 9999}

// IsSentinel reports whether p is the Sentinel position.
func IsSentinel(p geom.Point) bool {
	return p.X == Sentinel.X && p.Y == Sentinel.Y
}

// VertexIndex maps measures to map-view positions for a single
// measured polyline. It is immutable after construction.
type VertexIndex struct {
	positions map[float64]geom.Point
	elevation map[float64]float64

	// measures holds the distinct measures in increasing order.
	measures []float64

	// Duplicates is the number of vertices that were not indexed
	// because an earlier vertex had the same measure.
	Duplicates int
}

// NewVertexIndex creates an index of the given vertices. When two
// vertices share a measure, the first one is kept. The vertices must
// contain at least two distinct finite measures.
func NewVertexIndex(vertices []Vertex) (*VertexIndex, error) {
	if len(vertices) < 2 {
		return nil, fmt.Errorf("%w: a vertex index needs at least 2 vertices but there are %d",
			ErrInvalidGeometry, len(vertices))
	}
	idx := &VertexIndex{
		positions: make(map[float64]geom.Point, len(vertices)),
		elevation: make(map[float64]float64, len(vertices)),
	}
	for i, v := range vertices {
		if math.IsNaN(v.M) || math.IsInf(v.M, 0) {
			return nil, fmt.Errorf("%w: vertex %d has measure %g", ErrInvalidGeometry, i, v.M)
		}
		if _, ok := idx.positions[v.M]; ok {
			idx.Duplicates++
			continue
		}
		idx.positions[v.M] = geom.Point{X: v.X, Y: v.Y}
		idx.elevation[v.M] = v.Z
		idx.measures = append(idx.measures, v.M)
	}
	if len(idx.measures) < 2 {
		return nil, fmt.Errorf("%w: all %d vertices have measure %g",
			ErrInvalidGeometry, len(vertices), idx.measures[0])
	}
	sort.Float64s(idx.measures)
	return idx, nil
}

// Measures returns a copy of the distinct measures in increasing order.
func (idx *VertexIndex) Measures() []float64 {
	return append([]float64(nil), idx.measures...)
}

// MinMeasure returns the smallest measure in the index.
func (idx *VertexIndex) MinMeasure() float64 { return idx.measures[0] }

// MaxMeasure returns the largest measure in the index.
func (idx *VertexIndex) MaxMeasure() float64 { return idx.measures[len(idx.measures)-1] }

// bracket returns the measures on either side of d. d must be strictly
// between the smallest and largest measure.
func (idx *VertexIndex) bracket(d float64) (floor, ceiling float64) {
	// First measure greater than d.
	i := sort.Search(len(idx.measures), func(i int) bool {
		return idx.measures[i] > d
	})
	return idx.measures[i-1], idx.measures[i]
}

// PositionAtMeasure returns the map-view position at distance d along
// the line. Distances outside of the indexed range are clamped to the
// first or last vertex. Positions between vertices are interpolated
// linearly between the two bracketing vertices.
//
// If a position cannot be computed, PositionAtMeasure returns Sentinel
// and an error wrapping ErrInterpolationDegenerate. The caller is
// expected to skip that record and continue.
func (idx *VertexIndex) PositionAtMeasure(d float64) (geom.Point, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return Sentinel, fmt.Errorf("%w: measure %g", ErrInterpolationDegenerate, d)
	}
	lo, hi := idx.MinMeasure(), idx.MaxMeasure()
	if d <= lo {
		return idx.positions[lo], nil
	}
	if d >= hi {
		return idx.positions[hi], nil
	}
	floor, ceiling := idx.bracket(d)
	pf, pc := idx.positions[floor], idx.positions[ceiling]
	t := (d - floor) / (ceiling - floor)
	p := geom.Point{
		X: pf.X + t*(pc.X-pf.X),
		Y: pf.Y + t*(pc.Y-pf.Y),
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return Sentinel, fmt.Errorf("%w: measure %g between %g and %g", ErrInterpolationDegenerate, d, floor, ceiling)
	}
	return p, nil
}

// ElevationAtMeasure returns the elevation of the line at distance d,
// interpolated and clamped in the same way as PositionAtMeasure.
func (idx *VertexIndex) ElevationAtMeasure(d float64) (float64, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return math.NaN(), fmt.Errorf("%w: measure %g", ErrInterpolationDegenerate, d)
	}
	lo, hi := idx.MinMeasure(), idx.MaxMeasure()
	if d <= lo {
		return idx.elevation[lo], nil
	}
	if d >= hi {
		return idx.elevation[hi], nil
	}
	floor, ceiling := idx.bracket(d)
	zf, zc := idx.elevation[floor], idx.elevation[ceiling]
	return zf + (d-floor)/(ceiling-floor)*(zc-zf), nil
}
