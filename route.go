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
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Corner is the corner of a line's bounding box closest to where its
// measures start.
type Corner int

// Start corners. NoCorner keeps the digitized direction of the line.
const (
	NoCorner Corner = iota
	UpperLeft
	LowerLeft
	UpperRight
	LowerRight
)

// ParseCorner converts a compass start corner (northwest, southwest,
// northeast, southeast) or a coordinate priority name (upper_left, ...)
// to a Corner. An empty string gives NoCorner.
func ParseCorner(s string) (Corner, error) {
	switch strings.ToLower(strings.Replace(strings.TrimSpace(s), "-", "_", -1)) {
	case "":
		return NoCorner, nil
	case "northwest", "nw", "upper_left":
		return UpperLeft, nil
	case "southwest", "sw", "lower_left":
		return LowerLeft, nil
	case "northeast", "ne", "upper_right":
		return UpperRight, nil
	case "southeast", "se", "lower_right":
		return LowerRight, nil
	}
	return NoCorner, fmt.Errorf("xsection: invalid start corner %q", s)
}

func (c Corner) point(b *geom.Bounds) (geom.Point, bool) {
	switch c {
	case UpperLeft:
		return geom.Point{X: b.Min.X, Y: b.Max.Y}, true
	case LowerLeft:
		return geom.Point{X: b.Min.X, Y: b.Min.Y}, true
	case UpperRight:
		return geom.Point{X: b.Max.X, Y: b.Max.Y}, true
	case LowerRight:
		return geom.Point{X: b.Max.X, Y: b.Min.Y}, true
	}
	return geom.Point{}, false
}

// MeasureSource specifies how measures are assigned to a route.
type MeasureSource struct {
	// Corner selects the end of the line where measures start.
	Corner Corner

	// Field names the attribute holding the total measure of the line.
	// When it is empty, measures are cumulative map distances.
	Field string

	// Length is the total measure of the line, resolved from Field by
	// the caller. Zero means the geometric length.
	Length float64
}

// Event locates a feature along a route.
type Event struct {
	// FeatureID identifies the located feature and Index is its position
	// in the input.
	FeatureID string
	Index     int

	// Measure is the distance along the route and Offset is the
	// perpendicular distance from the route, positive to the right.
	Measure, Offset float64

	// Point is the located position on the route.
	Point geom.Point

	// Azimuth is the bearing of the route at the event.
	Azimuth float64

	// Err is set for features that could not be located.
	Err error
}

// Router builds routes from lines and locates features along them.
type Router interface {
	BuildRoute(line geom.LineString, z []float64, src MeasureSource) (*MeasuredPolyline, error)
	Locate(features []*Feature, idField string, route *MeasuredPolyline, tol float64) ([]Event, error)
}

// LinearRouter is a Router that measures distances in the plane of the
// map projection.
type LinearRouter struct{}

// BuildRoute assigns measures to the vertices of line. z holds an
// elevation for each vertex and may be nil.
func (LinearRouter) BuildRoute(line geom.LineString, z []float64, src MeasureSource) (*MeasuredPolyline, error) {
	if len(line) < 2 {
		return nil, fmt.Errorf("%w: a route needs at least 2 vertices but there are %d",
			ErrInvalidGeometry, len(line))
	}
	if z != nil && len(z) != len(line) {
		return nil, fmt.Errorf("xsection: route has %d vertices but %d elevations", len(line), len(z))
	}
	pts := append(geom.LineString(nil), line...)
	zs := append([]float64(nil), z...)
	if c, ok := src.Corner.point(line.Bounds()); ok {
		first, last := pts[0], pts[len(pts)-1]
		if dist(last, c) < dist(first, c) {
			for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
				pts[i], pts[j] = pts[j], pts[i]
				if zs != nil {
					zs[i], zs[j] = zs[j], zs[i]
				}
			}
		}
	}
	length := pts.Length()
	if length == 0 {
		return nil, fmt.Errorf("%w: route has zero length", ErrInvalidGeometry)
	}
	scale := 1.
	if src.Length > 0 {
		scale = src.Length / length
	}
	r := &MeasuredPolyline{Vertices: make([]Vertex, len(pts))}
	var m float64
	for i, p := range pts {
		if i > 0 {
			m += dist(pts[i-1], p) * scale
		}
		r.Vertices[i] = Vertex{M: m, X: p.X, Y: p.Y}
		if zs != nil {
			r.Vertices[i].Z = zs[i]
		}
	}
	return r, nil
}

func dist(a, b geom.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// segment is a section of a route between two vertices.
type segment struct {
	geom.LineString
	a, b Vertex
}

func newSegment(a, b Vertex) *segment {
	return &segment{
		LineString: geom.LineString{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}},
		a:          a,
		b:          b,
	}
}

// project returns the position on s closest to p, its measure, and the
// signed distance from s to p, positive to the right of s.
func (s *segment) project(p geom.Point) (geom.Point, float64, float64) {
	dx, dy := s.b.X-s.a.X, s.b.Y-s.a.Y
	l2 := dx*dx + dy*dy
	var t float64
	if l2 > 0 {
		t = ((p.X-s.a.X)*dx + (p.Y-s.a.Y)*dy) / l2
	}
	t = math.Max(0, math.Min(1, t))
	on := geom.Point{X: s.a.X + t*dx, Y: s.a.Y + t*dy}
	d := dist(on, p)
	// Cross product is positive to the left.
	if dx*(p.Y-s.a.Y)-dy*(p.X-s.a.X) > 0 {
		d = -d
	}
	return on, s.a.M + t*(s.b.M-s.a.M), d
}

func (s *segment) azimuth() float64 {
	b, err := BearingBetween(geom.Point{X: s.a.X, Y: s.a.Y}, geom.Point{X: s.b.X, Y: s.b.Y})
	if err != nil {
		return math.NaN()
	}
	return b
}

// segmentIndex is a spatial index of the segments of a route.
type segmentIndex struct {
	*rtree.Rtree
}

func newSegmentIndex(route *MeasuredPolyline) segmentIndex {
	idx := segmentIndex{rtree.NewTree(25, 50)}
	for i := 1; i < len(route.Vertices); i++ {
		idx.Insert(newSegment(route.Vertices[i-1], route.Vertices[i]))
	}
	return idx
}

// near returns the segments whose bounding boxes are within tol of p.
func (idx segmentIndex) near(p geom.Point, tol float64) []*segment {
	b := &geom.Bounds{
		Min: geom.Point{X: p.X - tol, Y: p.Y - tol},
		Max: geom.Point{X: p.X + tol, Y: p.Y + tol},
	}
	var o []*segment
	for _, s := range idx.SearchIntersect(b) {
		o = append(o, s.(*segment))
	}
	return o
}

// Locate finds the positions along route of the point features within tol
// of it. A feature near more than one segment gives one event for each
// distinct measure. Features that are not within tol of the route give a
// single event with Err set.
func (LinearRouter) Locate(features []*Feature, idField string, route *MeasuredPolyline, tol float64) ([]Event, error) {
	if len(route.Vertices) < 2 {
		return nil, fmt.Errorf("%w: route has %d vertices", ErrInvalidGeometry, len(route.Vertices))
	}
	idx := newSegmentIndex(route)
	var events []Event
	for i, f := range features {
		id := f.ID(idField, i)
		pp := parts(f.Geom)
		if len(pp) != 1 || len(pp[0]) != 1 {
			events = append(events, Event{FeatureID: id, Index: i,
				Err: recordErr(id, "", ErrInvalidGeometry, fmt.Errorf("%T is not a point", f.Geom))})
			continue
		}
		p := pp[0][0]
		var found []Event
		for _, s := range idx.near(p, tol) {
			on, m, d := s.project(p)
			if math.Abs(d) > tol {
				continue
			}
			dup := false
			for _, e := range found {
				if e.Measure == m {
					dup = true
				}
			}
			if !dup {
				found = append(found, Event{FeatureID: id, Index: i, Measure: m, Offset: d,
					Point: on, Azimuth: s.azimuth()})
			}
		}
		if len(found) == 0 {
			events = append(events, Event{FeatureID: id, Index: i,
				Err: recordErr(id, "", ErrInvalidGeometry, fmt.Errorf("not within %g of route", tol))})
			continue
		}
		sort.Slice(found, func(i, j int) bool { return found[i].Measure < found[j].Measure })
		events = append(events, found...)
	}
	return events, nil
}

// Nearest keeps, for each feature, the located event with the smallest
// offset. Events with errors are kept only when a feature has no located
// event.
func Nearest(events []Event) []Event {
	best := make(map[int]int)
	var order []int
	for i, e := range events {
		j, ok := best[e.Index]
		if !ok {
			best[e.Index] = i
			order = append(order, e.Index)
			continue
		}
		cur := events[j]
		if cur.Err != nil && e.Err == nil ||
			cur.Err == nil && e.Err == nil && math.Abs(e.Offset) < math.Abs(cur.Offset) {
			best[e.Index] = i
		}
	}
	o := make([]Event, len(order))
	for i, idx := range order {
		o[i] = events[best[idx]]
	}
	return o
}

// segmentIntersection returns the intersection of segments p1-p2 and
// p3-p4 and the fraction along p1-p2 where it occurs. Parallel segments
// do not intersect.
func segmentIntersection(p1, p2, p3, p4 geom.Point) (geom.Point, float64, bool) {
	d := (p2.X-p1.X)*(p4.Y-p3.Y) - (p2.Y-p1.Y)*(p4.X-p3.X)
	if d == 0 {
		return geom.Point{}, 0, false
	}
	t := ((p3.X-p1.X)*(p4.Y-p3.Y) - (p3.Y-p1.Y)*(p4.X-p3.X)) / d
	u := ((p3.X-p1.X)*(p2.Y-p1.Y) - (p3.Y-p1.Y)*(p2.X-p1.X)) / d
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return geom.Point{}, 0, false
	}
	return geom.Point{X: p1.X + t*(p2.X-p1.X), Y: p1.Y + t*(p2.Y-p1.Y)}, t, true
}

// Crossing is a point where a line crosses a route.
type Crossing struct {
	Point   geom.Point
	Measure float64
}

// Crossings returns the points where the parts of g cross route, in
// order of increasing measure.
func Crossings(g geom.Geom, route *MeasuredPolyline) []Crossing {
	idx := newSegmentIndex(route)
	var o []Crossing
	for _, part := range parts(g) {
		for i := 1; i < len(part); i++ {
			b := geom.NewBoundsPoint(part[i-1])
			b.Extend(geom.NewBoundsPoint(part[i]))
			for _, s := range idx.SearchIntersect(b) {
				seg := s.(*segment)
				p, t, ok := segmentIntersection(
					geom.Point{X: seg.a.X, Y: seg.a.Y}, geom.Point{X: seg.b.X, Y: seg.b.Y},
					part[i-1], part[i])
				if !ok {
					continue
				}
				m := seg.a.M + t*(seg.b.M-seg.a.M)
				dup := false
				for _, c := range o {
					if c.Measure == m {
						dup = true
					}
				}
				if !dup {
					o = append(o, Crossing{Point: p, Measure: m})
				}
			}
		}
	}
	sort.Slice(o, func(i, j int) bool { return o[i].Measure < o[j].Measure })
	return o
}
