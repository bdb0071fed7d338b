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
	"errors"
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func absDifferent(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance || math.IsNaN(a) || math.IsNaN(b)
}

func testIndex(t *testing.T) *VertexIndex {
	idx, err := NewVertexIndex([]Vertex{
		{M: 0, X: 0, Y: 0, Z: 100},
		{M: 50, X: 10, Y: 10, Z: 200},
		{M: 100, X: 30, Y: 0, Z: 150},
	})
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestPositionAtMeasure(t *testing.T) {
	idx := testIndex(t)
	tests := []struct {
		d    float64
		want geom.Point
	}{
		{d: 25, want: geom.Point{X: 5, Y: 5}},
		{d: 75, want: geom.Point{X: 20, Y: 5}},
		{d: 0, want: geom.Point{X: 0, Y: 0}},
		{d: 50, want: geom.Point{X: 10, Y: 10}},
		{d: 100, want: geom.Point{X: 30, Y: 0}},
		{d: -10, want: geom.Point{X: 0, Y: 0}},
		{d: math.Inf(-1), want: Sentinel},
		{d: 1e6, want: geom.Point{X: 30, Y: 0}},
	}
	for _, test := range tests {
		p, err := idx.PositionAtMeasure(test.d)
		if IsSentinel(test.want) {
			if !errors.Is(err, ErrInterpolationDegenerate) {
				t.Errorf("d=%g: want ErrInterpolationDegenerate, have %v", test.d, err)
			}
		} else if err != nil {
			t.Errorf("d=%g: %v", test.d, err)
		}
		if absDifferent(p.X, test.want.X, 1e-9) || absDifferent(p.Y, test.want.Y, 1e-9) {
			t.Errorf("d=%g: have %v, want %v", test.d, p, test.want)
		}
	}
}

// A three vertex line queried half way along its second segment.
func TestPositionAtMeasureScenario(t *testing.T) {
	idx, err := NewVertexIndex([]Vertex{
		{M: 0, X: 0, Y: 0},
		{M: 50, X: 10, Y: 10},
		{M: 100, X: 30, Y: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	// The second segment runs from measure 50 to 100, so 75 is half way.
	p, err := idx.PositionAtMeasure(75)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 20 || p.Y != 5 {
		t.Errorf("have %v, want (20, 5)", p)
	}
}

func TestPositionAtMeasureClamp(t *testing.T) {
	idx := testIndex(t)
	for _, d := range []float64{-1e9, -1, -1e-12, 0} {
		p, err := idx.PositionAtMeasure(d)
		if err != nil {
			t.Fatal(err)
		}
		if p.X != 0 || p.Y != 0 {
			t.Errorf("d=%g: have %v, want first vertex", d, p)
		}
	}
	for _, d := range []float64{100, 100 + 1e-12, 1e9} {
		p, err := idx.PositionAtMeasure(d)
		if err != nil {
			t.Fatal(err)
		}
		if p.X != 30 || p.Y != 0 {
			t.Errorf("d=%g: have %v, want last vertex", d, p)
		}
	}
}

func TestPositionAtMeasureExact(t *testing.T) {
	vertices := []Vertex{
		{M: 0, X: 1.1, Y: 2.2},
		{M: 13.7, X: 3.3, Y: -4.4},
		{M: 29.1, X: 5.5, Y: 6.6},
		{M: 31, X: -7.7, Y: 8.8},
		{M: 44.4, X: 9.9, Y: 10.1},
	}
	idx, err := NewVertexIndex(vertices)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vertices {
		p, err := idx.PositionAtMeasure(v.M)
		if err != nil {
			t.Fatal(err)
		}
		if p.X != v.X || p.Y != v.Y {
			t.Errorf("m=%g: have %v, want (%g, %g)", v.M, p, v.X, v.Y)
		}
	}
}

func TestPositionAtMeasureLerp(t *testing.T) {
	vertices := []Vertex{
		{M: 0, X: 0, Y: 0},
		{M: 10, X: 3, Y: 4},
		{M: 25, X: 12, Y: 16},
		{M: 26, X: 12, Y: 17},
		{M: 100, X: -50, Y: 64},
	}
	idx, err := NewVertexIndex(vertices)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(vertices)-1; i++ {
		f, c := vertices[i], vertices[i+1]
		for _, frac := range []float64{0.01, 0.25, 0.5, 0.9, 0.999} {
			d := f.M + frac*(c.M-f.M)
			p, err := idx.PositionAtMeasure(d)
			if err != nil {
				t.Fatal(err)
			}
			tt := (d - f.M) / (c.M - f.M)
			wantX := f.X + tt*(c.X-f.X)
			wantY := f.Y + tt*(c.Y-f.Y)
			if absDifferent(p.X, wantX, 1e-9) || absDifferent(p.Y, wantY, 1e-9) {
				t.Errorf("d=%g: have %v, want (%g, %g)", d, p, wantX, wantY)
			}
		}
	}
}

func TestNewVertexIndexInvalid(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Vertex
	}{
		{name: "empty"},
		{name: "single", vertices: []Vertex{{M: 0}}},
		{name: "same measure", vertices: []Vertex{{M: 5, X: 0}, {M: 5, X: 10}}},
		{name: "nan", vertices: []Vertex{{M: 0}, {M: math.NaN()}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			idx, err := NewVertexIndex(test.vertices)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("want ErrInvalidGeometry, have %v", err)
			}
			if idx != nil {
				t.Errorf("index should be nil")
			}
		})
	}
}

func TestNewVertexIndexDuplicate(t *testing.T) {
	idx, err := NewVertexIndex([]Vertex{
		{M: 0, X: 0, Y: 0},
		{M: 10, X: 10, Y: 0},
		{M: 10, X: 99, Y: 99},
		{M: 20, X: 10, Y: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(idx.Measures()) != 3 || idx.Duplicates != 1 {
		t.Errorf("have %d measures and %d duplicates, want 3 and 1", len(idx.Measures()), idx.Duplicates)
	}
	p, err := idx.PositionAtMeasure(10)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 10 || p.Y != 0 {
		t.Errorf("duplicate measure should keep first vertex; have %v", p)
	}
	p, err = idx.PositionAtMeasure(15)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 10 || p.Y != 5 {
		t.Errorf("have %v, want (10, 5)", p)
	}
}

func TestNewVertexIndexDecreasing(t *testing.T) {
	idx, err := NewVertexIndex([]Vertex{
		{M: 100, X: 30, Y: 0},
		{M: 50, X: 10, Y: 10},
		{M: 0, X: 0, Y: 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	p, err := idx.PositionAtMeasure(75)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 20 || p.Y != 5 {
		t.Errorf("have %v, want (20, 5)", p)
	}
}

func TestPositionAtMeasureNaN(t *testing.T) {
	idx := testIndex(t)
	p, err := idx.PositionAtMeasure(math.NaN())
	if !IsSentinel(p) {
		t.Errorf("have %v, want sentinel", p)
	}
	if !errors.Is(err, ErrInterpolationDegenerate) {
		t.Errorf("want ErrInterpolationDegenerate, have %v", err)
	}
}

func TestElevationAtMeasure(t *testing.T) {
	idx := testIndex(t)
	for _, test := range []struct{ d, want float64 }{
		{-5, 100}, {25, 150}, {50, 200}, {75, 175}, {200, 150},
	} {
		z, err := idx.ElevationAtMeasure(test.d)
		if err != nil {
			t.Fatal(err)
		}
		if absDifferent(z, test.want, 1e-9) {
			t.Errorf("d=%g: have %g, want %g", test.d, z, test.want)
		}
	}
}

func TestMeasuredPolylineLength(t *testing.T) {
	r := &MeasuredPolyline{Vertices: []Vertex{{M: 5}, {M: 20}, {M: 45}}}
	if r.Length() != 40 {
		t.Errorf("have %g, want 40", r.Length())
	}
	if l := r.LineString(); len(l) != 3 {
		t.Errorf("have %d points, want 3", len(l))
	}
}
