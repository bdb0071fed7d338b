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
	"reflect"
	"testing"

	"github.com/ctessum/geom"
)

func TestToCrossSectionView(t *testing.T) {
	p := ToCrossSectionView(PointZ{X: 5, Y: 6, Z: 250}, 42, 3)
	if p.X != 42 || p.Y != 750 {
		t.Errorf("have %v, want (42, 750)", p)
	}
}

func TestViewRoundTrip(t *testing.T) {
	idx := testIndex(t)
	for _, ve := range []float64{1, 2, 2.5, 10, 0.3} {
		for _, m := range idx.Measures() {
			p, err := idx.PositionAtMeasure(m)
			if err != nil {
				t.Fatal(err)
			}
			pz := PointZ{X: p.X, Y: p.Y, Z: 123.25}
			xs := ToCrossSectionView(pz, m, ve)
			back, err := ToMapView(xs, idx, ve)
			if err != nil {
				t.Fatal(err)
			}
			if back.X != pz.X || back.Y != pz.Y {
				t.Errorf("ve=%g m=%g: have (%g, %g), want (%g, %g)", ve, m, back.X, back.Y, pz.X, pz.Y)
			}
			if absDifferent(back.Z, pz.Z, 1e-12) {
				t.Errorf("ve=%g m=%g: have z=%g, want %g", ve, m, back.Z, pz.Z)
			}
		}
	}
}

func TestToMapViewZeroExaggeration(t *testing.T) {
	idx := testIndex(t)
	_, err := ToMapView(geom.Point{X: 10, Y: 10}, idx, 0)
	if err != ErrZeroExaggeration {
		t.Errorf("have %v, want ErrZeroExaggeration", err)
	}
}

func TestBuildStickLog(t *testing.T) {
	tests := []struct {
		name                string
		collar, depth       float64
		wantTop, wantBottom float64
		wantFields          []string
	}{
		{name: "complete", collar: 500, depth: 120, wantTop: 1000, wantBottom: 760},
		{name: "zero depth", collar: 500, depth: 0, wantTop: 1000, wantBottom: 1000},
		{name: "missing collar", collar: math.NaN(), depth: 120, wantTop: 20000, wantBottom: 19760,
			wantFields: []string{"collar elevation"}},
		{name: "missing depth", collar: 500, depth: math.NaN(), wantTop: 1000, wantBottom: -9000,
			wantFields: []string{"depth"}},
		{name: "negative depth", collar: 500, depth: -1, wantTop: 1000, wantBottom: -9000,
			wantFields: []string{"depth"}},
		{name: "missing both", collar: math.NaN(), depth: math.NaN(), wantTop: 20000, wantBottom: 10000,
			wantFields: []string{"collar elevation", "depth"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, errs := BuildStickLog(100, test.collar, test.depth, 2)
			if len(errs) != len(test.wantFields) {
				t.Fatalf("have %d errors %v, want %d", len(errs), errs, len(test.wantFields))
			}
			for i, err := range errs {
				if !errors.Is(err, ErrMissingAttribute) {
					t.Errorf("error %d: have %v, want ErrMissingAttribute", i, err)
				}
				if err.Field != test.wantFields[i] {
					t.Errorf("error %d: have field %q, want %q", i, err.Field, test.wantFields[i])
				}
			}
			if s.Top.X != 100 || s.Bottom.X != 100 {
				t.Errorf("x: have %g and %g, want 100", s.Top.X, s.Bottom.X)
			}
			if s.Top.Y != test.wantTop || s.Bottom.Y != test.wantBottom {
				t.Errorf("have %g to %g, want %g to %g", s.Top.Y, s.Bottom.Y, test.wantTop, test.wantBottom)
			}
			if len(s.LineString()) != 2 {
				t.Errorf("stick log should have two points")
			}
		})
	}
}

func TestRescale(t *testing.T) {
	tests := []struct {
		in, want geom.Geom
	}{
		{
			in:   geom.Point{X: 1, Y: 2},
			want: geom.Point{X: 2, Y: 6},
		},
		{
			in:   geom.MultiPoint{{X: 1, Y: 1}, {X: -1, Y: 0}},
			want: geom.MultiPoint{{X: 2, Y: 3}, {X: -2, Y: 0}},
		},
		{
			in:   geom.LineString{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}},
			want: geom.LineString{{X: 0, Y: 0}, {X: 2, Y: 3}, {X: 4, Y: 0}},
		},
		{
			in: geom.MultiLineString{
				{{X: 0, Y: 1}, {X: 1, Y: 1}},
				{{X: 5, Y: 5}, {X: 6, Y: 6}, {X: 7, Y: 5}},
			},
			want: geom.MultiLineString{
				{{X: 0, Y: 3}, {X: 2, Y: 3}},
				{{X: 10, Y: 15}, {X: 12, Y: 18}, {X: 14, Y: 15}},
			},
		},
		{
			in: geom.Polygon{
				{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}},
				{{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 2}},
			},
			want: geom.Polygon{
				{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 12}, {X: 0, Y: 12}},
				{{X: 2, Y: 3}, {X: 2, Y: 6}, {X: 4, Y: 6}},
			},
		},
		{
			in:   geom.MultiPolygon{{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}},
			want: geom.MultiPolygon{{{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 3}}}},
		},
	}
	for _, test := range tests {
		have, err := Rescale(test.in, 2, 3)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(have, test.want) {
			t.Errorf("have %v, want %v", have, test.want)
		}
	}
}

func TestRescaleIdentity(t *testing.T) {
	in := geom.LineString{{X: 3.5, Y: -1}, {X: 7, Y: 2}}
	have, err := Rescale(in, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(have, in) {
		t.Errorf("have %v, want %v", have, in)
	}
	// The input is not modified.
	have.(geom.LineString)[0].X = 100
	if in[0].X != 3.5 {
		t.Errorf("input was modified")
	}
}

func TestRescaleUnsupported(t *testing.T) {
	_, err := Rescale(geom.GeometryCollection{}, 2, 2)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("want ErrInvalidGeometry, have %v", err)
	}
}
