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
	"testing"

	"github.com/ctessum/geom"
)

func faultLayer() *Layer {
	return &Layer{
		Name: "faults",
		Type: LineShape,
		Features: []*Feature{
			{Geom: geom.LineString{{X: 30, Y: -10}, {X: 30, Y: 10}}, Record: Record{"Name": "f1"}},
			{Geom: geom.LineString{{X: 0, Y: 20}, {X: 100, Y: 20}}, Record: Record{"Name": "f2"}},
			{Geom: geom.LineString{{X: 60, Y: -5}, {X: 70, Y: 5}, {X: 80, Y: -5}}, Record: Record{"Name": "f3"}},
		},
	}
}

func TestIntersections(t *testing.T) {
	s, _ := testSection(t, 2)
	out, res, err := s.Intersections(faultLayer(), "Name", false)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		p    geom.Point
		name string
	}{
		{p: geom.Point{X: 30, Y: 100}, name: "f1"},
		{p: geom.Point{X: 65, Y: 100}, name: "f3"},
		{p: geom.Point{X: 75, Y: 100}, name: "f3"},
	}
	if len(out.Features) != len(want) || res.Written != len(want) {
		t.Fatalf("have %d features, want %d", len(out.Features), len(want))
	}
	for i, w := range want {
		f := out.Features[i]
		if !f.Geom.Similar(w.p, 1e-9) || f.Record.Text("Name") != w.name {
			t.Errorf("%d: have %v %v, want %v %s", i, f.Geom, f.Record, w.p, w.name)
		}
		if z, _ := f.Record.Float("Elevation"); z != 50 {
			t.Errorf("%d: have elevation %g", i, z)
		}
	}

	out, _, err = s.Intersections(faultLayer(), "Name", true)
	if err != nil {
		t.Fatal(err)
	}
	if out.Type != LineShape {
		t.Errorf("have type %v", out.Type)
	}
	wantLine := geom.LineString{{X: 30, Y: 100}, {X: 30, Y: 1100}}
	if !out.Features[0].Geom.Similar(wantLine, 1e-9) {
		t.Errorf("have %v, want %v", out.Features[0].Geom, wantLine)
	}
}

func TestIntersectionsNoElevation(t *testing.T) {
	line := &Feature{Geom: geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}}}
	s, err := NewSection(&Config{VE: 2}, line, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, res, err := s.Intersections(faultLayer(), "Name", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Substituted) != 3 || !errors.Is(res.Substituted[0], ErrMissingAttribute) {
		t.Errorf("substituted: %v", res.Substituted)
	}
	if p := out.Features[0].Geom.(geom.Point); p.Y != 0 {
		t.Errorf("have %v, want y = 0", p)
	}
	out, _, err = s.Intersections(faultLayer(), "Name", true)
	if err != nil {
		t.Fatal(err)
	}
	wantLine := geom.LineString{{X: 30, Y: 200}, {X: 30, Y: 1200}}
	if !out.Features[0].Geom.Similar(wantLine, 1e-9) {
		t.Errorf("have %v, want %v", out.Features[0].Geom, wantLine)
	}
	if _, _, err := s.Intersections(&Layer{Type: PointShape}, "", false); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("point layer: have %v", err)
	}
}
