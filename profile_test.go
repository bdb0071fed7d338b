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

func TestSurfaceProfile(t *testing.T) {
	lines := &Layer{
		Name: "profiles",
		Type: LineShape,
		Features: []*Feature{
			{Geom: geom.LineString{{X: 0, Y: 0}, {X: 100, Y: 0}}, Record: Record{"Name": "p1"}},
			{Geom: geom.LineString{{X: 0, Y: 100}, {X: 100, Y: 100}}, Record: Record{"Name": "p2"}},
		},
	}
	cfg := &Config{VE: 1}
	out, res, err := SurfaceProfile(cfg, lines, ConstantElevation(10), nil, "Name", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Written != 2 || len(out.Features) != 2 {
		t.Fatalf("have %d profiles, want 2", len(out.Features))
	}
	if !out.Features[0].Geom.Similar(geom.LineString{{X: 0, Y: 10}, {X: 100, Y: 10}}, 1e-9) {
		t.Errorf("have %v", out.Features[0].Geom)
	}
	if l, _ := out.Features[0].Record.Float("ProfileLength"); l != 100 {
		t.Errorf("have length %g, want 100", l)
	}

	wrt := &Feature{Geom: geom.LineString{{X: 40, Y: -5}, {X: 40, Y: 5}}}
	out, res, err = SurfaceProfile(cfg, lines, ConstantElevation(10), nil, "Name", wrt)
	if err != nil {
		t.Fatal(err)
	}
	if res.Written != 1 || len(res.Skipped) != 1 {
		t.Fatalf("result: %+v", res)
	}
	if len(out.Features) != 2 {
		t.Fatalf("have %d features, want the profile and the marker", len(out.Features))
	}
	if !out.Features[0].Geom.Similar(geom.LineString{{X: -40, Y: 10}, {X: 60, Y: 10}}, 1e-9) {
		t.Errorf("shifted profile: have %v", out.Features[0].Geom)
	}
	marker := geom.LineString{{X: 0, Y: -490}, {X: 0, Y: 510}}
	if !out.Features[1].Geom.Similar(marker, 1e-9) {
		t.Errorf("marker: have %v, want %v", out.Features[1].Geom, marker)
	}

	if _, _, err := SurfaceProfile(cfg, lines, nil, nil, "Name", nil); !errors.Is(err, ErrExternalService) {
		t.Errorf("no elevation model: have %v", err)
	}
}

func TestSegmentedProfile(t *testing.T) {
	s, _ := testSection(t, 2)
	polys := &Layer{
		Name: "units",
		Type: PolygonShape,
		Features: []*Feature{
			{
				Geom:   geom.Polygon{{{X: 20, Y: -10}, {X: 60, Y: -10}, {X: 60, Y: 10}, {X: 20, Y: 10}, {X: 20, Y: -10}}},
				Record: Record{"Unit": "Tv"},
			},
			{
				Geom:   geom.Polygon{{{X: -10, Y: -10}, {X: 110, Y: -10}, {X: 110, Y: 10}, {X: -10, Y: 10}, {X: -10, Y: -10}}},
				Record: Record{"Unit": "Qal"},
			},
			{
				Geom:   geom.Polygon{{{X: 0, Y: 50}, {X: 10, Y: 50}, {X: 10, Y: 60}, {X: 0, Y: 50}}},
				Record: Record{"Unit": "Kg"},
			},
		},
	}
	out, res, err := s.SegmentedProfile(polys, "Unit")
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		l        geom.LineString
		unit     string
		from, to float64
	}{
		{l: geom.LineString{{X: 20, Y: 100}, {X: 50, Y: 100}, {X: 60, Y: 100}}, unit: "Tv", from: 20, to: 60},
		{l: geom.LineString{{X: 0, Y: 100}, {X: 50, Y: 100}, {X: 100, Y: 100}}, unit: "Qal", from: 0, to: 100},
	}
	if res.Written != len(want) {
		t.Fatalf("have %d pieces, want %d", res.Written, len(want))
	}
	for i, w := range want {
		f := out.Features[i]
		if !f.Geom.Similar(w.l, 1e-9) {
			t.Errorf("%d: have %v, want %v", i, f.Geom, w.l)
		}
		from, _ := f.Record.Float("FromDistance")
		to, _ := f.Record.Float("ToDistance")
		if f.Record.Text("Unit") != w.unit || from != w.from || to != w.to {
			t.Errorf("%d: have %v", i, f.Record)
		}
	}
}
