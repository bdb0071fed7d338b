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

func TestRescaleLayer(t *testing.T) {
	l := &Layer{
		Type: LineShape,
		Features: []*Feature{
			{Geom: geom.LineString{{X: 1, Y: 2}, {X: 3, Y: 4}}, Record: Record{"n": 1}},
		},
	}
	o, err := RescaleLayer(l, 2, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !o.Features[0].Geom.Similar(geom.LineString{{X: 2, Y: 1}, {X: 6, Y: 2}}, 1e-12) {
		t.Errorf("have %v", o.Features[0].Geom)
	}
	if !l.Features[0].Geom.Similar(geom.LineString{{X: 1, Y: 2}, {X: 3, Y: 4}}, 1e-9) {
		t.Errorf("input was modified")
	}
	l.Features = append(l.Features, &Feature{Geom: geom.GeometryCollection{}})
	if _, err := RescaleLayer(l, 1, 1); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("have %v, want ErrInvalidGeometry", err)
	}
}

func TestXYToShape(t *testing.T) {
	tbl := &Table{
		Fields: []string{"Station", "X", "Y"},
		Rows: []Record{
			{"Station": "s1", "X": "10.5", "Y": "20"},
			{"Station": "s2", "X": "11", "Y": ""},
			{"Station": "s3", "X": "-3", "Y": "4"},
		},
	}
	l, res, err := XYToShape(&Config{VE: 1}, tbl, "X", "Y", nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Written != 2 || len(res.Skipped) != 1 || !errors.Is(res.Skipped[0], ErrMissingAttribute) {
		t.Fatalf("result: %+v", res)
	}
	want := []geom.Point{{X: 10.5, Y: 20}, {X: -3, Y: 4}}
	for i, w := range want {
		f := l.Features[i]
		if !f.Geom.Similar(w, 1e-9) {
			t.Errorf("%d: have %v, want %v", i, f.Geom, w)
		}
		if e, _ := f.Record.Float("Easting"); e != w.X {
			t.Errorf("%d: have easting %g", i, e)
		}
	}
	if !l.HasField("Northing") || !l.HasField("Station") {
		t.Errorf("fields: %+v", l.Fields)
	}
}
