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

package xsectionutil

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/xsection"
)

func TestParseDistance(t *testing.T) {
	feet, err := proj.Parse("+proj=tmerc +lat_0=0 +lon_0=-120 +k=0.9996 +x_0=0 +y_0=0 +ellps=GRS80 +units=us-ft +no_defs")
	if err != nil {
		t.Fatal(err)
	}
	usFoot := 1200. / 3937.
	tests := []struct {
		in         string
		sr         *proj.SR
		want       float64
		err        bool
		invalidDim bool
	}{
		{in: "100", want: 100},
		{in: "100", sr: feet, want: 100},
		{in: "100 meters", want: 100},
		{in: "100 meters", sr: feet, want: 100 / usFoot},
		{in: "2 km", want: 2000},
		{in: "10 Feet", want: 3.048},
		{in: "10 usfeet", sr: feet, want: 10},
		{in: "1 mile", want: 1609.344},
		{in: "0", want: 0},
		{in: "", err: true},
		{in: "-5 m", err: true},
		{in: "5 parsecs", err: true},
		{in: "five meters", err: true},
		{in: "5 m extra", err: true},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			d, err := parseDistance(test.in)
			if test.err {
				if err == nil {
					t.Errorf("expected an error, have %+v", d)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			v, err := d.inMapUnits(test.sr)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(v-test.want) > 1e-9 {
				t.Errorf("have %g, want %g", v, test.want)
			}
		})
	}
}

func TestDistanceInvalidMapUnits(t *testing.T) {
	d, err := parseDistance("5 m")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.inMapUnits(&proj.SR{ToMeter: 0}); err == nil {
		t.Errorf("zero unit size should fail")
	}
}

func TestCheckLogFile(t *testing.T) {
	if f := checkLogFile("", "dir/out.shp"); f != "dir/out.log" {
		t.Errorf("default: have %s", f)
	}
	os.Setenv("XSECTION_TEST_DIR", "logs")
	defer os.Unsetenv("XSECTION_TEST_DIR")
	if f := checkLogFile("$XSECTION_TEST_DIR/run.log", "out.shp"); f != "logs/run.log" {
		t.Errorf("expanded: have %s", f)
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("an empty output file should be rejected")
	}
	if _, err := checkOutputFile("does/not/exist/out.shp"); err == nil {
		t.Error("a missing output directory should be rejected")
	}
	if f, err := checkOutputFile("out.shp"); err != nil || f != "out.shp" {
		t.Errorf("have %s, %v", f, err)
	}
}

func TestOutput(t *testing.T) {
	dir, err := ioutil.TempDir("", "xsectionutil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	o := &output{file: filepath.Join(dir, "out.geojson"), multi: true}
	if p := o.path("wells"); p != filepath.Join(dir, "out_wells.geojson") {
		t.Errorf("multiple layers: have %s", p)
	}
	o.multi = false
	if p := o.path("wells"); p != filepath.Join(dir, "out.geojson") {
		t.Errorf("single layer: have %s", p)
	}

	l := &xsection.Layer{
		Name:     "wells",
		Type:     xsection.PointShape,
		Fields:   []xsection.Field{{Name: "ID", Type: xsection.StringField, Size: 10}},
		Features: []*xsection.Feature{{Geom: geom.Point{X: 1, Y: 2}, Record: xsection.Record{"ID": "a"}}},
	}
	if _, err := o.write(l, "wells"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.write(l, "wells"); err == nil {
		t.Error("an existing file should not be replaced without Overwrite")
	}
	o.overwrite = true
	if _, err := o.write(l, "wells"); err != nil {
		t.Errorf("overwrite: %v", err)
	}

	a := &output{file: o.file, appendTo: true}
	if _, err := a.write(l, "wells"); err != nil {
		t.Fatal(err)
	}
	have, err := xsection.ReadLayer(o.file)
	if err != nil {
		t.Fatal(err)
	}
	if len(have.Features) != 2 {
		t.Errorf("appended: have %d features, want 2", len(have.Features))
	}
}

func TestSessionConfigFor(t *testing.T) {
	feet, err := proj.Parse("+proj=tmerc +lat_0=0 +lon_0=-120 +k=0.9996 +x_0=0 +y_0=0 +ellps=GRS80 +units=ft +no_defs")
	if err != nil {
		t.Fatal(err)
	}
	d, err := parseDistance("30.48 m")
	if err != nil {
		t.Fatal(err)
	}
	log, hook := logtest.NewNullLogger()
	s := &session{cfg: &xsection.Config{VE: 2, SearchDistance: 30.48}, log: log, searchDistance: d}
	cfg, err := s.configFor("section", feet)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(cfg.SearchDistance-100) > 1e-9 || cfg.VE != 2 {
		t.Errorf("have %+v, want a search distance of 100 ft", cfg)
	}
	if s.cfg.SearchDistance != 30.48 {
		t.Errorf("session configuration changed to %g", s.cfg.SearchDistance)
	}
	if len(hook.Entries) != 0 {
		t.Errorf("unexpected log entries %v", hook.Entries)
	}
	if cfg, err = s.configFor("section", nil); err != nil || math.Abs(cfg.SearchDistance-30.48) > 1e-9 {
		t.Errorf("no spatial reference: have %g, %v", cfg.SearchDistance, err)
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel {
		t.Errorf("missing spatial reference should be logged as a warning")
	}
}
