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

func TestObliquity(t *testing.T) {
	for _, test := range []struct{ a, b, want float64 }{
		{0, 0, 0},
		{10, 100, 90},
		{350, 10, 20},
		{45, 225, 0},
		{30, 200, 10},
		{270, 0, 90},
		{-30, 30, 60},
	} {
		if o := Obliquity(test.a, test.b); absDifferent(o, test.want, 1e-12) {
			t.Errorf("Obliquity(%g, %g) = %g, want %g", test.a, test.b, o, test.want)
		}
	}
}

func TestApparentDipBoundaries(t *testing.T) {
	for az := 0.; az < 360; az += 15 {
		for _, dip := range []float64{0, 1, 10, 33.3, 45, 60, 89, 90} {
			o, err := ApparentDip(az, dip, az, 1)
			if err != nil {
				t.Fatal(err)
			}
			if o.Obliquity != 0 || o.ApparentDip != 0 {
				t.Errorf("az=%g dip=%g: parallel to strike gave %+v", az, dip, o)
			}

			o, err = ApparentDip(az, dip, az+90, 1)
			if err != nil {
				t.Fatal(err)
			}
			if absDifferent(o.Obliquity, 90, 1e-6) {
				t.Errorf("az=%g dip=%g: obliquity %g, want 90", az, dip, o.Obliquity)
			}
			if absDifferent(o.ApparentDip, dip, 1e-6) {
				t.Errorf("az=%g dip=%g: perpendicular to strike gave apparent dip %g", az, dip, o.ApparentDip)
			}
			if absDifferent(o.ApparentDipExaggerated, o.ApparentDip, 1e-6) {
				t.Errorf("az=%g dip=%g: ve=1 changed the dip to %g", az, dip, o.ApparentDipExaggerated)
			}
		}
	}
}

func TestApparentDip(t *testing.T) {
	o, err := ApparentDip(0, 45, 30, 2)
	if err != nil {
		t.Fatal(err)
	}
	wantAp := math.Atan(math.Sin(30*math.Pi/180)) * 180 / math.Pi
	wantVE := math.Atan(2*math.Tan(wantAp*math.Pi/180)) * 180 / math.Pi
	if absDifferent(o.Obliquity, 30, 1e-12) {
		t.Errorf("obliquity: have %g, want 30", o.Obliquity)
	}
	if absDifferent(o.ApparentDip, wantAp, 1e-9) {
		t.Errorf("apparent dip: have %g, want %g", o.ApparentDip, wantAp)
	}
	if absDifferent(o.ApparentDipExaggerated, wantVE, 1e-9) {
		t.Errorf("exaggerated dip: have %g, want %g", o.ApparentDipExaggerated, wantVE)
	}
	if o.ApparentDipExaggerated <= o.ApparentDip {
		t.Errorf("exaggeration should steepen the dip")
	}
}

func TestApparentDipInvalid(t *testing.T) {
	tests := []struct {
		name                 string
		strike, dip, bearing float64
		ve                   float64
		want                 error
	}{
		{name: "zero ve", strike: 10, dip: 10, bearing: 0, ve: 0, want: ErrZeroExaggeration},
		{name: "nan dip", strike: 10, dip: math.NaN(), bearing: 0, ve: 1, want: ErrMissingAttribute},
		{name: "steep dip", strike: 10, dip: 91, bearing: 0, ve: 1, want: ErrMissingAttribute},
		{name: "nan strike", strike: math.NaN(), dip: 10, bearing: 0, ve: 1, want: ErrMissingAttribute},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ApparentDip(test.strike, test.dip, test.bearing, test.ve)
			if !errors.Is(err, test.want) {
				t.Errorf("have %v, want %v", err, test.want)
			}
		})
	}
}

func TestApparentPlunge(t *testing.T) {
	// A line trending along the section keeps its plunge.
	o, err := ApparentPlunge(40, 30, 40, 1)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(o.ApparentDip, 30, 1e-9) {
		t.Errorf("have %g, want 30", o.ApparentDip)
	}
	// A line trending across the section appears horizontal.
	o, err = ApparentPlunge(40, 30, 130, 3)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(o.ApparentDipExaggerated, 0, 1e-9) {
		t.Errorf("have %g, want 0", o.ApparentDipExaggerated)
	}
}

func TestDipDirection(t *testing.T) {
	for _, test := range []struct{ strike, want float64 }{
		{0, 90}, {90, 180}, {270, 0}, {300, 30},
	} {
		if d := DipDirection(test.strike); d != test.want {
			t.Errorf("DipDirection(%g) = %g, want %g", test.strike, d, test.want)
		}
	}
}

func TestSymbolRotationAntisymmetry(t *testing.T) {
	for az := 0.; az < 360; az += 7 {
		for d := 0.; d < 360; d += 5 {
			for _, tick := range []float64{0, 12.5, 45, 89} {
				r1 := SymbolRotation(d, az, tick)
				r2 := SymbolRotation(d+180, az, tick)
				if diff := mod360(r2 - r1); diff != 180 {
					t.Errorf("d=%g az=%g tick=%g: rotations %g and %g differ by %g", d, az, tick, r1, r2, diff)
				}
			}
		}
	}
}

func TestSymbolRotation(t *testing.T) {
	for _, test := range []struct{ d, az, tick, want float64 }{
		{d: 90, az: 90, tick: 30, want: 120},
		{d: 270, az: 90, tick: 30, want: 300},
		{d: 100, az: 45, tick: 10, want: 100},
		{d: 200, az: 45, tick: 10, want: 280},
	} {
		if r := SymbolRotation(test.d, test.az, test.tick); absDifferent(r, test.want, 1e-12) {
			t.Errorf("SymbolRotation(%g, %g, %g) = %g, want %g", test.d, test.az, test.tick, r, test.want)
		}
	}
}

func TestSymbolRotationBackwardIsRotated(t *testing.T) {
	for _, tick := range []float64{5, 30, 60} {
		fwd := SymbolRotation(90, 90, tick)
		back := SymbolRotation(270, 90, tick)
		if absDifferent(back, mod360(fwd+180), 1e-12) {
			t.Errorf("tick %g: backward rotation %g is not forward %g turned 180 degrees", tick, back, fwd)
		}
		if mirror := mod360(270 - tick); !absDifferent(back, mirror, 1e-12) {
			t.Errorf("tick %g: backward rotation %g should not be the mirror %g", tick, back, mirror)
		}
	}
}

func TestBearingBetween(t *testing.T) {
	origin := geom.Point{}
	for _, test := range []struct {
		p    geom.Point
		want float64
	}{
		{geom.Point{X: 0, Y: 1}, 0},
		{geom.Point{X: 1, Y: 1}, 45},
		{geom.Point{X: 1, Y: 0}, 90},
		{geom.Point{X: 0, Y: -1}, 180},
		{geom.Point{X: -1, Y: 0}, 270},
		{geom.Point{X: -1, Y: 1}, 315},
	} {
		b, err := BearingBetween(origin, test.p)
		if err != nil {
			t.Fatal(err)
		}
		if absDifferent(b, test.want, 1e-9) {
			t.Errorf("bearing to %v: have %g, want %g", test.p, b, test.want)
		}
	}
	if _, err := BearingBetween(origin, origin); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("coincident points: want ErrInvalidGeometry, have %v", err)
	}
}
