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

// Orientation is the appearance of a planar or linear structural
// measurement in a cross section. All angles are in degrees.
type Orientation struct {
	// Obliquity is the acute angle between the measurement's strike
	// or trend and the section bearing, in [0, 90].
	Obliquity float64

	// ApparentDip is the dip of the plane as seen in the section.
	ApparentDip float64

	// ApparentDipExaggerated is ApparentDip after vertical exaggeration.
	ApparentDipExaggerated float64
}

func mod360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

func radians(a float64) float64 { return a * math.Pi / 180 }
func degrees(a float64) float64 { return a * 180 / math.Pi }

// Obliquity returns the acute angle in degrees between the lines with
// bearings theta1 and theta2.
func Obliquity(theta1, theta2 float64) float64 {
	obl := math.Abs(mod360(theta1) - mod360(theta2))
	if obl > 180 {
		obl -= 180
	}
	if obl > 90 {
		obl = 180 - obl
	}
	return obl
}

func checkAngles(ve float64, angles ...float64) error {
	if ve == 0 {
		return ErrZeroExaggeration
	}
	if math.IsNaN(ve) || math.IsInf(ve, 0) || ve < 0 {
		return fmt.Errorf("xsection: invalid vertical exaggeration %g", ve)
	}
	for _, a := range angles {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("%w: non-numeric angle %g", ErrMissingAttribute, a)
		}
	}
	return nil
}

// ApparentDip returns the apparent dip of a plane with the given strike
// and dip when viewed in a vertical section with the given bearing and
// vertical exaggeration ve. The dip must be in [0, 90].
func ApparentDip(strike, dip, bearing, ve float64) (Orientation, error) {
	if err := checkAngles(ve, strike, dip, bearing); err != nil {
		return Orientation{}, err
	}
	if dip < 0 || dip > 90 {
		return Orientation{}, fmt.Errorf("%w: dip %g is outside of [0, 90]", ErrMissingAttribute, dip)
	}
	o := Orientation{Obliquity: Obliquity(strike, bearing)}
	o.ApparentDip = degrees(math.Atan(math.Tan(radians(dip)) * math.Sin(radians(o.Obliquity))))
	o.ApparentDipExaggerated = degrees(math.Atan(ve * math.Tan(radians(o.ApparentDip))))
	return o, nil
}

// ApparentPlunge returns the apparent plunge of a line with the given
// trend and plunge when viewed in a vertical section with the given
// bearing and vertical exaggeration ve. The returned Orientation's
// ApparentDip field holds the unexaggerated plunge.
func ApparentPlunge(trend, plunge, bearing, ve float64) (Orientation, error) {
	if err := checkAngles(ve, trend, plunge, bearing); err != nil {
		return Orientation{}, err
	}
	if plunge < 0 || plunge > 90 {
		return Orientation{}, fmt.Errorf("%w: plunge %g is outside of [0, 90]", ErrMissingAttribute, plunge)
	}
	o := Orientation{Obliquity: Obliquity(trend, bearing)}
	cos := math.Cos(radians(o.Obliquity))
	o.ApparentDip = degrees(math.Atan(math.Tan(radians(plunge)) * cos))
	o.ApparentDipExaggerated = degrees(math.Atan(ve * math.Tan(radians(plunge)) * cos))
	return o, nil
}

// DipDirection returns the dip direction of a plane from its strike
// using the right-hand rule.
func DipDirection(strike float64) float64 {
	return mod360(strike + 90)
}

// SymbolRotation returns the rotation in degrees of a dip or plunge tick
// symbol drawn in a section whose local azimuth is sectionAz. dipDir is
// the dip direction (or plunge direction) of the measurement and tick is
// the exaggerated apparent dip. Measurements that dip toward the forward
// half-plane of the section are rotated by 90 + tick and the rest by
// 270 + tick, so that dip directions 180 degrees apart always give
// rotations 180 degrees apart. A backward-dipping symbol is therefore
// the forward symbol turned through 180 degrees, not its mirror image
// (270 - tick): both tick toward the same side of the section line.
func SymbolRotation(dipDir, sectionAz, tick float64) float64 {
	rel := mod360(dipDir - sectionAz)
	if mod360(rel+90) < 180 {
		return mod360(90 + tick)
	}
	return mod360(270 + tick)
}

// BearingBetween returns the azimuth in degrees clockwise from north of
// p2 as seen from p1.
func BearingBetween(p1, p2 geom.Point) (float64, error) {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	if dx == 0 && dy == 0 {
		return math.NaN(), fmt.Errorf("%w: bearing between coincident points (%g, %g)",
			ErrInvalidGeometry, p1.X, p1.Y)
	}
	return math.Mod(90-degrees(math.Atan2(dy, dx))+360, 360), nil
}
