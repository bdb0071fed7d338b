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
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// PointOptions control how point features are placed in a cross
// section.
type PointOptions struct {
	// IDField identifies features in messages and duplicate removal.
	IDField string

	// ZField holds point elevations. If it is empty elevations come from
	// the elevation model.
	ZField string

	// StrikeField and DipField hold planar structural measurements
	// using the right-hand rule. When Lineation is true they hold the
	// trend and plunge of linear measurements instead.
	StrikeField, DipField string
	Lineation             bool

	// Snap places points on the section line at the ground surface.
	Snap bool
}

func floatField(name string) Field {
	return Field{Name: name, Type: FloatField, Size: 24, Precision: 8}
}

// Points places the point features of pts within the search distance of
// the section in cross-section view.
func (s *Section) Points(pts *Layer, opts PointOptions) (*Layer, Result, error) {
	var res Result
	log := s.cfg.log().WithField("layer", pts.Name)
	if pts.Type != PointShape {
		return nil, res, fmt.Errorf("%w: layer %s has %s features; want points",
			ErrInvalidGeometry, pts.Name, pts.Type)
	}
	pts, err := s.prepare(pts)
	if err != nil {
		return nil, res, err
	}
	events, err := s.router.Locate(pts.Features, opts.IDField, s.Route, s.cfg.SearchDistance)
	if err != nil {
		return nil, res, fmt.Errorf("xsection: locating %s: %w", pts.Name, err)
	}
	events = Nearest(events)

	structure := opts.StrikeField != "" && opts.DipField != ""
	out := &Layer{Name: pts.Name + "_xsec", Type: PointShape, Fields: pts.copyFields()}
	out.AddField(floatField("Distance"))
	out.AddField(floatField("Elevation"))
	out.AddField(floatField("DistanceFromSection"))
	out.AddField(floatField("LocalCSAzimuth"))
	if structure {
		names := []string{"DipDir", "Obliquity", "ApDip", "VEDip", "DipRot"}
		if opts.Lineation {
			names = []string{"Obliquity", "ApparentInclination", "PlotAzimuth"}
		}
		for _, n := range names {
			out.AddField(floatField(n))
		}
	}

	for _, e := range events {
		if e.Err != nil {
			res.skip(log, e.Err)
			continue
		}
		f := pts.Features[e.Index]
		z, subErr := s.pointElevation(f, e, opts)
		if subErr != nil {
			res.substitute(log, e.FeatureID, z, subErr)
		}
		rec := f.Record.Copy()
		rec["Distance"] = e.Measure
		rec["Elevation"] = z
		rec["DistanceFromSection"] = e.Offset
		rec["LocalCSAzimuth"] = e.Azimuth
		if structure {
			if err := orient(rec, f.Record, e, opts, s.cfg.VE); err != nil {
				res.skip(log, recordErr(e.FeatureID, opts.DipField, ErrMissingAttribute, err))
				continue
			}
		}
		p := ToCrossSectionView(PointZ{X: e.Point.X, Y: e.Point.Y, Z: z}, e.Measure, s.cfg.VE)
		out.Features = append(out.Features, &Feature{Geom: p, Record: rec})
	}
	res.Written = len(out.Features)
	log.WithField("written", res.Written).Info("xsection: placed points in cross section")
	return out, res, nil
}

// pointElevation returns the elevation of the located point f. Missing
// elevations are replaced with MissingDEMElevation and returned with an
// error.
func (s *Section) pointElevation(f *Feature, e Event, opts PointOptions) (float64, error) {
	if opts.Snap {
		z, err := s.Index.ElevationAtMeasure(e.Measure)
		if err == nil {
			return z, nil
		}
	}
	if opts.ZField != "" {
		z, err := f.Record.Float(opts.ZField)
		if err == nil {
			return z, nil
		}
	}
	var p geom.Point
	if pp := parts(f.Geom); len(pp) == 1 && len(pp[0]) == 1 {
		p = pp[0][0]
	}
	if z := s.elevation(p); !math.IsNaN(z) {
		return z, nil
	}
	if len(f.Z) == 1 && len(f.Z[0]) == 1 && !math.IsNaN(f.Z[0][0]) {
		return f.Z[0][0], nil
	}
	return MissingDEMElevation, recordErr(e.FeatureID, opts.ZField, ErrMissingAttribute,
		errors.New("no elevation"))
}

// orient adds to out the apparent orientation of the structural
// measurement held in the attributes in.
func orient(out, in Record, e Event, opts PointOptions, ve float64) error {
	strike, err := in.Float(opts.StrikeField)
	if err != nil {
		return err
	}
	dip, err := in.Float(opts.DipField)
	if err != nil {
		return err
	}
	if opts.Lineation {
		o, err := ApparentPlunge(strike, dip, e.Azimuth, ve)
		if err != nil {
			return err
		}
		out["Obliquity"] = o.Obliquity
		out["ApparentInclination"] = o.ApparentDipExaggerated
		out["PlotAzimuth"] = SymbolRotation(strike, e.Azimuth, o.ApparentDipExaggerated)
		return nil
	}
	o, err := ApparentDip(strike, dip, e.Azimuth, ve)
	if err != nil {
		return err
	}
	dd := DipDirection(strike)
	out["DipDir"] = dd
	out["Obliquity"] = o.Obliquity
	out["ApDip"] = o.ApparentDip
	out["VEDip"] = o.ApparentDipExaggerated
	out["DipRot"] = SymbolRotation(dd, e.Azimuth, o.ApparentDipExaggerated)
	return nil
}
