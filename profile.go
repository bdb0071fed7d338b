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
	"gonum.org/v1/gonum/floats"
)

// plan2side returns route in cross-section view, shifted along the
// section by shift.
func plan2side(route *MeasuredPolyline, ve, shift float64) geom.LineString {
	l := make(geom.LineString, len(route.Vertices))
	for i, v := range route.Vertices {
		l[i] = ToCrossSectionView(PointZ{X: v.X, Y: v.Y, Z: v.Z}, v.M+shift, ve)
	}
	return l
}

// SurfaceProfile drapes each line in lines on the elevation model and
// returns it in cross-section view. If wrt is not nil each profile is
// shifted so that its crossing with wrt is at zero, and a vertical marker
// line at zero spanning all profiles is added as the last feature.
func SurfaceProfile(cfg *Config, lines *Layer, sampler ElevationSampler, router Router, idField string, wrt *Feature) (*Layer, Result, error) {
	var res Result
	if err := cfg.Validate(); err != nil {
		return nil, res, err
	}
	log := cfg.log().WithField("layer", lines.Name)
	if lines.Type != LineShape {
		return nil, res, fmt.Errorf("%w: layer %s has %s features; want lines",
			ErrInvalidGeometry, lines.Name, lines.Type)
	}
	if sampler == nil {
		return nil, res, fmt.Errorf("%w: surface profiles need an elevation model", ErrExternalService)
	}
	if router == nil {
		router = LinearRouter{}
	}
	out := &Layer{Name: lines.Name + "_profile", Type: LineShape, Fields: lines.copyFields()}
	out.AddField(floatField("ProfileLength"))
	var ys []float64
	for i, f := range lines.Features {
		id := f.ID(idField, i)
		src := cfg.MeasureSource
		if src.Field != "" {
			length, err := f.Record.Float(src.Field)
			if err != nil {
				res.skip(log, recordErr(id, src.Field, ErrMissingAttribute, err))
				continue
			}
			src.Length = length
		}
		z, err := SampleGeometry(sampler, f.Geom)
		if z == nil {
			res.skip(log, recordErr(id, "", ErrInvalidGeometry, err))
			continue
		} else if err != nil {
			log.WithField("feature", id).WithError(err).Warn("xsection: vertices outside of elevation model dropped")
		}
		var profile geom.MultiLineString
		var length float64
		for j, part := range parts(f.Geom) {
			var l geom.LineString
			var zs []float64
			for k, p := range part {
				if !math.IsNaN(z[j][k]) {
					l = append(l, p)
					zs = append(zs, z[j][k])
				}
			}
			route, err := router.BuildRoute(l, zs, src)
			if err != nil {
				res.skip(log, recordErr(id, "", ErrInvalidGeometry, err))
				continue
			}
			var shift float64
			if wrt != nil {
				c := Crossings(wrt.Geom, route)
				if len(c) == 0 {
					res.skip(log, recordErr(id, "", ErrInvalidGeometry,
						fmt.Errorf("part %d does not cross the reference line", j)))
					continue
				}
				shift = -c[0].Measure
			}
			p := plan2side(route, cfg.VE, shift)
			for _, v := range p {
				ys = append(ys, v.Y)
			}
			length += route.Length()
			profile = append(profile, p)
		}
		if len(profile) == 0 {
			continue
		}
		rec := f.Record.Copy()
		rec["ProfileLength"] = length
		var g geom.Geom = profile
		if len(profile) == 1 {
			g = profile[0]
		}
		out.Features = append(out.Features, &Feature{Geom: g, Record: rec})
	}
	res.Written = len(out.Features)
	if wrt != nil && len(ys) > 0 {
		marker := geom.LineString{
			{X: 0, Y: floats.Min(ys) - 500},
			{X: 0, Y: floats.Max(ys) + 500},
		}
		out.Features = append(out.Features, &Feature{Geom: marker, Record: Record{}})
	}
	log.WithField("written", res.Written).Info("xsection: built surface profiles")
	return out, res, nil
}

// SegmentedProfile splits the draped section line where it crosses the
// boundaries of the polygons in polys and returns, in cross-section view,
// the pieces that fall inside each polygon with that polygon's
// attributes.
func (s *Section) SegmentedProfile(polys *Layer, idField string) (*Layer, Result, error) {
	var res Result
	log := s.cfg.log().WithField("layer", polys.Name)
	if polys.Type != PolygonShape {
		return nil, res, fmt.Errorf("%w: layer %s has %s features; want polygons",
			ErrInvalidGeometry, polys.Name, polys.Type)
	}
	polys, err := s.prepare(polys)
	if err != nil {
		return nil, res, err
	}
	out := &Layer{Name: polys.Name + "_profile", Type: LineShape, Fields: polys.copyFields()}
	out.AddField(floatField("FromDistance"))
	out.AddField(floatField("ToDistance"))
	lo, hi := s.Index.MinMeasure(), s.Index.MaxMeasure()
	for i, f := range polys.Features {
		id := f.ID(idField, i)
		poly, ok := f.Geom.(geom.Polygonal)
		if !ok {
			res.skip(log, recordErr(id, "", ErrInvalidGeometry, fmt.Errorf("%T is not a polygon", f.Geom)))
			continue
		}
		breaks := []float64{lo}
		for _, c := range Crossings(f.Geom, s.Route) {
			if c.Measure > lo && c.Measure < hi {
				breaks = append(breaks, c.Measure)
			}
		}
		breaks = append(breaks, hi)
		for j := 1; j < len(breaks); j++ {
			m0, m1 := breaks[j-1], breaks[j]
			if m1 <= m0 {
				continue
			}
			mid, err := s.Index.PositionAtMeasure((m0 + m1) / 2)
			if err != nil {
				res.skip(log, recordErr(id, "", ErrInterpolationDegenerate, err))
				continue
			}
			if mid.Within(poly) == geom.Outside {
				continue
			}
			piece, err := s.profileBetween(m0, m1)
			if err != nil {
				res.skip(log, recordErr(id, "", ErrInterpolationDegenerate, err))
				continue
			}
			rec := f.Record.Copy()
			rec["FromDistance"] = m0
			rec["ToDistance"] = m1
			out.Features = append(out.Features, &Feature{Geom: piece, Record: rec})
		}
	}
	res.Written = len(out.Features)
	log.WithField("written", res.Written).Info("xsection: built segmented profile")
	return out, res, nil
}

// profileBetween returns the section's ground profile from measure m0 to
// m1 in cross-section view.
func (s *Section) profileBetween(m0, m1 float64) (geom.LineString, error) {
	z0, err := s.Index.ElevationAtMeasure(m0)
	if err != nil {
		return nil, err
	}
	l := geom.LineString{{X: m0, Y: z0 * s.cfg.VE}}
	for _, v := range s.Route.Vertices {
		if v.M > m0 && v.M < m1 {
			l = append(l, geom.Point{X: v.M, Y: v.Z * s.cfg.VE})
		}
	}
	z1, err := s.Index.ElevationAtMeasure(m1)
	if err != nil {
		return nil, err
	}
	return append(l, geom.Point{X: m1, Y: z1 * s.cfg.VE}), nil
}
