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

// Intersections finds where the features of lines cross the section
// line and marks them in cross-section view. With asLines false each
// crossing becomes a point at the ground surface, or at zero if the
// elevation is unknown. With asLines true each crossing becomes a
// vertical line from the ground surface, or from 100 times the vertical
// exaggeration if the elevation is unknown, up 500 elevation units.
func (s *Section) Intersections(lines *Layer, idField string, asLines bool) (*Layer, Result, error) {
	var res Result
	log := s.cfg.log().WithField("layer", lines.Name)
	if lines.Type != LineShape && lines.Type != PolygonShape {
		return nil, res, fmt.Errorf("%w: layer %s has %s features; want lines",
			ErrInvalidGeometry, lines.Name, lines.Type)
	}
	lines, err := s.prepare(lines)
	if err != nil {
		return nil, res, err
	}
	ve := s.cfg.VE
	out := &Layer{Name: lines.Name + "_intersect", Type: PointShape, Fields: lines.copyFields()}
	if asLines {
		out.Type = LineShape
	}
	out.AddField(floatField("Distance"))
	out.AddField(floatField("Elevation"))
	for i, f := range lines.Features {
		id := f.ID(idField, i)
		crossings := Crossings(f.Geom, s.Route)
		if len(crossings) == 0 {
			log.WithField("feature", id).Debug("xsection: line does not cross section")
			continue
		}
		for _, c := range crossings {
			z := s.elevation(c.Point)
			rec := f.Record.Copy()
			rec["Distance"] = c.Measure
			var y float64
			switch {
			case !math.IsNaN(z):
				y = z * ve
				rec["Elevation"] = z
			case asLines:
				y = 100 * ve
				res.substitute(log, id, 100, recordErr(id, "", ErrMissingAttribute,
					fmt.Errorf("no elevation at measure %g", c.Measure)))
			default:
				res.substitute(log, id, 0, recordErr(id, "", ErrMissingAttribute,
					fmt.Errorf("no elevation at measure %g", c.Measure)))
			}
			var g geom.Geom = geom.Point{X: c.Measure, Y: y}
			if asLines {
				g = geom.LineString{{X: c.Measure, Y: y}, {X: c.Measure, Y: y + 500*ve}}
			}
			out.Features = append(out.Features, &Feature{Geom: g, Record: rec})
		}
	}
	res.Written = len(out.Features)
	log.WithField("written", res.Written).Info("xsection: marked line intersections")
	return out, res, nil
}
