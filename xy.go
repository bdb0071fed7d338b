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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// RescaleLayer returns a copy of l with X coordinates multiplied by sx
// and Y coordinates multiplied by sy.
func RescaleLayer(l *Layer, sx, sy float64) (*Layer, error) {
	o := *l
	o.Features = make([]*Feature, len(l.Features))
	for i, f := range l.Features {
		g, err := Rescale(f.Geom, sx, sy)
		if err != nil {
			return nil, fmt.Errorf("xsection: rescaling %s feature %d: %w", l.Name, i, err)
		}
		o.Features[i] = &Feature{Geom: g, Z: f.Z, M: f.M, Record: f.Record}
	}
	return &o, nil
}

// XYToShape creates a point layer from the X and Y columns of t. The
// coordinates are transformed from the spatial reference from to to,
// whose text form is toProj, and stored in the Easting and Northing
// fields. Rows with missing coordinates are skipped.
func XYToShape(cfg *Config, t *Table, xField, yField string, from, to *proj.SR, toProj string) (*Layer, Result, error) {
	var res Result
	log := cfg.log()
	var trans proj.Transformer
	if from != nil && to != nil {
		var err error
		if trans, err = from.NewTransform(to); err != nil {
			return nil, res, fmt.Errorf("xsection: creating coordinate transform: %w", err)
		}
	}
	out := &Layer{Name: "xy", Type: PointShape, SR: to, Proj: toProj}
	for _, name := range t.Fields {
		out.AddField(Field{Name: name, Type: StringField, Size: 254})
	}
	out.AddField(floatField("Easting"))
	out.AddField(floatField("Northing"))
	for i, row := range t.Rows {
		id := fmt.Sprint(i)
		x, err := row.Float(xField)
		if err != nil {
			res.skip(log, recordErr(id, xField, ErrMissingAttribute, err))
			continue
		}
		y, err := row.Float(yField)
		if err != nil {
			res.skip(log, recordErr(id, yField, ErrMissingAttribute, err))
			continue
		}
		p := geom.Point{X: x, Y: y}
		if trans != nil {
			if p.X, p.Y, err = trans(x, y); err != nil {
				res.skip(log, recordErr(id, "", ErrInvalidGeometry, err))
				continue
			}
		}
		rec := row.Copy()
		rec["Easting"] = p.X
		rec["Northing"] = p.Y
		out.Features = append(out.Features, &Feature{Geom: p, Record: rec})
	}
	res.Written = len(out.Features)
	log.WithField("written", res.Written).Info("xsection: created points from table")
	return out, res, nil
}
