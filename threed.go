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
	"bufio"
	"fmt"
	"io"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// toMap converts the cross-section view points pts to map view. Points
// that cannot be converted are dropped and counted.
func (s *Section) toMap(pts []geom.Point) (out []geom.Point, z []float64, dropped int) {
	for _, p := range pts {
		m, err := ToMapView(p, s.Index, s.cfg.VE)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, geom.Point{X: m.X, Y: m.Y})
		z = append(z, m.Z)
	}
	return out, z, dropped
}

// To3D converts the cross-section view features in l to map view, with
// elevations as Z values. Vertices beyond the ends of the section are
// clamped to the ends. Vertices with non-finite distances are dropped
// with a warning; features left without enough vertices are skipped.
func (s *Section) To3D(l *Layer, idField string) (*Layer, Result, error) {
	return s.to3D(l, func(i int) string { return l.Features[i].ID(idField, i) })
}

// to3D is To3D with the ID of feature i given by idOf.
func (s *Section) to3D(l *Layer, idOf func(i int) string) (*Layer, Result, error) {
	var res Result
	log := s.cfg.log().WithField("layer", l.Name)
	out := &Layer{Name: l.Name + "_3d", Type: l.Type, Fields: l.copyFields(), SR: s.SR, Proj: s.Proj}
	for i, f := range l.Features {
		id := idOf(i)
		var dropped int
		convert := func(pts []geom.Point, min int) ([]geom.Point, []float64, bool) {
			o, z, d := s.toMap(pts)
			dropped += d
			return o, z, len(o) >= min
		}
		nf := &Feature{Record: f.Record.Copy()}
		ok := true
		switch t := f.Geom.(type) {
		case geom.Point:
			var o []geom.Point
			var z []float64
			if o, z, ok = convert([]geom.Point{t}, 1); ok {
				nf.Geom, nf.Z = o[0], [][]float64{z}
			}
		case geom.MultiPoint:
			var o []geom.Point
			var z []float64
			if o, z, ok = convert(t, 1); ok {
				nf.Geom, nf.Z = geom.MultiPoint(o), [][]float64{z}
			}
		case geom.LineString:
			var o []geom.Point
			var z []float64
			if o, z, ok = convert(t, 2); ok {
				nf.Geom, nf.Z = geom.LineString(o), [][]float64{z}
			}
		case geom.MultiLineString:
			var ml geom.MultiLineString
			for _, part := range t {
				if o, z, partOK := convert(part, 2); partOK {
					ml = append(ml, o)
					nf.Z = append(nf.Z, z)
				}
			}
			nf.Geom, ok = ml, len(ml) > 0
		case geom.Polygon:
			var poly geom.Polygon
			for j, ring := range t {
				o, z, ringOK := convert(ring, 3)
				if !ringOK {
					if j == 0 {
						ok = false
						break
					}
					continue
				}
				poly = append(poly, o)
				nf.Z = append(nf.Z, z)
			}
			nf.Geom = poly
		default:
			res.skip(log, recordErr(id, "", ErrInvalidGeometry, fmt.Errorf("unsupported geometry %T", f.Geom)))
			continue
		}
		if dropped > 0 {
			log.WithFields(logrus.Fields{
				"feature": id,
				"dropped": dropped,
			}).Warn("xsection: dropped vertices with non-finite distances")
		}
		if !ok {
			res.skip(log, recordErr(id, "", ErrInterpolationDegenerate,
				fmt.Errorf("too few vertices could be placed in map view")))
			continue
		}
		out.Features = append(out.Features, nf)
	}
	res.Written = len(out.Features)
	log.WithField("written", res.Written).Info("xsection: converted cross section to 3D")
	return out, res, nil
}

// WriteGenerate writes the features of l to w in the ASCII "generate"
// format: for each part of each feature, a line with the feature ID
// followed by one "x y z" line per vertex and a line with END. The file
// ends with a final END line. Features without Z values are written at
// zero elevation.
func WriteGenerate(w io.Writer, l *Layer, idField string) error {
	b := bufio.NewWriter(w)
	for i, f := range l.Features {
		id := f.ID(idField, i)
		for j, part := range parts(f.Geom) {
			fmt.Fprintln(b, id)
			for k, p := range part {
				var z float64
				if j < len(f.Z) {
					z = partValue(f.Z[j], k)
				}
				fmt.Fprintf(b, "%f %f %f\n", p.X, p.Y, z)
			}
			fmt.Fprintln(b, "END")
		}
	}
	fmt.Fprintln(b, "END")
	return b.Flush()
}
