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
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/proj"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spf13/cast"
	"github.com/tealeg/xlsx"
)

// ReadLayer reads a vector layer from a shapefile (.shp) or a GeoJSON
// file (.geojson or .json). Shapefile Z and M values are kept.
func ReadLayer(filename string) (*Layer, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".shp":
		return readShapefile(filename)
	case ".geojson", ".json":
		f, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("xsection: reading layer: %w", err)
		}
		defer f.Close()
		l, err := readGeoJSON(f)
		if err != nil {
			return nil, fmt.Errorf("xsection: reading layer %s: %w", filename, err)
		}
		l.Name = layerName(filename)
		return l, nil
	default:
		return nil, fmt.Errorf("xsection: unsupported layer file type %s", filename)
	}
}

// WriteLayer writes l to a shapefile or GeoJSON file, depending on the
// file extension. If appendTo is true the features are appended to the
// existing file, keeping only the fields in the existing schema.
func WriteLayer(filename string, l *Layer, appendTo bool) error {
	if appendTo {
		existing, err := ReadLayer(filename)
		if err != nil {
			return fmt.Errorf("xsection: appending to %s: %w", filename, err)
		}
		if existing.Type != l.Type {
			return fmt.Errorf("xsection: appending %s features to %s layer %s",
				l.Type, existing.Type, filename)
		}
		for _, f := range l.Features {
			r := make(Record, len(existing.Fields))
			for _, fld := range existing.Fields {
				if v, ok := f.Record.Get(fld.Name); ok {
					r[fld.Name] = v
				}
			}
			existing.Features = append(existing.Features,
				&Feature{Geom: f.Geom, Z: f.Z, M: f.M, Record: r})
		}
		l = existing
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".shp":
		return writeShapefile(filename, l)
	case ".geojson", ".json":
		w, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("xsection: writing layer: %w", err)
		}
		if err := writeGeoJSON(w, l); err != nil {
			w.Close()
			return fmt.Errorf("xsection: writing layer %s: %w", filename, err)
		}
		return w.Close()
	default:
		return fmt.Errorf("xsection: unsupported layer file type %s", filename)
	}
}

func layerName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

func shpFieldName(f goshp.Field) string {
	return strings.TrimSpace(strings.TrimRight(string(f.Name[:]), "\x00"))
}

func readShapefile(filename string) (*Layer, error) {
	r, err := goshp.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("xsection: reading shapefile: %w", err)
	}
	defer r.Close()

	l := &Layer{Name: layerName(filename)}
	prj := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".prj"
	if b, err := ioutil.ReadFile(prj); err == nil {
		l.Proj = string(b)
		if l.SR, err = proj.Parse(l.Proj); err != nil {
			return nil, fmt.Errorf("xsection: parsing %s: %w", prj, err)
		}
	}

	shpFields := r.Fields()
	for _, f := range shpFields {
		l.Fields = append(l.Fields, Field{
			Name:      shpFieldName(f),
			Type:      FieldType(f.Fieldtype),
			Size:      f.Size,
			Precision: f.Precision,
		})
	}
	for r.Next() {
		n, s := r.Shape()
		f, t, err := shapeToFeature(s)
		if err != nil {
			return nil, fmt.Errorf("xsection: reading shapefile %s record %d: %w", filename, n, err)
		}
		l.Type = t
		f.Record = make(Record, len(shpFields))
		for i, fld := range l.Fields {
			val := strings.TrimSpace(strings.Trim(r.ReadAttribute(n, i), "\x00"))
			if val == "" {
				f.Record[fld.Name] = nil
				continue
			}
			switch fld.Type {
			case FloatField, IntField:
				v, err := cast.ToFloat64E(val)
				if err != nil {
					// Unreadable numbers are treated as missing values.
					f.Record[fld.Name] = nil
					continue
				}
				if fld.Type == IntField && fld.Precision == 0 {
					f.Record[fld.Name] = int(v)
				} else {
					f.Record[fld.Name] = v
				}
			default:
				f.Record[fld.Name] = val
			}
		}
		l.Features = append(l.Features, f)
	}
	return l, nil
}

// partBounds returns the start and end of part i.
func partBounds(parts []int32, nPoints, i int) (start, end int) {
	start = int(parts[i])
	if i == len(parts)-1 {
		return start, nPoints
	}
	return start, int(parts[i+1])
}

// splitParts splits the flat points of a multi-part shape into parts,
// along with the matching values from zs and ms, which may be empty.
// Polygon rings are reversed into counter-clockwise order.
func splitParts(parts []int32, points []goshp.Point, zs, ms []float64, reverse bool) (pts [][]geom.Point, z, m [][]float64) {
	pts = make([][]geom.Point, len(parts))
	if len(zs) == len(points) {
		z = make([][]float64, len(parts))
	}
	if len(ms) == len(points) {
		m = make([][]float64, len(parts))
	}
	for i := range parts {
		start, end := partBounds(parts, len(points), i)
		pts[i] = make([]geom.Point, end-start)
		if z != nil {
			z[i] = make([]float64, end-start)
		}
		if m != nil {
			m[i] = make([]float64, end-start)
		}
		for j := start; j < end; j++ {
			k := j - start
			if reverse {
				k = end - 1 - j
			}
			pts[i][k] = geom.Point{X: points[j].X, Y: points[j].Y}
			if z != nil {
				z[i][k] = zs[j]
			}
			if m != nil {
				m[i][k] = ms[j]
			}
		}
	}
	return pts, z, m
}

func lineGeom(pts [][]geom.Point) geom.Geom {
	if len(pts) == 1 {
		return geom.LineString(pts[0])
	}
	ml := make(geom.MultiLineString, len(pts))
	for i, p := range pts {
		ml[i] = p
	}
	return ml
}

func polygonGeom(pts [][]geom.Point) geom.Geom {
	p := make(geom.Polygon, len(pts))
	for i, r := range pts {
		p[i] = r
	}
	return p
}

// shapeToFeature converts a shapefile shape to a feature.
func shapeToFeature(s goshp.Shape) (*Feature, ShapeType, error) {
	f := new(Feature)
	switch t := s.(type) {
	case *goshp.Point:
		f.Geom = geom.Point{X: t.X, Y: t.Y}
		return f, PointShape, nil
	case *goshp.PointZ:
		f.Geom = geom.Point{X: t.X, Y: t.Y}
		f.Z, f.M = [][]float64{{t.Z}}, [][]float64{{t.M}}
		return f, PointShape, nil
	case *goshp.PointM:
		f.Geom = geom.Point{X: t.X, Y: t.Y}
		f.M = [][]float64{{t.M}}
		return f, PointShape, nil
	case *goshp.PolyLine:
		pts, _, _ := splitParts(t.Parts, t.Points, nil, nil, false)
		f.Geom = lineGeom(pts)
		return f, LineShape, nil
	case *goshp.PolyLineZ:
		var pts [][]geom.Point
		pts, f.Z, f.M = splitParts(t.Parts, t.Points, t.ZArray, t.MArray, false)
		f.Geom = lineGeom(pts)
		return f, LineShape, nil
	case *goshp.PolyLineM:
		var pts [][]geom.Point
		pts, _, f.M = splitParts(t.Parts, t.Points, nil, t.MArray, false)
		f.Geom = lineGeom(pts)
		return f, LineShape, nil
	case *goshp.Polygon:
		pts, _, _ := splitParts(t.Parts, t.Points, nil, nil, true)
		f.Geom = polygonGeom(pts)
		return f, PolygonShape, nil
	case *goshp.PolygonZ:
		var pts [][]geom.Point
		pts, f.Z, f.M = splitParts(t.Parts, t.Points, t.ZArray, t.MArray, true)
		f.Geom = polygonGeom(pts)
		return f, PolygonShape, nil
	case *goshp.PolygonM:
		var pts [][]geom.Point
		pts, _, f.M = splitParts(t.Parts, t.Points, nil, t.MArray, true)
		f.Geom = polygonGeom(pts)
		return f, PolygonShape, nil
	case *goshp.MultiPoint:
		pts, _, _ := splitParts([]int32{0}, t.Points, nil, nil, false)
		f.Geom = geom.MultiPoint(pts[0])
		return f, MultiPointShape, nil
	case *goshp.MultiPointZ:
		pts, z, m := splitParts([]int32{0}, t.Points, t.ZArray, t.MArray, false)
		f.Geom, f.Z, f.M = geom.MultiPoint(pts[0]), z, m
		return f, MultiPointShape, nil
	case *goshp.MultiPointM:
		pts, _, m := splitParts([]int32{0}, t.Points, nil, t.MArray, false)
		f.Geom, f.M = geom.MultiPoint(pts[0]), m
		return f, MultiPointShape, nil
	default:
		return nil, 0, fmt.Errorf("%w: unsupported shape type %T", ErrInvalidGeometry, s)
	}
}

func valRange(a []float64) [2]float64 {
	out := [2]float64{math.Inf(1), math.Inf(-1)}
	for _, v := range a {
		out[0] = math.Min(out[0], v)
		out[1] = math.Max(out[1], v)
	}
	return out
}

func box(b *geom.Bounds) goshp.Box {
	return goshp.Box{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y}
}

// flatten joins the parts of f into the flat arrays used by shapefiles,
// reversing polygon rings into clockwise order. zs is nil if f has no Z
// values.
func flatten(f *Feature, reverse bool) (partIdx []int32, points []goshp.Point, zs, ms []float64) {
	pp := parts(f.Geom)
	hasZ := len(f.Z) == len(pp)
	hasM := len(f.M) == len(pp)
	for i, p := range pp {
		partIdx = append(partIdx, int32(len(points)))
		for j := range p {
			k := j
			if reverse {
				k = len(p) - 1 - j
			}
			points = append(points, goshp.Point{X: p[k].X, Y: p[k].Y})
			if hasZ {
				zs = append(zs, partValue(f.Z[i], k))
				ms = append(ms, 0)
				if hasM {
					ms[len(ms)-1] = partValue(f.M[i], k)
				}
			}
		}
	}
	return
}

func partValue(v []float64, i int) float64 {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// hasZ reports whether every feature in l has Z values.
func (l *Layer) hasZ() bool {
	if len(l.Features) == 0 {
		return false
	}
	for _, f := range l.Features {
		if len(f.Z) == 0 || len(f.Z) != len(parts(f.Geom)) {
			return false
		}
	}
	return true
}

func (l *Layer) shpType() goshp.ShapeType {
	z := l.hasZ()
	switch l.Type {
	case PointShape:
		if z {
			return goshp.POINTZ
		}
		return goshp.POINT
	case MultiPointShape:
		if z {
			return goshp.MULTIPOINTZ
		}
		return goshp.MULTIPOINT
	case LineShape:
		if z {
			return goshp.POLYLINEZ
		}
		return goshp.POLYLINE
	default:
		if z {
			return goshp.POLYGONZ
		}
		return goshp.POLYGON
	}
}

// featureToShape converts f to a shape of type t.
func featureToShape(f *Feature, t goshp.ShapeType) (goshp.Shape, error) {
	if f.Geom == nil {
		return nil, fmt.Errorf("%w: feature has no geometry", ErrInvalidGeometry)
	}
	b := box(f.Geom.Bounds())
	switch t {
	case goshp.POINT, goshp.POINTZ:
		pts := parts(f.Geom)
		if len(pts) != 1 || len(pts[0]) != 1 {
			return nil, fmt.Errorf("%w: %T in point layer", ErrInvalidGeometry, f.Geom)
		}
		p := pts[0][0]
		if t == goshp.POINT {
			return &goshp.Point{X: p.X, Y: p.Y}, nil
		}
		_, _, zs, ms := flatten(f, false)
		return &goshp.PointZ{X: p.X, Y: p.Y, Z: zs[0], M: ms[0]}, nil
	case goshp.MULTIPOINT:
		_, points, _, _ := flatten(f, false)
		return &goshp.MultiPoint{Box: b, NumPoints: int32(len(points)), Points: points}, nil
	case goshp.MULTIPOINTZ:
		_, points, zs, ms := flatten(f, false)
		return &goshp.MultiPointZ{Box: b, NumPoints: int32(len(points)), Points: points,
			ZRange: valRange(zs), ZArray: zs, MRange: valRange(ms), MArray: ms}, nil
	case goshp.POLYLINE, goshp.POLYGON:
		partIdx, points, _, _ := flatten(f, t == goshp.POLYGON)
		pl := goshp.PolyLine{Box: b, NumParts: int32(len(partIdx)), NumPoints: int32(len(points)),
			Parts: partIdx, Points: points}
		if t == goshp.POLYGON {
			p := goshp.Polygon(pl)
			return &p, nil
		}
		return &pl, nil
	case goshp.POLYLINEZ, goshp.POLYGONZ:
		partIdx, points, zs, ms := flatten(f, t == goshp.POLYGONZ)
		pl := goshp.PolyLineZ{Box: b, NumParts: int32(len(partIdx)), NumPoints: int32(len(points)),
			Parts: partIdx, Points: points,
			ZRange: valRange(zs), ZArray: zs, MRange: valRange(ms), MArray: ms}
		if t == goshp.POLYGONZ {
			p := goshp.PolygonZ(pl)
			return &p, nil
		}
		return &pl, nil
	}
	return nil, fmt.Errorf("xsection: unsupported shapefile type %v", t)
}

func shpField(f Field) goshp.Field {
	switch f.Type {
	case FloatField:
		return goshp.FloatField(f.Name, sizeOr(f.Size, 24), f.Precision)
	case IntField:
		return goshp.NumberField(f.Name, sizeOr(f.Size, 12))
	default:
		return goshp.StringField(f.Name, sizeOr(f.Size, 254))
	}
}

func sizeOr(s, def uint8) uint8 {
	if s == 0 {
		return def
	}
	return s
}

// attributeValue converts v to the type of field f.
func attributeValue(f Field, v interface{}) interface{} {
	if v == nil {
		return ""
	}
	switch f.Type {
	case FloatField:
		x, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return x
	case IntField:
		x, err := cast.ToIntE(v)
		if err != nil {
			return ""
		}
		return x
	default:
		return cast.ToString(v)
	}
}

func writeShapefile(filename string, l *Layer) error {
	schema := l.schema()
	t := l.shpType()
	w, err := goshp.Create(filename, t)
	if err != nil {
		return fmt.Errorf("xsection: creating shapefile: %w", err)
	}
	defer w.Close()
	fields := make([]goshp.Field, len(schema))
	for i, f := range schema {
		fields[i] = shpField(f)
	}
	w.SetFields(fields)
	for row, f := range l.Features {
		s, err := featureToShape(f, t)
		if err != nil {
			return fmt.Errorf("xsection: writing %s feature %d: %w", filename, row, err)
		}
		w.Write(s)
		for i, fld := range schema {
			v, _ := f.Record.Get(fld.Name)
			w.WriteAttribute(row, i, attributeValue(fld, v))
		}
	}
	if l.Proj != "" {
		prj := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".prj"
		if err := ioutil.WriteFile(prj, []byte(l.Proj), 0644); err != nil {
			return fmt.Errorf("xsection: writing projection: %w", err)
		}
	}
	return nil
}

type geoJSONFeature struct {
	Type       string            `json:"type"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties Record            `json:"properties"`
}

type geoJSONCollection struct {
	Type     string            `json:"type"`
	Proj4    string            `json:"proj4,omitempty"`
	Features []*geoJSONFeature `json:"features"`
}

func readGeoJSON(r io.Reader) (*Layer, error) {
	var c geoJSONCollection
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, err
	}
	l := &Layer{Proj: c.Proj4}
	if c.Proj4 != "" {
		var err error
		if l.SR, err = proj.Parse(c.Proj4); err != nil {
			return nil, err
		}
	}
	for i, jf := range c.Features {
		if jf.Geometry == nil {
			return nil, fmt.Errorf("%w: feature %d has no geometry", ErrInvalidGeometry, i)
		}
		g, z, err := decodeGeometry(jf.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		f := &Feature{Geom: g, Record: jf.Properties, Z: z}
		if f.Record == nil {
			f.Record = make(Record)
		}
		switch g.(type) {
		case geom.Point:
			l.Type = PointShape
		case geom.MultiPoint:
			l.Type = MultiPointShape
		case geom.LineString, geom.MultiLineString:
			l.Type = LineShape
		case geom.Polygon, geom.MultiPolygon:
			l.Type = PolygonShape
		}
		l.Features = append(l.Features, f)
	}
	l.Fields = inferFields(l.Features)
	return l, nil
}

// position decodes a GeoJSON position. z is NaN if the position is
// two-dimensional.
func position(c interface{}) (p geom.Point, z float64, err error) {
	list, ok := c.([]interface{})
	if !ok || len(list) < 2 {
		return p, z, fmt.Errorf("%w: invalid GeoJSON position %v", ErrInvalidGeometry, c)
	}
	v := make([]float64, len(list))
	for i, x := range list {
		if v[i], ok = x.(float64); !ok {
			return p, z, fmt.Errorf("%w: invalid GeoJSON position %v", ErrInvalidGeometry, c)
		}
	}
	z = math.NaN()
	if len(v) > 2 {
		z = v[2]
	}
	return geom.Point{X: v[0], Y: v[1]}, z, nil
}

func positions(c interface{}) ([]geom.Point, []float64, error) {
	list, ok := c.([]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("%w: invalid GeoJSON coordinates", ErrInvalidGeometry)
	}
	pts := make([]geom.Point, len(list))
	z := make([]float64, len(list))
	for i, x := range list {
		var err error
		if pts[i], z[i], err = position(x); err != nil {
			return nil, nil, err
		}
	}
	return pts, z, nil
}

func positionSets(c interface{}) ([][]geom.Point, [][]float64, error) {
	list, ok := c.([]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("%w: invalid GeoJSON coordinates", ErrInvalidGeometry)
	}
	pts := make([][]geom.Point, len(list))
	z := make([][]float64, len(list))
	for i, x := range list {
		var err error
		if pts[i], z[i], err = positions(x); err != nil {
			return nil, nil, err
		}
	}
	return pts, z, nil
}

// decodeGeometry decodes g along with the Z value of each vertex, grouped
// by part. The Z values are nil unless every position has one.
func decodeGeometry(g *geojson.Geometry) (geom.Geom, [][]float64, error) {
	var (
		out geom.Geom
		z   [][]float64
	)
	switch g.Type {
	case "Point":
		p, pz, err := position(g.Coordinates)
		if err != nil {
			return nil, nil, err
		}
		out, z = p, [][]float64{{pz}}
	case "MultiPoint", "LineString":
		pts, pz, err := positions(g.Coordinates)
		if err != nil {
			return nil, nil, err
		}
		z = [][]float64{pz}
		if g.Type == "MultiPoint" {
			out = geom.MultiPoint(pts)
		} else {
			out = geom.LineString(pts)
		}
	case "MultiLineString", "Polygon":
		pts, pz, err := positionSets(g.Coordinates)
		if err != nil {
			return nil, nil, err
		}
		z = pz
		if g.Type == "Polygon" {
			out = polygonGeom(pts)
		} else {
			out = lineGeom(pts)
		}
	case "MultiPolygon":
		list, ok := g.Coordinates.([]interface{})
		if !ok {
			return nil, nil, fmt.Errorf("%w: invalid GeoJSON coordinates", ErrInvalidGeometry)
		}
		mp := make(geom.MultiPolygon, len(list))
		for i, c := range list {
			pts, pz, err := positionSets(c)
			if err != nil {
				return nil, nil, err
			}
			mp[i] = polygonGeom(pts).(geom.Polygon)
			z = append(z, pz...)
		}
		out = mp
	default:
		return nil, nil, fmt.Errorf("%w: unsupported GeoJSON geometry type %s", ErrInvalidGeometry, g.Type)
	}
	for _, part := range z {
		for _, v := range part {
			if math.IsNaN(v) {
				return out, nil, nil
			}
		}
	}
	return out, z, nil
}

func positionZ(p geom.Point, z [][]float64, i, j int) []float64 {
	if z == nil {
		return []float64{p.X, p.Y}
	}
	return []float64{p.X, p.Y, partValue(z[i], j)}
}

// toGeoJSON encodes the geometry of f, including Z values when present.
func toGeoJSON(f *Feature) (*geojson.Geometry, error) {
	pp := parts(f.Geom)
	z := f.Z
	if len(z) != len(pp) {
		z = nil
		switch f.Geom.(type) {
		case geom.Point, geom.LineString, geom.Polygon:
			return geojson.ToGeoJSON(f.Geom)
		}
	}
	ring := func(i int) [][]float64 {
		o := make([][]float64, len(pp[i]))
		for j, p := range pp[i] {
			o[j] = positionZ(p, z, i, j)
		}
		return o
	}
	rings := func(from, to int) [][][]float64 {
		o := make([][][]float64, 0, to-from)
		for i := from; i < to; i++ {
			o = append(o, ring(i))
		}
		return o
	}
	switch t := f.Geom.(type) {
	case geom.Point:
		return &geojson.Geometry{Type: "Point", Coordinates: positionZ(t, z, 0, 0)}, nil
	case geom.MultiPoint:
		return &geojson.Geometry{Type: "MultiPoint", Coordinates: ring(0)}, nil
	case geom.LineString:
		return &geojson.Geometry{Type: "LineString", Coordinates: ring(0)}, nil
	case geom.MultiLineString:
		return &geojson.Geometry{Type: "MultiLineString", Coordinates: rings(0, len(pp))}, nil
	case geom.Polygon:
		return &geojson.Geometry{Type: "Polygon", Coordinates: rings(0, len(pp))}, nil
	case geom.MultiPolygon:
		c := make([][][][]float64, len(t))
		i := 0
		for k, p := range t {
			c[k] = rings(i, i+len(p))
			i += len(p)
		}
		return &geojson.Geometry{Type: "MultiPolygon", Coordinates: c}, nil
	}
	return nil, fmt.Errorf("%w: %T cannot be written as GeoJSON", ErrInvalidGeometry, f.Geom)
}

func writeGeoJSON(w io.Writer, l *Layer) error {
	c := geoJSONCollection{Type: "FeatureCollection", Features: make([]*geoJSONFeature, len(l.Features))}
	if !strings.Contains(l.Proj, "[") {
		c.Proj4 = l.Proj
	}
	for i, f := range l.Features {
		g, err := toGeoJSON(f)
		if err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}
		props := f.Record
		if len(l.Fields) > 0 {
			props = make(Record, len(l.Fields))
			for _, fld := range l.Fields {
				v, _ := f.Record.Get(fld.Name)
				props[fld.Name] = v
			}
		}
		c.Features[i] = &geoJSONFeature{Type: "Feature", Geometry: g, Properties: props}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadTable reads a table of records from an Excel workbook (.xlsx,
// first sheet), a comma-separated file (.csv), or the attribute table of
// a shapefile (.shp). The first row of Excel and CSV files holds the
// field names.
func ReadTable(filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return readExcelTable(filename)
	case ".csv":
		b, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("xsection: reading table: %w", err)
		}
		t, err := readCSVTable(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("xsection: reading table %s: %w", filename, err)
		}
		return t, nil
	case ".shp", ".geojson", ".json":
		l, err := ReadLayer(filename)
		if err != nil {
			return nil, err
		}
		t := new(Table)
		for _, f := range l.Fields {
			t.Fields = append(t.Fields, f.Name)
		}
		for _, f := range l.Features {
			t.Rows = append(t.Rows, f.Record)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("xsection: unsupported table file type %s", filename)
	}
}

func readExcelTable(filename string) (*Table, error) {
	f, err := xlsx.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("xsection: reading table: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("xsection: reading table %s: no sheets", filename)
	}
	s := f.Sheets[0]
	t := new(Table)
	for i := 0; i < s.MaxCol; i++ {
		t.Fields = append(t.Fields, strings.TrimSpace(s.Cell(0, i).Value))
	}
	for j := 1; j < s.MaxRow; j++ {
		r := make(Record, len(t.Fields))
		empty := true
		for i, name := range t.Fields {
			v := strings.TrimSpace(s.Cell(j, i).Value)
			if v != "" {
				empty = false
			}
			r[name] = v
		}
		if !empty {
			t.Rows = append(t.Rows, r)
		}
	}
	return t, nil
}

func readCSVTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty table")
	}
	t := &Table{Fields: lines[0]}
	for _, line := range lines[1:] {
		rec := make(Record, len(t.Fields))
		for i, name := range t.Fields {
			if i < len(line) {
				rec[name] = line[i]
			} else {
				rec[name] = ""
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
