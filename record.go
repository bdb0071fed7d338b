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
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/spf13/cast"
)

// excludedFields are attributes that are never copied from input to
// output records.
var excludedFields = map[string]bool{
	"shape":        true,
	"objectid":     true,
	"fid":          true,
	"shape_length": true,
	"shape_area":   true,
}

// Record is a set of named attribute values. Field names are matched
// without regard to case.
type Record map[string]interface{}

// key returns the key in r that matches name, ignoring case.
func (r Record) key(name string) (string, bool) {
	if _, ok := r[name]; ok {
		return name, true
	}
	for k := range r {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}

// Get returns the value of the named field.
func (r Record) Get(name string) (interface{}, bool) {
	k, ok := r.key(name)
	if !ok {
		return nil, false
	}
	return r[k], true
}

// Set sets the value of the named field, replacing any existing field
// with the same name in a different case.
func (r Record) Set(name string, v interface{}) {
	if k, ok := r.key(name); ok {
		delete(r, k)
	}
	r[name] = v
}

// Float returns the named field as a number. It returns an error
// wrapping ErrMissingAttribute if the field is absent, empty, or not
// numeric.
func (r Record) Float(name string) (float64, error) {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return math.NaN(), fmt.Errorf("%w: %s", ErrMissingAttribute, name)
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
		if v == "" {
			return math.NaN(), fmt.Errorf("%w: %s is empty", ErrMissingAttribute, name)
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return math.NaN(), fmt.Errorf("%w: %s: %v", ErrMissingAttribute, name, err)
	}
	if math.IsNaN(f) {
		return f, fmt.Errorf("%w: %s is NaN", ErrMissingAttribute, name)
	}
	return f, nil
}

// Text returns the named field as a string, or "" if it is absent.
func (r Record) Text(name string) string {
	v, ok := r.Get(name)
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// Copy returns a copy of r without the shape, object ID and length
// fields.
func (r Record) Copy() Record {
	o := make(Record, len(r))
	for k, v := range r {
		if excludedFields[strings.ToLower(k)] {
			continue
		}
		o[k] = v
	}
	return o
}

// FieldType is the type of an attribute field.
type FieldType byte

// Field types, matching dBase type codes.
const (
	StringField FieldType = 'C'
	FloatField  FieldType = 'F'
	IntField    FieldType = 'N'
)

// Field describes an attribute field of a Layer.
type Field struct {
	Name      string
	Type      FieldType
	Size      uint8
	Precision uint8
}

// ShapeType is the geometry type of a Layer.
type ShapeType int

// Shape types.
const (
	PointShape ShapeType = iota
	MultiPointShape
	LineShape
	PolygonShape
)

func (t ShapeType) String() string {
	switch t {
	case PointShape:
		return "point"
	case MultiPointShape:
		return "multipoint"
	case LineShape:
		return "line"
	case PolygonShape:
		return "polygon"
	default:
		return fmt.Sprintf("ShapeType(%d)", int(t))
	}
}

// Feature is a geometry with attributes.
type Feature struct {
	geom.Geom

	// Z and M hold per-vertex elevations and measures, one slice per
	// part, when they are known.
	Z, M [][]float64

	Record
}

// ID returns the value of field, or the feature's position i if the
// field is empty or absent.
func (f *Feature) ID(field string, i int) string {
	if field != "" {
		if s := f.Record.Text(field); s != "" {
			return s
		}
	}
	return fmt.Sprint(i)
}

// parts returns the vertices of each part of g. Polygon rings and
// multi-part geometries give one part each; points give a single part.
func parts(g geom.Geom) [][]geom.Point {
	switch t := g.(type) {
	case geom.Point:
		return [][]geom.Point{{t}}
	case *geom.Point:
		return [][]geom.Point{{*t}}
	case geom.MultiPoint:
		return [][]geom.Point{t}
	case geom.LineString:
		return [][]geom.Point{t}
	case geom.MultiLineString:
		o := make([][]geom.Point, len(t))
		for i, l := range t {
			o[i] = l
		}
		return o
	case geom.Polygon:
		o := make([][]geom.Point, len(t))
		for i, r := range t {
			o[i] = r
		}
		return o
	case geom.MultiPolygon:
		var o [][]geom.Point
		for _, p := range t {
			for _, r := range p {
				o = append(o, r)
			}
		}
		return o
	}
	return nil
}

// Layer is a collection of features sharing a schema, a geometry type
// and a spatial reference.
type Layer struct {
	Name     string
	Type     ShapeType
	Fields   []Field
	Features []*Feature

	// SR is the spatial reference of the features and Proj is its text
	// form, either WKT or a PROJ.4 string. Both may be empty.
	SR   *proj.SR
	Proj string
}

// HasField reports whether the layer schema has the named field.
func (l *Layer) HasField(name string) bool {
	for _, f := range l.Fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// AddField adds a field to the schema if it is not already present.
func (l *Layer) AddField(f Field) {
	if !l.HasField(f.Name) {
		l.Fields = append(l.Fields, f)
	}
}

// copyFields returns the schema of l without the excluded fields.
// Layers read from GeoJSON carry no declared schema, so it is inferred
// from their records.
func (l *Layer) copyFields() []Field {
	var o []Field
	for _, f := range l.schema() {
		if !excludedFields[strings.ToLower(f.Name)] {
			o = append(o, f)
		}
	}
	return o
}

// schema returns the declared fields of l, or the fields inferred from
// its features when none are declared. l is not modified.
func (l *Layer) schema() []Field {
	if len(l.Fields) > 0 {
		return l.Fields
	}
	return inferFields(l.Features)
}

// inferFields returns a schema covering every attribute in the layer's
// features, sorted by name.
func inferFields(features []*Feature) []Field {
	types := make(map[string]FieldType)
	for _, f := range features {
		for k, v := range f.Record {
			if excludedFields[strings.ToLower(k)] {
				continue
			}
			var t FieldType
			switch v.(type) {
			case float64, float32:
				t = FloatField
			case int, int64, int32:
				t = IntField
			default:
				t = StringField
			}
			if old, ok := types[k]; ok && old != t {
				t = StringField
			}
			types[k] = t
		}
	}
	o := make([]Field, 0, len(types))
	for k, t := range types {
		f := Field{Name: k, Type: t}
		switch t {
		case FloatField:
			f.Size, f.Precision = 24, 8
		case IntField:
			f.Size = 12
		default:
			f.Size = 254
		}
		o = append(o, f)
	}
	sort.Slice(o, func(i, j int) bool { return o[i].Name < o[j].Name })
	return o
}

// Table is a collection of records without geometry.
type Table struct {
	Fields []string
	Rows   []Record
}

// Select returns the features of l for which the boolean expression
// where evaluates to true. Field names in where refer to feature
// attributes. An empty expression selects every feature.
func Select(l *Layer, where string) (*Layer, error) {
	o := *l
	if strings.TrimSpace(where) == "" {
		return &o, nil
	}
	expr, err := govaluate.NewEvaluableExpression(where)
	if err != nil {
		return nil, fmt.Errorf("xsection: parsing selection %q: %w", where, err)
	}
	o.Features = nil
	for i, f := range l.Features {
		params := make(map[string]interface{}, len(expr.Vars()))
		for _, v := range expr.Vars() {
			val, ok := f.Record.Get(v)
			if !ok {
				return nil, fmt.Errorf("xsection: selection %q: feature %d has no field %s", where, i, v)
			}
			switch val.(type) {
			case int, int32, int64, float32:
				val = cast.ToFloat64(val)
			}
			params[v] = val
		}
		r, err := expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("xsection: evaluating selection %q on feature %d: %w", where, i, err)
		}
		keep, ok := r.(bool)
		if !ok {
			return nil, fmt.Errorf("xsection: selection %q is not a boolean expression", where)
		}
		if keep {
			o.Features = append(o.Features, f)
		}
	}
	return &o, nil
}

// SelectOne returns the single feature of l matching where. It returns
// an error wrapping ErrInvalidGeometry if the number of matching
// features is not exactly one.
func SelectOne(l *Layer, where string) (*Feature, error) {
	s, err := Select(l, where)
	if err != nil {
		return nil, err
	}
	if len(s.Features) != 1 {
		return nil, fmt.Errorf("%w: selection %q in layer %s matched %d features; want 1",
			ErrInvalidGeometry, where, l.Name, len(s.Features))
	}
	return s.Features[0], nil
}
