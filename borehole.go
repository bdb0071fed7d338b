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

// Interval location flags.
const (
	NoError       = "NO ERROR"
	PartialMatch  = "PARTIAL MATCH"
	RouteNotFound = "ROUTE NOT FOUND"
)

// BoreholeOptions specify the borehole and interval attributes.
type BoreholeOptions struct {
	// IDField identifies boreholes.
	IDField string

	// CollarZField holds the collar elevation. If it is empty or
	// missing the elevation model is used.
	CollarZField string

	// DepthField holds the borehole depth.
	DepthField string

	// Intervals, if not nil, holds borehole intervals such as
	// lithologic units.
	Intervals *Table

	// IntervalIDField matches IDField, and TopField and BottomField
	// hold depths below the collar.
	IntervalIDField, TopField, BottomField string
}

// borehole is a borehole located along a section.
type borehole struct {
	id            string
	x, y          float64
	measure       float64
	offset        float64
	collar, depth float64
}

// collarAndDepth returns the collar elevation and depth of f, with NaN
// for values that are missing.
func collarAndDepth(f *Feature, p geom.Point, sampler func(geom.Point) float64, opts BoreholeOptions) (collar, depth float64) {
	collar = math.NaN()
	if opts.CollarZField != "" {
		if v, err := f.Record.Float(opts.CollarZField); err == nil {
			collar = v
		}
	}
	if math.IsNaN(collar) {
		collar = sampler(p)
	}
	depth = math.NaN()
	if opts.DepthField != "" {
		if v, err := f.Record.Float(opts.DepthField); err == nil {
			depth = v
		}
	}
	return collar, depth
}

// Boreholes draws stick logs for the boreholes in holes that are within
// the search distance of the section. If opts.Intervals is set the
// intervals of the located boreholes are drawn too, otherwise the
// returned interval layer is nil.
func (s *Section) Boreholes(holes *Layer, opts BoreholeOptions) (sticks, intervals *Layer, res Result, err error) {
	log := s.cfg.log().WithField("layer", holes.Name)
	if holes.Type != PointShape {
		return nil, nil, res, fmt.Errorf("%w: layer %s has %s features; want points",
			ErrInvalidGeometry, holes.Name, holes.Type)
	}
	holes, err = s.prepare(holes)
	if err != nil {
		return nil, nil, res, err
	}
	events, err := s.router.Locate(holes.Features, opts.IDField, s.Route, s.cfg.SearchDistance)
	if err != nil {
		return nil, nil, res, fmt.Errorf("xsection: locating %s: %w", holes.Name, err)
	}
	events = Nearest(events)

	sticks = &Layer{Name: holes.Name + "_xsec", Type: LineShape, Fields: holes.copyFields()}
	sticks.AddField(floatField("Distance"))
	sticks.AddField(floatField("DistanceFromSection"))
	located := make(map[string]borehole)
	for _, e := range events {
		if e.Err != nil {
			res.skip(log, e.Err)
			continue
		}
		if _, ok := located[e.FeatureID]; ok {
			log.WithField("feature", e.FeatureID).Warn("xsection: duplicate borehole")
			continue
		}
		f := holes.Features[e.Index]
		p := parts(f.Geom)[0][0]
		collar, depth := collarAndDepth(f, p, s.elevation, opts)
		stick, subErrs := BuildStickLog(e.Measure, collar, depth, s.cfg.VE)
		res.substituteStick(log, e.FeatureID, subErrs)
		located[e.FeatureID] = borehole{
			id: e.FeatureID, x: p.X, y: p.Y, measure: e.Measure, offset: e.Offset,
			collar: stick.Top.Y / s.cfg.VE, depth: (stick.Top.Y - stick.Bottom.Y) / s.cfg.VE,
		}
		rec := f.Record.Copy()
		rec["Distance"] = e.Measure
		rec["DistanceFromSection"] = e.Offset
		sticks.Features = append(sticks.Features, &Feature{Geom: stick.LineString(), Record: rec})
	}
	res.Written = len(sticks.Features)
	log.WithField("written", res.Written).Info("xsection: drew borehole stick logs")

	if opts.Intervals == nil {
		return sticks, nil, res, nil
	}
	intervals, ires := s.intervals(located, opts)
	res.Add(ires)
	return sticks, intervals, res, nil
}

// locateInterval clamps the interval from top to bottom to a borehole of
// the given depth and returns the location flag.
func locateInterval(top, bottom, depth float64) (float64, float64, string) {
	if top > bottom {
		top, bottom = bottom, top
	}
	if top >= depth || bottom <= 0 {
		return top, bottom, RouteNotFound
	}
	flag := NoError
	if top < 0 {
		top, flag = 0, PartialMatch
	}
	if bottom > depth {
		bottom, flag = depth, PartialMatch
	}
	return top, bottom, flag
}

// intervalDepths returns the top and bottom depth of row.
func intervalDepths(row Record, id string, opts BoreholeOptions) (top, bottom float64, err error) {
	top, err = row.Float(opts.TopField)
	if err != nil {
		return 0, 0, recordErr(id, opts.TopField, ErrMissingAttribute, err)
	}
	bottom, err = row.Float(opts.BottomField)
	if err != nil {
		return 0, 0, recordErr(id, opts.BottomField, ErrMissingAttribute, err)
	}
	return top, bottom, nil
}

func (s *Section) intervals(located map[string]borehole, opts BoreholeOptions) (*Layer, Result) {
	var res Result
	log := s.cfg.log().WithField("layer", "intervals")
	out := &Layer{Name: "intervals_xsec", Type: LineShape}
	for _, name := range opts.Intervals.Fields {
		out.AddField(Field{Name: name, Type: StringField, Size: 254})
	}
	out.AddField(Field{Name: "LOC_ERROR", Type: StringField, Size: 20})
	out.AddField(floatField("Distance"))
	out.AddField(floatField("Dis2XSec"))
	for i, row := range opts.Intervals.Rows {
		id := row.Text(opts.IntervalIDField)
		b, ok := located[id]
		if !ok {
			res.skip(log, recordErr(id, opts.IntervalIDField, ErrInvalidGeometry,
				fmt.Errorf("interval %d: %s", i, RouteNotFound)))
			continue
		}
		top, bottom, err := intervalDepths(row, id, opts)
		if err != nil {
			res.skip(log, err)
			continue
		}
		top, bottom, flag := locateInterval(top, bottom, b.depth)
		if flag == RouteNotFound {
			res.skip(log, recordErr(id, opts.TopField, ErrInvalidGeometry,
				fmt.Errorf("interval %d from %g to %g is outside of borehole depth %g: %s",
					i, top, bottom, b.depth, RouteNotFound)))
			continue
		}
		rec := row.Copy()
		rec["LOC_ERROR"] = flag
		rec["Distance"] = b.measure
		rec["Dis2XSec"] = b.offset
		l := geom.LineString{
			{X: b.measure, Y: (b.collar - top) * s.cfg.VE},
			{X: b.measure, Y: (b.collar - bottom) * s.cfg.VE},
		}
		out.Features = append(out.Features, &Feature{Geom: l, Record: rec})
	}
	res.Written = len(out.Features)
	log.WithField("written", res.Written).Info("xsection: drew borehole intervals")
	return out, res
}

// Boreholes3D returns vertical borehole lines in map view with
// elevations as Z values, and the same for intervals if opts.Intervals
// is set. The bottom of each line is offset 0.01 map units to the south
// so that lines have non-zero length in two dimensions.
func Boreholes3D(cfg *Config, holes *Layer, sampler ElevationSampler, opts BoreholeOptions) (sticks, intervals *Layer, res Result, err error) {
	log := cfg.log().WithField("layer", holes.Name)
	if holes.Type != PointShape {
		return nil, nil, res, fmt.Errorf("%w: layer %s has %s features; want points",
			ErrInvalidGeometry, holes.Name, holes.Type)
	}
	elevation := func(p geom.Point) float64 {
		if sampler == nil {
			return math.NaN()
		}
		z, err := sampler.SampleZ(p.X, p.Y)
		if err != nil {
			return math.NaN()
		}
		return z
	}
	line := func(p geom.Point, ztop, zbottom float64) (geom.LineString, [][]float64) {
		return geom.LineString{p, {X: p.X, Y: p.Y - 0.01}}, [][]float64{{ztop, zbottom}}
	}
	sticks = &Layer{Name: holes.Name + "_3d", Type: LineShape, Fields: holes.copyFields(),
		SR: holes.SR, Proj: holes.Proj}
	located := make(map[string]borehole)
	for i, f := range holes.Features {
		id := f.ID(opts.IDField, i)
		pp := parts(f.Geom)
		if len(pp) != 1 || len(pp[0]) != 1 {
			res.skip(log, recordErr(id, "", ErrInvalidGeometry, fmt.Errorf("%T is not a point", f.Geom)))
			continue
		}
		if _, ok := located[id]; ok {
			log.WithField("feature", id).Warn("xsection: duplicate borehole")
			continue
		}
		p := pp[0][0]
		collar, depth := collarAndDepth(f, p, elevation, opts)
		stick, subErrs := BuildStickLog(0, collar, depth, 1)
		res.substituteStick(log, id, subErrs)
		b := borehole{id: id, x: p.X, y: p.Y, collar: stick.Top.Y, depth: stick.Top.Y - stick.Bottom.Y}
		located[id] = b
		l, z := line(p, stick.Top.Y, stick.Bottom.Y)
		sticks.Features = append(sticks.Features, &Feature{Geom: l, Z: z, Record: f.Record.Copy()})
	}
	res.Written = len(sticks.Features)
	if opts.Intervals == nil {
		return sticks, nil, res, nil
	}

	intervals = &Layer{Name: "intervals_3d", Type: LineShape, SR: holes.SR, Proj: holes.Proj}
	for _, name := range opts.Intervals.Fields {
		intervals.AddField(Field{Name: name, Type: StringField, Size: 254})
	}
	intervals.AddField(Field{Name: "LOC_ERROR", Type: StringField, Size: 20})
	for i, row := range opts.Intervals.Rows {
		id := row.Text(opts.IntervalIDField)
		b, ok := located[id]
		if !ok {
			res.skip(log, recordErr(id, opts.IntervalIDField, ErrInvalidGeometry,
				fmt.Errorf("interval %d: no borehole", i)))
			continue
		}
		top, bottom, err := intervalDepths(row, id, opts)
		if err != nil {
			res.skip(log, err)
			continue
		}
		top, bottom, flag := locateInterval(top, bottom, b.depth)
		if flag == RouteNotFound {
			res.skip(log, recordErr(id, opts.TopField, ErrInvalidGeometry,
				fmt.Errorf("interval %d is outside of the borehole", i)))
			continue
		}
		rec := row.Copy()
		rec["LOC_ERROR"] = flag
		l, z := line(geom.Point{X: b.x, Y: b.y}, b.collar-top, b.collar-bottom)
		intervals.Features = append(intervals.Features, &Feature{Geom: l, Z: z, Record: rec})
		res.Written++
	}
	return sticks, intervals, res, nil
}
