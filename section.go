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
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
)

// Section is a cross-section line draped on the ground surface, measured,
// and indexed.
type Section struct {
	// Name identifies the section.
	Name string

	// Line is the map-view feature the section was built from.
	Line *Feature

	// Route is the measured, draped cross-section line.
	Route *MeasuredPolyline

	// Index converts measures along Route to map-view positions.
	Index *VertexIndex

	// Bearing is the azimuth from the start to the end of the route.
	Bearing float64

	// SR is the spatial reference of the map view and Proj is its
	// text form.
	SR   *proj.SR
	Proj string

	cfg     *Config
	sampler ElevationSampler
	router  Router
}

// NewSection builds a section from line. If sampler is nil the line's
// own Z values are used, or zero if it has none. If router is nil a
// LinearRouter is used.
func NewSection(cfg *Config, line *Feature, sampler ElevationSampler, router Router) (*Section, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if router == nil {
		router = LinearRouter{}
	}
	pp := parts(line.Geom)
	if len(pp) != 1 {
		return nil, fmt.Errorf("%w: cross-section line must have exactly one part but it has %d",
			ErrInvalidGeometry, len(pp))
	}
	l := geom.LineString(pp[0])

	var z []float64
	switch {
	case sampler != nil:
		zz, err := SampleGeometry(sampler, l)
		if err != nil {
			return nil, fmt.Errorf("xsection: draping cross-section line: %w", err)
		}
		z = zz[0]
	case len(line.Z) == 1:
		z = line.Z[0]
	default:
		z = make([]float64, len(l))
	}

	src := cfg.MeasureSource
	if src.Field != "" {
		length, err := line.Record.Float(src.Field)
		if err != nil {
			return nil, fmt.Errorf("xsection: cross-section line measure: %w", err)
		}
		src.Length = length
	}
	route, err := router.BuildRoute(l, z, src)
	if err != nil {
		return nil, fmt.Errorf("xsection: building route: %w", err)
	}
	idx, err := NewVertexIndex(route.Vertices)
	if err != nil {
		return nil, err
	}
	if idx.Duplicates > 0 {
		cfg.log().WithField("duplicates", idx.Duplicates).Warn("xsection: section vertices with repeated measures; keeping the first")
	}
	first, last := route.Vertices[0], route.Vertices[len(route.Vertices)-1]
	bearing, err := BearingBetween(geom.Point{X: first.X, Y: first.Y}, geom.Point{X: last.X, Y: last.Y})
	if err != nil {
		return nil, err
	}
	s := &Section{
		Line:    line,
		Route:   route,
		Index:   idx,
		Bearing: bearing,
		cfg:     cfg,
		sampler: sampler,
		router:  router,
	}
	cfg.log().WithFields(logrus.Fields{
		"vertices": len(route.Vertices),
		"length":   route.Length(),
		"bearing":  bearing,
	}).Info("xsection: built cross-section route")
	return s, nil
}

// SectionFromLayer builds a section from the single feature in lines
// selected by cfg.Where.
func SectionFromLayer(cfg *Config, lines *Layer, sampler ElevationSampler, router Router) (*Section, error) {
	if lines.Type != LineShape {
		return nil, fmt.Errorf("%w: cross-section layer %s has %s features",
			ErrInvalidGeometry, lines.Name, lines.Type)
	}
	f, err := SelectOne(lines, cfg.Where)
	if err != nil {
		return nil, err
	}
	s, err := NewSection(cfg, f, sampler, router)
	if err != nil {
		return nil, err
	}
	s.Name = lines.Name
	s.SR, s.Proj = lines.SR, lines.Proj
	s.Route.SR = lines.SR
	return s, nil
}

// prepare reprojects l into the section's spatial reference.
func (s *Section) prepare(l *Layer) (*Layer, error) {
	return Reproject(l, s.SR, s.Proj)
}

// elevation returns the ground elevation at p, or NaN if there is no
// elevation model or p is outside of it.
func (s *Section) elevation(p geom.Point) float64 {
	if s.sampler == nil {
		return math.NaN()
	}
	z, err := s.sampler.SampleZ(p.X, p.Y)
	if err != nil {
		return math.NaN()
	}
	return z
}

// Reproject returns a copy of l in the spatial reference sr, whose text
// form is projText. l is returned unchanged if either spatial reference
// is unknown or they are the same.
func Reproject(l *Layer, sr *proj.SR, projText string) (*Layer, error) {
	if l.SR == nil || sr == nil || l.SR.Equal(sr, 0) {
		return l, nil
	}
	t, err := l.SR.NewTransform(sr)
	if err != nil {
		return nil, fmt.Errorf("xsection: reprojecting %s: %w", l.Name, err)
	}
	o := *l
	o.SR, o.Proj = sr, projText
	o.Features = make([]*Feature, len(l.Features))
	for i, f := range l.Features {
		g, err := f.Geom.Transform(t)
		if err != nil {
			return nil, fmt.Errorf("xsection: reprojecting %s feature %d: %w", l.Name, i, err)
		}
		if ml, ok := g.(geom.MultiLineString); ok && len(ml) == 1 {
			g = ml[0]
		}
		o.Features[i] = &Feature{Geom: g, Z: f.Z, M: f.M, Record: f.Record}
	}
	return &o, nil
}
