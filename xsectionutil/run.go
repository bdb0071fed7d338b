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

package xsectionutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/xsection"
)

// Points places the point layers named by the Layers configuration
// variable in the cross section along SectionLine. If structural is true
// the StrikeField and DipField variables must name the structural
// measurements of the points.
func Points(ctx context.Context, cfg *viper.Viper, structural bool) error {
	in, err := layers(cfg)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg, len(in))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := xsection.PointOptions{
		IDField: os.ExpandEnv(cfg.GetString("IDField")),
		ZField:  os.ExpandEnv(cfg.GetString("ZField")),
		Snap:    cfg.GetBool("Snap"),
	}
	if structural {
		opts.StrikeField = os.ExpandEnv(cfg.GetString("StrikeField"))
		opts.DipField = os.ExpandEnv(cfg.GetString("DipField"))
		opts.Lineation = cfg.GetBool("Lineation")
		if opts.StrikeField == "" || opts.DipField == "" {
			return fmt.Errorf("xsectionutil: structural points need the StrikeField and DipField configuration variables")
		}
	}

	sec, err := s.section()
	if err != nil {
		return err
	}
	for _, l := range in {
		out, res, err := sec.Points(l, opts)
		if err != nil {
			return err
		}
		if err := s.finish(out, l.Name, res); err != nil {
			return err
		}
	}
	return nil
}

// Boreholes draws the borehole layers named by Layers as stick logs in
// the cross section along SectionLine, or as 3D lines if the ThreeD
// variable is true. Intervals from IntervalsTable are written to
// IntervalsOutputFile.
func Boreholes(ctx context.Context, cfg *viper.Viper) error {
	in, err := layers(cfg)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg, len(in))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := xsection.BoreholeOptions{
		IDField:         os.ExpandEnv(cfg.GetString("BoreholeIDField")),
		CollarZField:    os.ExpandEnv(cfg.GetString("CollarZField")),
		DepthField:      os.ExpandEnv(cfg.GetString("DepthField")),
		IntervalIDField: os.ExpandEnv(cfg.GetString("IntervalIDField")),
		TopField:        os.ExpandEnv(cfg.GetString("IntervalTopField")),
		BottomField:     os.ExpandEnv(cfg.GetString("IntervalBottomField")),
	}
	if t := os.ExpandEnv(cfg.GetString("IntervalsTable")); t != "" {
		if opts.Intervals, err = xsection.ReadTable(t); err != nil {
			return err
		}
		if opts.IntervalIDField == "" {
			opts.IntervalIDField = opts.IDField
		}
	}
	threeD := cfg.GetBool("ThreeD")

	var sec *xsection.Section
	if !threeD {
		if sec, err = s.section(); err != nil {
			return err
		}
	}
	for _, l := range in {
		var (
			sticks, intervals *xsection.Layer
			res               xsection.Result
		)
		if threeD {
			sticks, intervals, res, err = xsection.Boreholes3D(s.cfg, l, s.sampler(), opts)
		} else {
			sticks, intervals, res, err = sec.Boreholes(l, opts)
		}
		if err != nil {
			return err
		}
		if err := s.finish(sticks, l.Name, res); err != nil {
			return err
		}
		if intervals == nil {
			continue
		}
		p := os.ExpandEnv(cfg.GetString("IntervalsOutputFile"))
		if p == "" || len(in) > 1 {
			base := s.out.path(l.Name)
			ext := filepath.Ext(base)
			p = strings.TrimSuffix(base, ext) + "_intervals" + ext
		}
		o := &output{file: p, overwrite: s.out.overwrite}
		if err := s.writeTo(o, intervals, "", xsection.Result{Written: len(intervals.Features)}); err != nil {
			return err
		}
	}
	return nil
}

// Intersect places the crossings of the line layers named by Layers with
// the section line in the cross section, as points or as vertical lines
// depending on the IntersectAs variable.
func Intersect(ctx context.Context, cfg *viper.Viper) error {
	in, err := layers(cfg)
	if err != nil {
		return err
	}
	var asLines bool
	switch strings.ToLower(cfg.GetString("IntersectAs")) {
	case "", "points", "point":
	case "lines", "line":
		asLines = true
	default:
		return fmt.Errorf("xsectionutil: IntersectAs must be points or lines, not %q", cfg.GetString("IntersectAs"))
	}
	s, err := newSession(ctx, cfg, len(in))
	if err != nil {
		return err
	}
	defer s.Close()

	sec, err := s.section()
	if err != nil {
		return err
	}
	for _, l := range in {
		out, res, err := sec.Intersections(l, os.ExpandEnv(cfg.GetString("IDField")), asLines)
		if err != nil {
			return err
		}
		if err := s.finish(out, l.Name, res); err != nil {
			return err
		}
	}
	return nil
}

// Profile creates topographic profiles of the line layers named by
// Layers. If WRTLine is set the profiles are aligned on their crossings
// with the line it selects with WRTWhere.
func Profile(ctx context.Context, cfg *viper.Viper) error {
	in, err := layers(cfg)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg, len(in))
	if err != nil {
		return err
	}
	defer s.Close()

	var wrt *xsection.Feature
	if f := os.ExpandEnv(cfg.GetString("WRTLine")); f != "" {
		l, err := xsection.ReadLayer(f)
		if err != nil {
			return err
		}
		if wrt, err = xsection.SelectOne(l, os.ExpandEnv(cfg.GetString("WRTWhere"))); err != nil {
			return err
		}
	}
	for _, l := range in {
		s.checkSR(l.Name, l.SR)
		out, res, err := xsection.SurfaceProfile(s.cfg, l, s.sampler(), xsection.LinearRouter{},
			os.ExpandEnv(cfg.GetString("IDField")), wrt)
		if err != nil {
			return err
		}
		if err := s.finish(out, l.Name, res); err != nil {
			return err
		}
	}
	return nil
}

// Segments cuts the topographic profile of the section line by the
// polygon layers named by Layers.
func Segments(ctx context.Context, cfg *viper.Viper) error {
	in, err := layers(cfg)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg, len(in))
	if err != nil {
		return err
	}
	defer s.Close()

	sec, err := s.section()
	if err != nil {
		return err
	}
	for _, l := range in {
		out, res, err := sec.SegmentedProfile(l, os.ExpandEnv(cfg.GetString("IDField")))
		if err != nil {
			return err
		}
		if err := s.finish(out, l.Name, res); err != nil {
			return err
		}
	}
	return nil
}

// To3D converts the cross-section view layers named by Layers to map view
// with elevations. If GenerateFile is set the result is also written there
// in the XYZ generate format.
func To3D(ctx context.Context, cfg *viper.Viper) error {
	in, err := layers(cfg)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg, len(in))
	if err != nil {
		return err
	}
	defer s.Close()

	sec, err := s.section()
	if err != nil {
		return err
	}
	idField := os.ExpandEnv(cfg.GetString("IDField"))
	for _, l := range in {
		out, res, err := sec.To3D(l, idField)
		if err != nil {
			return err
		}
		if err := s.finish(out, l.Name, res); err != nil {
			return err
		}
		if g := os.ExpandEnv(cfg.GetString("GenerateFile")); g != "" {
			if err := writeGenerate(g, out, idField); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeGenerate(filename string, l *xsection.Layer, idField string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("xsectionutil: creating generate file: %w", err)
	}
	if err := xsection.WriteGenerate(f, l, idField); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Fence converts the fence diagram layers named by Layers to map view.
// The KeyField of each feature names its cross-section line, one of the
// lines in SectionLine named by SectionNameField.
func Fence(ctx context.Context, cfg *viper.Viper) error {
	in, err := layers(cfg)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg, len(in))
	if err != nil {
		return err
	}
	defer s.Close()

	f := os.ExpandEnv(cfg.GetString("SectionLine"))
	if f == "" {
		return fmt.Errorf("xsectionutil: the SectionLine configuration variable is not set")
	}
	lines, err := xsection.ReadLayer(f)
	if err != nil {
		return err
	}
	s.checkSR(lines.Name, lines.SR)
	fenceCfg, err := s.configFor(lines.Name, lines.SR)
	if err != nil {
		return err
	}
	fence := xsection.NewFence(fenceCfg, lines, os.ExpandEnv(cfg.GetString("SectionNameField")),
		s.sampler(), xsection.LinearRouter{}, cfg.GetInt("CacheSize"))
	for _, l := range in {
		out, res, err := fence.To3D(l, os.ExpandEnv(cfg.GetString("KeyField")),
			os.ExpandEnv(cfg.GetString("IDField")))
		if err != nil {
			return err
		}
		if err := s.finish(out, l.Name, res); err != nil {
			return err
		}
	}
	return nil
}

// Rescale multiplies the X coordinates of the layers named by Layers by
// HorizontalExaggeration and their Y coordinates by VerticalExaggeration.
func Rescale(ctx context.Context, cfg *viper.Viper) error {
	in, err := layers(cfg)
	if err != nil {
		return err
	}
	s, err := newSession(ctx, cfg, len(in))
	if err != nil {
		return err
	}
	defer s.Close()

	for _, l := range in {
		out, err := xsection.RescaleLayer(l, s.cfg.HE, s.cfg.VE)
		if err != nil {
			return err
		}
		if err := s.finish(out, l.Name, xsection.Result{Written: len(out.Features)}); err != nil {
			return err
		}
	}
	return nil
}

// XYToShape creates point layers from the XField and YField columns of
// the tables named by Layers, which are in the InputSR spatial reference.
// The points are written in OutputSR, or InputSR if it is not set.
func XYToShape(ctx context.Context, cfg *viper.Viper) error {
	files := expandStringSlice(cfg.GetStringSlice("Layers"))
	if len(files) == 0 {
		return fmt.Errorf("xsectionutil: the Layers configuration variable is not set")
	}
	s, err := newSession(ctx, cfg, len(files))
	if err != nil {
		return err
	}
	defer s.Close()

	inProj := os.ExpandEnv(cfg.GetString("InputSR"))
	outProj := os.ExpandEnv(cfg.GetString("OutputSR"))
	if outProj == "" {
		outProj = inProj
	}
	from, err := proj.Parse(inProj)
	if err != nil {
		return fmt.Errorf("xsectionutil: parsing InputSR: %w", err)
	}
	to, err := proj.Parse(outProj)
	if err != nil {
		return fmt.Errorf("xsectionutil: parsing OutputSR: %w", err)
	}
	for _, f := range files {
		t, err := xsection.ReadTable(f)
		if err != nil {
			return err
		}
		out, res, err := xsection.XYToShape(s.cfg, t, os.ExpandEnv(cfg.GetString("XField")),
			os.ExpandEnv(cfg.GetString("YField")), from, to, outProj)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		out.Name = name
		if err := s.finish(out, name, res); err != nil {
			return err
		}
	}
	return nil
}
