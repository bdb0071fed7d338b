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
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ctessum/geom/proj"
	"github.com/ctessum/unit"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/xsection"
	"github.com/spatialmodel/xsection/dem"
)

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`xsectionutil: you need to specify an output file configuration variable (for example: OutputFile="output.shp")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("xsectionutil: the OutputFile directory doesn't exist: %w", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// lengthUnits are the linear units accepted in distances, in meters.
var lengthUnits = map[string]float64{
	"m":          1,
	"meter":      1,
	"meters":     1,
	"metre":      1,
	"metres":     1,
	"km":         1000,
	"kilometer":  1000,
	"kilometers": 1000,
	"ft":         0.3048,
	"foot":       0.3048,
	"feet":       0.3048,
	"usfeet":     1200. / 3937.,
	"yd":         0.9144,
	"yard":       0.9144,
	"yards":      0.9144,
	"mi":         1609.344,
	"mile":       1609.344,
	"miles":      1609.344,
}

// distance is a length read from the configuration. A bare number is
// already in map units and has no unit.
type distance struct {
	mapUnits float64
	length   *unit.Unit
}

// parseDistance parses a distance such as "100 meters" or "2 km". A
// number without units is in map units.
func parseDistance(s string) (distance, error) {
	fields := strings.Fields(os.ExpandEnv(s))
	if len(fields) == 0 || len(fields) > 2 {
		return distance{}, fmt.Errorf("xsectionutil: invalid distance %q", s)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return distance{}, fmt.Errorf("xsectionutil: invalid distance %q: %w", s, err)
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return distance{}, fmt.Errorf("xsectionutil: distance %q must be a non-negative number", s)
	}
	if len(fields) == 1 {
		return distance{mapUnits: v}, nil
	}
	factor, ok := lengthUnits[strings.ToLower(fields[1])]
	if !ok {
		return distance{}, fmt.Errorf("xsectionutil: unknown length unit %q in distance %q", fields[1], s)
	}
	return distance{length: unit.New(v*factor, unit.Meter)}, nil
}

// inMapUnits returns d in the linear units of sr. Map units are taken to
// be meters when sr is nil.
func (d distance) inMapUnits(sr *proj.SR) (float64, error) {
	if d.length == nil {
		return d.mapUnits, nil
	}
	toMeter := 1.
	if sr != nil {
		toMeter = sr.ToMeter
	}
	if toMeter <= 0 || math.IsNaN(toMeter) || math.IsInf(toMeter, 0) {
		return math.NaN(), fmt.Errorf("xsectionutil: spatial reference has invalid unit size %g", toMeter)
	}
	v := unit.Div(d.length, unit.New(toMeter, unit.Meter))
	if err := v.Check(unit.Dimless); err != nil {
		return math.NaN(), fmt.Errorf("xsectionutil: converting distance to map units: %w", err)
	}
	return v.Value(), nil
}

// newLogger returns a logger writing to standard error and to the file
// logFile.
func newLogger(logFile string) (*logrus.Logger, io.Closer, error) {
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("xsectionutil: problem creating log file: %w", err)
	}
	log := logrus.New()
	log.Out = io.MultiWriter(os.Stderr, f)
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	return log, f, nil
}

// output writes result layers to a new file or appends them to an
// existing one.
type output struct {
	file      string
	appendTo  bool
	overwrite bool

	// multi is true when several input layers are written, in which case
	// each gets its own file named after the layer.
	multi bool
}

func newOutput(cfg *viper.Viper, nLayers int) (*output, error) {
	if a := os.ExpandEnv(cfg.GetString("AppendFile")); a != "" {
		if _, err := os.Stat(a); err != nil {
			return nil, fmt.Errorf("xsectionutil: AppendFile: %w", err)
		}
		return &output{file: a, appendTo: true}, nil
	}
	f, err := checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return nil, err
	}
	return &output{file: f, overwrite: cfg.GetBool("Overwrite"), multi: nLayers > 1}, nil
}

// path returns the file the layer called name is written to.
func (o *output) path(name string) string {
	if o.appendTo || !o.multi || name == "" {
		return o.file
	}
	ext := filepath.Ext(o.file)
	return strings.TrimSuffix(o.file, ext) + "_" + name + ext
}

func (o *output) write(l *xsection.Layer, name string) (string, error) {
	p := o.path(name)
	if !o.appendTo && !o.overwrite {
		if _, err := os.Stat(p); err == nil {
			return p, fmt.Errorf("xsectionutil: output file %s already exists; set Overwrite to replace it", p)
		}
	}
	if err := xsection.WriteLayer(p, l, o.appendTo); err != nil {
		return p, err
	}
	return p, nil
}

var (
	demCache     *dem.Cache
	demCacheOnce sync.Once
)

// session holds the settings and resources of a single command run.
type session struct {
	ctx     context.Context
	v       *viper.Viper
	cfg     *xsection.Config
	log     *logrus.Logger
	logFile io.Closer
	out     *output
	grid    *dem.Grid

	searchDistance distance
}

// newSession validates the settings in v that are shared by all
// commands. nLayers is the number of layers that will be written.
func newSession(ctx context.Context, v *viper.Viper, nLayers int) (*session, error) {
	out, err := newOutput(v, nLayers)
	if err != nil {
		return nil, err
	}
	log, logFile, err := newLogger(checkLogFile(v.GetString("LogFile"), out.file))
	if err != nil {
		return nil, err
	}
	s := &session{ctx: ctx, v: v, log: log, logFile: logFile, out: out}

	corner, err := xsection.ParseCorner(os.ExpandEnv(v.GetString("StartCorner")))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.searchDistance, err = parseDistance(v.GetString("SearchDistance"))
	if err != nil {
		s.Close()
		return nil, err
	}
	searchDistance, err := s.searchDistance.inMapUnits(nil)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.cfg = &xsection.Config{
		VE:             v.GetFloat64("VerticalExaggeration"),
		HE:             v.GetFloat64("HorizontalExaggeration"),
		SearchDistance: searchDistance,
		MeasureSource: xsection.MeasureSource{
			Corner: corner,
			Field:  os.ExpandEnv(v.GetString("MeasureField")),
		},
		Where: os.ExpandEnv(v.GetString("SectionWhere")),
		Log:   log,
	}
	if err := s.cfg.Validate(); err != nil {
		s.Close()
		return nil, err
	}

	if f := os.ExpandEnv(v.GetString("DEM")); f != "" {
		demCacheOnce.Do(func() { demCache = dem.NewCache(v.GetInt("CacheSize")) })
		log.WithField("file", f).Info("loading elevation model")
		s.grid, err = demCache.Open(ctx, f, os.ExpandEnv(v.GetString("DEMVariable")))
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close closes the log file.
func (s *session) Close() error {
	return s.logFile.Close()
}

// sampler returns the elevation model, or nil if there is none.
func (s *session) sampler() xsection.ElevationSampler {
	if s.grid == nil {
		return nil
	}
	return s.grid
}

// checkSR warns if the elevation model and sr are known to differ.
func (s *session) checkSR(name string, sr *proj.SR) {
	if s.grid == nil || s.grid.SR == nil || sr == nil {
		return
	}
	if !s.grid.SR.Equal(sr, 4) {
		s.log.WithField("layer", name).Warn("elevation model and layer spatial references differ")
	}
}

// configFor returns the configuration for a section drawn in sr, with
// the search distance in the units of sr.
func (s *session) configFor(name string, sr *proj.SR) (*xsection.Config, error) {
	d, err := s.searchDistance.inMapUnits(sr)
	if err != nil {
		return nil, fmt.Errorf("xsectionutil: layer %s: %w", name, err)
	}
	if sr == nil && s.searchDistance.length != nil {
		s.log.WithField("layer", name).Warn("layer has no spatial reference; taking map units to be meters")
	}
	cfg := *s.cfg
	cfg.SearchDistance = d
	return &cfg, nil
}

// section reads the cross-section line and builds its section.
func (s *session) section() (*xsection.Section, error) {
	f := os.ExpandEnv(s.v.GetString("SectionLine"))
	if f == "" {
		return nil, fmt.Errorf("xsectionutil: the SectionLine configuration variable is not set")
	}
	lines, err := xsection.ReadLayer(f)
	if err != nil {
		return nil, err
	}
	s.checkSR(lines.Name, lines.SR)
	cfg, err := s.configFor(lines.Name, lines.SR)
	if err != nil {
		return nil, err
	}
	sec, err := xsection.SectionFromLayer(cfg, lines, s.sampler(), xsection.LinearRouter{})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"section":        sec.Name,
		"length":         sec.Route.Length(),
		"searchDistance": cfg.SearchDistance,
	}).Info("built cross section")
	return sec, nil
}

// layers reads the input layers.
func layers(v *viper.Viper) ([]*xsection.Layer, error) {
	files := expandStringSlice(v.GetStringSlice("Layers"))
	if len(files) == 0 {
		return nil, fmt.Errorf("xsectionutil: the Layers configuration variable is not set")
	}
	o := make([]*xsection.Layer, len(files))
	for i, f := range files {
		l, err := xsection.ReadLayer(f)
		if err != nil {
			return nil, err
		}
		o[i] = l
	}
	return o, nil
}

// finish writes l to the output and logs the summary of res.
func (s *session) finish(l *xsection.Layer, name string, res xsection.Result) error {
	return s.writeTo(s.out, l, name, res)
}

func (s *session) writeTo(o *output, l *xsection.Layer, name string, res xsection.Result) error {
	p, err := o.write(l, name)
	if err != nil {
		s.log.WithError(err).Error("writing output")
		return err
	}
	s.log.WithFields(logrus.Fields{
		"file":        p,
		"written":     res.Written,
		"skipped":     len(res.Skipped),
		"substituted": len(res.Substituted),
	}).Info("wrote output")
	return nil
}
