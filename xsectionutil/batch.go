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
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
)

// Job is one command in a batch file, with the configuration variables
// that differ from the current configuration.
type Job struct {
	Command string
	Options map[string]interface{}
}

// runners are the commands that can be run in a batch.
var runners = map[string]func(context.Context, *viper.Viper) error{
	"points":    func(ctx context.Context, cfg *viper.Viper) error { return Points(ctx, cfg, false) },
	"structure": func(ctx context.Context, cfg *viper.Viper) error { return Points(ctx, cfg, true) },
	"boreholes": Boreholes,
	"intersect": Intersect,
	"profile":   Profile,
	"segments":  Segments,
	"to3d":      To3D,
	"fence":     Fence,
	"rescale":   Rescale,
	"xy2shape":  XYToShape,
}

// ReadJobs reads the jobs in a TOML batch file, which holds a list of
// tables such as:
//
//	[[Job]]
//	Command = "points"
//	[Job.Options]
//	Layers = ["wells.shp"]
//	OutputFile = "wells_xs.shp"
func ReadJobs(filename string) ([]Job, error) {
	var f struct {
		Job []Job
	}
	if _, err := toml.DecodeFile(os.ExpandEnv(filename), &f); err != nil {
		return nil, fmt.Errorf("xsectionutil: reading batch file: %w", err)
	}
	for i, j := range f.Job {
		if _, ok := runners[j.Command]; !ok {
			return nil, fmt.Errorf("xsectionutil: batch job %d: unknown command %q", i, j.Command)
		}
	}
	return f.Job, nil
}

// jobConfig returns a copy of the options in cfg with the job's options
// overriding them.
func jobConfig(cfg *viper.Viper, j Job) *viper.Viper {
	v := viper.New()
	for _, option := range options {
		v.Set(option.name, cfg.Get(option.name))
	}
	keys := make([]string, 0, len(j.Options))
	for k := range j.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.Set(k, j.Options[k])
	}
	return v
}

// Batch runs the jobs in the batch file filename in order, stopping at
// the first one that fails.
func Batch(ctx context.Context, cfg *viper.Viper, filename string) error {
	jobs, err := ReadJobs(filename)
	if err != nil {
		return err
	}
	for i, j := range jobs {
		if err := runners[j.Command](ctx, jobConfig(cfg, j)); err != nil {
			return fmt.Errorf("xsectionutil: batch job %d (%s): %w", i, j.Command, err)
		}
	}
	return nil
}
