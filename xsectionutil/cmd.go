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

	"github.com/lnashier/viper"
	"github.com/spatialmodel/xsection"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to xsection.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Layers",
			usage: `
              Layers specifies the input files (shapefiles or GeoJSON, or
              tables for xy2shape) to be processed.`,
			shorthand:  "l",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the output shapefile or
              GeoJSON file. When several layers are processed the layer
              name is added to the file name. It can contain environment
              variables.`,
			shorthand:  "o",
			defaultVal: "xsection_output.shp",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "AppendFile",
			usage: `
              AppendFile specifies an existing shapefile or GeoJSON file
              that the output should be appended to instead of being
              written to OutputFile. Only the fields that the existing
              file already has are kept.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the log file. If it is empty,
              the path of OutputFile with a .log extension is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Overwrite",
			usage: `
              Overwrite specifies whether existing output files may be
              replaced.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "IDField",
			usage: `
              IDField specifies the attribute that identifies input
              features in log messages and duplicate removal. Features
              are numbered if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "VerticalExaggeration",
			usage: `
              VerticalExaggeration specifies the vertical exaggeration of
              the cross section. It must be greater than zero.`,
			shorthand:  "v",
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "HorizontalExaggeration",
			usage: `
              HorizontalExaggeration specifies the factor that X
              coordinates are multiplied by when rescaling.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{rescaleCmd.Flags()},
		},
		{
			name: "SearchDistance",
			usage: `
              SearchDistance specifies the largest distance from the
              cross-section line at which features are included, for
              example "100 meters" or "500 ft". A number without units is
              in the units of the map.`,
			defaultVal: "100",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SectionLine",
			usage: `
              SectionLine specifies the file holding the cross-section
              line, or the cross-section lines of a fence diagram.`,
			shorthand:  "x",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SectionWhere",
			usage: `
              SectionWhere selects the cross-section line from the
              SectionLine file when it has more than one, for example
              "Name == 'A'".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "StartCorner",
			usage: `
              StartCorner specifies the corner of the cross-section
              line's extent where measures start: northwest, southwest,
              northeast, or southeast. If it is empty, measures start at
              the first vertex.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MeasureField",
			usage: `
              MeasureField specifies an attribute of the cross-section
              line holding its total measure. If it is empty, measures are
              distances along the line.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DEM",
			usage: `
              DEM specifies the elevation model, an ESRI ASCII grid
              (.asc) or a netCDF grid (.nc, .grd) in the spatial
              reference of the cross-section line.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DEMVariable",
			usage: `
              DEMVariable specifies the elevation variable in a netCDF
              elevation model.`,
			defaultVal: "z",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "CacheSize",
			usage: `
              CacheSize specifies the number of elevation models and fence
              diagram sections kept in memory.`,
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ZField",
			usage: `
              ZField specifies the attribute holding point elevations. If
              it is empty, elevations come from the elevation model.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), structureCmd.Flags()},
		},
		{
			name: "Snap",
			usage: `
              Snap specifies whether points are moved onto the
              cross-section line at the ground surface.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{pointsCmd.Flags(), structureCmd.Flags()},
		},
		{
			name: "StrikeField",
			usage: `
              StrikeField specifies the attribute holding strike
              (right-hand rule), or trend if Lineation is true.`,
			defaultVal: "Strike",
			flagsets:   []*pflag.FlagSet{structureCmd.Flags()},
		},
		{
			name: "DipField",
			usage: `
              DipField specifies the attribute holding dip, or plunge if
              Lineation is true.`,
			defaultVal: "Dip",
			flagsets:   []*pflag.FlagSet{structureCmd.Flags()},
		},
		{
			name: "Lineation",
			usage: `
              Lineation specifies whether the measurements are linear
              (trend and plunge) instead of planar.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{structureCmd.Flags()},
		},
		{
			name: "BoreholeIDField",
			usage: `
              BoreholeIDField specifies the attribute identifying
              boreholes.`,
			defaultVal: "HoleID",
			flagsets:   []*pflag.FlagSet{boreholesCmd.Flags()},
		},
		{
			name: "CollarZField",
			usage: `
              CollarZField specifies the attribute holding collar
              elevations. If it is empty, the elevation model is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{boreholesCmd.Flags()},
		},
		{
			name: "DepthField",
			usage: `
              DepthField specifies the attribute holding borehole depths.`,
			defaultVal: "Depth",
			flagsets:   []*pflag.FlagSet{boreholesCmd.Flags()},
		},
		{
			name: "ThreeD",
			usage: `
              ThreeD specifies whether boreholes are drawn as vertical 3D
              lines in map view instead of in a cross section.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{boreholesCmd.Flags()},
		},
		{
			name: "IntervalsTable",
			usage: `
              IntervalsTable specifies a table (.csv, .xlsx, or .shp) of
              borehole intervals.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{boreholesCmd.Flags()},
		},
		{
			name: "IntervalIDField",
			usage: `
              IntervalIDField specifies the column of IntervalsTable
              holding borehole identifiers. It defaults to
              BoreholeIDField.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{boreholesCmd.Flags()},
		},
		{
			name: "IntervalTopField",
			usage: `
              IntervalTopField specifies the column of IntervalsTable
              holding the depth of the top of each interval.`,
			defaultVal: "Top",
			flagsets:   []*pflag.FlagSet{boreholesCmd.Flags()},
		},
		{
			name: "IntervalBottomField",
			usage: `
              IntervalBottomField specifies the column of IntervalsTable
              holding the depth of the bottom of each interval.`,
			defaultVal: "Bottom",
			flagsets:   []*pflag.FlagSet{boreholesCmd.Flags()},
		},
		{
			name: "IntervalsOutputFile",
			usage: `
              IntervalsOutputFile specifies where intervals are written.
              If it is empty, "_intervals" is added to the name of the
              output file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{boreholesCmd.Flags()},
		},
		{
			name: "IntersectAs",
			usage: `
              IntersectAs specifies whether crossings are drawn as points
              or as vertical lines.`,
			defaultVal: "points",
			flagsets:   []*pflag.FlagSet{intersectCmd.Flags()},
		},
		{
			name: "WRTLine",
			usage: `
              WRTLine specifies a file holding a line that profiles are
              aligned on.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{profileCmd.Flags()},
		},
		{
			name: "WRTWhere",
			usage: `
              WRTWhere selects the line from WRTLine when it has more than
              one.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{profileCmd.Flags()},
		},
		{
			name: "GenerateFile",
			usage: `
              GenerateFile specifies an optional file where 3D features
              are also written in the XYZ generate format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{to3dCmd.Flags()},
		},
		{
			name: "SectionNameField",
			usage: `
              SectionNameField specifies the attribute naming each
              cross-section line of a fence diagram.`,
			defaultVal: "Name",
			flagsets:   []*pflag.FlagSet{fenceCmd.Flags()},
		},
		{
			name: "KeyField",
			usage: `
              KeyField specifies the attribute of fence diagram features
              naming the cross-section line they are drawn on.`,
			defaultVal: "XSecName",
			flagsets:   []*pflag.FlagSet{fenceCmd.Flags()},
		},
		{
			name: "XField",
			usage: `
              XField specifies the table column holding X coordinates or
              longitudes.`,
			defaultVal: "Longitude",
			flagsets:   []*pflag.FlagSet{xy2shapeCmd.Flags()},
		},
		{
			name: "YField",
			usage: `
              YField specifies the table column holding Y coordinates or
              latitudes.`,
			defaultVal: "Latitude",
			flagsets:   []*pflag.FlagSet{xy2shapeCmd.Flags()},
		},
		{
			name: "InputSR",
			usage: `
              InputSR specifies the spatial reference of the table
              coordinates as a PROJ.4 string or WKT.`,
			defaultVal: "+proj=longlat +datum=WGS84",
			flagsets:   []*pflag.FlagSet{xy2shapeCmd.Flags()},
		},
		{
			name: "OutputSR",
			usage: `
              OutputSR specifies the spatial reference of the output
              points. If it is empty, InputSR is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{xy2shapeCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("XSECTION")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(pointsCmd)
	Root.AddCommand(structureCmd)
	Root.AddCommand(boreholesCmd)
	Root.AddCommand(intersectCmd)
	Root.AddCommand(profileCmd)
	Root.AddCommand(segmentsCmd)
	Root.AddCommand(to3dCmd)
	Root.AddCommand(fenceCmd)
	Root.AddCommand(rescaleCmd)
	Root.AddCommand(xy2shapeCmd)
	Root.AddCommand(batchCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("xsection: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "xsection",
	Short: "Geologic cross-section construction tools.",
	Long: `xsection places geologic map data (points, structural measurements,
boreholes, contacts, and topography) in cross-section view along a
cross-section line, and converts cross-section drawings back to three
dimensions. Use the subcommands specified below to access the tools.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'XSECTION_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of xsection.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("xsection v%s\n", xsection.Version)
	},
	DisableAutoGenTag: true,
}

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Place points in a cross section.",
	Long: `points projects the point features of the input layers that are
within SearchDistance of the cross-section line onto the cross section.
Output points are at (distance along the line, elevation times the
vertical exaggeration).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Points(context.Background(), Cfg, false)
	},
	DisableAutoGenTag: true,
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Place structural measurements in a cross section.",
	Long: `structure places points with strike and dip (or trend and plunge)
measurements in a cross section and calculates the apparent dip of each
measurement in the plane of the section and the rotation of its symbol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Points(context.Background(), Cfg, true)
	},
	DisableAutoGenTag: true,
}

var boreholesCmd = &cobra.Command{
	Use:   "boreholes",
	Short: "Draw boreholes in a cross section.",
	Long: `boreholes draws the boreholes within SearchDistance of the
cross-section line as vertical stick logs from the collar down to the total
depth, with any intervals from IntervalsTable drawn along them. With
--ThreeD the boreholes and intervals are drawn as 3D lines in map view.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Boreholes(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

var intersectCmd = &cobra.Command{
	Use:   "intersect",
	Short: "Mark where lines cross the cross-section line.",
	Long: `intersect finds the points where the lines of the input layers,
such as contacts and faults, cross the cross-section line and places them in
the cross section at the ground surface.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Intersect(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Create topographic profiles.",
	Long: `profile drapes each line of the input layers on the elevation model
and draws it as a topographic profile in cross-section view.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Profile(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "Split a topographic profile by polygons.",
	Long: `segments cuts the topographic profile of the cross-section line
where it crosses the polygons of the input layers, such as map units, and
gives each piece the attributes of its polygon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Segments(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

var to3dCmd = &cobra.Command{
	Use:   "to3d",
	Short: "Convert a cross section to 3D.",
	Long: `to3d converts features drawn in cross-section view back to map view
with elevations, using the cross-section line they were drawn along.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return To3D(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

var fenceCmd = &cobra.Command{
	Use:   "fence",
	Short: "Convert a fence diagram to 3D.",
	Long: `fence converts features drawn on several cross sections to map view
with elevations. Each feature names its cross-section line in KeyField.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Fence(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

var rescaleCmd = &cobra.Command{
	Use:   "rescale",
	Short: "Rescale cross-section drawings.",
	Long: `rescale multiplies the X coordinates of the input layers by
HorizontalExaggeration and their Y coordinates by VerticalExaggeration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Rescale(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

var xy2shapeCmd = &cobra.Command{
	Use:   "xy2shape",
	Short: "Create points from table coordinates.",
	Long: `xy2shape creates point layers from the coordinate columns of the
input tables (.csv, .xlsx, or .shp) and adds the projected coordinates as
Easting and Northing fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return XYToShape(context.Background(), Cfg)
	},
	DisableAutoGenTag: true,
}

var batchCmd = &cobra.Command{
	Use:   "batch jobs.toml",
	Short: "Run a batch of commands.",
	Long: `batch runs the commands listed in a TOML batch file in order. Each
job has a Command and a table of Options that override the current
configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Batch(context.Background(), Cfg, args[0])
	},
	DisableAutoGenTag: true,
}
