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

// Package xsection converts geologic map features between map view and
// cross-section view and back into three dimensions.
//
// Features are located along a cross-section line (a route) whose
// vertices carry measures, the distance along the line from its start.
// In cross-section view X is the measure and Y is the elevation times
// the vertical exaggeration. A VertexIndex built from the route converts
// measures back into map-view positions.
package xsection

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Version gives the version number.
const Version = "0.3.0"

// Config holds the settings shared by every operation in a run. It is
// not modified after it is created.
type Config struct {
	// VE is the vertical exaggeration and HE is the horizontal
	// exaggeration used when rescaling.
	VE, HE float64

	// SearchDistance is the largest distance, in map units, from the
	// cross-section line at which features are located.
	SearchDistance float64

	// MeasureSource specifies how the cross-section line is measured.
	MeasureSource MeasureSource

	// Where selects the cross-section line from its layer.
	Where string

	// Log receives progress messages and warnings.
	Log logrus.FieldLogger
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	if c.VE == 0 {
		return ErrZeroExaggeration
	}
	if c.VE < 0 || math.IsNaN(c.VE) || math.IsInf(c.VE, 0) {
		return fmt.Errorf("xsection: invalid vertical exaggeration %g", c.VE)
	}
	if c.HE < 0 || math.IsNaN(c.HE) || math.IsInf(c.HE, 0) {
		return fmt.Errorf("xsection: invalid horizontal exaggeration %g", c.HE)
	}
	if c.SearchDistance < 0 || math.IsNaN(c.SearchDistance) {
		return fmt.Errorf("xsection: invalid search distance %g", c.SearchDistance)
	}
	return nil
}

func (c *Config) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// Result summarizes the records processed by an operation.
type Result struct {
	// Written is the number of output features.
	Written int

	// Skipped holds the errors for input records that were not
	// written.
	Skipped []error

	// Substituted holds the errors for records that were written with
	// a sentinel value in place of a missing attribute.
	Substituted []error
}

func (r *Result) skip(log logrus.FieldLogger, err error) {
	r.Skipped = append(r.Skipped, err)
	log.WithError(err).Warn("xsection: skipping record")
}

func (r *Result) substitute(log logrus.FieldLogger, id string, value float64, err error) {
	r.Substituted = append(r.Substituted, err)
	log.WithFields(logrus.Fields{
		"feature":    id,
		"substitute": value,
	}).WithError(err).Warn("xsection: missing value replaced")
}

// substituteStick records each value replaced while building the stick
// log of borehole id.
func (r *Result) substituteStick(log logrus.FieldLogger, id string, errs []*RecordError) {
	for _, err := range errs {
		err.FeatureID = id
		v := MissingDepth
		if err.Field == collarValue {
			v = MissingCollarElevation
		}
		r.substitute(log, id, v, err)
	}
}

// Add adds the counts in r2 to r.
func (r *Result) Add(r2 Result) {
	r.Written += r2.Written
	r.Skipped = append(r.Skipped, r2.Skipped...)
	r.Substituted = append(r.Substituted, r2.Substituted...)
}
