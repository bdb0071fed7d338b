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
	"errors"
	"fmt"
)

// Error kinds returned by xsection operations. Errors that refer to a
// particular input feature are wrapped in a *RecordError so that the
// caller can report them and continue with the next feature.
var (
	// ErrInvalidGeometry indicates a geometry that cannot be used, for
	// example a polyline with fewer than two distinct measures, a
	// feature with an empty shape, or two coincident points where a
	// bearing is required.
	ErrInvalidGeometry = errors.New("xsection: invalid geometry")

	// ErrMissingAttribute indicates that a required attribute is
	// absent or null. Callers typically substitute a sentinel value.
	ErrMissingAttribute = errors.New("xsection: missing attribute")

	// ErrInterpolationDegenerate indicates that an interpolated position
	// could not be computed.
	ErrInterpolationDegenerate = errors.New("xsection: degenerate interpolation")

	// ErrExternalService indicates a failure in an external geoprocessing
	// service such as the elevation source.
	ErrExternalService = errors.New("xsection: external service failure")

	// ErrZeroExaggeration indicates a vertical exaggeration of zero,
	// which cannot be inverted.
	ErrZeroExaggeration = errors.New("xsection: vertical exaggeration must not be zero")
)

// RecordError is an error that applies to a single input feature.
type RecordError struct {
	// FeatureID identifies the offending feature.
	FeatureID string

	// Field is the attribute that caused the error, if any.
	Field string

	// Kind is one of the Err* variables in this package.
	Kind error

	// Err is the underlying cause, if any.
	Err error
}

func (e *RecordError) Error() string {
	msg := e.Kind.Error()
	if e.FeatureID != "" {
		msg = fmt.Sprintf("%s: feature %s", msg, e.FeatureID)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: field %s", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports whether target is the kind of this error.
func (e *RecordError) Is(target error) bool { return target == e.Kind }

// Unwrap returns the underlying cause.
func (e *RecordError) Unwrap() error { return e.Err }

func recordErr(id, field string, kind, err error) *RecordError {
	return &RecordError{FeatureID: id, Field: field, Kind: kind, Err: err}
}
