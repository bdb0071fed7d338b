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

// ElevationSampler returns the ground elevation at a map-view location.
// Locations outside of the elevation model give an error.
type ElevationSampler interface {
	SampleZ(x, y float64) (float64, error)
}

// SampleGeometry returns the elevation of every vertex of g, one slice
// per part. Vertices where the sampler fails are set to NaN and the first
// such failure is returned as an error wrapping ErrExternalService
// after all vertices have been sampled.
func SampleGeometry(s ElevationSampler, g geom.Geom) ([][]float64, error) {
	pp := parts(g)
	if pp == nil {
		return nil, fmt.Errorf("%w: cannot sample %T", ErrInvalidGeometry, g)
	}
	var firstErr error
	z := make([][]float64, len(pp))
	for i, part := range pp {
		z[i] = make([]float64, len(part))
		for j, p := range part {
			v, err := s.SampleZ(p.X, p.Y)
			if err != nil {
				v = math.NaN()
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: sampling elevation at (%g, %g): %v",
						ErrExternalService, p.X, p.Y, err)
				}
			}
			z[i][j] = v
		}
	}
	return z, firstErr
}

// ConstantElevation is an ElevationSampler that returns the same
// elevation everywhere.
type ConstantElevation float64

// SampleZ returns c.
func (c ConstantElevation) SampleZ(x, y float64) (float64, error) { return float64(c), nil }
