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
	"math"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "defaults", cfg: Config{VE: 1}, ok: true},
		{name: "exaggerated", cfg: Config{VE: 5, HE: 0.5, SearchDistance: 100}, ok: true},
		{name: "negative ve", cfg: Config{VE: -1}},
		{name: "nan he", cfg: Config{VE: 1, HE: math.NaN()}},
		{name: "negative search distance", cfg: Config{VE: 1, SearchDistance: -1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.cfg.Validate(); (err == nil) != test.ok {
				t.Errorf("have %v", err)
			}
		})
	}
	cfg := Config{}
	if err := cfg.Validate(); !errors.Is(err, ErrZeroExaggeration) {
		t.Errorf("zero exaggeration: have %v", err)
	}
}
