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

package hash

import (
	"io/ioutil"
	"math"
	"os"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	type req struct {
		Name string
		X, Y float64
	}
	a := Key(req{Name: "a", X: 1, Y: 2})
	if a != Key(req{Name: "a", X: 1, Y: 2}) {
		t.Errorf("equal values should give equal keys")
	}
	if a == Key(req{Name: "a", X: 1, Y: 3}) {
		t.Errorf("different values should give different keys")
	}
	if Key("a", "b") == Key("b", "a") {
		t.Errorf("order should matter")
	}
	nan := map[float64]int{math.NaN(): 1}
	if Key(nan) == "" {
		t.Errorf("empty key")
	}
}

func TestFile(t *testing.T) {
	f, err := ioutil.TempFile("", "hash")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	f.WriteString("abc")
	f.Close()

	k1, err := File(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	k2, err := File(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Errorf("unchanged file gave different keys")
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(f.Name(), later, later); err != nil {
		t.Fatal(err)
	}
	k3, err := File(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if k3 == k1 {
		t.Errorf("modified file should give a new key")
	}
	if _, err := File(f.Name() + ".missing"); err == nil {
		t.Errorf("missing file should give an error")
	}
}
