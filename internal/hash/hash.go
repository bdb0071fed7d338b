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

// Package hash creates cache keys.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
)

// Key returns a cache key for the given values. Values that gob cannot
// encode, such as those holding NaN map keys or unexported fields, are
// printed with spew instead.
func Key(values ...interface{}) string {
	h := fnv.New128a()
	for _, v := range values {
		write(h, v)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func write(h hash.Hash, v interface{}) {
	if s, ok := v.(fmt.Stringer); ok {
		fmt.Fprint(h, s.String())
		return
	}
	if err := gob.NewEncoder(h).Encode(v); err == nil {
		return
	}
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", v)
}

// File returns a cache key for the named file that changes when the file
// is modified.
func File(name string) (string, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	return Key(abs, fi.Size(), fi.ModTime().UnixNano()), nil
}
