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

package dem

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/xsection/internal/hash"
)

// Cache loads elevation grids, keeping the most recently used grids in
// memory. Simultaneous requests for the same file are read once. A file
// that changes on disk is read again.
type Cache struct {
	c *requestcache.Cache
}

type loadRequest struct {
	filename, variable string
}

// NewCache returns a cache holding up to size grids.
func NewCache(size int) *Cache {
	if size < 1 {
		size = 1
	}
	return &Cache{
		c: requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			r := request.(loadRequest)
			return Open(r.filename, r.variable)
		}, runtime.GOMAXPROCS(-1), requestcache.Deduplicate(), requestcache.Memory(size)),
	}
}

// Open returns the grid in filename, reading it only if it is not already
// held in the cache. The returned grid is shared and must not be modified.
func (c *Cache) Open(ctx context.Context, filename, variable string) (*Grid, error) {
	key, err := hash.File(filename)
	if err != nil {
		return nil, fmt.Errorf("dem: %w", err)
	}
	r, err := c.c.NewRequest(ctx, loadRequest{filename: filename, variable: variable},
		hash.Key(key, variable)).Result()
	if err != nil {
		return nil, err
	}
	return r.(*Grid), nil
}
