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
	"sort"

	"github.com/golang/groupcache/lru"
)

// Fence converts fence diagrams, cross-section view features drawn on
// several sections, to map view. Sections are built on demand from a
// layer of cross-section lines and the most recently used ones are kept.
type Fence struct {
	cfg       *Config
	lines     *Layer
	nameField string
	sampler   ElevationSampler
	router    Router
	cache     *lru.Cache
}

// NewFence returns a Fence whose sections are the features of lines,
// named by nameField. At most cacheSize sections are kept at once.
func NewFence(cfg *Config, lines *Layer, nameField string, sampler ElevationSampler, router Router, cacheSize int) *Fence {
	if cacheSize <= 0 {
		cacheSize = 10
	}
	return &Fence{
		cfg:       cfg,
		lines:     lines,
		nameField: nameField,
		sampler:   sampler,
		router:    router,
		cache:     lru.New(cacheSize),
	}
}

// Section returns the section with the given name.
func (fd *Fence) Section(name string) (*Section, error) {
	if s, ok := fd.cache.Get(name); ok {
		return s.(*Section), nil
	}
	var match []*Feature
	for _, f := range fd.lines.Features {
		if f.Record.Text(fd.nameField) == name {
			match = append(match, f)
		}
	}
	if len(match) != 1 {
		return nil, fmt.Errorf("%w: %d cross-section lines named %q; want 1",
			ErrInvalidGeometry, len(match), name)
	}
	s, err := NewSection(fd.cfg, match[0], fd.sampler, fd.router)
	if err != nil {
		return nil, fmt.Errorf("xsection: section %s: %w", name, err)
	}
	s.Name = name
	s.SR, s.Proj = fd.lines.SR, fd.lines.Proj
	s.Route.SR = fd.lines.SR
	fd.cache.Add(name, s)
	return s, nil
}

// To3D converts the features of l to map view. keyField names the
// section each feature is drawn on. Features whose section cannot be
// built are skipped.
func (fd *Fence) To3D(l *Layer, keyField, idField string) (*Layer, Result, error) {
	var res Result
	log := fd.cfg.log().WithField("layer", l.Name)
	groups := make(map[string]*Layer)
	// index holds the position in l of each grouped feature.
	index := make(map[string][]int)
	for i, f := range l.Features {
		key := f.Record.Text(keyField)
		if key == "" {
			res.skip(log, recordErr(f.ID(idField, i), keyField, ErrMissingAttribute, fmt.Errorf("no section name")))
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &Layer{Name: l.Name, Type: l.Type, Fields: l.Fields}
			groups[key] = g
		}
		g.Features = append(g.Features, f)
		index[key] = append(index[key], i)
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := &Layer{Name: l.Name + "_3d", Type: l.Type, Fields: l.copyFields(),
		SR: fd.lines.SR, Proj: fd.lines.Proj}
	for _, key := range keys {
		g, gi := groups[key], index[key]
		id := func(i int) string { return g.Features[i].ID(idField, gi[i]) }
		s, err := fd.Section(key)
		if err != nil {
			for i := range g.Features {
				res.skip(log, recordErr(id(i), keyField, ErrInvalidGeometry, err))
			}
			continue
		}
		part, r, err := s.to3D(g, id)
		if err != nil {
			return nil, res, err
		}
		res.Add(r)
		out.Features = append(out.Features, part.Features...)
	}
	res.Written = len(out.Features)
	return out, res, nil
}
