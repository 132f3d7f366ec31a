// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/scalar"
)

// mapRegistry tracks the physical Map for each logical map name across
// the whole program assembly. A map's key/value types are set on first
// stash (C7); a later stash with an incompatible schema is rejected
// rather than silently overwriting it (Open Question b, §9).
type mapRegistry struct {
	order []string
	maps  map[string]*ditypes.Map
}

func newMapRegistry(logical []ditypes.LogicalMap) *mapRegistry {
	r := &mapRegistry{maps: map[string]*ditypes.Map{}}
	for _, m := range logical {
		r.order = append(r.order, m.Name)
		r.maps[m.Name] = &ditypes.Map{Name: m.Name}
	}
	return r
}

func (r *mapRegistry) exists(name string) bool {
	_, ok := r.maps[name]
	return ok
}

func (r *mapRegistry) setTypes(probe, name string, key scalar.Type, valueStruct string) error {
	m, ok := r.maps[name]
	if !ok {
		return ditypes.NewError(ditypes.ErrUnknownMap, probe, name)
	}
	if m.ValueType == "" {
		m.KeyType = key
		m.ValueType = valueStruct
		return nil
	}
	if m.KeyType != key || m.ValueType != valueStruct {
		return ditypes.NewError(ditypes.ErrInvariantViolation, probe,
			"map \""+name+"\" stashed with an incompatible schema")
	}
	return nil
}

func (r *mapRegistry) all() []ditypes.Map {
	out := make([]ditypes.Map, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.maps[name])
	}
	return out
}

// outputRegistry tracks the physical Output for each logical output name.
type outputRegistry struct {
	order   []string
	outputs map[string]*ditypes.Output
}

func newOutputRegistry(logical []ditypes.LogicalOutput) *outputRegistry {
	r := &outputRegistry{outputs: map[string]*ditypes.Output{}}
	for _, o := range logical {
		r.order = append(r.order, o.Name)
		r.outputs[o.Name] = &ditypes.Output{Name: o.Name, Fields: o.Fields}
	}
	return r
}

func (r *outputRegistry) fields(probe, name string) ([]string, error) {
	o, ok := r.outputs[name]
	if !ok {
		return nil, ditypes.NewError(ditypes.ErrUnknownOutput, probe, name)
	}
	return o.Fields, nil
}

func (r *outputRegistry) setStructType(probe, name, structType string) error {
	o, ok := r.outputs[name]
	if !ok {
		return ditypes.NewError(ditypes.ErrUnknownOutput, probe, name)
	}
	if o.StructType == "" {
		o.StructType = structType
		return nil
	}
	if o.StructType != structType {
		return ditypes.NewError(ditypes.ErrInvariantViolation, probe,
			"output \""+name+"\" assigned more than one struct type")
	}
	return nil
}

func (r *outputRegistry) all() []ditypes.Output {
	out := make([]ditypes.Output, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.outputs[name])
	}
	return out
}
