// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"reflect"

	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/scalar"
)

// symbolTable is C3's per-probe half: name to ScalarType, reset at the
// start of every probe (§3 Lifecycle).
type symbolTable struct {
	types map[string]scalar.Type
}

func newSymbolTable() *symbolTable {
	return &symbolTable{types: map[string]scalar.Type{}}
}

func (s *symbolTable) define(name string, t scalar.Type) {
	s.types[name] = t
}

func (s *symbolTable) lookup(name string) (scalar.Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// structRegistry is C3's program-wide half: struct type name to
// definition, persisting across probes within one assembly (§3
// Lifecycle). Registering the same name twice with a different shape is
// an InvariantViolation (invariant 4).
type structRegistry struct {
	structs map[string]ditypes.Struct
}

func newStructRegistry() *structRegistry {
	return &structRegistry{structs: map[string]ditypes.Struct{}}
}

func (r *structRegistry) register(probe string, s ditypes.Struct) error {
	existing, ok := r.structs[s.Name]
	if !ok {
		r.structs[s.Name] = s
		return nil
	}
	if !sameShape(existing, s) {
		return ditypes.NewError(ditypes.ErrInvariantViolation, probe,
			"struct \""+s.Name+"\" redefined with a different shape")
	}
	return nil
}

func (r *structRegistry) all() []ditypes.Struct {
	out := make([]ditypes.Struct, 0, len(r.structs))
	for _, s := range r.structs {
		out = append(out, s)
	}
	return out
}

func sameShape(a, b ditypes.Struct) bool {
	return reflect.DeepEqual(a.Fields, b.Fields)
}
