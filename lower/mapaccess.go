// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/scalar"
)

// buildStruct emits a KindStruct variable assembled from sourceIDs, each
// of which must already be a variable defined earlier in the probe
// (invariant 2). objectName is the map or output name the struct and
// variable are named after, per §6's `<object>_value_t`/`<object>_value`
// conventions; cross-probe shape consistency (invariant 4) is enforced
// by the caller via the struct registry, not by the name itself.
func (l *probeLowerer) buildStruct(objectName string, fieldNames, sourceIDs []string) (ditypes.Struct, error) {
	if len(fieldNames) != len(sourceIDs) {
		return ditypes.Struct{}, l.err(ditypes.ErrInvalidArgument, "field count does not match source count")
	}
	fields := make([]ditypes.StructField, len(fieldNames))
	assigns := make([]ditypes.FieldAssignment, len(fieldNames))
	for i, fn := range fieldNames {
		t, ok := l.sym.lookup(sourceIDs[i])
		if !ok {
			return ditypes.Struct{}, l.err(ditypes.ErrUnknownVariable, sourceIDs[i])
		}
		fields[i] = ditypes.StructField{Name: fn, Type: t}
		assigns[i] = ditypes.FieldAssignment{Field: fn, Source: sourceIDs[i]}
	}
	s := ditypes.Struct{Name: objectName + "_value_t", Fields: fields}
	varName := objectName + "_value"
	l.emit(ditypes.Variable{Name: varName, Kind: ditypes.KindStruct, StructType: s.Name, Assignments: assigns})
	return s, nil
}

// lowerStash is C7's write path: assemble the stash's SourceIDs into a
// struct, register the map's key/value schema on first use (or validate
// it matches on a later use), and append the physical StashAction.
func (l *probeLowerer) lowerStash(maps *mapRegistry, a ditypes.MapStashAction) error {
	if !maps.exists(a.Map) {
		return l.err(ditypes.ErrUnknownMap, a.Map)
	}
	keyName, err := builtinVarName(l.probe.Name, a.Key)
	if err != nil {
		return err
	}
	keyType, ok := l.sym.lookup(keyName)
	if !ok {
		return l.err(ditypes.ErrUnknownVariable, keyName)
	}

	fieldNames := make([]string, len(a.SourceIDs))
	for i, id := range a.SourceIDs {
		fieldNames[i] = id
	}
	s, err := l.buildStruct(a.Map, fieldNames, a.SourceIDs)
	if err != nil {
		return err
	}
	if err := l.structs.register(l.probe.Name, s); err != nil {
		return err
	}
	if err := maps.setTypes(l.probe.Name, a.Map, keyType, s.Name); err != nil {
		return err
	}

	l.probe.Stashes = append(l.probe.Stashes, ditypes.StashAction{
		Map: a.Map, Key: keyName, Value: a.Map + "_value", Condition: a.Condition,
	})
	return nil
}

// lowerDelete is C7's delete path.
func (l *probeLowerer) lowerDelete(maps *mapRegistry, a ditypes.MapDeleteAction) error {
	if !maps.exists(a.Map) {
		return l.err(ditypes.ErrUnknownMap, a.Map)
	}
	keyName, err := builtinVarName(l.probe.Name, a.Key)
	if err != nil {
		return err
	}
	if _, ok := l.sym.lookup(keyName); !ok {
		return l.err(ditypes.ErrUnknownVariable, keyName)
	}
	l.probe.Deletes = append(l.probe.Deletes, ditypes.DeleteAction{Map: a.Map, Key: keyName})
	return nil
}

// lowerMapValue is C7's read path: emit a MapLookup variable and a
// dependent Member variable for every requested field of the stashed
// value, per value ID requested.
func (l *probeLowerer) lowerMapValue(maps *mapRegistry, r ditypes.MapValueRef) error {
	if !maps.exists(r.Map) {
		return l.err(ditypes.ErrUnknownMap, r.Map)
	}
	keyName, err := builtinVarName(l.probe.Name, r.Key)
	if err != nil {
		return err
	}
	if _, ok := l.sym.lookup(keyName); !ok {
		return l.err(ditypes.ErrUnknownVariable, keyName)
	}

	lookupName := r.Map + "_ptr"
	l.emit(ditypes.Variable{Name: lookupName, Kind: ditypes.KindMapLookup, Map: r.Map, KeyVar: keyName, Type: scalar.VoidPointer})

	m, ok := maps.maps[r.Map]
	if !ok || m.ValueType == "" {
		return l.err(ditypes.ErrInvariantViolation, "map \""+r.Map+"\" read before any stash establishes its value type")
	}
	var valueStruct *ditypes.Struct
	for _, s := range l.structs.all() {
		if s.Name == m.ValueType {
			sc := s
			valueStruct = &sc
			break
		}
	}
	if valueStruct == nil {
		return l.err(ditypes.ErrInvariantViolation, "map \""+r.Map+"\" value struct not registered")
	}
	if len(r.ValueIDs) > len(valueStruct.Fields) {
		return l.err(ditypes.ErrInvariantViolation, "map \""+r.Map+"\" read requests more value ids than the struct has fields")
	}

	for i, fieldName := range r.ValueIDs {
		f := valueStruct.Fields[i]
		l.emit(ditypes.Variable{
			Name: fieldName, Kind: ditypes.KindMember,
			Struct: lookupName, Pointer: true, FieldName: f.Name, Type: f.Type,
		})
	}
	return nil
}
