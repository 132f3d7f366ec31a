// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/dwarf"
)

// Name-decoration tokens (§4.5, §6): these affect only internal variable
// names, never user-visible ids.
const (
	decorField = "_D_"
	decorDeref = "_X_"
)

// stackPointerBias reconciles DWARF's frame-base convention with the
// kernel-probe runtime's notion of the stack pointer (§6).
const stackPointerBias = 8

// probeLowerer carries the state C5 through C8 share while lowering one
// probe: the symbol table and struct registry variables get written into,
// the DWARF reader C5 calls back into, and the probe being assembled.
type probeLowerer struct {
	probe   *ditypes.PhysicalProbe
	sym     *symbolTable
	structs *structRegistry
	reader  dwarf.Reader
	lang    ditypes.Language
}

func (l *probeLowerer) emit(v ditypes.Variable) {
	l.probe.Variables = append(l.probe.Variables, v)
	l.sym.define(v.Name, v.Type)
}

func (l *probeLowerer) err(kind ditypes.ErrorKind, detail string) error {
	return ditypes.NewError(kind, l.probe.Name, detail)
}

func (l *probeLowerer) wrapErr(kind ditypes.ErrorKind, detail string, cause error) error {
	return ditypes.WrapError(kind, l.probe.Name, detail, cause)
}

// emitMemory is the one place C5 calls C1 (mapType) and appends a
// KindMemory variable, used both for intermediate dereference variables
// (kind always KindPointer, type always VoidPointer) and for the final
// leaf.
func (l *probeLowerer) emitMemory(name, base string, offset int64, kind dwarf.Kind, typeName string) error {
	t, err := mapType(l.lang, kind, typeName)
	if err != nil {
		return l.wrapErr(ditypes.ErrTypeUnsupported, name, err)
	}
	l.emit(ditypes.Variable{Name: name, Kind: ditypes.KindMemory, Base: base, Offset: offset, Type: t})
	return nil
}

// lowerExpression is C5: translate a dotted path, rooted at root and
// reached through baseVar ("sp_" or "rc_"), into a chain of intermediate
// dereference/member variables terminating in a scalar leaf named leafID.
// path's first element is the root component (used only for name
// decoration); the remaining elements are struct field hops.
func (l *probeLowerer) lowerExpression(root dwarf.ArgInfo, baseVar, leafID string, path []string) error {
	if len(path) == 0 {
		return l.err(ditypes.ErrInvalidArgument, "empty expression")
	}

	curKind := root.Kind
	curType := root.TypeName
	curOffset := stackPointerBias + root.Offset
	curBase := baseVar
	curName := path[0]

	for _, component := range path[1:] {
		if curKind == dwarf.KindPointer {
			derefName := curName + decorDeref
			if err := l.emitMemory(derefName, curBase, curOffset, dwarf.KindPointer, ""); err != nil {
				return err
			}
			curBase = derefName
			curOffset = 0
			curName = derefName
			// curKind/curType are left as-is: per §4.5, TypeName for a
			// KindPointer ArgInfo/MemberInfo already names the pointee,
			// so the struct_member_info call below operates on it
			// directly and itself validates the assumption.
		}

		mi, err := l.reader.StructMemberInfo(curType, component)
		if err != nil {
			return l.wrapErr(ditypes.ErrUnknownField, component, err)
		}
		curOffset += mi.Offset
		curKind = mi.Kind
		curType = mi.TypeName
		curName = curName + decorField + component
	}

	if curKind == dwarf.KindPointer {
		derefName := curName + decorDeref
		if err := l.emitMemory(derefName, curBase, curOffset, dwarf.KindPointer, ""); err != nil {
			return err
		}
		curBase = derefName
		curOffset = 0
		curKind = dwarf.KindBase
	}

	return l.emitMemory(leafID, curBase, curOffset, curKind, curType)
}
