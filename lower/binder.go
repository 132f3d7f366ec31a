// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"strconv"
	"strings"

	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/dwarf"
)

// splitPath breaks a dotted expression like "arg1.inner.field" into its
// components. The empty expression is rejected by the caller.
func splitPath(expr string) []string {
	return strings.Split(expr, ".")
}

// lowerArg is C6's argument half: resolve expr's root component against
// the function's formal-parameter layout, then hand the rest of the path
// to C5.
func (l *probeLowerer) lowerArg(args map[string]dwarf.ArgInfo, id, expr string) error {
	path := splitPath(expr)
	root, ok := args[path[0]]
	if !ok {
		return l.err(ditypes.ErrUnknownArgument, path[0])
	}
	return l.lowerExpression(root, "sp_", id, path)
}

// retArgName is the DWARF name Go's compiler gives the index'th unnamed
// return value of a function, per the standard ABI0 convention.
func retArgName(index int) string {
	return "~r" + strconv.Itoa(index)
}

// lowerRet is C6's return-value half. expr's root component is "$N" for
// the Nth return value; Go resolves it as a synthesized formal parameter
// "~rN" reached off sp_ like any other argument, while C and C++ have a
// single return value reached off rc_, the register injected by C4.
func (l *probeLowerer) lowerRet(args map[string]dwarf.ArgInfo, retInfo dwarf.RetInfo, id, expr string) error {
	path := splitPath(expr)
	root := path[0]
	if !strings.HasPrefix(root, "$") {
		return l.err(ditypes.ErrInvalidArgument, "return expression must start with \"$\": "+expr)
	}
	index, err := strconv.Atoi(root[1:])
	if err != nil {
		return l.err(ditypes.ErrInvalidArgument, "malformed return index in "+expr)
	}

	switch l.lang {
	case ditypes.LanguageGo:
		name := retArgName(index)
		info, ok := args[name]
		if !ok {
			return l.err(ditypes.ErrUnknownArgument, name)
		}
		return l.lowerExpression(info, "sp_", id, path)
	case ditypes.LanguageC, ditypes.LanguageCpp:
		if index != 0 {
			return l.err(ditypes.ErrUnimplemented, "C/C++ functions have a single return value, got "+root)
		}
		switch retInfo.Kind {
		case dwarf.KindVoid:
			return l.err(ditypes.ErrUnimplemented, "function has no return value")
		case dwarf.KindBase:
			// rc_ holds the scalar value itself, not its address: no
			// memory dereference, just a second register binding
			// naming it with its concrete type.
			if len(path) != 1 {
				return l.err(ditypes.ErrUnknownField, "cannot select a field off a scalar return value")
			}
			t, err := mapType(l.lang, dwarf.KindBase, retInfo.TypeName)
			if err != nil {
				return l.wrapErr(ditypes.ErrTypeUnsupported, id, err)
			}
			l.emit(ditypes.Variable{Name: id, Kind: ditypes.KindRegister, Register: ditypes.RegisterReturnValue, Type: t})
			return nil
		case dwarf.KindPointer:
			// rc_ holds a real address here, so the frame-base bias
			// that lowerExpression always applies is cancelled out.
			info := dwarf.ArgInfo{Kind: dwarf.KindPointer, TypeName: retInfo.TypeName, Offset: -stackPointerBias}
			return l.lowerExpression(info, "rc_", id, path)
		default:
			return l.err(ditypes.ErrTypeUnsupported, "return type is not a traceable leaf")
		}
	default:
		return l.err(ditypes.ErrUnimplemented, "return-value lowering is only implemented for go, c, and c++")
	}
}
