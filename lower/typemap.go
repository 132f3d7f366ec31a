// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lower implements the probe lowering compiler: C1 through C9 of
// spec.md. It translates a ditypes.LogicalDeployment into a
// ditypes.PhysicalProgram in which every variable carries an explicit
// memory-access recipe.
package lower

import (
	"fmt"

	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/dwarf"
	"github.com/pixie-io/probelower/scalar"
)

// goBaseTypes maps a Go base-type DWARF name to its scalar type (C1).
var goBaseTypes = map[string]scalar.Type{
	"bool":    scalar.Bool,
	"int":     scalar.Int,
	"int8":    scalar.Int8,
	"int16":   scalar.Int16,
	"int32":   scalar.Int32,
	"int64":   scalar.Int64,
	"uint":    scalar.Uint,
	"uint8":   scalar.Uint8,
	"uint16":  scalar.Uint16,
	"uint32":  scalar.Uint32,
	"uint64":  scalar.Uint64,
	"uintptr": scalar.Uint64,
	"byte":    scalar.Uint8,
	"rune":    scalar.Int32,
	"float32": scalar.Float,
	"float64": scalar.Double,
}

// cBaseTypes maps the canonical C/C++ DWARF base-type spelling (as gcc
// and clang emit it) to its scalar type (C1).
var cBaseTypes = map[string]scalar.Type{
	"_Bool":                  scalar.Bool,
	"bool":                   scalar.Bool,
	"char":                   scalar.Char,
	"signed char":            scalar.Char,
	"unsigned char":          scalar.UChar,
	"short int":              scalar.Short,
	"short unsigned int":     scalar.UShort,
	"int":                    scalar.Int,
	"unsigned int":           scalar.Uint,
	"long int":               scalar.Long,
	"long unsigned int":      scalar.ULong,
	"long long int":          scalar.LongLong,
	"long long unsigned int": scalar.ULongLong,
	"float":                  scalar.Float,
	"double":                 scalar.Double,
	"long double":            scalar.Double,
}

// mapType is C1: map a DWARF kind+name tuple to a ScalarType, per
// language.
func mapType(lang ditypes.Language, kind dwarf.Kind, typeName string) (scalar.Type, error) {
	switch kind {
	case dwarf.KindPointer:
		return scalar.VoidPointer, nil
	case dwarf.KindBase:
		var table map[string]scalar.Type
		switch lang {
		case ditypes.LanguageGo:
			table = goBaseTypes
		case ditypes.LanguageC, ditypes.LanguageCpp:
			table = cBaseTypes
		default:
			return scalar.Unknown, fmt.Errorf("type mapping unsupported for language %s", lang)
		}
		t, ok := table[typeName]
		if !ok {
			return scalar.Unknown, fmt.Errorf("unrecognized base type %q for %s", typeName, lang)
		}
		return t, nil
	case dwarf.KindStruct:
		if lang == ditypes.LanguageGo {
			switch typeName {
			case "string":
				return scalar.String, nil
			case "[]uint8", "[]byte":
				return scalar.ByteArray, nil
			}
		}
		return scalar.Unknown, fmt.Errorf("struct type %q is not a traceable leaf", typeName)
	default:
		return scalar.Unknown, fmt.Errorf("kind %s has no traceable scalar type", kind)
	}
}
