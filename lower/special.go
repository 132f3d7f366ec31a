// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/scalar"
)

// builtinVarName is the built-in to variable-name table of §4.7: "Any
// other built-in ⇒ error."
func builtinVarName(probe string, b ditypes.BuiltinKind) (string, error) {
	switch b {
	case ditypes.BuiltinGOID:
		return "goid_", nil
	case ditypes.BuiltinTGID:
		return "tgid_", nil
	case ditypes.BuiltinTGIDPid:
		return "tgid_pid_", nil
	case ditypes.BuiltinTGIDStartTime:
		return "tgid_start_time_", nil
	case ditypes.BuiltinKTime:
		return "time_", nil
	default:
		return "", ditypes.NewError(ditypes.ErrInvalidArgument, probe, "unknown built-in "+b.String())
	}
}

// injectSpecialVariables is C4: emit the fixed set of implicit variables
// every probe needs, at the head of the probe's variable list, and
// return the ordered implicit_columns list C8 prefixes every output
// struct with.
func injectSpecialVariables(probe *ditypes.PhysicalProbe, sym *symbolTable, lang ditypes.Language, tpKind ditypes.TracepointKind) []string {
	emit := func(v ditypes.Variable) {
		probe.Variables = append(probe.Variables, v)
		sym.define(v.Name, v.Type)
	}

	emit(ditypes.Variable{Name: "sp_", Kind: ditypes.KindRegister, Register: ditypes.RegisterStackPointer, Type: scalar.VoidPointer})
	emit(ditypes.Variable{Name: "tgid_", Kind: ditypes.KindBuiltin, Builtin: ditypes.BuiltinTGID, Type: scalar.Int32})
	emit(ditypes.Variable{Name: "tgid_pid_", Kind: ditypes.KindBuiltin, Builtin: ditypes.BuiltinTGIDPid, Type: scalar.Uint64})
	emit(ditypes.Variable{Name: "tgid_start_time_", Kind: ditypes.KindBuiltin, Builtin: ditypes.BuiltinTGIDStartTime, Type: scalar.Uint64})
	// time_ is relied on by name by the downstream query engine as the
	// time column and must not be renamed (§4.4).
	emit(ditypes.Variable{Name: "time_", Kind: ditypes.KindBuiltin, Builtin: ditypes.BuiltinKTime, Type: scalar.Uint64})

	implicit := []string{"tgid_", "tgid_start_time_", "time_"}

	if lang == ditypes.LanguageGo {
		emit(ditypes.Variable{Name: "goid_", Kind: ditypes.KindBuiltin, Builtin: ditypes.BuiltinGOID, Type: scalar.Int64})
		implicit = append(implicit, "goid_")
	}

	if tpKind == ditypes.TracepointReturn && (lang == ditypes.LanguageC || lang == ditypes.LanguageCpp) {
		emit(ditypes.Variable{Name: "rc_", Kind: ditypes.KindRegister, Register: ditypes.RegisterReturnValue, Type: scalar.VoidPointer})
	}

	return implicit
}
