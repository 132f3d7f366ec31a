// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"fmt"
	"testing"

	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/dwarf"
	"github.com/pixie-io/probelower/scalar"
)

// fakeReader is a canned dwarf.Reader standing in for a real binary's
// DWARF, keyed the same way the seed scenarios in spec.md §8 are.
type fakeReader struct {
	args    map[string]map[string]dwarf.ArgInfo
	rets    map[string]dwarf.RetInfo
	members map[string]map[string]dwarf.MemberInfo
}

func (f *fakeReader) FunctionArgInfo(symbol string) (map[string]dwarf.ArgInfo, error) {
	a, ok := f.args[symbol]
	if !ok {
		return nil, fmt.Errorf("no such function %q", symbol)
	}
	return a, nil
}

func (f *fakeReader) FunctionRetInfo(symbol string) (dwarf.RetInfo, error) {
	r, ok := f.rets[symbol]
	if !ok {
		return dwarf.RetInfo{}, fmt.Errorf("no such function %q", symbol)
	}
	return r, nil
}

func (f *fakeReader) StructMemberInfo(typeName, field string) (dwarf.MemberInfo, error) {
	fields, ok := f.members[typeName]
	if !ok {
		return dwarf.MemberInfo{}, fmt.Errorf("no such struct %q", typeName)
	}
	m, ok := fields[field]
	if !ok {
		return dwarf.MemberInfo{}, fmt.Errorf("no such field %q on %q", field, typeName)
	}
	return m, nil
}

func (f *fakeReader) Close() error { return nil }

func newLowerer(reader dwarf.Reader, lang ditypes.Language) *probeLowerer {
	probe := &ditypes.PhysicalProbe{Name: "p"}
	return &probeLowerer{probe: probe, sym: newSymbolTable(), structs: newStructRegistry(), reader: reader, lang: lang}
}

// Scenario 1, §8: a Go base-typed argument.
func TestLowerExpressionGoBaseArg(t *testing.T) {
	r := &fakeReader{args: map[string]map[string]dwarf.ArgInfo{
		"DoWork": {"x": {Name: "x", Kind: dwarf.KindBase, TypeName: "int", Offset: 16}},
	}}
	l := newLowerer(r, ditypes.LanguageGo)
	args, err := r.FunctionArgInfo("DoWork")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.lowerArg(args, "x_", "x"); err != nil {
		t.Fatal(err)
	}
	if len(l.probe.Variables) != 1 {
		t.Fatalf("want 1 variable, got %d", len(l.probe.Variables))
	}
	got := l.probe.Variables[0]
	if got.Name != "x_" || got.Base != "sp_" || got.Offset != 16+stackPointerBias || got.Type != scalar.Int {
		t.Fatalf("unexpected variable: %+v", got)
	}
}

// Scenario 2, §8: a Go struct field reached through a pointer argument.
func TestLowerExpressionGoStructFieldThroughPointer(t *testing.T) {
	r := &fakeReader{
		args: map[string]map[string]dwarf.ArgInfo{
			"DoWork": {"x": {Name: "x", Kind: dwarf.KindPointer, TypeName: "Inner", Offset: 8}},
		},
		members: map[string]map[string]dwarf.MemberInfo{
			"Inner": {"j": {Kind: dwarf.KindBase, TypeName: "int64", Offset: 24}},
		},
	}
	l := newLowerer(r, ditypes.LanguageGo)
	args, _ := r.FunctionArgInfo("DoWork")
	if err := l.lowerArg(args, "x_D_j", "x.j"); err != nil {
		t.Fatal(err)
	}
	if len(l.probe.Variables) != 2 {
		t.Fatalf("want 2 variables (deref + leaf), got %d", len(l.probe.Variables))
	}
	deref := l.probe.Variables[0]
	if deref.Name != "x_X_" || deref.Base != "sp_" || deref.Offset != 8+stackPointerBias {
		t.Fatalf("unexpected dereference variable: %+v", deref)
	}
	leaf := l.probe.Variables[1]
	if leaf.Name != "x_D_j" || leaf.Base != "x_X_" || leaf.Offset != 24 || leaf.Type != scalar.Int64 {
		t.Fatalf("unexpected leaf variable: %+v", leaf)
	}
}

// Scenario 3, §8: a C base-typed return value.
func TestLowerRetCBase(t *testing.T) {
	r := &fakeReader{rets: map[string]dwarf.RetInfo{
		"do_work": {Kind: dwarf.KindBase, TypeName: "int"},
	}}
	l := newLowerer(r, ditypes.LanguageC)
	retInfo, err := r.FunctionRetInfo("do_work")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.lowerRet(nil, retInfo, "ret_", "$0"); err != nil {
		t.Fatal(err)
	}
	if len(l.probe.Variables) != 1 {
		t.Fatalf("want 1 variable, got %d", len(l.probe.Variables))
	}
	got := l.probe.Variables[0]
	if got.Name != "ret_" || got.Kind != ditypes.KindRegister || got.Register != ditypes.RegisterReturnValue || got.Type != scalar.Int {
		t.Fatalf("unexpected variable: %+v", got)
	}
}

// Scenario 4, §8: a C++ pointer return value with a field selection.
func TestLowerRetCppPointerField(t *testing.T) {
	r := &fakeReader{
		rets: map[string]dwarf.RetInfo{
			"DoWork": {Kind: dwarf.KindPointer, TypeName: "Result"},
		},
		members: map[string]map[string]dwarf.MemberInfo{
			"Result": {"code": {Kind: dwarf.KindBase, TypeName: "int", Offset: 4}},
		},
	}
	l := newLowerer(r, ditypes.LanguageCpp)
	retInfo, err := r.FunctionRetInfo("DoWork")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.lowerRet(nil, retInfo, "code_", "$0.code"); err != nil {
		t.Fatal(err)
	}
	if len(l.probe.Variables) != 2 {
		t.Fatalf("want 2 variables (dereference through rc_ + leaf), got %d", len(l.probe.Variables))
	}
	deref := l.probe.Variables[0]
	if deref.Name != "$0_X_" || deref.Base != "rc_" || deref.Offset != 0 || deref.Type != scalar.VoidPointer {
		t.Fatalf("unexpected dereference variable: %+v", deref)
	}
	got := l.probe.Variables[1]
	if got.Name != "code_" || got.Base != "$0_X_" || got.Offset != 4 || got.Type != scalar.Int {
		t.Fatalf("unexpected variable: %+v", got)
	}
}

func TestLowerArgUnknownArgument(t *testing.T) {
	l := newLowerer(&fakeReader{}, ditypes.LanguageGo)
	err := l.lowerArg(map[string]dwarf.ArgInfo{}, "x_", "missing")
	var diErr *ditypes.Error
	if !asError(err, &diErr) || diErr.Kind != ditypes.ErrUnknownArgument {
		t.Fatalf("want ErrUnknownArgument, got %v", err)
	}
}

func TestInjectSpecialVariablesGoEntry(t *testing.T) {
	probe := &ditypes.PhysicalProbe{Name: "p"}
	sym := newSymbolTable()
	implicit := injectSpecialVariables(probe, sym, ditypes.LanguageGo, ditypes.TracepointEntry)

	wantImplicit := []string{"tgid_", "tgid_start_time_", "time_", "goid_"}
	if len(implicit) != len(wantImplicit) {
		t.Fatalf("want %v, got %v", wantImplicit, implicit)
	}
	for i, name := range wantImplicit {
		if implicit[i] != name {
			t.Fatalf("want %v, got %v", wantImplicit, implicit)
		}
	}
	if _, ok := sym.lookup("tgid_pid_"); !ok {
		t.Fatal("tgid_pid_ must be defined even though it is excluded from implicit columns")
	}
	for _, name := range implicit {
		if name == "tgid_pid_" {
			t.Fatal("tgid_pid_ must not appear in the implicit columns list")
		}
	}
}

// Scenario 5, §8: stash then lookup. Exercises the §6 naming
// conventions directly: struct `M_value_t`, struct variable `M_value`,
// pointer variable `M_ptr`, and positional (not name-matched) member
// typing on the read side.
func TestMapStashAndReadRoundTrip(t *testing.T) {
	r := &fakeReader{}
	maps := newMapRegistry([]ditypes.LogicalMap{{Name: "M"}})
	probe := &ditypes.PhysicalProbe{Name: "p"}
	sym := newSymbolTable()
	injectSpecialVariables(probe, sym, ditypes.LanguageGo, ditypes.TracepointReturn)
	l := &probeLowerer{probe: probe, sym: sym, structs: newStructRegistry(), reader: r, lang: ditypes.LanguageGo}

	if err := l.lowerStash(maps, ditypes.MapStashAction{Map: "M", Key: ditypes.BuiltinTGIDPid, SourceIDs: []string{"time_"}}); err != nil {
		t.Fatalf("stash: %v", err)
	}
	if len(l.probe.Stashes) != 1 {
		t.Fatalf("want 1 stash action, got %d", len(l.probe.Stashes))
	}
	stash := l.probe.Stashes[0]
	if stash.Value != "M_value" {
		t.Fatalf("want stash value variable \"M_value\", got %q", stash.Value)
	}
	m := maps.maps["M"]
	if m.ValueType != "M_value_t" {
		t.Fatalf("want value type \"M_value_t\", got %q", m.ValueType)
	}
	var structVar *ditypes.Variable
	for i, v := range l.probe.Variables {
		if v.Name == "M_value" && v.Kind == ditypes.KindStruct {
			structVar = &l.probe.Variables[i]
		}
	}
	if structVar == nil {
		t.Fatal("expected a Struct variable named \"M_value\"")
	}

	// Second probe reads the stashed value back into "start_ktime_ns".
	probe2 := &ditypes.PhysicalProbe{Name: "p2"}
	sym2 := newSymbolTable()
	injectSpecialVariables(probe2, sym2, ditypes.LanguageGo, ditypes.TracepointEntry)
	l2 := &probeLowerer{probe: probe2, sym: sym2, structs: l.structs, reader: r, lang: ditypes.LanguageGo}
	if err := l2.lowerMapValue(maps, ditypes.MapValueRef{Map: "M", Key: ditypes.BuiltinTGIDPid, ValueIDs: []string{"start_ktime_ns"}}); err != nil {
		t.Fatalf("map read: %v", err)
	}

	var lookupVar, memberVar *ditypes.Variable
	for i, v := range l2.probe.Variables {
		switch {
		case v.Name == "M_ptr" && v.Kind == ditypes.KindMapLookup:
			lookupVar = &l2.probe.Variables[i]
		case v.Name == "start_ktime_ns" && v.Kind == ditypes.KindMember:
			memberVar = &l2.probe.Variables[i]
		}
	}
	if lookupVar == nil {
		t.Fatal("expected a MapLookup variable named \"M_ptr\"")
	}
	if memberVar == nil {
		t.Fatal("expected a Member variable named \"start_ktime_ns\"")
	}
	if memberVar.Struct != "M_ptr" || !memberVar.Pointer || memberVar.Type != scalar.Uint64 {
		t.Fatalf("unexpected member variable: %+v", *memberVar)
	}
}

// Scenario 6, §8: latency, grounded on the start time scenario 5 populates.
func TestLowerLatency(t *testing.T) {
	probe := &ditypes.PhysicalProbe{Name: "p"}
	sym := newSymbolTable()
	injectSpecialVariables(probe, sym, ditypes.LanguageGo, ditypes.TracepointReturn)
	sym.define("start_ktime_ns", scalar.Uint64)
	l := &probeLowerer{probe: probe, sym: sym, structs: newStructRegistry(), reader: &fakeReader{}, lang: ditypes.LanguageGo}

	if err := l.lowerLatency("lat"); err != nil {
		t.Fatalf("lowerLatency: %v", err)
	}
	var got *ditypes.Variable
	for i, v := range l.probe.Variables {
		if v.Name == "lat" {
			got = &l.probe.Variables[i]
		}
	}
	if got == nil {
		t.Fatal("expected a \"lat\" variable")
	}
	if got.Kind != ditypes.KindBinaryExpr || got.Type != scalar.Int64 || got.Op != ditypes.OpSub || got.LHS != "time_" || got.RHS != "start_ktime_ns" {
		t.Fatalf("unexpected latency variable: %+v", *got)
	}
}

func TestLowerLatencyMissingStartTimeIsUnknownVariable(t *testing.T) {
	probe := &ditypes.PhysicalProbe{Name: "p"}
	sym := newSymbolTable()
	injectSpecialVariables(probe, sym, ditypes.LanguageGo, ditypes.TracepointReturn)
	l := &probeLowerer{probe: probe, sym: sym, structs: newStructRegistry(), reader: &fakeReader{}, lang: ditypes.LanguageGo}

	err := l.lowerLatency("lat")
	var diErr *ditypes.Error
	if !asError(err, &diErr) || diErr.Kind != ditypes.ErrUnknownVariable {
		t.Fatalf("want ErrUnknownVariable when start_ktime_ns was never stashed, got %v", err)
	}
}

func TestLowerRetUnimplementedPaths(t *testing.T) {
	r := &fakeReader{rets: map[string]dwarf.RetInfo{
		"do_work": {Kind: dwarf.KindBase, TypeName: "int"},
		"do_void": {Kind: dwarf.KindVoid},
	}}

	l := newLowerer(r, ditypes.LanguageC)
	retInfo, _ := r.FunctionRetInfo("do_work")
	err := l.lowerRet(nil, retInfo, "ret_", "$1")
	var diErr *ditypes.Error
	if !asError(err, &diErr) || diErr.Kind != ditypes.ErrUnimplemented {
		t.Fatalf("want ErrUnimplemented for a nonzero C/C++ return index, got %v", err)
	}

	l2 := newLowerer(r, ditypes.LanguageC)
	voidInfo, _ := r.FunctionRetInfo("do_void")
	err = l2.lowerRet(nil, voidInfo, "ret_", "$0")
	diErr = nil
	if !asError(err, &diErr) || diErr.Kind != ditypes.ErrUnimplemented {
		t.Fatalf("want ErrUnimplemented for a void return, got %v", err)
	}

	l3 := newLowerer(r, ditypes.LanguageUnknown)
	err = l3.lowerRet(nil, dwarf.RetInfo{}, "ret_", "$0")
	diErr = nil
	if !asError(err, &diErr) || diErr.Kind != ditypes.ErrUnimplemented {
		t.Fatalf("want ErrUnimplemented for an unsupported language, got %v", err)
	}
}

func TestMapStashIncompatibleSchemaRejected(t *testing.T) {
	r := &fakeReader{}
	maps := newMapRegistry([]ditypes.LogicalMap{{Name: "m"}})

	probe1 := &ditypes.PhysicalProbe{Name: "p1"}
	sym1 := newSymbolTable()
	injectSpecialVariables(probe1, sym1, ditypes.LanguageGo, ditypes.TracepointEntry)
	l1 := &probeLowerer{probe: probe1, sym: sym1, structs: newStructRegistry(), reader: r, lang: ditypes.LanguageGo}
	if err := l1.lowerStash(maps, ditypes.MapStashAction{Map: "m", Key: ditypes.BuiltinTGIDPid, SourceIDs: []string{"time_"}}); err != nil {
		t.Fatalf("first stash: %v", err)
	}

	probe2 := &ditypes.PhysicalProbe{Name: "p2"}
	sym2 := newSymbolTable()
	injectSpecialVariables(probe2, sym2, ditypes.LanguageGo, ditypes.TracepointEntry)
	l2 := &probeLowerer{probe: probe2, sym: sym2, structs: l1.structs, reader: r, lang: ditypes.LanguageGo}
	err := l2.lowerStash(maps, ditypes.MapStashAction{Map: "m", Key: ditypes.BuiltinTGIDPid, SourceIDs: []string{"goid_"}})
	var diErr *ditypes.Error
	if !asError(err, &diErr) || diErr.Kind != ditypes.ErrInvariantViolation {
		t.Fatalf("want ErrInvariantViolation for an incompatible schema, got %v", err)
	}
}

func TestLowerOutputArityMismatch(t *testing.T) {
	probe := &ditypes.PhysicalProbe{Name: "p"}
	sym := newSymbolTable()
	implicit := injectSpecialVariables(probe, sym, ditypes.LanguageGo, ditypes.TracepointEntry)
	l := &probeLowerer{probe: probe, sym: sym, structs: newStructRegistry(), reader: &fakeReader{}, lang: ditypes.LanguageGo}
	outputs := newOutputRegistry([]ditypes.LogicalOutput{{Name: "out", Fields: []string{"a", "b"}}})

	err := l.lowerOutput(outputs, implicit, ditypes.OutputAction{Output: "out", SourceIDs: []string{"goid_"}})
	var diErr *ditypes.Error
	if !asError(err, &diErr) || diErr.Kind != ditypes.ErrInvalidArgument {
		t.Fatalf("want ErrInvalidArgument for an arity mismatch, got %v", err)
	}
}

func TestAssembleRejectsMultipleTracepoints(t *testing.T) {
	dep := ditypes.LogicalDeployment{
		DeploymentSpec: ditypes.DeploymentSpec{BinaryPath: "/bin/does-not-matter"},
		Tracepoints:    []ditypes.LogicalTracepoint{{}, {}},
	}
	_, err := Assemble(dep)
	var diErr *ditypes.Error
	if !asError(err, &diErr) || diErr.Kind != ditypes.ErrInvalidArgument {
		t.Fatalf("want ErrInvalidArgument for multiple tracepoints, got %v", err)
	}
}

func asError(err error, target **ditypes.Error) bool {
	e, ok := err.(*ditypes.Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
