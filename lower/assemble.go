// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/dwarf"
	"github.com/pixie-io/probelower/scalar"
)

// startKtimeVar is the name a LatencyRequest expects an earlier stage to
// have stashed (§4.9, scenarios 5/6), per Open Question (a), §9: latency
// is only meaningful once a start time has actually been populated, so
// its absence is an UnknownVariable rather than a silently-zero duration.
const startKtimeVar = "start_ktime_ns"

// Assemble is C9: lower a LogicalDeployment into a PhysicalProgram.
// Invariant 5 requires exactly one tracepoint per deployment; the DWARF
// reader opened for the deployment's binary is scoped to this call and
// released on every return path, including error paths (§5).
func Assemble(dep ditypes.LogicalDeployment) (*ditypes.PhysicalProgram, error) {
	if len(dep.Tracepoints) != 1 {
		return nil, ditypes.NewError(ditypes.ErrInvalidArgument, "",
			"a deployment must contain exactly one tracepoint")
	}
	program := dep.Tracepoints[0].Program

	reader, err := dwarf.Open(dep.DeploymentSpec.BinaryPath)
	if err != nil {
		return nil, ditypes.WrapError(ditypes.ErrDwarf, "", dep.DeploymentSpec.BinaryPath, err)
	}
	defer reader.Close()

	maps := newMapRegistry(program.Maps)
	outputs := newOutputRegistry(program.Outputs)
	structs := newStructRegistry()

	out := &ditypes.PhysicalProgram{
		DeploymentSpec: dep.DeploymentSpec,
		Language:       program.Language,
	}

	for _, lp := range program.Probes {
		pp, err := assembleProbe(reader, program.Language, maps, outputs, structs, lp)
		if err != nil {
			return nil, err
		}
		out.Probes = append(out.Probes, *pp)
	}

	out.Maps = maps.all()
	out.Outputs = outputs.all()
	out.Structs = structs.all()
	return out, nil
}

func assembleProbe(reader dwarf.Reader, lang ditypes.Language, maps *mapRegistry, outputs *outputRegistry, structs *structRegistry, lp ditypes.LogicalProbe) (*ditypes.PhysicalProbe, error) {
	probe := &ditypes.PhysicalProbe{Name: lp.Name, Tracepoint: lp.Tracepoint}
	sym := newSymbolTable()
	l := &probeLowerer{probe: probe, sym: sym, structs: structs, reader: reader, lang: lang}

	implicit := injectSpecialVariables(probe, sym, lang, lp.Tracepoint.Kind)

	args, err := reader.FunctionArgInfo(lp.Tracepoint.Symbol)
	if err != nil {
		return nil, l.wrapErr(ditypes.ErrDwarf, lp.Tracepoint.Symbol, err)
	}
	var retInfo dwarf.RetInfo
	if len(lp.Rets) > 0 && lang != ditypes.LanguageGo {
		retInfo, err = reader.FunctionRetInfo(lp.Tracepoint.Symbol)
		if err != nil {
			return nil, l.wrapErr(ditypes.ErrDwarf, lp.Tracepoint.Symbol, err)
		}
	}

	for _, c := range lp.Constants {
		l.emit(ditypes.Variable{Name: c.ID, Kind: ditypes.KindConstant, Type: c.Type, ConstantValue: c.Value})
	}

	for _, a := range lp.Args {
		if err := l.lowerArg(args, a.ID, a.Expression); err != nil {
			return nil, err
		}
	}

	for _, r := range lp.Rets {
		if err := l.lowerRet(args, retInfo, r.ID, r.Expression); err != nil {
			return nil, err
		}
	}

	for _, mv := range lp.MapValues {
		if err := l.lowerMapValue(maps, mv); err != nil {
			return nil, err
		}
	}

	if lp.Latency != nil {
		if err := l.lowerLatency(lp.Latency.ID); err != nil {
			return nil, err
		}
	}

	for _, s := range lp.Stashes {
		if err := l.lowerStash(maps, s); err != nil {
			return nil, err
		}
	}

	for _, d := range lp.Deletes {
		if err := l.lowerDelete(maps, d); err != nil {
			return nil, err
		}
	}

	for _, o := range lp.Outputs {
		if err := l.lowerOutput(outputs, implicit, o); err != nil {
			return nil, err
		}
	}

	for _, p := range lp.Prints {
		probe.Prints = append(probe.Prints, p)
	}

	return probe, nil
}

// lowerLatency satisfies LatencyRequest: emit a BinaryExpr variable
// subtracting a previously-stashed start time from the already-injected
// time_ built-in (§4.4, Open Question (a)).
func (l *probeLowerer) lowerLatency(id string) error {
	if _, ok := l.sym.lookup(startKtimeVar); !ok {
		return l.err(ditypes.ErrUnknownVariable, startKtimeVar)
	}
	l.emit(ditypes.Variable{
		Name: id, Kind: ditypes.KindBinaryExpr, Type: scalar.Int64,
		Op: ditypes.OpSub, LHS: "time_", RHS: startKtimeVar,
	})
	return nil
}
