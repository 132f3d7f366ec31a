// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ditypes holds the data model shared by the whole lowering pass:
// the logical (input) IR, the physical (output) IR, and the Error type
// both the DWARF adapter and the lowerer report through.
package ditypes

import "github.com/pixie-io/probelower/scalar"

// Language is the source language a traced binary was compiled from. Only
// Go, C, and C++ are traceable; the type mapper and the return-value
// binder both switch on this.
type Language uint8

const (
	LanguageUnknown Language = iota
	LanguageGo
	LanguageC
	LanguageCpp
)

func (l Language) String() string {
	switch l {
	case LanguageGo:
		return "go"
	case LanguageC:
		return "c"
	case LanguageCpp:
		return "c++"
	default:
		return "unknown"
	}
}

// TracepointKind distinguishes attaching at function entry from attaching
// at the point a traced function returns.
type TracepointKind uint8

const (
	TracepointEntry TracepointKind = iota
	TracepointReturn
)

func (k TracepointKind) String() string {
	if k == TracepointReturn {
		return "return"
	}
	return "entry"
}

// BuiltinKind is the fixed set of helpers the probe runtime exposes.
type BuiltinKind uint8

const (
	BuiltinUnknown BuiltinKind = iota
	BuiltinGOID
	BuiltinTGID
	BuiltinTGIDPid
	BuiltinTGIDStartTime
	BuiltinKTime
)

func (b BuiltinKind) String() string {
	switch b {
	case BuiltinGOID:
		return "GOID"
	case BuiltinTGID:
		return "TGID"
	case BuiltinTGIDPid:
		return "TGID_PID"
	case BuiltinTGIDStartTime:
		return "TGID_START_TIME"
	case BuiltinKTime:
		return "KTIME"
	default:
		return "UNKNOWN"
	}
}

// Tracepoint identifies where in a binary a probe attaches.
type Tracepoint struct {
	BinaryPath string
	Symbol     string
	Kind       TracepointKind
}

// DeploymentSpec names the traced binary.
type DeploymentSpec struct {
	BinaryPath string
}

// LogicalMap is a logical-IR map declaration; its physical key/value types
// are filled in by C7 the first time a probe stashes into it.
type LogicalMap struct {
	Name string
}

// LogicalOutput is a logical-IR perf-buffer declaration: a name and the
// field names its records will carry (beyond the implicit columns).
type LogicalOutput struct {
	Name   string
	Fields []string
}

// ConstantExpr is a probe-local literal of a declared scalar type.
type ConstantExpr struct {
	ID    string
	Type  scalar.Type
	Value string
}

// ArgExpr is a dotted path rooted at a function argument, e.g. "arg1.inner.field".
type ArgExpr struct {
	ID         string
	Expression string
}

// RetExpr is a dotted path rooted at a return value, e.g. "$0.result".
type RetExpr struct {
	ID         string
	Expression string
}

// MapValueRef reads zero or more fields out of a map's stashed value,
// keyed by a built-in.
type MapValueRef struct {
	Map      string
	Key      BuiltinKind
	ValueIDs []string
}

// LatencyRequest asks for a BinaryExpr variable computing ktime minus a
// previously-stashed start time.
type LatencyRequest struct {
	ID string
}

// MapStashAction writes a struct assembled from SourceIDs into Map, keyed
// by a built-in, guarded by Condition (an opaque, already-lowered
// condition variable name; empty means unconditional).
type MapStashAction struct {
	Map       string
	Key       BuiltinKind
	SourceIDs []string
	Condition string
}

// MapDeleteAction removes Map's entry for a built-in key.
type MapDeleteAction struct {
	Map string
	Key BuiltinKind
}

// OutputAction emits a record to Output assembled from SourceIDs, which
// must line up 1:1 with the output's declared Fields.
type OutputAction struct {
	Output    string
	SourceIDs []string
}

// PrintDirective is an opaque debug-print request copied verbatim from
// logical to physical IR; it carries no lowering semantics.
type PrintDirective struct {
	Text string
}

// LogicalProbe is one probe attachment in a logical deployment.
type LogicalProbe struct {
	Name       string
	Tracepoint Tracepoint

	Constants []ConstantExpr
	Args      []ArgExpr
	Rets      []RetExpr
	MapValues []MapValueRef
	Latency   *LatencyRequest
	Stashes   []MapStashAction
	Deletes   []MapDeleteAction
	Outputs   []OutputAction
	Prints    []PrintDirective
}

// LogicalProgram is the full set of maps, outputs, and probes sharing a
// single source language.
type LogicalProgram struct {
	Language Language
	Maps     []LogicalMap
	Outputs  []LogicalOutput
	Probes   []LogicalProbe
}

// LogicalTracepoint wraps the one program a logical deployment may carry.
// Invariant 5 (§3): a LogicalDeployment contains exactly one of these.
type LogicalTracepoint struct {
	Program LogicalProgram
}

// LogicalDeployment is the top-level input to the lowering pass (§6).
type LogicalDeployment struct {
	DeploymentSpec DeploymentSpec
	Tracepoints    []LogicalTracepoint
}
