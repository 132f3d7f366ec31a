// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ditypes

import "github.com/pixie-io/probelower/scalar"

// VariableKind is the tag of the Variable variant union (§3, §9). Modeled
// as a tagged struct rather than an interface hierarchy so the downstream
// generator's switch over Kind is exhaustive by construction and the
// variable list stays a flat, trivially serializable slice.
type VariableKind uint8

const (
	KindRegister VariableKind = iota
	KindBuiltin
	KindConstant
	KindMemory
	KindMapLookup
	KindMember
	KindStruct
	KindBinaryExpr
)

func (k VariableKind) String() string {
	switch k {
	case KindRegister:
		return "Register"
	case KindBuiltin:
		return "Builtin"
	case KindConstant:
		return "Constant"
	case KindMemory:
		return "Memory"
	case KindMapLookup:
		return "MapLookup"
	case KindMember:
		return "Member"
	case KindStruct:
		return "Struct"
	case KindBinaryExpr:
		return "BinaryExpr"
	default:
		return "Unknown"
	}
}

// RegisterName is the fixed set of machine registers a Register variable
// can bind to.
type RegisterName uint8

const (
	RegisterUnknown RegisterName = iota
	RegisterStackPointer
	RegisterReturnValue
)

func (r RegisterName) String() string {
	switch r {
	case RegisterStackPointer:
		return "SP"
	case RegisterReturnValue:
		return "RC"
	default:
		return "UNKNOWN"
	}
}

// BinaryOp is the operator of a BinaryExpr variable. Only subtraction is
// ever produced today (latency = ktime - start_ktime_ns), but the field is
// kept as an enum rather than a hardcoded '-' so the downstream generator's
// switch stays exhaustive if a second op is ever added.
type BinaryOp uint8

const (
	OpUnknown BinaryOp = iota
	OpSub
)

func (o BinaryOp) String() string {
	if o == OpSub {
		return "-"
	}
	return "?"
}

// FieldAssignment assigns the named Source variable to Field of the
// enclosing Struct variable.
type FieldAssignment struct {
	Field  string
	Source string
}

// Variable is one entry in a PhysicalProbe's ordered variable list.
// Fields below Type are valid only for the subset of Kinds named in their
// comment; this mirrors the gocore Type struct's "fields only valid for a
// subset of kinds" convention rather than a class hierarchy per Kind.
type Variable struct {
	Name string
	Kind VariableKind
	Type scalar.Type

	// KindRegister
	Register RegisterName

	// KindBuiltin
	Builtin BuiltinKind

	// KindConstant
	ConstantValue string

	// KindMemory: value lives at Offset bytes from the value of Base,
	// where Base is the name of a variable defined strictly earlier in
	// the same probe (invariant P1/invariant 2).
	Base   string
	Offset int64

	// KindMapLookup: a pointer into Map's value struct, keyed by the
	// variable named KeyVar.
	Map    string
	KeyVar string

	// KindMember: field FieldName of struct-typed variable Struct,
	// optionally reached through a pointer (map lookups yield pointers).
	Struct    string
	Pointer   bool
	FieldName string

	// KindStruct: a stack-allocated aggregate of type StructType with
	// each field assigned from a named variable.
	StructType  string
	Assignments []FieldAssignment

	// KindBinaryExpr
	Op  BinaryOp
	LHS string
	RHS string
}

// StructField is one field of a registered Struct.
type StructField struct {
	Name string
	Type scalar.Type
}

// Struct is a map-value or output-record schema, content-addressed by
// Name (invariant 4, §3).
type Struct struct {
	Name   string
	Fields []StructField
}

// Map is a physical in-kernel map: its key type and the name of its
// registered value Struct.
type Map struct {
	Name      string
	KeyType   scalar.Type
	ValueType string
}

// Output is a physical perf buffer: its declared field names and the name
// of its registered value Struct.
type Output struct {
	Name       string
	Fields     []string
	StructType string
}

// StashAction writes Value (a KindStruct variable name) into Map keyed by
// the resolved built-in variable Key.
type StashAction struct {
	Map       string
	Key       string
	Value     string
	Condition string
}

// DeleteAction removes Map's entry for the resolved built-in variable Key.
type DeleteAction struct {
	Map string
	Key string
}

// PerfBufferAction emits Variable (a KindStruct variable name) to PerfBuffer.
type PerfBufferAction struct {
	PerfBuffer string
	Variable   string
}

// PhysicalProbe is one fully-lowered probe: every variable carries an
// explicit memory-access recipe and every action references variables by
// name.
type PhysicalProbe struct {
	Name       string
	Tracepoint Tracepoint
	Variables  []Variable
	Stashes    []StashAction
	Deletes    []DeleteAction
	Outputs    []PerfBufferAction
	Prints     []PrintDirective
	Latency    string // name of the KindBinaryExpr latency variable, if requested
}

// PhysicalProgram is the output of the lowering pass (§6).
type PhysicalProgram struct {
	DeploymentSpec DeploymentSpec
	Language       Language
	Maps           []Map
	Outputs        []Output
	Structs        []Struct
	Probes         []PhysicalProbe
}
