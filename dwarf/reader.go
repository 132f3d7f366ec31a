// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dwarf is the narrow collaborator interface the lowering pass
// consumes a DWARF reader through (C2, §4.2, §6). It is adapted from the
// by-name symbol lookups in golang.org/x/debug/debug/dwarf and the
// DWARF-to-Type classification in golang.org/x/debug/internal/gocore,
// rebuilt on the standard library's debug/dwarf and debug/elf instead of
// a vendored DWARF reader, since the reader itself is an external
// collaborator this subsystem is not responsible for (spec.md §1).
package dwarf

import (
	"debug/dwarf"
	"debug/elf"
	"fmt"
)

// Kind is the DWARF-derived shape of a type, abstracted down to the four
// categories the type mapper (C1) distinguishes plus a catch-all for
// anything else (arrays, funcs, ...), which is always a TypeUnsupported
// leaf. Complex numbers are DWARF base types and classify as KindBase;
// the type mapper has no entry for them.
type Kind uint8

const (
	KindBase Kind = iota
	KindPointer
	KindStruct
	KindVoid
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	case KindVoid:
		return "void"
	default:
		return "other"
	}
}

// ArgInfo describes one formal parameter (or, for Go, one synthesized
// return value) in a function's argument frame. Offset is the byte offset
// from the frame base, as DWARF records it (DW_OP_fbreg), before the
// stack-pointer bias the lowerer applies.
//
// When Kind is KindPointer, TypeName already names the pointee's type,
// not the pointer's — the next StructMemberInfo call operates on it
// directly, matching §4.5's "type information must be refreshed from
// DWARF at the next step" note.
type ArgInfo struct {
	Name     string
	Kind     Kind
	TypeName string
	Offset   int64
}

// RetInfo describes a C/C++ function's single return value.
type RetInfo struct {
	Kind     Kind
	TypeName string
}

// MemberInfo describes one field of a struct type.
type MemberInfo struct {
	Kind     Kind
	TypeName string
	Offset   int64
}

// Reader is the collaborator contract of §4.2 and §6: argument layout,
// return-value layout, and struct member layout, all keyed by name. No
// caller relies on anything about how a Reader is implemented.
type Reader interface {
	FunctionArgInfo(symbol string) (map[string]ArgInfo, error)
	FunctionRetInfo(symbol string) (RetInfo, error)
	StructMemberInfo(typeName, field string) (MemberInfo, error)
	Close() error
}

// Error wraps a failure from the DWARF adapter. The lowering pass
// surfaces it verbatim as a DwarfError (§7).
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("dwarf: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Open reads the DWARF debug info out of the ELF binary at path. The
// returned Reader owns the underlying file and must be Closed by the
// caller (§5: "Scoped DWARF reader... release on every error path").
func Open(path string) (Reader, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, &Error{Op: "open " + path, Err: err}
	}
	data, err := f.DWARF()
	if err != nil {
		f.Close()
		return nil, &Error{Op: "read DWARF section of " + path, Err: err}
	}
	return &reader{elf: f, data: data, structCache: map[string]*dwarf.StructType{}}, nil
}

type reader struct {
	elf         *elf.File
	data        *dwarf.Data
	structCache map[string]*dwarf.StructType
}

func (r *reader) Close() error { return r.elf.Close() }

func (r *reader) FunctionArgInfo(symbol string) (map[string]ArgInfo, error) {
	rdr := r.data.Reader()
	for {
		e, err := rdr.Next()
		if err != nil {
			return nil, &Error{Op: "scan for function " + symbol, Err: err}
		}
		if e == nil {
			break
		}
		if e.Tag != dwarf.TagSubprogram {
			continue
		}
		name, _ := e.Val(dwarf.AttrName).(string)
		if name != symbol {
			if e.Children {
				rdr.SkipChildren()
			}
			continue
		}
		args := map[string]ArgInfo{}
		if !e.Children {
			return args, nil
		}
		for {
			c, err := rdr.Next()
			if err != nil {
				return nil, &Error{Op: "scan parameters of " + symbol, Err: err}
			}
			if c == nil || c.Tag == 0 {
				return args, nil
			}
			if c.Children {
				rdr.SkipChildren()
			}
			if c.Tag != dwarf.TagFormalParameter {
				continue
			}
			argName, _ := c.Val(dwarf.AttrName).(string)
			if argName == "" {
				continue
			}
			typOff, ok := c.Val(dwarf.AttrType).(dwarf.Offset)
			if !ok {
				continue
			}
			dt, err := r.data.Type(typOff)
			if err != nil {
				return nil, &Error{Op: "type of parameter " + argName, Err: err}
			}
			kind, typeName := classify(dt)
			loc, _ := c.Val(dwarf.AttrLocation).([]byte)
			off, err := frameOffset(loc)
			if err != nil {
				return nil, &Error{Op: "location of parameter " + argName, Err: err}
			}
			args[argName] = ArgInfo{Name: argName, Kind: kind, TypeName: typeName, Offset: off}
		}
	}
	return nil, &Error{Op: "lookup", Err: fmt.Errorf("function %q not found", symbol)}
}

func (r *reader) FunctionRetInfo(symbol string) (RetInfo, error) {
	rdr := r.data.Reader()
	for {
		e, err := rdr.Next()
		if err != nil {
			return RetInfo{}, &Error{Op: "scan for function " + symbol, Err: err}
		}
		if e == nil {
			break
		}
		if e.Tag != dwarf.TagSubprogram {
			continue
		}
		name, _ := e.Val(dwarf.AttrName).(string)
		if name != symbol {
			if e.Children {
				rdr.SkipChildren()
			}
			continue
		}
		typOff, ok := e.Val(dwarf.AttrType).(dwarf.Offset)
		if !ok {
			return RetInfo{Kind: KindVoid}, nil
		}
		dt, err := r.data.Type(typOff)
		if err != nil {
			return RetInfo{}, &Error{Op: "return type of " + symbol, Err: err}
		}
		kind, typeName := classify(dt)
		return RetInfo{Kind: kind, TypeName: typeName}, nil
	}
	return RetInfo{}, &Error{Op: "lookup", Err: fmt.Errorf("function %q not found", symbol)}
}

func (r *reader) StructMemberInfo(typeName, field string) (MemberInfo, error) {
	st, err := r.findStruct(typeName)
	if err != nil {
		return MemberInfo{}, err
	}
	for _, f := range st.Field {
		if f.Name != field {
			continue
		}
		kind, tn := classify(f.Type)
		return MemberInfo{Kind: kind, TypeName: tn, Offset: f.ByteOffset}, nil
	}
	return MemberInfo{}, &Error{Op: "member lookup", Err: fmt.Errorf("no field %q on type %q", field, typeName)}
}

func (r *reader) findStruct(name string) (*dwarf.StructType, error) {
	if st, ok := r.structCache[name]; ok {
		return st, nil
	}
	rdr := r.data.Reader()
	for {
		e, err := rdr.Next()
		if err != nil {
			return nil, &Error{Op: "scan for struct " + name, Err: err}
		}
		if e == nil {
			break
		}
		if e.Tag != dwarf.TagStructType {
			if e.Children && e.Tag != dwarf.TagCompileUnit {
				rdr.SkipChildren()
			}
			continue
		}
		dt, err := r.data.Type(e.Offset)
		if err != nil {
			if e.Children {
				rdr.SkipChildren()
			}
			continue
		}
		st, ok := dt.(*dwarf.StructType)
		if !ok {
			continue
		}
		nm := structTypeName(st)
		r.structCache[nm] = st
		if nm == name {
			return st, nil
		}
	}
	return nil, &Error{Op: "lookup", Err: fmt.Errorf("struct type %q not found", name)}
}

// classify normalizes a debug/dwarf.Type into the Kind+name tuple C1 and
// C5 operate on. Typedefs and qualified (const/volatile) types are
// transparently unwrapped, matching internal/gocore/dwarf.go's handling
// of TypedefType ("copy info from base types into typedefs").
func classify(dt dwarf.Type) (Kind, string) {
	switch t := dt.(type) {
	case *dwarf.TypedefType:
		return classify(t.Type)
	case *dwarf.QualType:
		return classify(t.Type)
	case *dwarf.BoolType, *dwarf.IntType, *dwarf.UintType, *dwarf.FloatType,
		*dwarf.CharType, *dwarf.UcharType, *dwarf.ComplexType:
		return KindBase, dt.String()
	case *dwarf.PtrType:
		if _, ok := t.Type.(*dwarf.VoidType); ok {
			return KindPointer, ""
		}
		_, name := classify(t.Type)
		return KindPointer, name
	case *dwarf.StructType:
		return KindStruct, structTypeName(t)
	case *dwarf.VoidType:
		return KindVoid, ""
	default:
		return KindOther, dt.String()
	}
}

// structTypeName produces the name used to key the struct cache and to
// match a lowered expression's cur_type_name, stripping the "struct "/
// "union "/"class " tag DWARF prepends for C/C++ (Go struct names carry
// no such prefix).
func structTypeName(st *dwarf.StructType) string {
	name := st.StructName
	for _, prefix := range []string{"struct ", "union ", "class "} {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			return name[len(prefix):]
		}
	}
	return name
}

const dwOpFbreg = 0x91

// frameOffset decodes a DW_OP_fbreg location expression into its signed
// byte offset. Adapted from evalLocation/sleb128 in
// golang.org/x/debug/ogle/program/server/dwarf.go, which parses the
// sibling DW_OP_call_frame_cfa form for a different purpose (locating a
// traced process's registers); formal-parameter locations in function
// DWARF use DW_OP_fbreg instead.
func frameOffset(loc []byte) (int64, error) {
	if len(loc) == 0 {
		return 0, fmt.Errorf("empty location specifier")
	}
	if loc[0] != dwOpFbreg {
		return 0, fmt.Errorf("unsupported location specifier 0x%x", loc[0])
	}
	off, _, err := sleb128(loc[1:])
	return off, err
}

// sleb128 parses a signed integer encoded with sleb128 at the start of v,
// returning the integer and the remainder of v.
func sleb128(v []uint8) (s int64, rest []uint8, err error) {
	var shift uint
	var sign int64 = -1
	var i int
	var x uint8
	for i, x = range v {
		s |= (int64(x) & 0x7F) << shift
		shift += 7
		sign <<= 7
		if x&0x80 == 0 {
			if x&0x40 != 0 {
				s |= sign
			}
			break
		}
	}
	if i == len(v) {
		return 0, nil, fmt.Errorf("truncated sleb128")
	}
	return s, v[i+1:], nil
}
