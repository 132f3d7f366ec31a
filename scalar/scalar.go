// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scalar defines the closed set of leaf value types the lowering
// pass can ever produce. Every variable emitted by the lower package ends
// up typed with exactly one of these.
package scalar

// Type is the scalar type carried by a leaf variable, a map field, or an
// output-struct field. It is a closed enum: the lowering pass never invents
// a new Type value, it only ever returns one of the constants below or an
// error.
type Type uint8

const (
	Unknown Type = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Int  // platform native int
	Uint8
	Uint16
	Uint32
	Uint64
	Uint // platform native uint
	Short
	UShort
	Long
	ULong
	LongLong
	ULongLong
	Char
	UChar
	Float
	Double
	VoidPointer
	String
	ByteArray
)

var names = [...]string{
	"UNKNOWN",
	"BOOL",
	"INT8",
	"INT16",
	"INT32",
	"INT64",
	"INT",
	"UINT8",
	"UINT16",
	"UINT32",
	"UINT64",
	"UINT",
	"SHORT",
	"USHORT",
	"LONG",
	"ULONG",
	"LONGLONG",
	"ULONGLONG",
	"CHAR",
	"UCHAR",
	"FLOAT",
	"DOUBLE",
	"VOID_POINTER",
	"STRING",
	"BYTE_ARRAY",
}

func (t Type) String() string {
	if int(t) < len(names) {
		return names[t]
	}
	return "UNKNOWN"
}
