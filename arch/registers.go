// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

// RegisterSet names, per architecture, the hardware registers behind the
// stack-pointer and return-value roles that sp_ and rc_ are bound to.
// These are the same registers golang.org/x/sys/unix.PtraceRegs exposes
// per GOARCH (Rsp/Rax on amd64, Sp/Regs[0] on arm64). The lower package
// does not use this table: a Register variable records only the role
// (ditypes.RegisterStackPointer or ditypes.RegisterReturnValue). The
// CLI's validate command prints the host's names from it.
type RegisterSet struct {
	StackPointer string
	ReturnValue  string
}

var AMD64Registers = RegisterSet{
	StackPointer: "rsp",
	ReturnValue:  "rax",
}

var ARM64Registers = RegisterSet{
	StackPointer: "sp",
	ReturnValue:  "x0",
}

var X86Registers = RegisterSet{
	StackPointer: "esp",
	ReturnValue:  "eax",
}

// Registers returns the RegisterSet for a, or the zero value if a is nil.
func Registers(a *Architecture) RegisterSet {
	if a == nil {
		return RegisterSet{}
	}
	return a.Registers
}
