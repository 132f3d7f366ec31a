// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch contains architecture-specific definitions.
package arch

// Architecture records the pointer width of an architecture and the
// hardware registers behind the stack-pointer and return-value roles
// that sp_/rc_ are bound to. The lower package does not import it.
type Architecture struct {
	// PointerSize is the size of a pointer, in bytes.
	PointerSize int
	Registers   RegisterSet
}

var AMD64 = Architecture{
	PointerSize: 8,
	Registers:   AMD64Registers,
}

var X86 = Architecture{
	PointerSize: 4,
	Registers:   X86Registers,
}

var ARM64 = Architecture{
	PointerSize: 8,
	Registers:   ARM64Registers,
}
