// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package arch

import (
	"bytes"
	"fmt"

	"golang.org/x/sys/unix"
)

// Host reports the Architecture of the machine probelower is running on,
// read via uname(2). The CLI's validate command uses it to report the
// host's stack-pointer and return-value register names; lowering itself
// does not depend on it.
func Host() (*Architecture, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return nil, fmt.Errorf("arch: uname: %w", err)
	}
	machine := string(bytes.TrimRight(uts.Machine[:], "\x00"))
	switch machine {
	case "x86_64", "amd64":
		return &AMD64, nil
	case "aarch64", "arm64":
		return &ARM64, nil
	case "i686", "i386":
		return &X86, nil
	default:
		return nil, fmt.Errorf("arch: unsupported machine %q", machine)
	}
}
