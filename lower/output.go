// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lower

import (
	"strconv"

	"github.com/pixie-io/probelower/ditypes"
)

// lowerOutput is C8: assemble SourceIDs into an output record struct,
// prefixed with the implicit columns every record carries (§4.4), check
// the declared field arity matches, and register the output's struct
// type (or validate it against an earlier probe's, invariant 4).
func (l *probeLowerer) lowerOutput(outputs *outputRegistry, implicit []string, a ditypes.OutputAction) error {
	declared, err := outputs.fields(l.probe.Name, a.Output)
	if err != nil {
		return err
	}
	if len(declared) != len(a.SourceIDs) {
		return l.err(ditypes.ErrInvalidArgument, "output \""+a.Output+"\" declares "+strconv.Itoa(len(declared))+" fields, got "+strconv.Itoa(len(a.SourceIDs)))
	}

	allFields := append(append([]string{}, implicit...), declared...)
	allSources := append(append([]string{}, implicit...), a.SourceIDs...)

	s, err := l.buildStruct(a.Output, allFields, allSources)
	if err != nil {
		return err
	}
	if err := l.structs.register(l.probe.Name, s); err != nil {
		return err
	}
	if err := outputs.setStructType(l.probe.Name, a.Output, s.Name); err != nil {
		return err
	}

	l.probe.Outputs = append(l.probe.Outputs, ditypes.PerfBufferAction{PerfBuffer: a.Output, Variable: a.Output + "_value"})
	return nil
}
