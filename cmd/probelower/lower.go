// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixie-io/probelower/arch"
	"github.com/pixie-io/probelower/ditypes"
	"github.com/pixie-io/probelower/lower"
)

func newLowerCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "lower <deployment.json>",
		Short: "Lower a LogicalDeployment JSON document into a PhysicalProgram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := lowerFile(args[0])
			if err != nil {
				return err
			}
			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(program)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the physical program here instead of stdout")
	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <deployment.json>",
		Short: "Lower a deployment and report success or the first lowering error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := lowerFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d probe(s), %d map(s), %d output(s)\n",
				len(program.Probes), len(program.Maps), len(program.Outputs))
			if host, err := arch.Host(); err == nil {
				regs := arch.Registers(host)
				fmt.Fprintf(cmd.OutOrStdout(), "host registers: sp=%s rc=%s\n", regs.StackPointer, regs.ReturnValue)
			}
			return nil
		},
	}
}

func lowerFile(path string) (*ditypes.PhysicalProgram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var dep ditypes.LogicalDeployment
	if err := json.NewDecoder(f).Decode(&dep); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return lower.Assemble(dep)
}
