// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func newReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively lower deployment files and inspect the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd)
		},
	}
}

func runRepl(cmd *cobra.Command) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "probelower> ",
		HistoryFile:     "",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("start repl: %w", err)
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, `probelower repl. Commands: lower <file>, validate <file>, quit`)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "lower":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: lower <file>")
				continue
			}
			program, err := lowerFile(fields[1])
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintf(out, "%d probe(s), %d map(s), %d output(s), %d struct(s)\n",
				len(program.Probes), len(program.Maps), len(program.Outputs), len(program.Structs))
		case "validate":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: validate <file>")
				continue
			}
			if _, err := lowerFile(fields[1]); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintln(out, "ok")
		default:
			fmt.Fprintf(out, "unknown command %q\n", fields[0])
		}
	}
}
