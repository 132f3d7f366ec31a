// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command probelower lowers a logical tracing deployment, described as
// JSON, into a physical program ready for a kernel-probe code generator.
// Run "probelower help" for a list of commands.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var logger = log.New(os.Stderr, "probelower: ", 0)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		logger.Println(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "probelower",
		Short: "Lower a logical tracing deployment into a physical probe program",
	}
	root.AddCommand(newLowerCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newReplCommand())
	return root
}
