// Package main is the entry point for the rjy binary.
//
// rjy tracks SSH port-forwarding tunnels that expose remote Jupyter notebook
// servers on the local machine. Each invocation loads the persisted session
// registry, applies one operation, and saves the registry back.
//
// Usage:
//
//	rjy                         # launch the interactive session dashboard
//	rjy new <link> <host>       # forward and track a Jupyter link
//	rjy list                    # show tracked sessions and liveness
//	rjy rc [key]                # reconnect one session, or all
//	rjy dc [key]                # disconnect one session, or all
//	rjy drop <key> | --all      # stop and forget sessions
//
// The CLI is constructed in internal/cli; this file wires it together and
// handles top-level error reporting.
package main

import (
	"fmt"
	"os"

	"github.com/remote-jupyter/rjy/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()

	// Cobra handles argument parsing, subcommand routing, and help output.
	// Any error returned by a RunE handler is reported on stderr and the
	// process exits nonzero.
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
