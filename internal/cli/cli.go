// Package cli is the simbatch command surface: subcommand dispatch, flag
// parsing, exit-code mapping, and the coded diagnostics contract.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"
)

type Runner struct {
	Version string
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
}

func (r Runner) Run(args []string) int {
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}
	if r.Now == nil {
		r.Now = time.Now
	}

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printRootHelp(r.Stdout)
		return 0
	}

	switch args[0] {
	case "run":
		return r.runRun(args[1:])
	case "inspect":
		return r.runInspect(args[1:])
	case "version":
		fmt.Fprintf(r.Stdout, "%s\n", r.Version)
		return 0
	default:
		fmt.Fprintf(r.Stderr, "%s: unknown command %q\n", codeUsage, args[0])
		printRootHelp(r.Stderr)
		return 2
	}
}

func (r Runner) failUsage(msg string) int {
	fmt.Fprintf(r.Stderr, "%s: %s\n", codeUsage, msg)
	return 2
}

func printRootHelp(w io.Writer) {
	fmt.Fprint(w, `SimBatch: a batch simulator for BondMachine designs

SimBatch runs batch simulations of a compiled BondMachine design using a CSV
input file and producing a CSV output file. It expects the design to be
already compiled in the working directory as bondmachine.json.

Usage:
  simbatch run [options]
  simbatch inspect --working-dir <dir> --json
  simbatch version

Commands:
  run       Run the batch: one simulation per input row.
  inspect   Print the design's input/output signals and numeric prefix.
  version   Print version.
`)
}
