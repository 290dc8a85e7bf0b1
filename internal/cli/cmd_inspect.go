package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/marcohefti/simbatch/internal/design"
	"github.com/marcohefti/simbatch/internal/schema"
)

type signalJSON struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type inspectResult struct {
	OK       bool         `json:"ok"`
	Design   string       `json:"design"`
	Inputs   []signalJSON `json:"inputs"`
	Outputs  []signalJSON `json:"outputs"`
	DataType string       `json:"dataType"`
	Prefix   string       `json:"prefix"`
}

func (r Runner) runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		workingDir      string
		dataType        string
		linearDataRange string
		jsonOut         bool
		help            bool
	)
	fs.StringVar(&workingDir, "w", "working_dir", "working directory")
	fs.StringVar(&workingDir, "working-dir", "working_dir", "working directory")
	fs.StringVar(&dataType, "d", schema.DefaultDataType, "data type")
	fs.StringVar(&dataType, "data-type", schema.DefaultDataType, "data type")
	fs.StringVar(&linearDataRange, "l", "", "linear data range option")
	fs.StringVar(&linearDataRange, "linear-data-range", "", "linear data range option")
	fs.BoolVar(&jsonOut, "json", false, "print JSON output")
	fs.BoolVar(&help, "h", false, "show help")
	fs.BoolVar(&help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return r.failUsage("inspect: invalid flags")
	}
	if help {
		printInspectHelp(r.Stdout)
		return 0
	}
	if !jsonOut {
		printInspectHelp(r.Stderr)
		return r.failUsage("inspect: require --json for stable output")
	}

	ctx := context.Background()
	client := design.Client{WorkingDir: workingDir, LinearDataRange: linearDataRange}

	// Unlike the batch pipeline, a direct query has no later validation to
	// absorb a soft-fail, so introspection errors are hard here.
	inputs, err := client.Inputs(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "%s: %s\n", codeDesign, err.Error())
		return 1
	}
	outputs, err := client.Outputs(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "%s: %s\n", codeDesign, err.Error())
		return 1
	}
	prefix, err := client.Prefix(ctx, dataType)
	if err != nil {
		fmt.Fprintf(r.Stderr, "%s: %s\n", codeDesign, err.Error())
		return 1
	}

	res := inspectResult{
		OK:       true,
		Design:   client.DesignFile(),
		Inputs:   toSignalJSON(inputs),
		Outputs:  toSignalJSON(outputs),
		DataType: dataType,
		Prefix:   prefix,
	}
	return r.writeJSON(res)
}

func toSignalJSON(m design.SignalMap) []signalJSON {
	out := make([]signalJSON, 0, m.Len())
	for _, sig := range m.Signals() {
		out = append(out, signalJSON{Index: sig.Index, Name: sig.Name})
	}
	return out
}

func (r Runner) writeJSON(v any) int {
	enc := json.NewEncoder(r.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(r.Stderr, "%s: failed to encode json\n", codeIO)
		return 1
	}
	return 0
}

func printInspectHelp(w io.Writer) {
	fmt.Fprint(w, `Usage:
  simbatch inspect [--working-dir <dir>] [--data-type <type>] [--linear-data-range <range>] --json
`)
}
