// Package batch runs the per-row simulation pipeline: sandbox configuration,
// input binding, output capture planning, engine invocation, and result
// decoding, strictly one row at a time.
package batch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/marcohefti/simbatch/internal/config"
	"github.com/marcohefti/simbatch/internal/decode"
	"github.com/marcohefti/simbatch/internal/design"
	"github.com/marcohefti/simbatch/internal/sim"
	"github.com/marcohefti/simbatch/internal/simbox"
	"github.com/marcohefti/simbatch/internal/table"
)

// Deps are the injected external effects. Production wires the exec-backed
// applier and engine; tests wire fakes and never spawn a process.
type Deps struct {
	Applier simbox.Applier
	Engine  sim.Engine
	// OnRowStart, when set, is told the 1-based index of each accepted row
	// before any sandbox action runs (used to stamp tool trace events).
	OnRowStart func(acceptedRow int)
}

// ProcessRow runs one accepted row through the full pipeline. It is a pure
// function of the row, the configuration, and the signal maps, modulo the
// injected effects: build the sandbox script, apply it in order, invoke the
// engine once, decode the readout. Any sandbox or engine failure is returned
// as-is and is fatal for the batch.
func ProcessRow(ctx context.Context, values []string, cfg config.RunConfig, inputs, outputs design.SignalMap, deps Deps) (decode.Record, error) {
	if err := deps.Applier.Reset(ctx); err != nil {
		return decode.Record{}, fmt.Errorf("resetting sandbox state: %w", err)
	}

	script, err := simbox.Build(values, inputs, outputs, cfg)
	if err != nil {
		return decode.Record{}, err
	}
	for _, action := range script {
		if err := deps.Applier.Apply(ctx, action); err != nil {
			return decode.Record{}, err
		}
	}

	readout, err := deps.Engine.Run(ctx, sim.Invocation{
		Steps:         cfg.SimulationSteps,
		StopOnValidOf: sim.StopCondition(outputs.Len()),
	})
	if err != nil {
		return decode.Record{}, err
	}

	return decode.Decode(readout, cfg), nil
}

// Options carries the run-wide immutable state and the diagnostic sinks.
type Options struct {
	Config  config.RunConfig
	Inputs  design.SignalMap
	Outputs design.SignalMap
	Stdout  io.Writer
	Stderr  io.Writer
}

// Outcome counts what happened to the batch's rows.
type Outcome struct {
	RowsAccepted int
	RowsRejected int
}

// Execute streams rows from in, processes each accepted row, and appends one
// record per accepted row to out, in input order. A column-count mismatch
// rejects the row with a diagnostic and continues; sandbox and engine
// failures abort the batch with the partial output left in place.
func Execute(ctx context.Context, in io.Reader, out *table.Writer, opts Options, deps Deps) (Outcome, error) {
	cfg := opts.Config
	var outcome Outcome

	if cfg.Header {
		if err := out.Header(opts.Outputs.Len(), cfg.ML, cfg.BenchCore); err != nil {
			return outcome, err
		}
	}

	reader := table.NewReader(in)
	for {
		row, ok := reader.Next()
		if !ok {
			break
		}

		if len(row.Values) != opts.Inputs.Len() {
			fmt.Fprintf(opts.Stderr, "input line %d has %d columns, expected %d; row skipped\n",
				row.Line, len(row.Values), opts.Inputs.Len())
			outcome.RowsRejected++
			continue
		}

		outcome.RowsAccepted++
		if deps.OnRowStart != nil {
			deps.OnRowStart(outcome.RowsAccepted)
		}
		fmt.Fprintf(opts.Stdout, "Running simulation with inputs: %s\n", strings.Join(row.Values, table.Delimiter))

		rec, err := ProcessRow(ctx, row.Values, cfg, opts.Inputs, opts.Outputs, deps)
		if err != nil {
			return outcome, fmt.Errorf("input line %d: %w", row.Line, err)
		}
		if err := out.Record(rec, cfg.BenchCore); err != nil {
			return outcome, err
		}
	}
	if err := reader.Err(); err != nil {
		return outcome, err
	}
	return outcome, out.Flush()
}
