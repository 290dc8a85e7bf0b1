package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/marcohefti/simbatch/internal/batch"
	"github.com/marcohefti/simbatch/internal/config"
	"github.com/marcohefti/simbatch/internal/design"
	"github.com/marcohefti/simbatch/internal/ids"
	"github.com/marcohefti/simbatch/internal/schema"
	"github.com/marcohefti/simbatch/internal/sim"
	"github.com/marcohefti/simbatch/internal/simbox"
	"github.com/marcohefti/simbatch/internal/store"
	"github.com/marcohefti/simbatch/internal/table"
	"github.com/marcohefti/simbatch/internal/toolexec"
)

const lockWait = 5 * time.Second

func (r Runner) runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // avoid flag package writing to stderr

	// Sentinel defaults ("" / 0 / -1) mean "not set on the command line", so
	// a batch file value survives unless a flag overrides it.
	var (
		workingDir      string
		inputFile       string
		outputFile      string
		steps           int
		dataType        string
		ml              bool
		benchCore       bool
		header          bool
		includePrefix   bool
		linearDataRange string
		stopOnValidOf   int
		delaysFile      string
		batchFile       string
		noTrace         bool
		noLock          bool
		help            bool
	)
	fs.StringVar(&workingDir, "w", "", "working directory")
	fs.StringVar(&workingDir, "working-dir", "", "working directory")
	fs.StringVar(&inputFile, "i", "", "input CSV file")
	fs.StringVar(&inputFile, "input-file", "", "input CSV file")
	fs.StringVar(&outputFile, "o", "", "output CSV file")
	fs.StringVar(&outputFile, "output-file", "", "output CSV file")
	fs.IntVar(&steps, "s", 0, "simulation steps")
	fs.IntVar(&steps, "simulation-steps", 0, "simulation steps")
	fs.StringVar(&dataType, "d", "", "data type for outputs")
	fs.StringVar(&dataType, "data-type", "", "data type for outputs")
	fs.BoolVar(&ml, "m", false, "enable ML output formatting")
	fs.BoolVar(&ml, "ml", false, "enable ML output formatting")
	fs.BoolVar(&benchCore, "b", false, "enable benchcore mode")
	fs.BoolVar(&benchCore, "benchcore", false, "enable benchcore mode")
	fs.BoolVar(&header, "H", false, "include header row in output CSV")
	fs.BoolVar(&header, "header", false, "include header row in output CSV")
	fs.BoolVar(&includePrefix, "P", false, "include data type prefix in output CSV")
	fs.BoolVar(&includePrefix, "prefix", false, "include data type prefix in output CSV")
	fs.StringVar(&linearDataRange, "l", "", "linear data range option")
	fs.StringVar(&linearDataRange, "linear-data-range", "", "linear data range option")
	fs.IntVar(&stopOnValidOf, "v", -1, "stop on valid of output index N")
	fs.IntVar(&stopOnValidOf, "stop-on-valid-of", -1, "stop on valid of output index N")
	fs.StringVar(&delaysFile, "y", "", "delays file")
	fs.StringVar(&delaysFile, "delays-file", "", "delays file")
	fs.StringVar(&batchFile, "batch-file", "", "batch spec file (yaml or json)")
	fs.BoolVar(&noTrace, "no-trace", false, "disable the tool event trace")
	fs.BoolVar(&noLock, "no-lock", false, "do not lock the working dir")
	fs.BoolVar(&help, "h", false, "show help")
	fs.BoolVar(&help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return r.failUsage("run: invalid flags")
	}
	if help {
		printRunHelp(r.Stdout)
		return 0
	}

	cfg := config.Default()
	if batchFile != "" {
		b, err := config.ParseBatchFile(batchFile)
		if err != nil {
			fmt.Fprintf(r.Stderr, "%s: %s\n", codeUsage, err.Error())
			return 2
		}
		cfg = b.ApplyTo(cfg)
	}
	if workingDir != "" {
		cfg.WorkingDir = workingDir
	}
	if inputFile != "" {
		cfg.InputFile = inputFile
	}
	if outputFile != "" {
		cfg.OutputFile = outputFile
	}
	if steps > 0 {
		cfg.SimulationSteps = steps
	}
	if dataType != "" {
		cfg.DataType = dataType
	}
	if ml {
		cfg.ML = true
	}
	if benchCore {
		cfg.BenchCore = true
	}
	if header {
		cfg.Header = true
	}
	if includePrefix {
		cfg.OmitPrefix = false
	}
	if linearDataRange != "" {
		cfg.LinearDataRange = linearDataRange
	}
	if stopOnValidOf >= 0 {
		cfg.StopOnValidOf = stopOnValidOf
	}
	if delaysFile != "" {
		cfg.DelaysFile = delaysFile
	}
	if noTrace {
		cfg.Trace = false
	}
	if noLock {
		cfg.Lock = false
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return r.failUsage("run: " + err.Error())
	}

	return r.executeBatch(context.Background(), cfg)
}

func (r Runner) executeBatch(ctx context.Context, cfg config.RunConfig) int {
	client := design.Client{WorkingDir: cfg.WorkingDir, LinearDataRange: cfg.LinearDataRange}

	inputs, err := client.Inputs(ctx)
	if err != nil {
		// Soft-fail: every row will then be rejected by column-count
		// validation, with a diagnostic per row.
		fmt.Fprintf(r.Stderr, "%s: loading inputs: %s\n", codeDesign, err.Error())
	}
	outputs, err := client.Outputs(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "%s: loading outputs: %s\n", codeDesign, err.Error())
	}
	if prefix, err := client.Prefix(ctx, cfg.DataType); err != nil {
		// Not fatal, but the stale default may mis-format output.
		fmt.Fprintf(r.Stderr, "%s: resolving %s prefix (keeping %q): %s\n", codeDesign, cfg.DataType, cfg.Prefix, err.Error())
	} else {
		cfg.Prefix = prefix
	}

	if cfg.StopOnValidOf >= 0 && cfg.StopOnValidOf != sim.StopCondition(outputs.Len()) {
		fmt.Fprintf(r.Stderr, "note: stop-on-valid-of %d overridden; the batch always stops on the last output (index %d)\n",
			cfg.StopOnValidOf, sim.StopCondition(outputs.Len()))
	}

	in, err := os.Open(cfg.InputFile)
	if err != nil {
		fmt.Fprintf(r.Stderr, "%s: opening input file: %s\n", codeIO, err.Error())
		return 1
	}
	defer in.Close()

	out, err := os.Create(cfg.OutputFile)
	if err != nil {
		fmt.Fprintf(r.Stderr, "%s: creating output file: %s\n", codeIO, err.Error())
		return 1
	}
	defer out.Close()

	runID, err := ids.NewRunID(r.Now())
	if err != nil {
		fmt.Fprintf(r.Stderr, "%s: minting run id: %s\n", codeIO, err.Error())
		return 1
	}

	tracer := &toolTracer{runID: runID, path: cfg.TraceFile(), enabled: cfg.Trace, now: r.Now}
	deps := batch.Deps{
		Applier:    simbox.ToolApplier{ScriptFile: cfg.SimboxFile(), Observe: tracer.observe},
		Engine:     sim.ToolEngine{Config: cfg, Observe: tracer.observe},
		OnRowStart: tracer.setRow,
	}
	opts := batch.Options{
		Config:  cfg,
		Inputs:  inputs,
		Outputs: outputs,
		Stdout:  r.Stdout,
		Stderr:  r.Stderr,
	}

	started := r.Now()
	var outcome batch.Outcome
	runBatch := func() error {
		var execErr error
		outcome, execErr = batch.Execute(ctx, in, table.NewWriter(out), opts, deps)
		return execErr
	}

	var batchErr error
	if cfg.Lock {
		batchErr = store.WithDirLock(cfg.LockDir(), lockWait, runBatch)
	} else {
		batchErr = runBatch()
	}

	summary := batch.Summary(runID, cfg, inputs, outputs, started, r.Now(), outcome, batchErr)
	if err := store.WriteJSONAtomic(cfg.SummaryFile(), summary); err != nil {
		fmt.Fprintf(r.Stderr, "%s: writing run summary: %s\n", codeIO, err.Error())
	}

	if batchErr == nil {
		return 0
	}

	var applyErr *simbox.ApplyError
	var engineErr *sim.EngineError
	switch {
	case errors.As(batchErr, &applyErr):
		fmt.Fprintf(r.Stderr, "%s: %s\n", codeSandbox, batchErr.Error())
		return 2
	case errors.As(batchErr, &engineErr):
		fmt.Fprintf(r.Stderr, "%s: %s\n", codeEngine, batchErr.Error())
		return 2
	case errors.Is(batchErr, store.ErrLockTimeout):
		fmt.Fprintf(r.Stderr, "%s: %s\n", codeLock, batchErr.Error())
		return 1
	default:
		fmt.Fprintf(r.Stderr, "%s: %s\n", codeIO, batchErr.Error())
		return 1
	}
}

// toolTracer appends one ToolEventV1 per external invocation. Best effort:
// a broken trace file never fails the batch.
type toolTracer struct {
	runID   string
	path    string
	enabled bool
	now     func() time.Time
	row     int
}

func (t *toolTracer) setRow(acceptedRow int) { t.row = acceptedRow }

func (t *toolTracer) observe(argv []string, res toolexec.Result) {
	if !t.enabled || len(argv) == 0 {
		return
	}
	ev := schema.ToolEventV1{
		V:          schema.ToolEventSchemaV1,
		TS:         t.now().UTC().Format(time.RFC3339Nano),
		RunID:      t.runID,
		Row:        t.row,
		Tool:       argv[0],
		Argv:       argv,
		OK:         res.OK(),
		ExitCode:   res.ExitCode,
		DurationMs: res.DurationMs,
	}
	if !res.OK() {
		ev.ErrPreview = res.Stderr
	}
	_ = store.AppendJSONL(t.path, ev)
}

func printRunHelp(w io.Writer) {
	fmt.Fprint(w, `Usage:
  simbatch run [options]

Options:
  -w, --working-dir DIR         set the working directory (default: working_dir)
  -i, --input-file FILE         set the input CSV file (default: simbatch_input.csv)
  -o, --output-file FILE        set the output CSV file (default: working_dir/simbatch_output.csv)
  -s, --simulation-steps N      number of simulation steps (default: 200)
  -m, --ml                      enable ML output formatting (probabilities + classification)
  -b, --benchcore               enable benchcore mode
  -H, --header                  include header row in output CSV
  -P, --prefix                  include data type prefix in output CSV
  -d, --data-type TYPE          data type for outputs (e.g. float32) (default: float32)
  -l, --linear-data-range RANGE pass a linear data range option to the toolchain
  -v, --stop-on-valid-of N      stop on valid of output index N (always overridden to the last output)
  -y, --delays-file FILE        set the delays file
      --batch-file FILE         load a batch spec (yaml or json); flags override it
      --no-trace                disable the tool event trace
      --no-lock                 do not lock the working dir
  -h, --help                    show this help message and exit

Example:
  simbatch run -w working_dir -i input.csv -o out.csv -s 200
`)
}
