package batch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/marcohefti/simbatch/internal/config"
	"github.com/marcohefti/simbatch/internal/design"
	"github.com/marcohefti/simbatch/internal/sim"
	"github.com/marcohefti/simbatch/internal/simbox"
	"github.com/marcohefti/simbatch/internal/table"
)

type fakeApplier struct {
	resets  int
	scripts [][]simbox.Action
	failOn  string
}

func (f *fakeApplier) Reset(ctx context.Context) error {
	f.resets++
	f.scripts = append(f.scripts, nil)
	return nil
}

func (f *fakeApplier) Apply(ctx context.Context, a simbox.Action) error {
	if f.failOn != "" && a.Kind == f.failOn {
		return errSandbox
	}
	last := len(f.scripts) - 1
	f.scripts[last] = append(f.scripts[last], a)
	return nil
}

var errSandbox = errors.New("sandbox action rejected")

type fakeEngine struct {
	readouts []string
	invs     []sim.Invocation
	err      error
}

func (f *fakeEngine) Run(ctx context.Context, inv sim.Invocation) (string, error) {
	f.invs = append(f.invs, inv)
	if f.err != nil {
		return "", f.err
	}
	i := len(f.invs) - 1
	if i >= len(f.readouts) {
		i = len(f.readouts) - 1
	}
	return f.readouts[i], nil
}

func testOptions(inputLines, outputLines string) Options {
	return Options{
		Config:  config.Default().Normalize(),
		Inputs:  design.ParseSignalLines(inputLines),
		Outputs: design.ParseSignalLines(outputLines),
		Stdout:  &strings.Builder{},
		Stderr:  &strings.Builder{},
	}
}

func runExecute(t *testing.T, input string, opts Options, deps Deps) (string, Outcome, error) {
	t.Helper()
	var out strings.Builder
	outcome, err := Execute(context.Background(), strings.NewReader(input), table.NewWriter(&out), opts, deps)
	return out.String(), outcome, err
}

func TestExecute_PlainModeRow(t *testing.T) {
	opts := testOptions("0 a\n1 b\n", "0 o0\n")
	engine := &fakeEngine{readouts: []string{"0f3.5\n"}}
	got, outcome, err := runExecute(t, "1,2\n", opts, Deps{Applier: &fakeApplier{}, Engine: engine})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "3.5\n" {
		t.Fatalf("output = %q, want %q", got, "3.5\n")
	}
	if outcome.RowsAccepted != 1 || outcome.RowsRejected != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestExecute_MLModeRow(t *testing.T) {
	opts := testOptions("0 a\n1 b\n", "0 o0\n1 o1\n")
	opts.Config.ML = true
	engine := &fakeEngine{readouts: []string{"0f0.1 0f0.9"}}
	got, _, err := runExecute(t, "1,2\n", opts, Deps{Applier: &fakeApplier{}, Engine: engine})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "0.1,0.9,1\n" {
		t.Fatalf("output = %q, want %q", got, "0.1,0.9,1\n")
	}
}

func TestExecute_BenchCoreRow(t *testing.T) {
	opts := testOptions("0 a\n1 b\n", "0 o0\n1 o1\n")
	opts.Config.BenchCore = true
	engine := &fakeEngine{readouts: []string{"0f3.5 0f42"}}
	got, _, err := runExecute(t, "1,2\n", opts, Deps{Applier: &fakeApplier{}, Engine: engine})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "3.5,42\n" {
		t.Fatalf("output = %q, want %q", got, "3.5,42\n")
	}
}

func TestExecute_RejectedRowDoesNotAbortBatch(t *testing.T) {
	opts := testOptions("0 a\n1 b\n", "0 o0\n")
	var stderr strings.Builder
	opts.Stderr = &stderr
	applier := &fakeApplier{}
	engine := &fakeEngine{readouts: []string{"0f1.0", "0f2.0"}}

	got, outcome, err := runExecute(t, "1\n3,4\n", opts, Deps{Applier: applier, Engine: engine})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.RowsRejected != 1 || outcome.RowsAccepted != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !strings.Contains(stderr.String(), "row skipped") {
		t.Fatalf("expected reject diagnostic, got %q", stderr.String())
	}
	// The later valid row still produced an output record.
	if got != "1.0\n" {
		t.Fatalf("output = %q", got)
	}
	// No sandbox action was attempted for the rejected row.
	if applier.resets != 1 {
		t.Fatalf("expected 1 sandbox reset, got %d", applier.resets)
	}
}

func TestExecute_ScriptRebuiltPerRow(t *testing.T) {
	opts := testOptions("0 a\n", "0 o0\n")
	applier := &fakeApplier{}
	engine := &fakeEngine{readouts: []string{"0f1.0", "0f2.0"}}

	_, _, err := runExecute(t, "1\n2\n", opts, Deps{Applier: applier, Engine: engine})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if applier.resets != 2 {
		t.Fatalf("expected a reset per row, got %d", applier.resets)
	}
	if len(applier.scripts[0]) != len(applier.scripts[1]) {
		t.Fatalf("scripts differ in shape across rows")
	}
	// Same row shape, different bound value: scripts must be fresh, not
	// accumulated.
	if diff := cmp.Diff(simbox.Bind("a", "1"), applier.scripts[0][len(simbox.Preamble())]); diff != "" {
		t.Fatalf("row 1 binding mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(simbox.Bind("a", "2"), applier.scripts[1][len(simbox.Preamble())]); diff != "" {
		t.Fatalf("row 2 binding mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_SandboxFailureIsFatal(t *testing.T) {
	opts := testOptions("0 a\n", "0 o0\n")
	applier := &fakeApplier{failOn: simbox.KindToggle}
	engine := &fakeEngine{readouts: []string{"0f1.0"}}

	_, outcome, err := runExecute(t, "1\n2\n", opts, Deps{Applier: applier, Engine: engine})
	if err == nil {
		t.Fatalf("expected sandbox failure to abort the batch")
	}
	if outcome.RowsAccepted != 1 {
		t.Fatalf("expected abort on first accepted row, outcome = %+v", outcome)
	}
	if len(engine.invs) != 0 {
		t.Fatalf("engine must not run after a sandbox failure")
	}
}

func TestExecute_StopConditionAlwaysLastOutput(t *testing.T) {
	opts := testOptions("0 a\n", "0 o0\n1 o1\n2 o2\n")
	opts.Config.StopOnValidOf = 0 // user request is ignored by design
	engine := &fakeEngine{readouts: []string{"0f1.0 0f2.0 0f3.0"}}

	_, _, err := runExecute(t, "1\n", opts, Deps{Applier: &fakeApplier{}, Engine: engine})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(engine.invs) != 1 || engine.invs[0].StopOnValidOf != 2 {
		t.Fatalf("invocations = %+v, want stop-on-valid-of 2", engine.invs)
	}
	if engine.invs[0].Steps != 200 {
		t.Fatalf("steps = %d, want 200", engine.invs[0].Steps)
	}
}

func TestExecute_EmptyInputMapRejectsEveryRow(t *testing.T) {
	// A failed introspection yields an empty input map; every row then fails
	// column-count validation with a diagnostic instead of crashing.
	opts := testOptions("", "0 o0\n")
	var stderr strings.Builder
	opts.Stderr = &stderr
	engine := &fakeEngine{readouts: []string{"0f1.0"}}

	got, outcome, err := runExecute(t, "1,2\n3,4\n", opts, Deps{Applier: &fakeApplier{}, Engine: engine})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.RowsAccepted != 0 || outcome.RowsRejected != 2 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if got != "" {
		t.Fatalf("expected no output rows, got %q", got)
	}
}

func TestExecute_HeaderWrittenOnce(t *testing.T) {
	opts := testOptions("0 a\n", "0 o0\n1 o1\n")
	opts.Config.ML = true
	opts.Config.Header = true
	engine := &fakeEngine{readouts: []string{"0f0.6 0f0.4"}}

	got, _, err := runExecute(t, "1\n", opts, Deps{Applier: &fakeApplier{}, Engine: engine})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "probability_0,probability_1,classification\n0.6,0.4,0\n"
	if got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}
