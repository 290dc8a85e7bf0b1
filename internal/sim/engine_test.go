package sim

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/marcohefti/simbatch/internal/config"
	"github.com/marcohefti/simbatch/internal/toolexec"
)

func TestStopCondition_TargetsLastOutput(t *testing.T) {
	if got := StopCondition(3); got != 2 {
		t.Fatalf("StopCondition(3) = %d, want 2", got)
	}
	if got := StopCondition(1); got != 0 {
		t.Fatalf("StopCondition(1) = %d, want 0", got)
	}
}

func TestToolEngine_Argv(t *testing.T) {
	cfg := config.Default().Normalize()
	cfg.LinearDataRange = "16"
	cfg.DelaysFile = "delays.json"

	var got []string
	e := ToolEngine{
		Config: cfg,
		Exec: func(ctx context.Context, argv []string) (toolexec.Result, error) {
			got = argv
			return toolexec.Result{Stdout: "0f3.5\n"}, nil
		},
	}
	if _, err := e.Run(context.Background(), Invocation{Steps: 200, StopOnValidOf: 0}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"bondmachine", "-bondmachine-file", "working_dir/bondmachine.json",
		"-sim-delays-file", "delays.json",
		"-simbox-file", "working_dir/simboxtemp.json",
		"-sim-stop-on-valid-of", "0",
		"-sim",
		"-sim-interactions", "200",
		"-linear-data-range", "16",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}
}

func TestToolEngine_SurfacesEngineStderr(t *testing.T) {
	e := ToolEngine{
		Config: config.Default().Normalize(),
		Exec: func(ctx context.Context, argv []string) (toolexec.Result, error) {
			return toolexec.Result{ExitCode: 3, Stderr: "register file overflow\n"}, nil
		},
	}
	_, err := e.Run(context.Background(), Invocation{Steps: 200})
	if err == nil {
		t.Fatalf("expected engine failure")
	}
	if !strings.Contains(err.Error(), "register file overflow") {
		t.Fatalf("expected stderr to be surfaced verbatim, got: %v", err)
	}
}
