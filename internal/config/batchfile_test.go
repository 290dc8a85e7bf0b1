package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseBatchFile_YAMLOverlay(t *testing.T) {
	path := writeFile(t, "batch.yaml", `
version: 1
workingDir: bench_wd
simulationSteps: 500
ml: true
includePrefix: true
`)
	b, err := ParseBatchFile(path)
	if err != nil {
		t.Fatalf("ParseBatchFile: %v", err)
	}

	cfg := b.ApplyTo(Default()).Normalize()
	if cfg.WorkingDir != "bench_wd" {
		t.Fatalf("workingDir = %q", cfg.WorkingDir)
	}
	if cfg.SimulationSteps != 500 {
		t.Fatalf("simulationSteps = %d", cfg.SimulationSteps)
	}
	if !cfg.ML {
		t.Fatalf("expected ml flag set")
	}
	if cfg.OmitPrefix {
		t.Fatalf("includePrefix: true should disable prefix omission")
	}
	// Unset fields keep defaults; derived ones follow the working dir.
	if cfg.InputFile != "simbatch_input.csv" {
		t.Fatalf("inputFile = %q", cfg.InputFile)
	}
	if cfg.OutputFile != filepath.Join("bench_wd", "simbatch_output.csv") {
		t.Fatalf("outputFile = %q", cfg.OutputFile)
	}
}

func TestParseBatchFile_JSONAndVersionGate(t *testing.T) {
	ok := writeFile(t, "batch.json", `{"workingDir":"wd2"}`)
	b, err := ParseBatchFile(ok)
	if err != nil {
		t.Fatalf("ParseBatchFile: %v", err)
	}
	if b.Version != 1 {
		t.Fatalf("omitted version should default to 1, got %d", b.Version)
	}

	bad := writeFile(t, "bad.json", `{"version":2}`)
	if _, err := ParseBatchFile(bad); err == nil {
		t.Fatalf("expected version gate to reject v2")
	}
}

func TestRunConfig_Validate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.SimulationSteps = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected zero steps to be rejected")
	}

	cfg = Default()
	cfg.DataType = "float:32"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected colon in data type to be rejected")
	}
}

func TestRunConfig_Paths(t *testing.T) {
	cfg := Default().Normalize()
	if cfg.DesignFile() != filepath.Join("working_dir", "bondmachine.json") {
		t.Fatalf("designFile = %q", cfg.DesignFile())
	}
	if cfg.SimboxFile() != filepath.Join("working_dir", "simboxtemp.json") {
		t.Fatalf("simboxFile = %q", cfg.SimboxFile())
	}
}
