// Package config holds the immutable run configuration. One RunConfig is
// built per invocation (defaults, then batch file, then flags) and threaded
// read-only through every pipeline component; nothing consults ambient
// state.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/marcohefti/simbatch/internal/schema"
)

type RunConfig struct {
	WorkingDir string
	InputFile  string
	OutputFile string

	SimulationSteps int
	DataType        string
	// Prefix is the display prefix for DataType, resolved via introspection;
	// stays at the built-in default when the lookup fails.
	Prefix string

	ML        bool
	BenchCore bool
	Header    bool
	// OmitPrefix strips every occurrence of Prefix from the readout. On by
	// default; the -P flag turns it off.
	OmitPrefix bool

	// StopOnValidOf is the user-requested stop target. The invoker always
	// recomputes the stop condition as the last output index; a non-negative
	// value here only triggers an override diagnostic.
	StopOnValidOf int

	LinearDataRange string
	DelaysFile      string

	Trace bool
	Lock  bool
}

func Default() RunConfig {
	return RunConfig{
		WorkingDir:      "working_dir",
		InputFile:       "simbatch_input.csv",
		SimulationSteps: 200,
		DataType:        schema.DefaultDataType,
		Prefix:          schema.DefaultPrefix,
		OmitPrefix:      true,
		StopOnValidOf:   -1,
		Trace:           true,
		Lock:            true,
	}
}

// Normalize fills derived defaults. Kept separate from Default so a batch
// file can set WorkingDir without also having to set OutputFile.
func (c RunConfig) Normalize() RunConfig {
	if c.WorkingDir == "" {
		c.WorkingDir = "working_dir"
	}
	if c.InputFile == "" {
		c.InputFile = "simbatch_input.csv"
	}
	if c.OutputFile == "" {
		c.OutputFile = filepath.Join(c.WorkingDir, "simbatch_output.csv")
	}
	return c
}

func (c RunConfig) Validate() error {
	if c.SimulationSteps <= 0 {
		return fmt.Errorf("simulation steps must be positive (got %d)", c.SimulationSteps)
	}
	if !schema.IsValidDataTypeV1(c.DataType) {
		return fmt.Errorf("invalid data type %q", c.DataType)
	}
	return nil
}

// DesignFile is the compiled design the whole run operates on.
func (c RunConfig) DesignFile() string {
	return filepath.Join(c.WorkingDir, "bondmachine.json")
}

// SimboxFile is the per-row sandbox script, rebuilt from scratch for every
// row so no state leaks between rows.
func (c RunConfig) SimboxFile() string {
	return filepath.Join(c.WorkingDir, "simboxtemp.json")
}

func (c RunConfig) SummaryFile() string {
	return filepath.Join(c.WorkingDir, "simbatch_run.json")
}

func (c RunConfig) TraceFile() string {
	return filepath.Join(c.WorkingDir, "tool.events.jsonl")
}

func (c RunConfig) LockDir() string {
	return filepath.Join(c.WorkingDir, ".simbatch.lock")
}
