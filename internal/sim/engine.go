// Package sim invokes the external simulation engine, once per row,
// synchronously. The engine is an opaque black box; only its exit status and
// single-line readout matter here.
package sim

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/marcohefti/simbatch/internal/config"
	"github.com/marcohefti/simbatch/internal/toolexec"
)

// EngineError is a failed simulation run. The engine's error stream is
// carried verbatim for the operator.
type EngineError struct {
	ExitCode int
	Stderr   string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("simulation engine exited with status %d\n%s", e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Invocation is one engine run: the step budget and the stop condition.
type Invocation struct {
	Steps int
	// StopOnValidOf stops the run when this output index becomes valid. The
	// batch always targets the last declared output; see StopCondition.
	StopOnValidOf int
}

// StopCondition recomputes the stop target as the last declared output
// index. This deliberately ignores any user-supplied target: the sandbox
// capture convention treats the last output as the completion gate. The run
// command announces the override so the behavior is visible.
func StopCondition(outputCount int) int {
	return outputCount - 1
}

type Engine interface {
	// Run executes the simulation and returns its raw single-line readout.
	Run(ctx context.Context, inv Invocation) (string, error)
}

type ExecFunc func(ctx context.Context, argv []string) (toolexec.Result, error)

// ToolEngine is the exec-backed Engine driving the bondmachine simulator
// against the working dir's design and sandbox script.
type ToolEngine struct {
	Config  config.RunConfig
	Exec    ExecFunc
	Observe func(argv []string, res toolexec.Result)
}

func (e ToolEngine) argv(inv Invocation) []string {
	argv := []string{"bondmachine", "-bondmachine-file", e.Config.DesignFile()}
	if e.Config.DelaysFile != "" {
		argv = append(argv, "-sim-delays-file", e.Config.DelaysFile)
	}
	argv = append(argv,
		"-simbox-file", e.Config.SimboxFile(),
		"-sim-stop-on-valid-of", strconv.Itoa(inv.StopOnValidOf),
		"-sim",
		"-sim-interactions", strconv.Itoa(inv.Steps),
	)
	if e.Config.LinearDataRange != "" {
		argv = append(argv, "-linear-data-range", e.Config.LinearDataRange)
	}
	return argv
}

func (e ToolEngine) Run(ctx context.Context, inv Invocation) (string, error) {
	run := e.Exec
	if run == nil {
		run = toolexec.Run
	}
	argv := e.argv(inv)
	res, err := run(ctx, argv)
	if err != nil {
		return "", err
	}
	if e.Observe != nil {
		e.Observe(argv, res)
	}
	if !res.OK() {
		return "", &EngineError{ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res.Stdout, nil
}
