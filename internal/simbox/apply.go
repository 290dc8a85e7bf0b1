package simbox

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/marcohefti/simbatch/internal/toolexec"
)

// ApplyError is a sandbox action rejected by the simbox tool. Always fatal
// for the whole batch.
type ApplyError struct {
	Argv     []string
	ExitCode int
	Stderr   string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("simbox action %q failed with status %d: %s",
		strings.Join(e.Argv[1:], " "), e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Applier materializes script actions into a sandbox state handle. Any
// failure here is fatal for the whole batch: a partially configured sandbox
// cannot run any row correctly.
type Applier interface {
	// Reset discards the previous row's sandbox state.
	Reset(ctx context.Context) error
	Apply(ctx context.Context, a Action) error
}

// ExecFunc mirrors design.ExecFunc; injectable for tests.
type ExecFunc func(ctx context.Context, argv []string) (toolexec.Result, error)

// ToolApplier drives the external simbox binary, one invocation per action,
// against ScriptFile.
type ToolApplier struct {
	ScriptFile string
	Exec       ExecFunc
	// Observe, when set, sees every invocation (used for the tool event
	// trace).
	Observe func(argv []string, res toolexec.Result)
}

func (t ToolApplier) exec(ctx context.Context, argv []string) (toolexec.Result, error) {
	run := t.Exec
	if run == nil {
		run = toolexec.Run
	}
	res, err := run(ctx, argv)
	if err == nil && t.Observe != nil {
		t.Observe(argv, res)
	}
	return res, err
}

func (t ToolApplier) Reset(ctx context.Context) error {
	if err := os.Remove(t.ScriptFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (t ToolApplier) Apply(ctx context.Context, a Action) error {
	argv := a.Argv(t.ScriptFile)
	if argv == nil {
		return fmt.Errorf("unknown sandbox action kind %q", a.Kind)
	}
	res, err := t.exec(ctx, argv)
	if err != nil {
		return err
	}
	if !res.OK() {
		return &ApplyError{Argv: argv, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return nil
}
