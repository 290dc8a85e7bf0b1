package design

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/marcohefti/simbatch/internal/toolexec"
)

// ExecFunc runs one toolchain command. Injectable so tests never spawn the
// real binaries.
type ExecFunc func(ctx context.Context, argv []string) (toolexec.Result, error)

// Client is the exec-backed Introspector. It shells out to the bondmachine
// and bmnumbers binaries against the compiled design in WorkingDir.
type Client struct {
	WorkingDir      string
	LinearDataRange string
	Exec            ExecFunc
}

var _ Introspector = Client{}

func (c Client) DesignFile() string {
	return filepath.Join(c.WorkingDir, "bondmachine.json")
}

func (c Client) exec(ctx context.Context, argv []string) (toolexec.Result, error) {
	if c.Exec != nil {
		return c.Exec(ctx, argv)
	}
	return toolexec.Run(ctx, argv)
}

func (c Client) listArgv(option string) []string {
	argv := []string{"bondmachine", "-bondmachine-file", c.DesignFile(), option}
	if c.LinearDataRange != "" {
		argv = append(argv, "-linear-data-range", c.LinearDataRange)
	}
	return argv
}

func (c Client) list(ctx context.Context, option string) (SignalMap, error) {
	res, err := c.exec(ctx, c.listArgv(option))
	if err != nil {
		return SignalMap{}, err
	}
	if !res.OK() {
		// Soft-fail: an empty map makes every row fail column-count
		// validation with a diagnostic instead of crashing the process.
		return SignalMap{}, fmt.Errorf("bondmachine %s exited with status %d: %s", option, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return ParseSignalLines(res.Stdout), nil
}

func (c Client) Inputs(ctx context.Context) (SignalMap, error) {
	return c.list(ctx, "-list-inputs")
}

func (c Client) Outputs(ctx context.Context) (SignalMap, error) {
	return c.list(ctx, "-list-outputs")
}

// Prefix resolves the display prefix for dataType (e.g. "0f" for float32).
// On failure the caller keeps its default; a stale prefix mis-formats output
// but is not fatal.
func (c Client) Prefix(ctx context.Context, dataType string) (string, error) {
	argv := []string{"bmnumbers", "-get-prefix", dataType}
	if c.LinearDataRange != "" {
		argv = append(argv, "-linear-data-range", c.LinearDataRange)
	}
	res, err := c.exec(ctx, argv)
	if err != nil {
		return "", err
	}
	if !res.OK() {
		return "", fmt.Errorf("bmnumbers -get-prefix %s exited with status %d: %s", dataType, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout), nil
}
