// Package toolexec spawns the external BondMachine toolchain binaries
// (bondmachine, bmnumbers, simbox). Commands are always argv vectors, never
// shell strings, and their output is captured with a byte bound so a
// misbehaving tool cannot balloon memory.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// DefaultMaxCaptureBytes bounds each captured stream. Toolchain commands emit
// at most a handful of lines; anything past the bound is noise.
const DefaultMaxCaptureBytes = 64 * 1024

type Result struct {
	ExitCode   int
	DurationMs int64

	Stdout string
	Stderr string

	StdoutTruncated bool
	StderrTruncated bool
}

// OK reports a clean zero-status completion.
func (r Result) OK() bool { return r.ExitCode == 0 }

type boundedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		_, _ = b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	_, _ = b.buf.Write(p)
	return len(p), nil
}

// Run executes argv synchronously. A non-zero exit status is reported via
// Result.ExitCode with a nil error; the error return is reserved for spawn
// failures (missing binary, cancelled context).
func Run(ctx context.Context, argv []string) (Result, error) {
	return RunBounded(ctx, argv, DefaultMaxCaptureBytes)
}

func RunBounded(ctx context.Context, argv []string, maxCaptureBytes int) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("missing command argv")
	}
	if maxCaptureBytes < 0 {
		maxCaptureBytes = 0
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	outBuf := &boundedBuffer{max: maxCaptureBytes}
	errBuf := &boundedBuffer{max: maxCaptureBytes}
	cmd.Stdout = outBuf
	cmd.Stderr = errBuf

	start := time.Now()
	waitErr := cmd.Run()

	exitCode := 0
	if waitErr != nil {
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) {
			exitCode = ee.ExitCode()
		} else {
			return Result{}, waitErr
		}
	}

	return Result{
		ExitCode:        exitCode,
		DurationMs:      time.Since(start).Milliseconds(),
		Stdout:          outBuf.buf.String(),
		Stderr:          errBuf.buf.String(),
		StdoutTruncated: outBuf.truncated,
		StderrTruncated: errBuf.truncated,
	}, nil
}
