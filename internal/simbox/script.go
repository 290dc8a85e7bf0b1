// Package simbox models the per-row sandbox script: the ordered sequence of
// configuration toggles, suspend checkpoints, input bindings, and output
// capture requests that define one simulation invocation. A script is
// rebuilt from scratch for every row and never reused.
package simbox

import (
	"fmt"
	"strconv"

	"github.com/marcohefti/simbatch/internal/config"
	"github.com/marcohefti/simbatch/internal/design"
	"github.com/marcohefti/simbatch/internal/schema"
)

const (
	KindToggle  = "toggle"
	KindSuspend = "suspend"
	KindBind    = "bind"
	KindCapture = "capture"
)

// Action is one sandbox configuration step, a tagged union over Kind. Only
// the fields belonging to a kind are set; constructors below are the only
// intended way to build one.
type Action struct {
	Kind string

	// KindToggle
	Directive string

	// KindSuspend
	Checkpoint int

	// KindBind
	Signal string
	Value  string

	// KindCapture
	CaptureID string
	Encoding  string
}

func Toggle(directive string) Action {
	return Action{Kind: KindToggle, Directive: directive}
}

func Suspend(checkpoint int) Action {
	return Action{Kind: KindSuspend, Checkpoint: checkpoint}
}

func Bind(signal, value string) Action {
	return Action{Kind: KindBind, Signal: signal, Value: value}
}

func Capture(captureID, encoding string) Action {
	return Action{Kind: KindCapture, CaptureID: captureID, Encoding: encoding}
}

// Argv renders the action as a simbox invocation against scriptFile. The
// sandbox applies actions incrementally, so callers must issue them in
// script order.
func (a Action) Argv(scriptFile string) []string {
	base := []string{"simbox", "-simbox-file", scriptFile}
	switch a.Kind {
	case KindToggle:
		return append(base, "-add", "config:"+a.Directive)
	case KindSuspend:
		return append(base, "-suspend", strconv.Itoa(a.Checkpoint))
	case KindBind:
		return append(base, "-add", fmt.Sprintf("absolute:0:set:%s:%s", a.Signal, a.Value))
	case KindCapture:
		return append(base, "-add", fmt.Sprintf("onexit:show:%s:%s", a.CaptureID, a.Encoding))
	default:
		return nil
	}
}

type Script []Action

// Preamble is the fixed sandbox configuration sequence: each debug toggle
// immediately followed by its suspend checkpoint. Checkpoints are positional
// in the sandbox, so the order and the 0..4 numbering are load-bearing.
func Preamble() Script {
	toggles := []string{"show_io_pre", "show_io_post", "show_ticks", "show_pc", "show_disasm"}
	s := make(Script, 0, 2*len(toggles))
	for i, directive := range toggles {
		s = append(s, Toggle(directive), Suspend(i))
	}
	return s
}

// Build assembles the complete script for one accepted row: preamble, one
// binding per positional value, one capture request per declared output.
// Callers must have validated len(row) == inputs.Len() already; a positional
// index with no signal name is a broken introspection result and fails hard.
func Build(row []string, inputs, outputs design.SignalMap, cfg config.RunConfig) (Script, error) {
	s := Preamble()

	for i, value := range row {
		name, ok := inputs.Name(i)
		if !ok {
			return nil, fmt.Errorf("no input signal declared at index %d", i)
		}
		s = append(s, Bind(name, value))
	}

	// The benchcore convention reserves the last declared output for the
	// latency counter; it is captured as unsigned, not as design data.
	lastID := "o" + strconv.Itoa(outputs.Len()-1)
	for _, sig := range outputs.Signals() {
		encoding := cfg.DataType
		if cfg.BenchCore && sig.Name == lastID {
			encoding = schema.EncodingUnsigned
		}
		s = append(s, Capture(sig.Name, encoding))
	}

	return s, nil
}
