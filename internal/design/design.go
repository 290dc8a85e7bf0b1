// Package design queries a compiled BondMachine design for its declared I/O
// surface: the ordered input and output signal maps and the numeric display
// prefix used by the simulator's readout.
package design

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// Signal is one declared design signal: its positional index and its name.
// For outputs the name doubles as the simbox capture identifier.
type Signal struct {
	Index int
	Name  string
}

// SignalMap is the ordered set of signals on one side of the design. Built
// once per run and read-only afterwards; its Len fixes the column count every
// input row must supply.
type SignalMap struct {
	ordered []Signal
	byIndex map[int]string
}

func (m SignalMap) Len() int { return len(m.ordered) }

// Name resolves a positional index to a signal name.
func (m SignalMap) Name(index int) (string, bool) {
	name, ok := m.byIndex[index]
	return name, ok
}

// Signals returns the signals in index order.
func (m SignalMap) Signals() []Signal {
	out := make([]Signal, len(m.ordered))
	copy(out, m.ordered)
	return out
}

// ParseSignalLines decodes the "<index> <name>" listing printed by the
// introspection tool. Lines that do not split into exactly two fields are
// ignored (the tool may interleave diagnostics). Signals are ordered by
// index regardless of listing order.
func ParseSignalLines(raw string) SignalMap {
	byIndex := map[int]string{}
	for _, line := range strings.Split(raw, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil || idx < 0 {
			continue
		}
		byIndex[idx] = fields[1]
	}

	ordered := make([]Signal, 0, len(byIndex))
	for idx, name := range byIndex {
		ordered = append(ordered, Signal{Index: idx, Name: name})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	return SignalMap{ordered: ordered, byIndex: byIndex}
}

// Introspector is the narrow query interface the pipeline consumes. Each
// query is independent and idempotent.
type Introspector interface {
	Inputs(ctx context.Context) (SignalMap, error)
	Outputs(ctx context.Context) (SignalMap, error)
	Prefix(ctx context.Context, dataType string) (string, error)
}
