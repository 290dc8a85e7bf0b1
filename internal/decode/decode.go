// Package decode turns the engine's raw textual readout into one output
// record. Everything here is pure string/number transformation; no I/O and
// no process state, so the whole pipeline is testable with a fake engine.
package decode

import (
	"strconv"
	"strings"

	"github.com/marcohefti/simbatch/internal/config"
)

const fieldDelimiter = ","

// Record is the decoded form of one readout, destined for exactly one output
// row.
type Record struct {
	// Line is the delimiter-joined data fields (probabilities/values, plus
	// the class index in ML mode). The latency field is kept separate so the
	// writer can append it last.
	Line string
	// Latency is the trailing latency token, benchcore mode only.
	Latency string
	// Class is the argmax index in ML mode, -1 otherwise.
	Class int
}

// Decode applies the decoding pipeline in its required order: trim, prefix
// strip, latency extraction, then mode-specific field reduction.
func Decode(readout string, cfg config.RunConfig) Record {
	line := strings.TrimSpace(readout)

	// Each numeric field carries its own prefix, so every occurrence is
	// stripped, not just a leading one.
	if cfg.OmitPrefix && cfg.Prefix != "" {
		line = strings.ReplaceAll(line, cfg.Prefix, "")
	}

	rec := Record{Class: -1}

	if cfg.BenchCore {
		parts := strings.Fields(line)
		if len(parts) > 0 {
			rec.Latency = parts[len(parts)-1]
			line = strings.Join(parts[:len(parts)-1], " ")
		}
	}

	if cfg.ML {
		fields := strings.Fields(line)
		rec.Class = argmax(fields)
		fields = append(fields, strconv.Itoa(rec.Class))
		rec.Line = strings.Join(fields, fieldDelimiter)
		return rec
	}

	line = strings.Trim(line, fieldDelimiter)
	rec.Line = strings.Join(strings.Fields(line), fieldDelimiter)
	return rec
}

// argmax parses each token as a float32 probability and returns the index of
// the maximum, first occurrence winning ties. Unparseable tokens count as 0,
// matching the simulator's convention that a dead output reads as zero.
func argmax(tokens []string) int {
	if len(tokens) == 0 {
		return -1
	}
	f0, _ := strconv.ParseFloat(tokens[0], 32)
	maxIdx := 0
	maxVal := float32(f0)
	for i := 1; i < len(tokens); i++ {
		f, _ := strconv.ParseFloat(tokens[i], 32)
		if v := float32(f); v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}
	return maxIdx
}
