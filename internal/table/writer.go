package table

import (
	"bufio"
	"fmt"
	"io"

	"github.com/marcohefti/simbatch/internal/decode"
)

// Writer appends decoded records to the output table in row order. Output
// row i corresponds to the i-th accepted input row.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Header writes the optional header row. Field names follow the original
// tool exactly, including its leading-comma quirk when benchcore is active
// without ML mode (kept for output compatibility).
func (w *Writer) Header(outputCount int, ml, benchCore bool) error {
	if ml {
		for i := 0; i < outputCount; i++ {
			if _, err := fmt.Fprintf(w.w, "probability_%d,", i); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w.w, "classification"); err != nil {
			return err
		}
	}
	if benchCore {
		if _, err := fmt.Fprint(w.w, ",latency_cycles"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w.w)
	return err
}

// Record writes one decoded record, appending the latency field last in
// benchcore mode.
func (w *Writer) Record(rec decode.Record, benchCore bool) error {
	if _, err := fmt.Fprint(w.w, rec.Line); err != nil {
		return err
	}
	if benchCore {
		if _, err := fmt.Fprintf(w.w, "%s%s", Delimiter, rec.Latency); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w.w)
	return err
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}
