// Package table streams input rows and writes the output table. The format
// is the original tool's raw contract: one record per line, comma-delimited,
// no quoting (values may themselves carry numeric type prefixes).
package table

import (
	"bufio"
	"io"
	"strings"
)

const Delimiter = ","

// Row is one parsed input line. Consumed and discarded; never retained
// across rows.
type Row struct {
	// Line is the 1-based input line number, for diagnostics.
	Line   int
	Values []string
}

// Reader produces a lazy, finite sequence of rows, trimming surrounding
// whitespace and skipping blank lines.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{sc: bufio.NewScanner(r)}
}

// Next returns the next non-blank row. The column-count check against the
// input signal map happens in the batch engine, which owns the reject
// diagnostic and the skip-without-abort policy.
func (r *Reader) Next() (Row, bool) {
	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		return Row{Line: r.line, Values: strings.Split(line, Delimiter)}, true
	}
	return Row{}, false
}

func (r *Reader) Err() error {
	return r.sc.Err()
}
