package schema

import "strings"

const (
	RunSummarySchemaV1 = 1
	ToolEventSchemaV1  = 1

	// DefaultDataType and DefaultPrefix mirror the toolchain defaults; the
	// real prefix comes from a bmnumbers lookup and only falls back to this
	// value when the lookup fails.
	DefaultDataType = "float32"
	DefaultPrefix   = "0f"

	// EncodingUnsigned is the capture encoding forced onto the last output
	// under benchcore mode (latency counter slot, not design data).
	EncodingUnsigned = "unsigned"
)

// IsValidDataTypeV1 accepts any bmnumbers type token. Colons and whitespace
// are rejected because the data type is spliced into simbox action specs,
// which are colon-delimited.
func IsValidDataTypeV1(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return !strings.ContainsAny(s, ": \t")
}
