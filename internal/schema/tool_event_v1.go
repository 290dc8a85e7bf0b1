package schema

// ToolEventV1 is one line of <working-dir>/tool.events.jsonl: a record of a
// single external toolchain invocation (simbox action or engine run) made on
// behalf of an input row.
type ToolEventV1 struct {
	V          int      `json:"v"`
	TS         string   `json:"ts"`
	RunID      string   `json:"runId"`
	Row        int      `json:"row"`
	Tool       string   `json:"tool"`
	Argv       []string `json:"argv"`
	OK         bool     `json:"ok"`
	ExitCode   int      `json:"exitCode"`
	DurationMs int64    `json:"durationMs"`
	ErrPreview string   `json:"errPreview,omitempty"`
}
