package schema

// RunSummaryV1 is the per-run artifact written atomically to
// <working-dir>/simbatch_run.json after a batch finishes (or aborts). It
// echoes the effective configuration so a run can be interpreted without the
// invoking command line.
type RunSummaryV1 struct {
	SchemaVersion int    `json:"schemaVersion"`
	RunID         string `json:"runId"`
	StartedAt     string `json:"startedAt"`
	FinishedAt    string `json:"finishedAt"`

	WorkingDir string `json:"workingDir"`
	InputFile  string `json:"inputFile"`
	OutputFile string `json:"outputFile"`
	DataType   string `json:"dataType"`
	Prefix     string `json:"prefix"`
	ML         bool   `json:"ml"`
	BenchCore  bool   `json:"benchcore"`

	InputSignals  int `json:"inputSignals"`
	OutputSignals int `json:"outputSignals"`

	RowsAccepted int    `json:"rowsAccepted"`
	RowsRejected int    `json:"rowsRejected"`
	Aborted      bool   `json:"aborted"`
	AbortReason  string `json:"abortReason,omitempty"`
	DurationMs   int64  `json:"durationMs"`
}
