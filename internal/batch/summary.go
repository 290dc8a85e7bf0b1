package batch

import (
	"time"

	"github.com/marcohefti/simbatch/internal/config"
	"github.com/marcohefti/simbatch/internal/design"
	"github.com/marcohefti/simbatch/internal/schema"
)

// Summary builds the run artifact from a finished (or aborted) batch.
func Summary(runID string, cfg config.RunConfig, inputs, outputs design.SignalMap, started, finished time.Time, outcome Outcome, abortErr error) schema.RunSummaryV1 {
	s := schema.RunSummaryV1{
		SchemaVersion: schema.RunSummarySchemaV1,
		RunID:         runID,
		StartedAt:     started.UTC().Format(time.RFC3339Nano),
		FinishedAt:    finished.UTC().Format(time.RFC3339Nano),
		WorkingDir:    cfg.WorkingDir,
		InputFile:     cfg.InputFile,
		OutputFile:    cfg.OutputFile,
		DataType:      cfg.DataType,
		Prefix:        cfg.Prefix,
		ML:            cfg.ML,
		BenchCore:     cfg.BenchCore,
		InputSignals:  inputs.Len(),
		OutputSignals: outputs.Len(),
		RowsAccepted:  outcome.RowsAccepted,
		RowsRejected:  outcome.RowsRejected,
		DurationMs:    finished.Sub(started).Milliseconds(),
	}
	if abortErr != nil {
		s.Aborted = true
		s.AbortReason = abortErr.Error()
	}
	return s
}
