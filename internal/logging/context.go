package logging

import (
	"context"
	"log/slog"

	"avconverter/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for batch item identifiers.
	FieldItemID = "item_id"
	// FieldBatchID is the standardized structured logging key for batch identifiers.
	FieldBatchID = "batch_id"
	// FieldStage is the standardized structured logging key for conversion stage names.
	FieldStage = "stage"
	// FieldEngine is the standardized structured logging key for engine names.
	FieldEngine = "engine"
	// FieldJobID is the standardized structured logging key for remote job identifiers.
	FieldJobID = "job_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldEventType categorizes log lines for downstream filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator-facing remediation hint for a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType categorizes engine selection and fallback decisions.
	FieldDecisionType = "decision_type"
	// FieldProgressStage is the standardized key for progress stage labels.
	FieldProgressStage = "progress_stage"
	// FieldProgressPercent is the standardized key for fractional progress as a percentage.
	FieldProgressPercent = "progress_percent"
	// FieldProgressMessage is the standardized key for human-readable progress detail.
	FieldProgressMessage = "progress_message"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldItemID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if engine, ok := services.EngineFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEngine, engine))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
