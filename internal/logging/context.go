package logging

import (
	"context"
	"log/slog"

	"github.com/keithbphillips/PinballUX/internal/services"
)

// Shared structured-log field names. Call sites use these constants so the
// console handler and downstream log filters see stable keys.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldOperation = "operation"
	FieldTableID   = "table_id"
	FieldTable     = "table"
	FieldCategory  = "category"
	FieldPath      = "path"
	FieldCount     = "count"
	FieldScore     = "score"
	FieldDuration  = "duration"
)

// ContextFields extracts run metadata carried on ctx into log attributes.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	attrs := make([]Attr, 0, 2)
	if runID, _ := services.RunIDFromContext(ctx); runID != "" {
		attrs = append(attrs, String(FieldRunID, runID))
	}
	if component, _ := services.ComponentFromContext(ctx); component != "" {
		attrs = append(attrs, String(FieldComponent, component))
	}
	return attrs
}

// WithContext returns a logger pre-tagged with whatever run metadata ctx
// carries.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
