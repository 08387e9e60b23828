package logging

import (
	"context"
	"log/slog"

	"dashpub/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized key for the generate run correlation identifier.
	FieldRunID = "run_id"
	// FieldApp is the standardized key for the splunk app namespace.
	FieldApp = "app"
	// FieldDashboard is the standardized key for the dashboard being generated.
	FieldDashboard = "dashboard"
	// FieldField is the standardized key for a definition path such as visualizations.viz_1.options.src.
	FieldField = "field"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step after a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if app, ok := services.AppFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldApp, app))
	}
	if name, ok := services.DashboardFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldDashboard, name))
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
	return logger.With(Args(fields...)...)
}
