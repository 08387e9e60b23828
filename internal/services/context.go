package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	dashboardKey contextKey = "dashboard"
	appKey       contextKey = "app"
)

// WithRunID annotates context with the generate run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDashboard annotates context with the dashboard currently being generated.
func WithDashboard(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, dashboardKey, name)
}

// DashboardFromContext returns the dashboard name if present.
func DashboardFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(dashboardKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithApp annotates context with the splunk app namespace.
func WithApp(ctx context.Context, app string) context.Context {
	if app == "" {
		return ctx
	}
	return context.WithValue(ctx, appKey, app)
}

// AppFromContext returns the app namespace if present.
func AppFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(appKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
