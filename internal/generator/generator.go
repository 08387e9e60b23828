package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dashpub/internal/dashboard"
	"dashpub/internal/datasources"
	"dashpub/internal/logging"
	"dashpub/internal/services"
)

const component = "generator"

// Transformer converts one dashboard. *dashboard.Transformer implements it.
type Transformer interface {
	Transform(ctx context.Context, req dashboard.Request) (dashboard.Result, error)
}

// Layout resets project output and persists manifests. *project.Layout
// implements it.
type Layout interface {
	Reset() error
	WriteManifests(dataSources datasources.Manifest, dashboards map[string]string) error
}

// Progress receives per-dashboard notifications. index is zero-based.
type Progress interface {
	Start(index, total int, target Target)
	Done(index, total int, result dashboard.Result)
	Failed(index, total int, target Target, err error)
}

// DashboardError reports which dashboard stopped a run.
type DashboardError struct {
	Dashboard string
	Err       error
}

func (e *DashboardError) Error() string {
	return fmt.Sprintf("dashboard %s: %v", e.Dashboard, e.Err)
}

func (e *DashboardError) Unwrap() error {
	return e.Err
}

// DashboardSummary describes one exported dashboard.
type DashboardSummary struct {
	Name         string
	Target       string
	Title        string
	DataSources  int
	Assets       int
	FailedAssets int
}

// Summary describes a completed run.
type Summary struct {
	App         string
	Dashboards  []DashboardSummary
	DataSources int
	Duration    time.Duration
}

// Generator runs batches. It holds no state between runs.
type Generator struct {
	transformer Transformer
	layout      Layout
	progress    Progress
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithProgress sets the progress receiver.
func WithProgress(p Progress) Option {
	return func(g *Generator) {
		if p != nil {
			g.progress = p
		}
	}
}

// WithLogger sets the generator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logging.NewComponentLogger(logger, component)
	}
}

// New builds a Generator.
func New(transformer Transformer, layout Layout, opts ...Option) *Generator {
	g := &Generator{
		transformer: transformer,
		layout:      layout,
		progress:    noopProgress{},
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// manifests is the accumulator folded over the batch.
type manifests struct {
	dataSources datasources.Manifest
	dashboards  map[string]string
}

func (m manifests) add(result dashboard.Result) (manifests, error) {
	dataSources, err := m.dataSources.Merge(result.DataSources)
	if err != nil {
		return manifests{}, err
	}
	dashboards := make(map[string]string, len(m.dashboards)+len(result.Titles))
	for key, title := range m.dashboards {
		dashboards[key] = title
	}
	for key, title := range result.Titles {
		if _, dup := dashboards[key]; dup {
			return manifests{}, services.Wrap(services.ErrValidation, component, "merge",
				fmt.Sprintf("dashboard manifest key %q produced twice", key), nil)
		}
		dashboards[key] = title
	}
	return manifests{dataSources: dataSources, dashboards: dashboards}, nil
}

// Generate exports targets from app into the project. Manifests are written
// only after every dashboard succeeded.
func (g *Generator) Generate(ctx context.Context, app string, targets []Target) (Summary, error) {
	started := time.Now()
	if err := ValidateTargets(targets); err != nil {
		return Summary{}, err
	}
	ctx = services.WithApp(ctx, app)
	logger := logging.WithContext(ctx, g.logger)
	logger.Info("generating dashboards", logging.Int("count", len(targets)))

	if err := g.layout.Reset(); err != nil {
		return Summary{}, err
	}

	acc := manifests{dataSources: datasources.Manifest{}, dashboards: map[string]string{}}
	summary := Summary{App: app, Dashboards: make([]DashboardSummary, 0, len(targets))}
	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return Summary{}, &DashboardError{Dashboard: target.Name, Err: err}
		}
		g.progress.Start(i, len(targets), target)

		result, err := g.transformer.Transform(ctx, dashboard.Request{
			Name:       target.Name,
			TargetName: target.Dir(),
			App:        app,
		})
		if err == nil {
			acc, err = acc.add(result)
		}
		if err != nil {
			g.progress.Failed(i, len(targets), target, err)
			logging.ErrorWithContext(logger, "dashboard failed", "dashboard_failed",
				logging.String(logging.FieldDashboard, target.Name),
				logging.String(logging.FieldErrorHint, hint(err)),
				logging.Error(err),
			)
			return Summary{}, &DashboardError{Dashboard: target.Name, Err: err}
		}

		g.progress.Done(i, len(targets), result)
		summary.Dashboards = append(summary.Dashboards, DashboardSummary{
			Name:         result.Name,
			Target:       result.Target,
			Title:        result.Title,
			DataSources:  len(result.DataSources),
			Assets:       len(result.Fields) - result.FailedFields(),
			FailedAssets: result.FailedFields(),
		})
	}

	if err := g.layout.WriteManifests(acc.dataSources, acc.dashboards); err != nil {
		return Summary{}, err
	}
	summary.DataSources = len(acc.dataSources)
	summary.Duration = time.Since(started)
	logger.Info("dashboards generated",
		logging.Int("count", len(summary.Dashboards)),
		logging.Int("data_sources", summary.DataSources),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func hint(err error) string {
	switch services.Kind(err) {
	case "auth":
		return "check splunkd credentials (SPLUNKD_TOKEN or SPLUNKD_USER/SPLUNKD_PASSWORD)"
	case "not_found":
		return "check the dashboard name and --app"
	case "validation":
		return "the dashboard definition has an unexpected structure"
	case "fetch":
		return "check splunkd.url and network access"
	case "io":
		return "check permissions of the project folder"
	default:
		return "check logs for details"
	}
}

type noopProgress struct{}

func (noopProgress) Start(int, int, Target)          {}
func (noopProgress) Done(int, int, dashboard.Result) {}
func (noopProgress) Failed(int, int, Target, error)  {}
