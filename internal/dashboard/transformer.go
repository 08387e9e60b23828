package dashboard

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"dashpub/internal/assets"
	"dashpub/internal/datasources"
	"dashpub/internal/jsontree"
	"dashpub/internal/logging"
	"dashpub/internal/services"
	"dashpub/internal/splunkd"
)

const (
	component = "dashboard"

	// DefaultAssetNamespace is the app whose KV store holds Dashboard Studio
	// images and icons.
	DefaultAssetNamespace = "splunk-dashboard-studio"

	typeSingleValueIcon = "viz.singlevalueicon"
	typeImage           = "viz.img"
	categoryIcons       = "icons"
	categoryImages      = "images"
)

// Loader fetches a view definition. *splunkd.Client implements it.
type Loader interface {
	LoadDashboard(ctx context.Context, name, app string) (*splunkd.Dashboard, error)
}

// AssetResolver resolves image references. *assets.Resolver implements it.
type AssetResolver interface {
	Resolve(ctx context.Context, req assets.Request) assets.Resolution
}

// Writer persists a transformed definition. *project.Layout implements it.
type Writer interface {
	WriteDashboard(target string, definition map[string]any) error
}

// Request names one dashboard to convert.
type Request struct {
	Name string
	// TargetName is the output directory name; it defaults to Name.
	TargetName string
	App        string
}

// FieldResult records the asset resolution of one definition field.
type FieldResult struct {
	// Field is the dotted path of the field, e.g. visualizations.viz_1.options.src.
	Field      string
	Category   string
	Original   string
	Resolution assets.Resolution
}

// Result is the outcome of converting one dashboard.
type Result struct {
	Name   string
	Target string
	Title  string
	// DataSources is the manifest fragment of this dashboard.
	DataSources datasources.Manifest
	// Titles holds the single {target: title} entry for the dashboards manifest.
	Titles map[string]string
	Fields []FieldResult
	// Definition is the definition as written to definition.json.
	Definition map[string]any
}

// FailedFields counts fields whose asset could not be resolved.
func (r Result) FailedFields() int {
	failed := 0
	for _, field := range r.Fields {
		if field.Resolution.Err != nil {
			failed++
		}
	}
	return failed
}

// Transformer converts dashboards one at a time.
type Transformer struct {
	loader         Loader
	extractor      *datasources.Extractor
	resolver       AssetResolver
	writer         Writer
	assetNamespace string
	logger         *slog.Logger
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithAssetNamespace sets the app namespace assets are resolved in.
func WithAssetNamespace(namespace string) Option {
	return func(t *Transformer) {
		if namespace = strings.TrimSpace(namespace); namespace != "" {
			t.assetNamespace = namespace
		}
	}
}

// WithLogger sets the logger used for asset warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		t.logger = logging.NewComponentLogger(logger, component)
	}
}

// NewTransformer wires a transformer from its collaborators.
func NewTransformer(loader Loader, extractor *datasources.Extractor, resolver AssetResolver, writer Writer, opts ...Option) *Transformer {
	t := &Transformer{
		loader:         loader,
		extractor:      extractor,
		resolver:       resolver,
		writer:         writer,
		assetNamespace: DefaultAssetNamespace,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform loads, rewrites and writes one dashboard.
func (t *Transformer) Transform(ctx context.Context, req Request) (Result, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Result{}, services.Wrap(services.ErrValidation, component, "transform", "dashboard name is required", nil)
	}
	target := strings.TrimSpace(req.TargetName)
	if target == "" {
		target = name
	}
	ctx = services.WithDashboard(ctx, name)
	logger := logging.WithContext(ctx, t.logger)

	view, err := t.loader.LoadDashboard(ctx, name, req.App)
	if err != nil {
		return Result{}, err
	}
	if err := Validate(view.Definition); err != nil {
		return Result{}, err
	}

	manifest, definition, err := t.extractor.Extract(view.Definition, target)
	if err != nil {
		return Result{}, err
	}

	fields := t.resolveVisualizations(ctx, logger, definition)
	if field, ok := t.resolveBackground(ctx, logger, definition); ok {
		fields = append(fields, field)
	}

	if err := t.writer.WriteDashboard(target, definition); err != nil {
		return Result{}, err
	}

	title := Title(view.Definition, view.Label, name)
	logger.Debug("dashboard written",
		logging.String("target", target),
		logging.Int("data_sources", len(manifest)),
		logging.Int("asset_fields", len(fields)),
	)
	return Result{
		Name:        name,
		Target:      target,
		Title:       title,
		DataSources: manifest,
		Titles:      map[string]string{target: title},
		Fields:      fields,
		Definition:  definition,
	}, nil
}

func (t *Transformer) resolveVisualizations(ctx context.Context, logger *slog.Logger, definition map[string]any) []FieldResult {
	visualizations, ok := jsontree.LookupObject(definition, "visualizations")
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(visualizations))
	for id := range visualizations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var fields []FieldResult
	for _, id := range ids {
		viz, ok := visualizations[id].(map[string]any)
		if !ok {
			continue
		}
		var key, category string
		switch viz["type"] {
		case typeSingleValueIcon:
			key, category = "icon", categoryIcons
		case typeImage:
			key, category = "src", categoryImages
		default:
			continue
		}
		options, ok := viz["options"].(map[string]any)
		if !ok {
			continue
		}
		if field, ok := t.resolveField(ctx, logger, options, key, category, "visualizations."+id+".options."+key); ok {
			fields = append(fields, field)
		}
	}
	return fields
}

func (t *Transformer) resolveBackground(ctx context.Context, logger *slog.Logger, definition map[string]any) (FieldResult, bool) {
	background, ok := jsontree.LookupObject(definition, "layout", "options", "backgroundImage")
	if !ok {
		return FieldResult{}, false
	}
	return t.resolveField(ctx, logger, background, "src", categoryImages, "layout.options.backgroundImage.src")
}

// resolveField replaces holder[key] with the local asset path. On failure
// the original reference stays in place.
func (t *Transformer) resolveField(ctx context.Context, logger *slog.Logger, holder map[string]any, key, category, field string) (FieldResult, bool) {
	original, ok := holder[key].(string)
	if !ok || strings.TrimSpace(original) == "" {
		return FieldResult{}, false
	}
	res := t.resolver.Resolve(ctx, assets.Request{
		Reference: original,
		Category:  category,
		Namespace: t.assetNamespace,
	})
	switch {
	case res.Err != nil:
		logging.WarnWithContext(logger, "asset download failed; keeping original reference", "asset_failed",
			logging.String(logging.FieldField, field),
			logging.String("reference", original),
			logging.String(logging.FieldErrorHint, "check the reference is reachable from this machine"),
			logging.String(logging.FieldImpact, "dashboard keeps the remote reference"),
			logging.Error(res.Err),
		)
	case res.OK():
		holder[key] = res.Path
	}
	return FieldResult{Field: field, Category: category, Original: original, Resolution: res}, true
}
