package dashboard_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashpub/internal/assets"
	"dashpub/internal/dashboard"
	"dashpub/internal/datasources"
	"dashpub/internal/jsontree"
	"dashpub/internal/project"
	"dashpub/internal/services"
	"dashpub/internal/splunkd"
)

type stubLoader struct {
	views map[string]*splunkd.Dashboard
	err   error
}

func (l stubLoader) LoadDashboard(_ context.Context, name, app string) (*splunkd.Dashboard, error) {
	if l.err != nil {
		return nil, l.err
	}
	view, ok := l.views[app+"/"+name]
	if !ok {
		return nil, services.Wrap(services.ErrFetch, "stub", "load", name, services.ErrNotFound)
	}
	// hand out a fresh copy like the real client does
	return &splunkd.Dashboard{Name: view.Name, App: view.App, Label: view.Label, Definition: jsontree.CloneObject(view.Definition)}, nil
}

type stubFetcher struct {
	assets map[string]*splunkd.Asset
	calls  int
}

func (f *stubFetcher) FetchAsset(_ context.Context, req splunkd.AssetRequest) (*splunkd.Asset, error) {
	f.calls++
	if asset, ok := f.assets[req.Reference]; ok {
		return asset, nil
	}
	return nil, services.Wrap(services.ErrFetch, "stub", "fetch", req.Reference, errors.New("connection refused"))
}

func view(t *testing.T, name, label, raw string) *splunkd.Dashboard {
	t.Helper()
	def, err := jsontree.Decode([]byte(raw))
	require.NoError(t, err)
	return &splunkd.Dashboard{Name: name, App: "search", Label: label, Definition: def}
}

type harness struct {
	layout      *project.Layout
	fetcher     *stubFetcher
	transformer *dashboard.Transformer
}

func newHarness(t *testing.T, views ...*splunkd.Dashboard) harness {
	t.Helper()
	layout := project.New(memfs.New())
	require.NoError(t, layout.Reset())
	fetcher := &stubFetcher{assets: map[string]*splunkd.Asset{}}
	extractor, err := datasources.NewExtractor(datasources.DefaultSchema())
	require.NoError(t, err)
	loader := stubLoader{views: map[string]*splunkd.Dashboard{}}
	for _, v := range views {
		loader.views[v.App+"/"+v.Name] = v
	}
	transformer := dashboard.NewTransformer(loader, extractor, assets.NewResolver(fetcher, layout, nil), layout)
	return harness{layout: layout, fetcher: fetcher, transformer: transformer}
}

func (h harness) read(t *testing.T, name string) []byte {
	t.Helper()
	data, err := util.ReadFile(h.layout.Filesystem(), name)
	require.NoError(t, err)
	return data
}

const salesOverview = `{
  "title": "Sales Overview",
  "visualizations": {
    "viz_logo": {"type": "viz.img", "options": {"src": "http://x/img.png"}},
    "viz_icon": {"type": "viz.singlevalueicon", "options": {"icon": "splunk-enterprise-kvstore://icon1"}, "dataSources": {"primary": "ds_rev"}},
    "viz_chart": {"type": "splunk.line", "options": {"src": "http://x/ignored.png"}, "dataSources": {"primary": "ds_rev"}}
  },
  "dataSources": {
    "ds_rev": {"type": "ds.search", "options": {"query": "index=sales"}}
  },
  "layout": {"type": "absolute", "options": {"backgroundImage": {"src": "http://x/bg.jpg", "sizeType": "cover"}}}
}`

func TestTransformSalesOverviewKeepsFailedReference(t *testing.T) {
	h := newHarness(t, view(t, "sales_overview", "", salesOverview))
	h.fetcher.assets["splunk-enterprise-kvstore://icon1"] = &splunkd.Asset{Data: []byte("<svg/>"), ContentType: "image/svg+xml"}
	h.fetcher.assets["http://x/bg.jpg"] = &splunkd.Asset{Data: []byte("jpg"), ContentType: "image/jpeg"}

	result, err := h.transformer.Transform(context.Background(), dashboard.Request{Name: "sales_overview", App: "search"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"sales_overview": "Sales Overview"}, result.Titles)
	assert.Equal(t, 1, result.FailedFields())
	require.Len(t, result.Fields, 3)
	assert.Equal(t, "visualizations.viz_icon.options.icon", result.Fields[0].Field)
	assert.Equal(t, "visualizations.viz_logo.options.src", result.Fields[1].Field)
	assert.Equal(t, "layout.options.backgroundImage.src", result.Fields[2].Field)

	written, err := jsontree.Decode(h.read(t, "src/dashboards/sales_overview/definition.json"))
	require.NoError(t, err)

	src, _ := jsontree.LookupString(written, "visualizations", "viz_logo", "options", "src")
	assert.Equal(t, "http://x/img.png", src)

	icon, _ := jsontree.LookupString(written, "visualizations", "viz_icon", "options", "icon")
	assert.Regexp(t, `^/assets/icons/splunk-dashboard-studio/[0-9a-f]{16}\.svg$`, icon)

	bg, _ := jsontree.LookupString(written, "layout", "options", "backgroundImage", "src")
	assert.Regexp(t, `^/assets/images/splunk-dashboard-studio/[0-9a-f]{16}\.jpg$`, bg)

	untouched, _ := jsontree.LookupString(written, "visualizations", "viz_chart", "options", "src")
	assert.Equal(t, "http://x/ignored.png", untouched)

	assert.Equal(t, []string{"sales_overview_ds_1"}, result.DataSources.IDs())
	assert.Equal(t, project.DashboardComponent, h.read(t, "src/dashboards/sales_overview/index.js"))
}

func TestTransformIsDeterministicWithWarmCache(t *testing.T) {
	h := newHarness(t, view(t, "sales_overview", "", salesOverview))
	h.fetcher.assets["splunk-enterprise-kvstore://icon1"] = &splunkd.Asset{Data: []byte("<svg/>"), ContentType: "image/svg+xml"}
	h.fetcher.assets["http://x/img.png"] = &splunkd.Asset{Data: []byte("png"), ContentType: "image/png"}
	h.fetcher.assets["http://x/bg.jpg"] = &splunkd.Asset{Data: []byte("jpg"), ContentType: "image/jpeg"}

	req := dashboard.Request{Name: "sales_overview", App: "search"}
	_, err := h.transformer.Transform(context.Background(), req)
	require.NoError(t, err)
	first := h.read(t, "src/dashboards/sales_overview/definition.json")
	calls := h.fetcher.calls

	second, err := h.transformer.Transform(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, h.read(t, "src/dashboards/sales_overview/definition.json")))
	assert.Equal(t, calls, h.fetcher.calls, "warm cache must not refetch")
	for _, field := range second.Fields {
		assert.True(t, field.Resolution.Cached, field.Field)
	}
}

func TestTransformInlineDataSource(t *testing.T) {
	inline := map[string]any{"type": "ds.test", "options": map[string]any{"data": map[string]any{"columns": []any{[]any{"a"}}}}}
	v := view(t, "ops", "Operations", `{
		"visualizations": {"viz_1": {"type": "splunk.table", "dataSources": {"primary": {"type": "ds.test", "options": {"data": {"columns": [["a"]]}}}}}}
	}`)
	h := newHarness(t, v)

	result, err := h.transformer.Transform(context.Background(), dashboard.Request{Name: "ops", TargetName: "operations", App: "search"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"operations": "Operations"}, result.Titles)
	require.Equal(t, []string{"operations_ds_1"}, result.DataSources.IDs())
	if diff := cmp.Diff(inline, result.DataSources["operations_ds_1"]); diff != "" {
		t.Fatalf("manifest entry differs from inline spec (-want +got):\n%s", diff)
	}

	written, err := jsontree.Decode(h.read(t, "src/dashboards/operations/definition.json"))
	require.NoError(t, err)
	primary, _ := jsontree.LookupObject(written, "visualizations", "viz_1", "dataSources", "primary")
	assert.Equal(t, "ds.cdn", primary["type"])
	assert.NotContains(t, string(h.read(t, "src/dashboards/operations/definition.json")), `"columns"`)
}

func TestTransformDoesNotMutateLoadedDefinition(t *testing.T) {
	v := view(t, "sales_overview", "", salesOverview)
	snapshot := jsontree.CloneObject(v.Definition)
	h := newHarness(t)
	extractor, err := datasources.NewExtractor(datasources.DefaultSchema())
	require.NoError(t, err)
	// a loader that hands out the same map every time
	shared := sharedLoader{view: v}
	transformer := dashboard.NewTransformer(shared, extractor, assets.NewResolver(h.fetcher, h.layout, nil), h.layout)

	_, err = transformer.Transform(context.Background(), dashboard.Request{Name: "sales_overview", App: "search"})
	require.NoError(t, err)
	if diff := cmp.Diff(snapshot, v.Definition); diff != "" {
		t.Fatalf("loaded definition mutated (-want +got):\n%s", diff)
	}
}

type sharedLoader struct{ view *splunkd.Dashboard }

func (l sharedLoader) LoadDashboard(context.Context, string, string) (*splunkd.Dashboard, error) {
	return l.view, nil
}

func TestTransformPropagatesLoaderErrors(t *testing.T) {
	h := newHarness(t)
	_, err := h.transformer.Transform(context.Background(), dashboard.Request{Name: "missing", App: "search"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrFetch))
	assert.True(t, errors.Is(err, services.ErrNotFound))

	_, statErr := h.layout.Filesystem().Stat("src/dashboards/missing")
	assert.Error(t, statErr, "nothing is written for a failed load")
}

func TestTransformRejectsInvalidDefinition(t *testing.T) {
	h := newHarness(t, view(t, "broken", "", `{"visualizations": {"viz_1": {"type": "viz.img", "options": {"src": 42}}}}`))
	_, err := h.transformer.Transform(context.Background(), dashboard.Request{Name: "broken", App: "search"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrValidation))
	assert.Contains(t, err.Error(), "$.visualizations.viz_1.options.src")
}

func TestTransformRequiresName(t *testing.T) {
	h := newHarness(t)
	_, err := h.transformer.Transform(context.Background(), dashboard.Request{App: "search"})
	assert.True(t, errors.Is(err, services.ErrValidation))
}

func TestTransformUsesCustomNamespace(t *testing.T) {
	v := view(t, "brand", "", `{"visualizations": {"viz_1": {"type": "viz.img", "options": {"src": "data:image/png;base64,aGk="}}}}`)
	layout := project.New(memfs.New())
	fetcher := &stubFetcher{assets: map[string]*splunkd.Asset{"data:image/png;base64,aGk=": {Data: []byte("hi"), ContentType: "image/png"}}}
	extractor, err := datasources.NewExtractor(datasources.DefaultSchema())
	require.NoError(t, err)
	transformer := dashboard.NewTransformer(stubLoader{views: map[string]*splunkd.Dashboard{"search/brand": v}}, extractor,
		assets.NewResolver(fetcher, layout, nil), layout, dashboard.WithAssetNamespace("my_app"))

	result, err := transformer.Transform(context.Background(), dashboard.Request{Name: "brand", App: "search"})
	require.NoError(t, err)
	assert.Regexp(t, `^/assets/images/my_app/`, result.Fields[0].Resolution.Path)
	assert.Equal(t, "Brand", result.Title)
}
