package datasources_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashpub/internal/datasources"
	"dashpub/internal/jsontree"
	"dashpub/internal/services"
)

func mustDecode(t *testing.T, raw string) map[string]any {
	t.Helper()
	obj, err := jsontree.Decode([]byte(raw))
	require.NoError(t, err)
	return obj
}

func newExtractor(t *testing.T, schema datasources.Schema) *datasources.Extractor {
	t.Helper()
	extractor, err := datasources.NewExtractor(schema)
	require.NoError(t, err)
	return extractor
}

const salesDefinition = `{
  "title": "Sales",
  "dataSources": {
    "ds_search": {
      "type": "ds.search",
      "name": "Revenue",
      "options": {"query": "index=sales | stats sum(price)", "refresh": "30s", "refreshType": "delay"}
    },
    "ds_chain": {
      "type": "ds.chain",
      "options": {"extend": "ds_search", "query": "| head 5"}
    }
  },
  "visualizations": {
    "viz_table": {"type": "splunk.table", "dataSources": {"primary": "ds_chain"}},
    "viz_inline": {
      "type": "splunk.singlevalue",
      "dataSources": {"primary": {"type": "ds.test", "options": {"data": {"fields": [{"name": "n"}], "columns": [[1]]}}}}
    }
  },
  "inputs": {
    "input_time": {"type": "input.timerange", "options": {"token": "tr"}}
  },
  "layout": {"type": "absolute", "options": {}}
}`

func TestExtractRewritesRegistryAndInlineSpecs(t *testing.T) {
	definition := mustDecode(t, salesDefinition)
	snapshot := jsontree.CloneObject(definition)

	manifest, transformed, err := newExtractor(t, datasources.DefaultSchema()).Extract(definition, "sales_overview")
	require.NoError(t, err)

	// $.dataSources.ds_chain < $.dataSources.ds_search < $.visualizations.viz_inline...
	assert.Equal(t, []string{"sales_overview_ds_1", "sales_overview_ds_2", "sales_overview_ds_3"}, manifest.IDs())

	search, _ := jsontree.LookupObject(snapshot, "dataSources", "ds_search")
	if diff := cmp.Diff(search, manifest["sales_overview_ds_2"]); diff != "" {
		t.Fatalf("registry spec mismatch (-want +got):\n%s", diff)
	}
	inline, _ := jsontree.LookupObject(snapshot, "visualizations", "viz_inline", "dataSources", "primary")
	if diff := cmp.Diff(inline, manifest["sales_overview_ds_3"]); diff != "" {
		t.Fatalf("inline spec mismatch (-want +got):\n%s", diff)
	}

	chain := manifest["sales_overview_ds_1"]
	assert.Equal(t, "sales_overview_ds_2", chain["options"].(map[string]any)["extend"])

	want := map[string]any{
		"type": "ds.cdn",
		"name": "Revenue",
		"options": map[string]any{
			"uri":         "/api/data/sales_overview_ds_2",
			"refresh":     "30s",
			"refreshType": "delay",
		},
	}
	got, _ := jsontree.LookupObject(transformed, "dataSources", "ds_search")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rewritten registry entry mismatch (-want +got):\n%s", diff)
	}

	ref, _ := jsontree.LookupString(transformed, "visualizations", "viz_table", "dataSources", "primary")
	assert.Equal(t, "ds_chain", ref, "string references must be left alone")

	inlineRef, _ := jsontree.LookupString(transformed, "visualizations", "viz_inline", "dataSources", "primary", "options", "uri")
	assert.Equal(t, "/api/data/sales_overview_ds_3", inlineRef)

	if diff := cmp.Diff(snapshot, definition); diff != "" {
		t.Fatalf("input definition mutated (-want +got):\n%s", diff)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	extractor := newExtractor(t, datasources.DefaultSchema())
	first, firstDef, err := extractor.Extract(mustDecode(t, salesDefinition), "sales")
	require.NoError(t, err)
	second, secondDef, err := extractor.Extract(mustDecode(t, salesDefinition), "sales")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("manifest differs between runs:\n%s", diff)
	}
	a, err := jsontree.Encode(firstDef, "  ")
	require.NoError(t, err)
	b, err := jsontree.Encode(secondDef, "  ")
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestExtractWithoutDataSources(t *testing.T) {
	manifest, transformed, err := newExtractor(t, datasources.DefaultSchema()).Extract(
		mustDecode(t, `{"visualizations": {"viz_1": {"type": "splunk.markdown", "options": {"markdown": "hi"}}}}`), "notes")
	require.NoError(t, err)
	assert.Empty(t, manifest)
	assert.Contains(t, transformed, "visualizations")
}

func TestExtractExtraSelectors(t *testing.T) {
	schema := datasources.DefaultSchema().WithContainers("$.extensions.*.dataSources")
	manifest, transformed, err := newExtractor(t, schema).Extract(mustDecode(t, `{
		"extensions": {"ext_1": {"dataSources": {"primary": {"type": "ds.search", "options": {"query": "x"}}}}}
	}`), "ops")
	require.NoError(t, err)
	assert.Equal(t, []string{"ops_ds_1"}, manifest.IDs())
	uri, ok := jsontree.LookupString(transformed, "extensions", "ext_1", "dataSources", "primary", "options", "uri")
	assert.True(t, ok)
	assert.Equal(t, "/api/data/ops_ds_1", uri)
}

func TestExtractRejectsMalformedInput(t *testing.T) {
	cases := map[string]struct {
		definition string
		path       string
	}{
		"visualizations not object": {`{"visualizations": ["viz"]}`, "$.visualizations"},
		"visualization not object":  {`{"visualizations": {"viz_1": 3}}`, "$.visualizations.viz_1"},
		"registry not object":       {`{"dataSources": "ds"}`, "$.dataSources"},
		"spec without type":         {`{"dataSources": {"ds_1": {"options": {}}}}`, "$.dataSources.ds_1"},
		"number member":             {`{"visualizations": {"viz_1": {"dataSources": {"primary": 7}}}}`, "$.visualizations.viz_1.dataSources.primary"},
	}
	extractor := newExtractor(t, datasources.DefaultSchema())
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := extractor.Extract(mustDecode(t, tc.definition), "bad")
			require.Error(t, err)
			assert.True(t, errors.Is(err, services.ErrValidation), "got %v", err)
			assert.Contains(t, err.Error(), tc.path)
		})
	}
}

func TestNewExtractorRejectsBadSelector(t *testing.T) {
	_, err := datasources.NewExtractor(datasources.DefaultSchema().WithContainers("$.broken["))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrConfiguration))
}

func TestManifestMergeDetectsCollisions(t *testing.T) {
	base := datasources.Manifest{"a_ds_1": {"type": "ds.search"}}
	merged, err := base.Merge(datasources.Manifest{"b_ds_1": {"type": "ds.search"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a_ds_1", "b_ds_1"}, merged.IDs())
	assert.Len(t, base, 1, "merge must not modify the receiver")

	_, err = merged.Merge(datasources.Manifest{"a_ds_1": {"type": "ds.test"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrValidation))
	assert.Contains(t, err.Error(), "a_ds_1")
}

func TestManifestEncodesNumbersVerbatim(t *testing.T) {
	manifest, _, err := newExtractor(t, datasources.DefaultSchema()).Extract(
		mustDecode(t, `{"dataSources": {"ds": {"type": "ds.test", "options": {"data": {"columns": [[1.50, 100000000000000000001]]}}}}}`), "n")
	require.NoError(t, err)
	columns := manifest["n_ds_1"]["options"].(map[string]any)["data"].(map[string]any)["columns"].([]any)[0].([]any)
	assert.Equal(t, json.Number("1.50"), columns[0])
	assert.Equal(t, json.Number("100000000000000000001"), columns[1])
}

func TestIDPrefixKeepsLookalikeNamesDistinct(t *testing.T) {
	assert.Equal(t, "sales_east", datasources.IDPrefix("sales_east"))
	assert.Equal(t, "sales-2", datasources.IDPrefix("sales-2"))

	dotted := datasources.IDPrefix("sales.east")
	upper := datasources.IDPrefix("Sales_East")
	assert.Regexp(t, `^sales_east_[0-9a-f]{8}$`, dotted)
	assert.Regexp(t, `^sales_east_[0-9a-f]{8}$`, upper)
	assert.NotEqual(t, dotted, upper)
	assert.Equal(t, dotted, datasources.IDPrefix("sales.east"))

	manifest, _, err := newExtractor(t, datasources.DefaultSchema()).Extract(
		mustDecode(t, `{"dataSources": {"ds": {"type": "ds.test", "options": {}}}}`), "sales.east")
	require.NoError(t, err)
	assert.Equal(t, []string{dotted + "_ds_1"}, manifest.IDs())
}
