package jsontree_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashpub/internal/jsontree"
)

func TestDecodeKeepsNumbersExact(t *testing.T) {
	obj, err := jsontree.Decode([]byte(`{"refresh": 12345678901234567890, "ratio": 0.1}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567890"), obj["refresh"])

	out, err := jsontree.Encode(obj, "")
	require.NoError(t, err)
	assert.Equal(t, "{\"ratio\":0.1,\"refresh\":12345678901234567890}\n", string(out))
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`[1,2]`, `"text"`, `{} {}`, `{`} {
		_, err := jsontree.Decode([]byte(input))
		assert.Error(t, err, input)
	}
}

func TestEncodeIsSortedAndDoesNotEscapeHTML(t *testing.T) {
	out, err := jsontree.Encode(map[string]any{"b": "<a&b>", "a": 1}, "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": \"<a&b>\"\n}\n", string(out))
}

func TestCloneIsDeep(t *testing.T) {
	original := map[string]any{
		"visualizations": map[string]any{
			"viz_1": map[string]any{"options": map[string]any{"src": "https://x/img.png"}},
		},
		"list": []any{map[string]any{"k": "v"}},
	}
	snapshot := jsontree.CloneObject(original)

	clone := jsontree.CloneObject(original)
	viz, ok := jsontree.LookupObject(clone, "visualizations", "viz_1", "options")
	require.True(t, ok)
	viz["src"] = "/assets/images/x.png"
	clone["list"].([]any)[0].(map[string]any)["k"] = "changed"

	if diff := cmp.Diff(snapshot, original); diff != "" {
		t.Fatalf("original mutated (-want +got):\n%s", diff)
	}
	assert.Nil(t, jsontree.CloneObject(nil))
}

func TestLookupHelpers(t *testing.T) {
	root := map[string]any{
		"layout": map[string]any{
			"options": map[string]any{
				"backgroundImage": map[string]any{"src": "bg.png"},
			},
		},
		"title": 3,
	}

	src, ok := jsontree.LookupString(root, "layout", "options", "backgroundImage", "src")
	assert.True(t, ok)
	assert.Equal(t, "bg.png", src)

	_, ok = jsontree.LookupString(root, "title")
	assert.False(t, ok)

	_, ok = jsontree.Lookup(root, "layout", "missing", "src")
	assert.False(t, ok)

	assert.Equal(t, "object", jsontree.TypeName(root))
	assert.Equal(t, "number", jsontree.TypeName(json.Number("1")))
	assert.Equal(t, "null", jsontree.TypeName(nil))
}
