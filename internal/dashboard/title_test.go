package dashboard

import "testing"

func TestTitlePrecedence(t *testing.T) {
	cases := []struct {
		name       string
		definition map[string]any
		label      string
		dashboard  string
		want       string
	}{
		{"definition title", map[string]any{"title": " Sales Overview "}, "Label", "sales", "Sales Overview"},
		{"label fallback", map[string]any{"title": "  "}, "Quarterly Sales", "sales", "Quarterly Sales"},
		{"non-string title", map[string]any{"title": 7}, "", "ops_latency-p99", "Ops Latency P99"},
		{"derived", map[string]any{}, "", "sales_overview", "Sales Overview"},
		{"empty", nil, "", "__", "Untitled Dashboard"},
	}
	for _, tc := range cases {
		if got := Title(tc.definition, tc.label, tc.dashboard); got != tc.want {
			t.Errorf("%s: Title() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestValidateAcceptsMinimalDefinition(t *testing.T) {
	if err := Validate(map[string]any{}); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if err := Validate(map[string]any{"visualizations": []any{}}); err == nil {
		t.Fatal("expected error for array visualizations")
	}
}
