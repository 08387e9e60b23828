package testsupport

import (
	"path/filepath"
	"testing"

	"dashpub/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose project folder lives in a unique temp
// directory per test. It defaults common fields and applies any provided
// options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Splunkd.Token = "test-token"
	cfgVal.Splunkd.TimeoutSeconds = 5
	cfgVal.Project.Dir = filepath.Join(base, "project")
	cfgVal.Logging.File = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSplunkd points the test config at a (usually fake) splunkd URL.
func WithSplunkd(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Splunkd.URL = url
	}
}

// WithDashboards sets the configured dashboard list.
func WithDashboards(entries ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Project.Dashboards = append([]string(nil), entries...)
	}
}

// WithApp sets the app namespace dashboards are loaded from.
func WithApp(app string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Project.App = app
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Project.Dir)
}
