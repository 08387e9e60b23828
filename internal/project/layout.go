package project

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"dashpub/internal/datasources"
	"dashpub/internal/fileutil"
	"dashpub/internal/jsontree"
	"dashpub/internal/services"
	"dashpub/internal/textutil"
)

// Paths inside the project folder, slash-separated and relative to its root.
const (
	// AssetsDir holds downloaded assets as <category>/<namespace>/<file>.
	AssetsDir = "public/assets"
	// DataDir is served by the web project under /api/data.
	DataDir = "src/pages/api/data"
	// DataSourcesManifestPath maps generated data-source ids to their specs.
	DataSourcesManifestPath = DataDir + "/_datasources.json"
	// DashboardsManifestPath maps target names to display titles.
	DashboardsManifestPath = "src/_dashboards.json"
	// DashboardsDir holds one folder per exported dashboard.
	DashboardsDir = "src/dashboards"
	// DefinitionFile is the definition written inside each dashboard folder.
	DefinitionFile = "definition.json"

	assetsWebPrefix  = "/assets"
	definitionIndent = "  "
	manifestIndent   = "    "
	filePerm         = 0o644
	component        = "project"
)

// Layout writes artifacts into a project folder.
type Layout struct {
	fs           billy.Filesystem
	componentExt string
	component    []byte
}

// Option configures a Layout.
type Option func(*Layout)

// WithComponent overrides the static component stub written next to each
// definition and its file extension.
func WithComponent(ext string, code []byte) Option {
	return func(l *Layout) {
		if ext = strings.TrimPrefix(strings.TrimSpace(ext), "."); ext != "" {
			l.componentExt = ext
		}
		if code != nil {
			l.component = code
		}
	}
}

// New creates a Layout over fs.
func New(fs billy.Filesystem, opts ...Option) *Layout {
	l := &Layout{
		fs:           fs,
		componentExt: "js",
		component:    DashboardComponent,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open creates a Layout rooted at dir on the local disk.
func Open(dir string, opts ...Option) (*Layout, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "open", "project dir is required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, component, "open", dir, err)
	}
	return New(osfs.New(dir), opts...), nil
}

// Filesystem exposes the underlying filesystem.
func (l *Layout) Filesystem() billy.Filesystem {
	return l.fs
}

// Reset deletes every regenerated location and recreates the empty directory
// structure. Nothing outside these locations is touched.
func (l *Layout) Reset() error {
	for _, target := range []string{AssetsDir, DataSourcesManifestPath, DashboardsManifestPath, DashboardsDir} {
		if err := util.RemoveAll(l.fs, target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrIO, component, "reset", "remove "+target, err)
		}
	}
	for _, dir := range []string{AssetsDir, DataDir, DashboardsDir} {
		if err := l.fs.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrIO, component, "reset", "create "+dir, err)
		}
	}
	return nil
}

// DashboardDir returns the output directory of a target.
func DashboardDir(target string) string {
	return path.Join(DashboardsDir, target)
}

// ComponentFile returns the stub file name, e.g. index.js.
func (l *Layout) ComponentFile() string {
	return "index." + l.componentExt
}

// WriteDashboard persists the transformed definition (2-space indent) and the
// component stub under src/dashboards/<target>.
func (l *Layout) WriteDashboard(target string, definition map[string]any) error {
	if !textutil.IsPathSegment(target) {
		return services.Wrap(services.ErrValidation, component, "write dashboard",
			fmt.Sprintf("target %q is not a valid directory name", target), nil)
	}
	data, err := jsontree.Encode(definition, definitionIndent)
	if err != nil {
		return services.Wrap(services.ErrValidation, component, "write dashboard", target, err)
	}
	dir := DashboardDir(target)
	if err := fileutil.WriteFileAtomic(l.fs, path.Join(dir, DefinitionFile), data, filePerm); err != nil {
		return services.Wrap(services.ErrIO, component, "write dashboard", target, err)
	}
	if err := fileutil.WriteFileAtomic(l.fs, path.Join(dir, l.ComponentFile()), l.component, filePerm); err != nil {
		return services.Wrap(services.ErrIO, component, "write dashboard", target, err)
	}
	return nil
}

// WriteAsset stores asset bytes under public/assets and returns the web path
// the definition should reference.
func (l *Layout) WriteAsset(category, namespace, filename string, data []byte) (string, error) {
	for _, segment := range []string{category, namespace, filename} {
		if !textutil.IsPathSegment(segment) {
			return "", services.Wrap(services.ErrValidation, component, "write asset",
				fmt.Sprintf("invalid path segment %q", segment), nil)
		}
	}
	rel := path.Join(category, namespace, filename)
	if err := fileutil.WriteFileAtomic(l.fs, path.Join(AssetsDir, rel), data, filePerm); err != nil {
		return "", services.Wrap(services.ErrIO, component, "write asset", rel, err)
	}
	return assetsWebPrefix + "/" + rel, nil
}

// WriteManifests persists both aggregate manifests with 4-space indent.
func (l *Layout) WriteManifests(dataSources datasources.Manifest, dashboards map[string]string) error {
	if dataSources == nil {
		dataSources = datasources.Manifest{}
	}
	if dashboards == nil {
		dashboards = map[string]string{}
	}
	outputs := []struct {
		path  string
		value any
	}{
		{DataSourcesManifestPath, dataSources},
		{DashboardsManifestPath, dashboards},
	}
	for _, out := range outputs {
		data, err := jsontree.Encode(out.value, manifestIndent)
		if err != nil {
			return services.Wrap(services.ErrIO, component, "write manifests", out.path, err)
		}
		if err := fileutil.WriteFileAtomic(l.fs, out.path, data, filePerm); err != nil {
			return services.Wrap(services.ErrIO, component, "write manifests", out.path, err)
		}
	}
	return nil
}
