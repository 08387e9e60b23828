package datasources

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ohler55/ojg/jp"

	"dashpub/internal/fileutil"
	"dashpub/internal/jsontree"
	"dashpub/internal/services"
	"dashpub/internal/textutil"
)

const (
	component = "datasources"

	// CDNType is the spec type that reads a generated data file.
	CDNType = "ds.cdn"
	// ChainType extends another registry entry through options.extend.
	ChainType = "ds.chain"
	// DataURIPrefix is where the web project serves generated data files.
	DataURIPrefix = "/api/data/"
)

// Extractor rewrites inline data sources into generated references.
type Extractor struct {
	schema compiledSchema
}

// NewExtractor compiles schema.
func NewExtractor(schema Schema) (*Extractor, error) {
	compiled, err := schema.compile()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "compile schema", "", err)
	}
	return &Extractor{schema: compiled}, nil
}

type occurrence struct {
	path          string
	containerPath string
	container     map[string]any
	key           string
	spec          map[string]any
}

// Extract returns the manifest fragment for definition and a transformed copy
// in which every inline spec is replaced by a ds.cdn reference. definition is
// not modified. Identifiers are <IDPrefix(namePrefix)>_ds_<n>, numbered from 1 in
// sorted path order.
func (e *Extractor) Extract(definition map[string]any, namePrefix string) (Manifest, map[string]any, error) {
	if definition == nil {
		return nil, nil, services.Wrap(services.ErrValidation, component, "extract", "$: definition is missing", nil)
	}
	transformed := jsontree.CloneObject(definition)

	for _, expr := range e.schema.objects {
		for _, loc := range expr.Locate(transformed, 0) {
			value := loc.First(transformed)
			if _, ok := value.(map[string]any); !ok {
				return nil, nil, invalid(loc.String(), "expected object, got %s", jsontree.TypeName(value))
			}
		}
	}

	occurrences, err := e.collect(transformed)
	if err != nil {
		return nil, nil, err
	}

	prefix := IDPrefix(namePrefix)
	manifest := make(Manifest, len(occurrences))
	registryIDs := make(map[string]string)
	registryPaths := make(map[string]struct{})
	for _, loc := range e.schema.registry.Locate(transformed, 0) {
		registryPaths[loc.String()] = struct{}{}
	}
	ids := make([]string, len(occurrences))
	for i, occ := range occurrences {
		id := prefix + "_ds_" + strconv.Itoa(i+1)
		ids[i] = id
		manifest[id] = jsontree.CloneObject(occ.spec)
		if _, ok := registryPaths[occ.containerPath]; ok {
			registryIDs[occ.key] = id
		}
	}

	for i, occ := range occurrences {
		id := ids[i]
		if spec := manifest[id]; spec["type"] == ChainType {
			if options, ok := spec["options"].(map[string]any); ok {
				if base, ok := options["extend"].(string); ok {
					if baseID, ok := registryIDs[base]; ok {
						options["extend"] = baseID
					}
				}
			}
		}
		occ.container[occ.key] = cdnReference(occ.spec, id)
	}

	return manifest, transformed, nil
}

// IDPrefix turns a dashboard target name into an identifier prefix. Names
// that are already tokens are used as is; any other name gets a short hash of
// the original appended, so distinct names never share a prefix.
func IDPrefix(name string) string {
	token := textutil.SanitizeToken(name)
	if token == name {
		return token
	}
	return token + "_" + fileutil.ShortHash(name, 8)
}

func memberPath(container jp.Expr, key string) string {
	member := append(append(jp.Expr{}, container...), jp.Child(key))
	return member.String()
}

// collect finds every inline spec, sorted by path. Containers matched by more
// than one selector are visited once.
func (e *Extractor) collect(root map[string]any) ([]occurrence, error) {
	seen := make(map[string]struct{})
	var out []occurrence
	for _, expr := range e.schema.containers {
		for _, loc := range expr.Locate(root, 0) {
			locPath := loc.String()
			if _, dup := seen[locPath]; dup {
				continue
			}
			seen[locPath] = struct{}{}

			value := loc.First(root)
			container, ok := value.(map[string]any)
			if !ok {
				return nil, invalid(locPath, "expected object of data sources, got %s", jsontree.TypeName(value))
			}
			for key, member := range container {
				path := memberPath(loc, key)
				switch spec := member.(type) {
				case string:
					// reference to a registry entry
				case map[string]any:
					if kind, ok := spec["type"].(string); !ok || kind == "" {
						return nil, invalid(path, "data source has no string type")
					}
					out = append(out, occurrence{path: path, containerPath: locPath, container: container, key: key, spec: spec})
				default:
					return nil, invalid(path, "expected data source object or reference, got %s", jsontree.TypeName(member))
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, nil
}

// cdnReference builds the spec that replaces an inline one, keeping the
// display name and refresh settings.
func cdnReference(spec map[string]any, id string) map[string]any {
	options := map[string]any{"uri": DataURIPrefix + id}
	if original, ok := spec["options"].(map[string]any); ok {
		for _, key := range []string{"refresh", "refreshType"} {
			if value, ok := original[key]; ok {
				options[key] = jsontree.Clone(value)
			}
		}
	}
	ref := map[string]any{"type": CDNType, "options": options}
	if name, ok := spec["name"]; ok {
		ref["name"] = jsontree.Clone(name)
	}
	return ref
}

func invalid(path, format string, args ...any) error {
	return services.Wrap(services.ErrValidation, component, "extract", path+": "+fmt.Sprintf(format, args...), nil)
}
