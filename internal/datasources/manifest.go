package datasources

import (
	"fmt"
	"sort"

	"dashpub/internal/jsontree"
	"dashpub/internal/services"
)

// Manifest maps generated data-source identifiers to their original specs.
type Manifest map[string]map[string]any

// IDs returns the manifest keys in sorted order.
func (m Manifest) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge returns a new manifest holding m and fragment. Identifiers present in
// both fail the merge rather than overwrite an earlier dashboard's spec.
func (m Manifest) Merge(fragment Manifest) (Manifest, error) {
	merged := make(Manifest, len(m)+len(fragment))
	for id, spec := range m {
		merged[id] = spec
	}
	for _, id := range fragment.IDs() {
		if _, exists := merged[id]; exists {
			return nil, services.Wrap(services.ErrValidation, component, "merge",
				fmt.Sprintf("data source id %q generated twice in one run", id), nil)
		}
		merged[id] = jsontree.CloneObject(fragment[id])
	}
	return merged, nil
}
