package dashboard

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"dashpub/internal/services"
)

//go:embed definition.schema.json
var definitionSchema string

const rootContext = "(root)"

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(definitionSchema))
})

// Validate checks the structure of a definition. The error names every
// offending field as a JSONPath.
func Validate(definition map[string]any) error {
	schema, err := loadSchema()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, component, "validate", "compile definition schema", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(definition))
	if err != nil {
		return services.Wrap(services.ErrValidation, component, "validate", "load definition", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", fieldPath(desc.Field()), desc.Description()))
	}
	sort.Strings(problems)
	return services.Wrap(services.ErrValidation, component, "validate", strings.Join(problems, "; "), nil)
}

// fieldPath turns gojsonschema's "(root).a.b" context into "$.a.b".
func fieldPath(field string) string {
	field = strings.TrimPrefix(strings.TrimPrefix(field, rootContext), ".")
	if field == "" {
		return "$"
	}
	return "$." + field
}
