package datasources

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Schema lists where a definition embeds data sources.
type Schema struct {
	// Registry is the top-level data-source map. ds.chain specs extend
	// entries of this map by key.
	Registry string
	// Containers are selectors matching objects whose members are specs or
	// string references. Registry is implied.
	Containers []string
	// Objects are selectors whose matches must be JSON objects. They guard the
	// regions the container selectors descend through.
	Objects []string
}

// DefaultSchema describes Dashboard Studio definitions.
func DefaultSchema() Schema {
	return Schema{
		Registry: "$.dataSources",
		Containers: []string{
			"$.visualizations.*.dataSources",
			"$.inputs.*.dataSources",
		},
		Objects: []string{
			"$.visualizations",
			"$.visualizations.*",
			"$.inputs",
			"$.inputs.*",
		},
	}
}

// WithContainers returns a copy of s with extra container selectors.
func (s Schema) WithContainers(selectors ...string) Schema {
	out := s
	out.Containers = append(append([]string(nil), s.Containers...), selectors...)
	out.Objects = append([]string(nil), s.Objects...)
	return out
}

type compiledSchema struct {
	registry   jp.Expr
	containers []jp.Expr
	objects    []jp.Expr
}

func (s Schema) compile() (compiledSchema, error) {
	var out compiledSchema
	registry := s.Registry
	if registry == "" {
		registry = DefaultSchema().Registry
	}
	expr, err := jp.ParseString(registry)
	if err != nil {
		return out, fmt.Errorf("registry selector %q: %w", registry, err)
	}
	out.registry = expr
	out.containers = append(out.containers, expr)
	for _, selector := range s.Containers {
		expr, err := jp.ParseString(selector)
		if err != nil {
			return out, fmt.Errorf("container selector %q: %w", selector, err)
		}
		out.containers = append(out.containers, expr)
	}
	for _, selector := range s.Objects {
		expr, err := jp.ParseString(selector)
		if err != nil {
			return out, fmt.Errorf("object selector %q: %w", selector, err)
		}
		out.objects = append(out.objects, expr)
	}
	return out, nil
}
