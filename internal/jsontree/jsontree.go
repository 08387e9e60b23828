// Package jsontree holds helpers for generic JSON documents decoded into
// map[string]any / []any trees.
//
// Numbers are kept as json.Number so definitions round-trip without float
// rounding, and encoding never escapes HTML characters because the output is
// read back as JSON rather than embedded in markup.
package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode parses a JSON object.
func Decode(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode json: unexpected data after top-level value")
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode json: expected object, got %s", TypeName(value))
	}
	return obj, nil
}

// Encode renders value with the given indent and a trailing newline. Object
// keys are emitted in sorted order, so equal trees encode to equal bytes.
func Encode(value any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// Clone returns a deep copy of a decoded JSON value.
func Clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return CloneObject(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// CloneObject deep-copies an object. A nil map clones to nil.
func CloneObject(obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}
	out := make(map[string]any, len(obj))
	for key, item := range obj {
		out[key] = Clone(item)
	}
	return out
}

// Lookup walks nested objects by key.
func Lookup(root any, keys ...string) (any, bool) {
	current := root
	for _, key := range keys {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// LookupObject is Lookup restricted to object results.
func LookupObject(root any, keys ...string) (map[string]any, bool) {
	value, ok := Lookup(root, keys...)
	if !ok {
		return nil, false
	}
	obj, ok := value.(map[string]any)
	return obj, ok
}

// LookupString is Lookup restricted to string results.
func LookupString(root any, keys ...string) (string, bool) {
	value, ok := Lookup(root, keys...)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// TypeName names the JSON type of a decoded value for error messages.
func TypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}
