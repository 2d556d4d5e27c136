package flow

import (
	"encoding/json"
	"fmt"
)

// FieldType is the input kind of a form field.
type FieldType string

// Supported field types.
const (
	FieldString  FieldType = "string"
	FieldBoolean FieldType = "boolean"
	FieldSelect  FieldType = "select"
)

// Option is one choice of a select field. Label is a translation key.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one input of a form step.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Default  any       `json:"default,omitempty"`
	Options  []Option  `json:"options,omitempty"`
	Multiple bool      `json:"multiple,omitempty"`
}

// Form is the ordered field list of a form step.
type Form []Field

// ApplyDefaults returns a copy of input with defaults filled in for
// missing fields.
func (f Form) ApplyDefaults(input Input) Input {
	out := make(Input, len(input)+len(f))
	for k, v := range input {
		out[k] = v
	}
	for _, field := range f {
		if _, ok := out[field.Name]; !ok && field.Default != nil {
			out[field.Name] = field.Default
		}
	}
	return out
}

// JSONSchema renders the form as a JSON Schema object document.
// Unknown keys are rejected.
func (f Form) JSONSchema() (json.RawMessage, error) {
	properties := make(map[string]any, len(f))
	required := []string{}

	for _, field := range f {
		prop, err := field.schema()
		if err != nil {
			return nil, err
		}
		properties[field.Name] = prop
		if field.Required {
			required = append(required, field.Name)
		}
	}

	return json.Marshal(map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	})
}

func (f Field) schema() (map[string]any, error) {
	switch f.Type {
	case FieldString:
		prop := map[string]any{"type": "string"}
		if f.Required {
			prop["minLength"] = 1
		}
		return prop, nil
	case FieldBoolean:
		return map[string]any{"type": "boolean"}, nil
	case FieldSelect:
		values := make([]any, 0, len(f.Options))
		for _, o := range f.Options {
			values = append(values, o.Value)
		}
		if f.Multiple {
			return map[string]any{
				"type":  "array",
				"items": map[string]any{"enum": values},
			}, nil
		}
		return map[string]any{"enum": values}, nil
	default:
		return nil, fmt.Errorf("field %q: unsupported type %q", f.Name, f.Type)
	}
}

// Input is the decoded user input submitted to a form step.
type Input map[string]any

// String returns the string value of key, or "" when absent or not a string.
func (in Input) String(key string) string {
	s, _ := in[key].(string)
	return s
}

// Bool returns the boolean value of key, or false when absent or not a bool.
func (in Input) Bool(key string) bool {
	b, _ := in[key].(bool)
	return b
}

// Strings returns the string items of a list value in their given order.
// Non-string items are skipped.
func (in Input) Strings(key string) []string {
	switch v := in[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
