package flow

import (
	"encoding/json"
	"reflect"
	"testing"
)

func testForm() Form {
	return Form{
		{Name: "host", Type: FieldString, Required: true},
		{Name: "enabled", Type: FieldBoolean, Default: false},
		{
			Name:     "channels",
			Type:     FieldSelect,
			Multiple: true,
			Default:  []string{},
			Options:  []Option{{Value: "1", Label: "channel_1"}, {Value: "2", Label: "channel_2"}},
		},
		{
			Name:    "mode",
			Type:    FieldSelect,
			Options: []Option{{Value: "a", Label: "mode_a"}},
		},
	}
}

func TestForm_JSONSchema(t *testing.T) {
	doc, err := testForm().JSONSchema()
	if err != nil {
		t.Fatalf("JSONSchema() error = %v", err)
	}

	var schema map[string]any
	if err := json.Unmarshal(doc, &schema); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if schema["additionalProperties"] != false {
		t.Error("schema should reject unknown keys")
	}
	if got := schema["required"]; !reflect.DeepEqual(got, []any{"host"}) {
		t.Errorf("required = %v, want [host]", got)
	}

	props := schema["properties"].(map[string]any)
	channels := props["channels"].(map[string]any)
	if channels["type"] != "array" {
		t.Errorf("multi-select type = %v, want array", channels["type"])
	}
}

func TestForm_JSONSchemaUnsupportedType(t *testing.T) {
	if _, err := (Form{{Name: "x", Type: "number"}}).JSONSchema(); err == nil {
		t.Error("JSONSchema() expected error for unsupported type")
	}
}

func TestForm_ApplyDefaults(t *testing.T) {
	in := Input{"host": "h", "enabled": true}
	out := testForm().ApplyDefaults(in)

	if out.Bool("enabled") != true {
		t.Error("explicit value overwritten by default")
	}
	if got := out.Strings("channels"); got == nil || len(got) != 0 {
		t.Errorf("channels default = %#v, want empty list", got)
	}
	if _, ok := out["mode"]; ok {
		t.Error("field without default should stay absent")
	}
	if _, ok := in["channels"]; ok {
		t.Error("ApplyDefaults mutated its input")
	}
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()
	form := testForm()

	tests := []struct {
		name    string
		input   Input
		wantErr bool
	}{
		{"valid", Input{"host": "h", "channels": []string{"1", "2"}}, false},
		{"decoded list", Input{"host": "h", "channels": []any{"2"}}, false},
		{"single select", Input{"host": "h", "mode": "a"}, false},
		{"missing required", Input{"channels": []string{"1"}}, true},
		{"empty required string", Input{"host": ""}, true},
		{"unknown channel", Input{"host": "h", "channels": []string{"7"}}, true},
		{"wrong bool type", Input{"host": "h", "enabled": "yes"}, true},
		{"unknown key", Input{"host": "h", "extra": 1}, true},
		{"bad single select", Input{"host": "h", "mode": "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(form, tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if len(v.cache) != 1 {
		t.Errorf("cache size = %d, want 1 compiled schema", len(v.cache))
	}
}

func TestInput_Accessors(t *testing.T) {
	in := Input{
		"s":     "text",
		"b":     true,
		"list":  []any{"1", 2, "3"},
		"typed": []string{"x"},
		"num":   4,
	}

	if in.String("s") != "text" || in.String("num") != "" || in.String("missing") != "" {
		t.Error("String() mismatch")
	}
	if !in.Bool("b") || in.Bool("s") {
		t.Error("Bool() mismatch")
	}
	if got := in.Strings("list"); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("Strings(list) = %v", got)
	}
	if got := in.Strings("typed"); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("Strings(typed) = %v", got)
	}
	if got := in.Strings("s"); got != nil {
		t.Errorf("Strings(s) = %v, want nil", got)
	}
}
