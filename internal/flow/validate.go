package flow

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator validates form input against the JSON Schema of a form.
// Compiled schemas are cached by their document bytes, so each distinct
// form is compiled once.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewValidator creates a Validator with an empty cache.
func NewValidator() *Validator {
	return &Validator{cache: make(map[string]*jsonschema.Schema)}
}

// Validate checks input against form. Input is normalised through a JSON
// round trip first so Go-typed values ([]string, int) validate the same
// way as decoded request bodies.
func (v *Validator) Validate(form Form, input Input) error {
	doc, err := form.JSONSchema()
	if err != nil {
		return err
	}

	compiled, err := v.compile(doc)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encoding input: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}

	return compiled.Validate(instance)
}

func (v *Validator) compile(doc json.RawMessage) (*jsonschema.Schema, error) {
	key := string(doc)

	v.mu.RLock()
	if s, ok := v.cache[key]; ok {
		v.mu.RUnlock()
		return s, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.cache[key]; ok {
		return s, nil
	}

	var schemaDoc any
	if err := json.Unmarshal(doc, &schemaDoc); err != nil {
		return nil, fmt.Errorf("decoding form schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("form.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("adding form schema: %w", err)
	}
	compiled, err := c.Compile("form.json")
	if err != nil {
		return nil, fmt.Errorf("compiling form schema: %w", err)
	}

	v.cache[key] = compiled
	return compiled, nil
}
