package flow

import (
	"context"
	"encoding/json"
)

// ResultType tells the caller what a flow step produced.
type ResultType string

// Flow result types.
const (
	ResultForm        ResultType = "form"
	ResultCreateEntry ResultType = "create_entry"
	ResultAbort       ResultType = "abort"
)

// Result is the outcome of starting or advancing a flow.
type Result struct {
	FlowID       string            `json:"flow_id"`
	Domain       string            `json:"domain"`
	Type         ResultType        `json:"type"`
	StepID       string            `json:"step_id,omitempty"`
	Form         Form              `json:"data_schema,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	Placeholders map[string]string `json:"description_placeholders,omitempty"`
	Title        string            `json:"title,omitempty"`
	UniqueID     string            `json:"unique_id,omitempty"`
	Data         json.RawMessage   `json:"data,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	EntryID      string            `json:"entry_id,omitempty"`

	// UpdateOnDuplicate is merged into the existing entry's data when a
	// create_entry result loses a race with another flow for the same
	// unique id.
	UpdateOnDuplicate map[string]any `json:"-"`
}

// ShowForm asks the user for input on step stepID.
// errs maps a field name, or "base" for the whole form, to an error code.
func ShowForm(stepID string, form Form, errs, placeholders map[string]string) Result {
	return Result{
		Type:         ResultForm,
		StepID:       stepID,
		Form:         form,
		Errors:       errs,
		Placeholders: placeholders,
	}
}

// CreateEntry finishes the flow with data to persist as a new entry.
func CreateEntry(title, uniqueID string, data json.RawMessage) Result {
	return Result{
		Type:     ResultCreateEntry,
		Title:    title,
		UniqueID: uniqueID,
		Data:     data,
	}
}

// Abort finishes the flow without creating an entry.
func Abort(reason string) Result {
	return Result{Type: ResultAbort, Reason: reason}
}

// Handler is one in-progress flow of an integration. The Manager calls it
// from a single goroutine at a time.
type Handler interface {
	// Init returns the first step.
	Init(ctx context.Context) Result

	// Submit advances the flow with input for the current step. Input has
	// already been validated against the step's form.
	Submit(ctx context.Context, input Input) Result
}

// HandlerFactory creates a fresh Handler for a new flow.
type HandlerFactory func() Handler

// EntryCreator persists the data of a finished flow.
type EntryCreator interface {
	CreateEntry(ctx context.Context, domain, title, uniqueID string, data json.RawMessage) (string, error)
	UpdateIfConfigured(ctx context.Context, domain, uniqueID string, updates map[string]any) (bool, error)
}
