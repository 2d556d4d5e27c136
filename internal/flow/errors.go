package flow

import "errors"

var (
	// ErrUnknownDomain is returned when starting a flow for an unregistered domain.
	ErrUnknownDomain = errors.New("flow: unknown domain")

	// ErrFlowNotFound is returned for an unknown or already finished flow id.
	ErrFlowNotFound = errors.New("flow: not found")

	// ErrInvalidInput is returned when input does not match the step's form.
	ErrInvalidInput = errors.New("flow: invalid input")
)
