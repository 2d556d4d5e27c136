package hass

import "errors"

var (
	// ErrDuplicateEntity is returned when a unique id is already exported.
	ErrDuplicateEntity = errors.New("hass: entity already exported")

	// ErrInvalidPayload is returned for a command payload that names no
	// supported action.
	ErrInvalidPayload = errors.New("hass: invalid command payload")

	// ErrUnsupportedKind is returned for an entity kind with no discovery
	// component.
	ErrUnsupportedKind = errors.New("hass: unsupported entity kind")
)
