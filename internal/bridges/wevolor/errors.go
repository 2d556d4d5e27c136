package wevolor

import "errors"

// Domain errors for the wevolor package.
var (
	// ErrCannotConnect is returned when the controller answers a status
	// query without a payload.
	ErrCannotConnect = errors.New("wevolor: cannot connect")

	// ErrInvalidStatus is returned when the status payload lacks a uid.
	ErrInvalidStatus = errors.New("wevolor: invalid status")

	// ErrInvalidChannel is returned for a channel outside 1..6.
	ErrInvalidChannel = errors.New("wevolor: invalid channel")

	// ErrInvalidRecord is returned when stored entry data cannot be decoded.
	ErrInvalidRecord = errors.New("wevolor: invalid record")

	// ErrDowngrade is returned when stored data is newer than this build understands.
	ErrDowngrade = errors.New("wevolor: cannot downgrade record")

	// ErrUnknownSchemaVersion is returned for a stored version with no migration path.
	ErrUnknownSchemaVersion = errors.New("wevolor: unknown schema version")

	// ErrClientNotReady is returned by entities built without a device client.
	ErrClientNotReady = errors.New("wevolor: client not ready")

	// ErrAlreadySetUp is returned when an entry is set up twice without an unload.
	ErrAlreadySetUp = errors.New("wevolor: entry already set up")
)
