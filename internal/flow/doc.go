// Package flow hosts multi-step setup flows.
//
// An integration registers a HandlerFactory per domain. Each Start creates
// a session with a fresh Handler; each Submit validates the input against
// the JSON Schema generated from the step's Form, applies field defaults and
// passes it to the Handler. A create_entry result is handed to the
// EntryCreator and, like an abort, closes the session.
package flow
