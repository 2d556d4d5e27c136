// Package configentry stores and drives integration config entries.
//
// An entry is created when a setup flow finishes. It keeps the integration's
// data verbatim as JSON together with the schema version it was written at.
// On load the Manager asks the owning Integration to migrate data whose
// version differs from the current one, then sets the entry up:
//
//	not_loaded ──migrate?──▶ setup ──▶ loaded
//	     │                     │
//	     ▼                     ▼
//	migration_error       setup_error
//
// Entries are unique per (domain, unique_id). The store rejects duplicates
// with ErrEntryExists; integrations that want "update existing" semantics
// call UpdateIfConfigured first.
package configentry
