package configentry

import "errors"

// Domain errors for the configentry package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, configentry.ErrEntryNotFound) {
//	    // handle not found case
//	}
var (
	// ErrEntryNotFound is returned when an entry ID does not exist.
	ErrEntryNotFound = errors.New("configentry: not found")

	// ErrEntryExists is returned when an entry with the same domain and
	// unique id is already stored.
	ErrEntryExists = errors.New("configentry: already exists")

	// ErrUnknownDomain is returned when no integration is registered for a domain.
	ErrUnknownDomain = errors.New("configentry: unknown domain")

	// ErrMigrationFailed wraps integration migration errors. The entry is
	// left in StateMigrationError and is not set up.
	ErrMigrationFailed = errors.New("configentry: migration failed")

	// ErrSetupFailed wraps integration setup errors.
	ErrSetupFailed = errors.New("configentry: setup failed")

	// ErrRemoveFailed wraps integration removal errors. The entry is kept.
	ErrRemoveFailed = errors.New("configentry: remove failed")

	// ErrInvalidEntry is returned when an entry fails validation before storage.
	ErrInvalidEntry = errors.New("configentry: invalid")
)
