package configentry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// State is the load state of a config entry.
type State string

// Entry load states.
const (
	StateNotLoaded      State = "not_loaded"
	StateLoaded         State = "loaded"
	StateSetupError     State = "setup_error"
	StateMigrationError State = "migration_error"
)

// Entry is one persisted integration configuration, created when a setup
// flow finishes. Data is stored verbatim as the integration produced it.
type Entry struct {
	ID        string          `json:"id"`
	Domain    string          `json:"domain"`
	Title     string          `json:"title"`
	UniqueID  string          `json:"unique_id"`
	Version   int             `json:"version"`
	Data      json.RawMessage `json:"data"`
	State     State           `json:"state"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate checks the fields required before an entry can be stored.
func (e *Entry) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	case e.Domain == "":
		return fmt.Errorf("%w: domain is required", ErrInvalidEntry)
	case e.UniqueID == "":
		return fmt.Errorf("%w: unique_id is required", ErrInvalidEntry)
	case e.Version < 1:
		return fmt.Errorf("%w: version must be positive", ErrInvalidEntry)
	case !json.Valid(e.Data):
		return fmt.Errorf("%w: data is not valid JSON", ErrInvalidEntry)
	}
	return nil
}

// Integration is implemented by each domain that owns config entries.
type Integration interface {
	// Domain is the integration's unique key, e.g. "wevolor".
	Domain() string

	// Version is the current schema version of the entry data.
	Version() int

	// Migrate converts entry data stored at an older version. It is only
	// called when the stored version differs from Version.
	Migrate(ctx context.Context, entry Entry) (json.RawMessage, int, error)

	// Setup starts the integration for an entry.
	Setup(ctx context.Context, entry Entry) error

	// Unload stops everything Setup started. What Setup published outside
	// the process stays, so a restart or reload is invisible to the hub.
	Unload(ctx context.Context, entry Entry) error

	// Remove deletes what Setup published outside the process. It runs
	// after Unload and before the entry is deleted; on error the entry is
	// kept so the removal can be retried.
	Remove(ctx context.Context, entry Entry) error
}

// Logger defines the logging interface used by the Manager.
// This allows for dependency injection and testing.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
