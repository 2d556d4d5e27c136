package configentry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Repository defines config entry persistence.
type Repository interface {
	// Get retrieves an entry by ID.
	// Returns ErrEntryNotFound if the entry does not exist.
	Get(ctx context.Context, id string) (*Entry, error)

	// GetByUniqueID retrieves the entry of a domain with the given unique id.
	// Returns ErrEntryNotFound if there is none.
	GetByUniqueID(ctx context.Context, domain, uniqueID string) (*Entry, error)

	// List retrieves all entries ordered by creation time.
	List(ctx context.Context) ([]Entry, error)

	// Create inserts a new entry.
	// Returns ErrEntryExists on a duplicate (domain, unique_id).
	Create(ctx context.Context, entry *Entry) error

	// Update replaces the mutable fields of an entry.
	Update(ctx context.Context, entry *Entry) error

	// Delete removes an entry by ID.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository on the config_entries table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectEntry = `
	SELECT id, domain, title, unique_id, version, data, state, reason, created_at, updated_at
	FROM config_entries`

// Get retrieves an entry by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Entry, error) {
	entry, err := scanEntry(r.db.QueryRowContext(ctx, selectEntry+" WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("querying entry by id: %w", err)
	}
	return entry, nil
}

// GetByUniqueID retrieves an entry by domain and unique id.
func (r *SQLiteRepository) GetByUniqueID(ctx context.Context, domain, uniqueID string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, selectEntry+" WHERE domain = ? AND unique_id = ?", domain, uniqueID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("querying entry by unique id: %w", err)
	}
	return entry, nil
}

// List retrieves all entries.
func (r *SQLiteRepository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, selectEntry+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}

// Create inserts a new entry.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	if entry.State == "" {
		entry.State = StateNotLoaded
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config_entries (
			id, domain, title, unique_id, version, data, state, reason, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Domain,
		entry.Title,
		entry.UniqueID,
		entry.Version,
		string(entry.Data),
		string(entry.State),
		entry.Reason,
		entry.CreatedAt.Format(time.RFC3339Nano),
		entry.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrEntryExists
		}
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

// Update replaces title, version, data and state of an existing entry.
func (r *SQLiteRepository) Update(ctx context.Context, entry *Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	entry.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE config_entries
		SET title = ?, version = ?, data = ?, state = ?, reason = ?, updated_at = ?
		WHERE id = ?`,
		entry.Title,
		entry.Version,
		string(entry.Data),
		string(entry.State),
		entry.Reason,
		entry.UpdatedAt.Format(time.RFC3339Nano),
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	return requireOneRow(result)
}

// Delete removes an entry by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM config_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return requireOneRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e                    Entry
		data, state          string
		createdAt, updatedAt string
	)
	err := row.Scan(&e.ID, &e.Domain, &e.Title, &e.UniqueID, &e.Version,
		&data, &state, &e.Reason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.Data = []byte(data)
	e.State = State(state)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt) //nolint:errcheck // Format is controlled
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt) //nolint:errcheck // Format is controlled
	return &e, nil
}

func requireOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// isUniqueConstraintError reports whether err is a SQLite UNIQUE violation.
func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
