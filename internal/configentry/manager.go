package configentry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Manager owns the lifecycle of config entries: creation from finished
// flows, migration of stale data, setup and unload through the registered
// integrations.
//
// Lifecycle operations are serialised; Get and List go straight to the store.
type Manager struct {
	repo Repository

	mu           sync.Mutex
	integrations map[string]Integration
	logger       Logger
}

// NewManager creates a Manager backed by repo.
func NewManager(repo Repository) *Manager {
	return &Manager{
		repo:         repo,
		integrations: make(map[string]Integration),
		logger:       noopLogger{},
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// Register adds an integration. A later registration for the same domain replaces it.
func (m *Manager) Register(integration Integration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.integrations[integration.Domain()] = integration
}

// LoadAll migrates and sets up every stored entry. Failures are recorded
// on the entry and logged; only a store failure is returned.
func (m *Manager) LoadAll(ctx context.Context) error {
	entries, err := m.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range entries {
		if err := m.load(ctx, &entries[i]); err != nil {
			m.logger.Error("config entry failed to load",
				"entry_id", entries[i].ID,
				"domain", entries[i].Domain,
				"error", err,
			)
		}
	}
	return nil
}

// UnloadAll unloads every loaded entry, e.g. on shutdown.
func (m *Manager) UnloadAll(ctx context.Context) {
	entries, err := m.repo.List(ctx)
	if err != nil {
		m.logger.Error("listing entries for unload", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range entries {
		if entries[i].State != StateLoaded {
			continue
		}
		if err := m.unload(ctx, &entries[i]); err != nil {
			m.logger.Warn("config entry failed to unload", "entry_id", entries[i].ID, "error", err)
		}
	}
}

// CreateEntry stores a new entry at the integration's current version and
// sets it up. A setup failure is recorded on the entry but does not undo
// creation; the returned id is valid in both cases.
func (m *Manager) CreateEntry(ctx context.Context, domain, title, uniqueID string, data json.RawMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	integration, ok := m.integrations[domain]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDomain, domain)
	}

	entry := &Entry{
		ID:       "ent-" + uuid.NewString()[:8],
		Domain:   domain,
		Title:    title,
		UniqueID: uniqueID,
		Version:  integration.Version(),
		Data:     data,
		State:    StateNotLoaded,
	}
	if err := m.repo.Create(ctx, entry); err != nil {
		return "", err
	}
	m.logger.Info("config entry created", "entry_id", entry.ID, "domain", domain, "unique_id", uniqueID)

	if err := m.load(ctx, entry); err != nil {
		m.logger.Error("new config entry failed to load", "entry_id", entry.ID, "error", err)
	}
	return entry.ID, nil
}

// UpdateIfConfigured merges updates into the data of the domain's entry
// with the given unique id and reloads it. It reports whether such an
// entry existed.
func (m *Manager) UpdateIfConfigured(ctx context.Context, domain, uniqueID string, updates map[string]any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.repo.GetByUniqueID(ctx, domain, uniqueID)
	if errors.Is(err, ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var data map[string]any
	if err := json.Unmarshal(entry.Data, &data); err != nil {
		return true, fmt.Errorf("decoding entry data: %w", err)
	}
	if data == nil {
		data = make(map[string]any, len(updates))
	}
	for k, v := range updates {
		data[k] = v
	}
	merged, err := json.Marshal(data)
	if err != nil {
		return true, fmt.Errorf("encoding entry data: %w", err)
	}

	wasLoaded := entry.State == StateLoaded
	if wasLoaded {
		if err := m.unload(ctx, entry); err != nil {
			m.logger.Warn("unloading entry before update", "entry_id", entry.ID, "error", err)
		}
	}

	entry.Data = merged
	if err := m.repo.Update(ctx, entry); err != nil {
		return true, err
	}
	m.logger.Info("config entry updated", "entry_id", entry.ID, "unique_id", uniqueID)

	if wasLoaded {
		if err := m.load(ctx, entry); err != nil {
			m.logger.Error("reloading updated entry", "entry_id", entry.ID, "error", err)
		}
	}
	return true, nil
}

// Reload unloads the entry if loaded, then migrates and sets it up again.
func (m *Manager) Reload(ctx context.Context, id string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.State == StateLoaded {
		if err := m.unload(ctx, entry); err != nil {
			m.logger.Warn("unloading entry before reload", "entry_id", id, "error", err)
		}
	}
	err = m.load(ctx, entry)
	return entry, err
}

// Remove unloads an entry, lets its integration delete what it published,
// then deletes the entry. If the integration fails the entry is kept,
// not loaded, and Remove can be called again.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, err := m.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if entry.State == StateLoaded {
		if err := m.unload(ctx, entry); err != nil {
			m.logger.Warn("unloading entry before removal", "entry_id", id, "error", err)
		}
	}
	if integration, ok := m.integrations[entry.Domain]; ok {
		if err := integration.Remove(ctx, *entry); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrRemoveFailed, id, err)
		}
	} else {
		m.logger.Warn("removing entry of unregistered domain", "entry_id", id, "domain", entry.Domain)
	}
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Info("config entry removed", "entry_id", id, "domain", entry.Domain)
	return nil
}

// Get returns an entry by ID.
func (m *Manager) Get(ctx context.Context, id string) (*Entry, error) {
	return m.repo.Get(ctx, id)
}

// List returns all entries.
func (m *Manager) List(ctx context.Context) ([]Entry, error) {
	return m.repo.List(ctx)
}

// load migrates entry if its version is stale, then sets it up, persisting
// the resulting state. Must be called with m.mu held.
func (m *Manager) load(ctx context.Context, entry *Entry) error {
	integration, ok := m.integrations[entry.Domain]
	if !ok {
		m.setState(ctx, entry, StateSetupError, "no integration registered")
		return fmt.Errorf("%w: %s", ErrUnknownDomain, entry.Domain)
	}

	if entry.Version != integration.Version() {
		from := entry.Version
		data, version, err := integration.Migrate(ctx, *entry)
		if err != nil {
			m.setState(ctx, entry, StateMigrationError, err.Error())
			return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
		}
		entry.Data = data
		entry.Version = version
		if err := m.repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("persisting migrated entry: %w", err)
		}
		m.logger.Info("config entry migrated", "entry_id", entry.ID, "from_version", from, "to_version", version)
	}

	if err := integration.Setup(ctx, *entry); err != nil {
		m.setState(ctx, entry, StateSetupError, err.Error())
		return fmt.Errorf("%w: %w", ErrSetupFailed, err)
	}

	m.setState(ctx, entry, StateLoaded, "")
	m.logger.Debug("config entry loaded", "entry_id", entry.ID, "domain", entry.Domain)
	return nil
}

// unload stops the entry and marks it not loaded. The state is not loaded
// even when the integration fails, with the failure kept as the reason,
// so the entry can always be set up again. Must be called with m.mu held.
func (m *Manager) unload(ctx context.Context, entry *Entry) error {
	integration, ok := m.integrations[entry.Domain]
	if !ok {
		m.setState(ctx, entry, StateNotLoaded, "no integration registered")
		return fmt.Errorf("%w: %s", ErrUnknownDomain, entry.Domain)
	}
	if err := integration.Unload(ctx, *entry); err != nil {
		m.setState(ctx, entry, StateNotLoaded, err.Error())
		return fmt.Errorf("unloading entry %s: %w", entry.ID, err)
	}
	m.setState(ctx, entry, StateNotLoaded, "")
	return nil
}

func (m *Manager) setState(ctx context.Context, entry *Entry, state State, reason string) {
	entry.State = state
	entry.Reason = reason
	if err := m.repo.Update(ctx, entry); err != nil {
		m.logger.Error("persisting entry state", "entry_id", entry.ID, "state", state, "error", err)
	}
}
