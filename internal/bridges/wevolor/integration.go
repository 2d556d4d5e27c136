package wevolor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-wevolor/internal/configentry"
	"github.com/nerrad567/gray-logic-wevolor/internal/entity"
	"github.com/nerrad567/gray-logic-wevolor/internal/flow"
)

// Logger defines the logging interface used by this package.
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

// Integration wires Wevolor config entries to device clients and entities.
// It implements configentry.Integration.
type Integration struct {
	newClient ClientFactory
	registry  *ClientRegistry
	platform  entity.Platform
	logger    Logger
}

// NewIntegration creates the integration. Clients created on setup are
// kept in registry until unload.
func NewIntegration(newClient ClientFactory, registry *ClientRegistry, platform entity.Platform) *Integration {
	return &Integration{
		newClient: newClient,
		registry:  registry,
		platform:  platform,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the integration and its flows.
func (i *Integration) SetLogger(logger Logger) {
	i.logger = logger
}

// Domain implements configentry.Integration.
func (i *Integration) Domain() string { return Domain }

// Version implements configentry.Integration.
func (i *Integration) Version() int { return Version }

// Migrate implements configentry.Integration.
func (i *Integration) Migrate(_ context.Context, entry configentry.Entry) (json.RawMessage, int, error) {
	data, version, err := MigrateRecord(entry.Data, entry.Version)
	if err != nil {
		return nil, 0, err
	}
	i.logger.Info("migrated wevolor entry", "entry_id", entry.ID, "from_version", entry.Version, "to_version", version)
	return data, version, nil
}

// Setup creates the entry's client and hands its covers and buttons to
// the platform.
func (i *Integration) Setup(ctx context.Context, entry configentry.Entry) error {
	if _, ok := i.registry.Get(entry.ID); ok {
		return fmt.Errorf("%w: %s", ErrAlreadySetUp, entry.ID)
	}

	rec, err := DecodeRecord(entry.Data)
	if err != nil {
		return err
	}

	client := i.newClient(rec.Host)
	if client == nil {
		return fmt.Errorf("%w: host %s", ErrClientNotReady, rec.Host)
	}

	entities, err := BuildEntities(client, rec)
	if err != nil {
		return err
	}

	i.registry.Add(entry.ID, client)
	if err := i.platform.AddEntities(ctx, entry.ID, entities); err != nil {
		i.registry.Remove(entry.ID)
		return fmt.Errorf("adding entities: %w", err)
	}

	i.logger.Info("wevolor entry set up",
		"entry_id", entry.ID,
		"uid", rec.UID,
		"host", rec.Host,
		"entities", len(entities),
	)
	return nil
}

// Unload detaches the entry's entities and drops its client. The hub
// keeps the entities, so a restart or reload does not make them vanish.
// The client is dropped even when detaching fails.
func (i *Integration) Unload(ctx context.Context, entry configentry.Entry) error {
	err := i.platform.DetachEntities(ctx, entry.ID)
	if !i.registry.Remove(entry.ID) {
		i.logger.Debug("no wevolor client registered", "entry_id", entry.ID)
	}
	if err != nil {
		return fmt.Errorf("detaching entities: %w", err)
	}
	i.logger.Info("wevolor entry unloaded", "entry_id", entry.ID)
	return nil
}

// Remove deletes the entry's entities from the hub. It runs after Unload,
// so the entities are rebuilt from the stored record without a client.
// A record that can no longer be decoded has nothing to withdraw.
func (i *Integration) Remove(ctx context.Context, entry configentry.Entry) error {
	data := entry.Data
	if entry.Version != Version {
		migrated, _, err := MigrateRecord(entry.Data, entry.Version)
		if err != nil {
			i.logger.Warn("cannot migrate removed entry, nothing withdrawn", "entry_id", entry.ID, "error", err)
			return nil
		}
		data = migrated
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		i.logger.Warn("cannot decode removed entry, nothing withdrawn", "entry_id", entry.ID, "error", err)
		return nil
	}
	entities, err := BuildEntities(nil, rec)
	if err != nil {
		i.logger.Warn("cannot rebuild entities of removed entry", "entry_id", entry.ID, "error", err)
		return nil
	}

	if err := i.platform.RemoveEntities(ctx, entry.ID, entities); err != nil {
		return fmt.Errorf("removing entities: %w", err)
	}
	i.logger.Info("wevolor entry removed", "entry_id", entry.ID, "uid", rec.UID, "entities", len(entities))
	return nil
}

// FlowFactory returns the setup wizard factory for the flow manager.
func (i *Integration) FlowFactory(entries EntryUpdater) flow.HandlerFactory {
	return func() flow.Handler {
		return NewConfigFlow(i.newClient, entries, i.logger)
	}
}
