package hass

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-wevolor/internal/entity"
	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/mqtt"
)

// commandTimeout bounds one device command received over MQTT.
const commandTimeout = 10 * time.Second

// Broker is the subset of mqtt.Client used by the Exporter.
type Broker interface {
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// CommandRecorder receives the outcome of every dispatched command.
type CommandRecorder interface {
	RecordCommand(entityID, command string, elapsed time.Duration, err error)
}

// Logger defines the logging interface used by the Exporter.
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

type noopRecorder struct{}

func (noopRecorder) RecordCommand(string, string, time.Duration, error) {}

// exported is the set of entities of one config entry. mu serialises
// commands to the entry's controller.
type exported struct {
	mu       sync.Mutex
	entities map[string]entity.Entity
	configs  []discoveryMsg
	detached bool
}

// Exporter publishes entities as Home Assistant MQTT discovery configs
// and routes commands from the hub back to them. It implements
// entity.Platform.
//
// Thread Safety:
//   - Safe for concurrent use. Commands to entities of the same entry
//     run one at a time.
type Exporter struct {
	broker   Broker
	prefix   string
	protocol string

	mu       sync.RWMutex
	entries  map[string]*exported
	byUnique map[string]string
	recorder CommandRecorder
	logger   Logger
}

// NewExporter creates an exporter publishing under the discovery prefix
// (usually "homeassistant") with command topics scoped to protocol.
func NewExporter(broker Broker, prefix, protocol string) *Exporter {
	return &Exporter{
		broker:   broker,
		prefix:   prefix,
		protocol: protocol,
		entries:  make(map[string]*exported),
		byUnique: make(map[string]string),
		recorder: noopRecorder{},
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the exporter.
func (e *Exporter) SetLogger(logger Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = logger
}

// SetRecorder sets where command outcomes are recorded.
func (e *Exporter) SetRecorder(recorder CommandRecorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorder = recorder
}

func (e *Exporter) log() Logger {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.logger
}

// Start subscribes to the command topics and to the hub's birth message,
// on which every config is republished.
func (e *Exporter) Start() error {
	if err := e.broker.Subscribe(mqtt.Topics{}.AllBridgeCommands(e.protocol), 1, e.handleCommand); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	if err := e.broker.Subscribe(e.hubStatusTopic(), 1, e.handleHubStatus); err != nil {
		return fmt.Errorf("subscribing to hub status: %w", err)
	}
	return nil
}

// Stop drops the exporter's subscriptions. Retained configs stay so the
// hub keeps the entities while the service restarts.
func (e *Exporter) Stop() error {
	return errors.Join(
		e.broker.Unsubscribe(mqtt.Topics{}.AllBridgeCommands(e.protocol)),
		e.broker.Unsubscribe(e.hubStatusTopic()),
	)
}

func (e *Exporter) hubStatusTopic() string {
	return e.prefix + "/status"
}

// AddEntities implements entity.Platform. Either every config of the
// entry is published or none stays behind.
func (e *Exporter) AddEntities(_ context.Context, entryID string, entities []entity.Entity) error {
	set := &exported{entities: make(map[string]entity.Entity, len(entities))}
	for _, ent := range entities {
		msg, err := buildDiscovery(ent, e.prefix, e.protocol)
		if err != nil {
			return err
		}
		set.entities[ent.Info().UniqueID] = ent
		set.configs = append(set.configs, msg)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.entries[entryID]; ok {
		return fmt.Errorf("%w: entry %s", ErrDuplicateEntity, entryID)
	}
	for id := range set.entities {
		if owner, ok := e.byUnique[id]; ok {
			return fmt.Errorf("%w: %s (entry %s)", ErrDuplicateEntity, id, owner)
		}
	}

	for i, msg := range set.configs {
		if err := e.broker.PublishRetained(msg.Topic, msg.Payload); err != nil {
			e.withdraw(set.configs[:i])
			return fmt.Errorf("publishing %s: %w", msg.Topic, err)
		}
	}

	e.entries[entryID] = set
	for id := range set.entities {
		e.byUnique[id] = entryID
	}
	e.logger.Info("entities exported", "entry_id", entryID, "count", len(set.configs))
	return nil
}

// DetachEntities implements entity.Platform. Commands for the entry's
// entities stop being served; their retained configs stay on the broker.
func (e *Exporter) DetachEntities(_ context.Context, entryID string) error {
	set := e.detach(entryID)
	if set == nil {
		return nil
	}
	e.log().Info("entities detached", "entry_id", entryID, "count", len(set.configs))
	return nil
}

// RemoveEntities implements entity.Platform. The configs of entities,
// and of anything still attached for the entry, are cleared from the
// broker so the hub deletes them. It can be retried after a failure.
func (e *Exporter) RemoveEntities(_ context.Context, entryID string, entities []entity.Entity) error {
	var msgs []discoveryMsg
	seen := make(map[string]bool)
	add := func(msg discoveryMsg) {
		if !seen[msg.Topic] {
			seen[msg.Topic] = true
			msgs = append(msgs, msg)
		}
	}

	if set := e.detach(entryID); set != nil {
		for _, msg := range set.configs {
			add(msg)
		}
	}
	for _, ent := range entities {
		msg, err := buildDiscovery(ent, e.prefix, e.protocol)
		if err != nil {
			return err
		}
		add(msg)
	}

	if err := e.withdraw(msgs); err != nil {
		return err
	}
	e.log().Info("entities withdrawn", "entry_id", entryID, "count", len(msgs))
	return nil
}

// detach drops the entry from the routing tables and waits for its
// in-flight command. It returns nil when the entry is not attached.
func (e *Exporter) detach(entryID string) *exported {
	e.mu.Lock()
	set, ok := e.entries[entryID]
	if ok {
		delete(e.entries, entryID)
		for id := range set.entities {
			delete(e.byUnique, id)
		}
	}
	e.mu.Unlock()

	if !ok {
		return nil
	}
	set.mu.Lock()
	defer set.mu.Unlock()
	set.detached = true
	return set
}

// withdraw publishes empty retained payloads for msgs.
func (e *Exporter) withdraw(msgs []discoveryMsg) error {
	var errs []error
	for _, msg := range msgs {
		if err := e.broker.PublishRetained(msg.Topic, nil); err != nil {
			errs = append(errs, fmt.Errorf("clearing %s: %w", msg.Topic, err))
		}
	}
	return errors.Join(errs...)
}

// Republish sends every current config again.
func (e *Exporter) Republish() error {
	e.mu.RLock()
	var msgs []discoveryMsg
	for _, set := range e.entries {
		msgs = append(msgs, set.configs...)
	}
	e.mu.RUnlock()

	var errs []error
	for _, msg := range msgs {
		if err := e.broker.PublishRetained(msg.Topic, msg.Payload); err != nil {
			errs = append(errs, fmt.Errorf("publishing %s: %w", msg.Topic, err))
		}
	}
	return errors.Join(errs...)
}

// Entity returns the exported entity with uniqueID.
func (e *Exporter) Entity(uniqueID string) (entity.Entity, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entryID, ok := e.byUnique[uniqueID]
	if !ok {
		return nil, false
	}
	ent, ok := e.entries[entryID].entities[uniqueID]
	return ent, ok
}

// Entities returns the unique ids exported for entryID.
func (e *Exporter) Entities(entryID string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	set, ok := e.entries[entryID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set.configs))
	for _, msg := range set.configs {
		ids = append(ids, msg.UniqueID)
	}
	return ids
}

// Execute runs cmd on the entity with uniqueID. Device errors are
// returned unchanged; every outcome is recorded.
func (e *Exporter) Execute(ctx context.Context, uniqueID string, cmd entity.Command) error {
	e.mu.RLock()
	entryID, ok := e.byUnique[uniqueID]
	var set *exported
	if ok {
		set = e.entries[entryID]
	}
	recorder, logger := e.recorder, e.logger
	e.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrEntityNotFound, uniqueID)
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	if set.detached {
		return fmt.Errorf("%w: %s", entity.ErrEntityNotFound, uniqueID)
	}

	start := time.Now()
	err := entity.Execute(ctx, set.entities[uniqueID], cmd)
	if errors.Is(err, entity.ErrNotSupported) {
		return err
	}
	recorder.RecordCommand(uniqueID, string(cmd), time.Since(start), err)

	if err != nil {
		logger.Error("entity command failed", "entity_id", uniqueID, "command", cmd, "error", err)
		return err
	}
	logger.Debug("entity command executed", "entity_id", uniqueID, "command", cmd)
	return nil
}

// handleCommand is the MQTT handler for the protocol's command topics.
func (e *Exporter) handleCommand(topic string, payload []byte) error {
	uniqueID, tilt, ok := mqtt.Topics{}.ParseBridgeCommand(e.protocol, topic)
	if !ok {
		return fmt.Errorf("%w: unexpected topic %s", ErrInvalidPayload, topic)
	}

	cmd, err := parsePayload(payload, tilt)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return e.Execute(ctx, uniqueID, cmd)
}

// handleHubStatus republishes configs when the hub comes back online.
func (e *Exporter) handleHubStatus(_ string, payload []byte) error {
	if strings.TrimSpace(string(payload)) != "online" {
		return nil
	}
	e.log().Info("hub online, republishing discovery configs")
	return e.Republish()
}

// parsePayload maps a command topic payload to an entity command. Tilt
// topics take the tilt position values or STOP_TILT.
func parsePayload(payload []byte, tilt bool) (entity.Command, error) {
	text := strings.TrimSpace(string(payload))

	if tilt {
		if n, err := strconv.Atoi(text); err == nil {
			switch n {
			case TiltOpenedValue:
				return entity.CommandOpenTilt, nil
			case TiltClosedValue:
				return entity.CommandCloseTilt, nil
			}
			return "", fmt.Errorf("%w: tilt position %d", ErrInvalidPayload, n)
		}
	}

	cmd, err := entity.ParseCommand(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return cmd, nil
}
