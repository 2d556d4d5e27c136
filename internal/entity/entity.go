package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotSupported is returned for a command the entity does not offer.
	ErrNotSupported = errors.New("entity: command not supported")

	// ErrUnknownCommand is returned for a command name that is not recognised.
	ErrUnknownCommand = errors.New("entity: unknown command")

	// ErrEntityNotFound is returned when no entity has the given unique id.
	ErrEntityNotFound = errors.New("entity: not found")
)

// Kind is the entity platform, mapped 1:1 to a Home Assistant component.
type Kind string

// Entity kinds.
const (
	KindCover  Kind = "cover"
	KindButton Kind = "button"
)

// DeviceInfo identifies the physical device an entity belongs to.
// Identifiers are (domain, id) pairs.
type DeviceInfo struct {
	Identifiers  [][2]string
	Name         string
	Manufacturer string
}

// Info is the static description of an entity.
type Info struct {
	UniqueID string
	Kind     Kind

	// Name is nil when the entity takes its device's name.
	Name          *string
	HasEntityName bool

	TranslationKey          string
	TranslationPlaceholders map[string]string

	Icon         string
	AssumedState bool
	Device       DeviceInfo
}

// Entity is anything that can be exposed to the hub.
type Entity interface {
	Info() Info
}

// Cover is a motorised window covering.
type Cover interface {
	Entity
	DeviceClass() DeviceClass
	Features() CoverFeature

	// IsClosed returns nil when the position is unknown.
	IsClosed() *bool

	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Stop(ctx context.Context) error
	OpenTilt(ctx context.Context) error
	CloseTilt(ctx context.Context) error
	StopTilt(ctx context.Context) error
}

// Button is a stateless action.
type Button interface {
	Entity
	Press(ctx context.Context) error
}

// Platform receives the entities of a config entry.
type Platform interface {
	AddEntities(ctx context.Context, entryID string, entities []Entity) error

	// DetachEntities stops serving the entry's entities. The hub keeps
	// them, so a later AddEntities for the same entry takes them over
	// again. Detaching an entry that is not attached is a no-op.
	DetachEntities(ctx context.Context, entryID string) error

	// RemoveEntities deletes entities from the hub for good, detaching
	// the entry first if needed.
	RemoveEntities(ctx context.Context, entryID string, entities []Entity) error
}

// Command is an action that can be executed on an entity.
type Command string

// Entity commands.
const (
	CommandOpen      Command = "open"
	CommandClose     Command = "close"
	CommandStop      Command = "stop"
	CommandOpenTilt  Command = "open_tilt"
	CommandCloseTilt Command = "close_tilt"
	CommandStopTilt  Command = "stop_tilt"
	CommandPress     Command = "press"
)

// ParseCommand accepts command names case-insensitively ("OPEN", "open").
func ParseCommand(s string) (Command, error) {
	c := Command(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CommandOpen, CommandClose, CommandStop,
		CommandOpenTilt, CommandCloseTilt, CommandStopTilt, CommandPress:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// coverCommands maps each cover command to the feature that enables it.
var coverCommands = map[Command]CoverFeature{
	CommandOpen:      CoverOpen,
	CommandClose:     CoverClose,
	CommandStop:      CoverStop,
	CommandOpenTilt:  CoverOpenTilt,
	CommandCloseTilt: CoverCloseTilt,
	CommandStopTilt:  CoverStopTilt,
}

// Execute runs cmd on e after checking the entity supports it.
// Device errors are returned unchanged.
func Execute(ctx context.Context, e Entity, cmd Command) error {
	switch ent := e.(type) {
	case Cover:
		feature, ok := coverCommands[cmd]
		if !ok || !ent.Features().Has(feature) {
			return fmt.Errorf("%w: %s on cover", ErrNotSupported, cmd)
		}
		switch cmd {
		case CommandOpen:
			return ent.Open(ctx)
		case CommandClose:
			return ent.Close(ctx)
		case CommandStop:
			return ent.Stop(ctx)
		case CommandOpenTilt:
			return ent.OpenTilt(ctx)
		case CommandCloseTilt:
			return ent.CloseTilt(ctx)
		default:
			return ent.StopTilt(ctx)
		}
	case Button:
		if cmd != CommandPress {
			return fmt.Errorf("%w: %s on button", ErrNotSupported, cmd)
		}
		return ent.Press(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrNotSupported, cmd)
	}
}
