package hass

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-wevolor/internal/entity"
	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/mqtt"
)

// Command payloads published by Home Assistant on command topics.
const (
	PayloadOpen      = "OPEN"
	PayloadClose     = "CLOSE"
	PayloadStop      = "STOP"
	PayloadStopTilt  = "STOP_TILT"
	PayloadPress     = "PRESS"
	TiltOpenedValue  = 100
	TiltClosedValue  = 0
	availabilityTmpl = "{{ value_json.status }}"
)

// buttonNames renders translation keys for hubs without translations.
var buttonNames = map[string]string{
	"favorite_button": "Favorite",
}

// haDevice is the "device" block of a discovery config.
type haDevice struct {
	Identifiers  []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Name         string   `json:"name"`
}

type haAvailability struct {
	Topic         string `json:"topic"`
	ValueTemplate string `json:"value_template"`
}

// haConfig is the discovery payload for covers and buttons. Name is a
// pointer so a nil name encodes as JSON null, which makes the hub use
// the device name.
type haConfig struct {
	Name         *string          `json:"name"`
	UniqueID     string           `json:"unique_id"`
	Device       haDevice         `json:"device"`
	Availability []haAvailability `json:"availability"`
	Icon         string           `json:"icon,omitempty"`
	CommandTopic string           `json:"command_topic"`

	// cover
	DeviceClass      string `json:"device_class,omitempty"`
	PayloadOpen      string `json:"payload_open,omitempty"`
	PayloadClose     string `json:"payload_close,omitempty"`
	PayloadStop      string `json:"payload_stop,omitempty"`
	Optimistic       bool   `json:"optimistic,omitempty"`
	TiltCommandTopic string `json:"tilt_command_topic,omitempty"`
	TiltOpenedValue  *int   `json:"tilt_opened_value,omitempty"`
	TiltClosedValue  *int   `json:"tilt_closed_value,omitempty"`
	PayloadStopTilt  string `json:"payload_stop_tilt,omitempty"`

	// button
	PayloadPress string `json:"payload_press,omitempty"`
}

// discoveryMsg is one retained config. An empty Payload withdraws it.
type discoveryMsg struct {
	UniqueID string
	Topic    string
	Payload  []byte
}

// buildDiscovery renders the retained config of e for the given
// discovery prefix. protocol scopes the command topics.
func buildDiscovery(e entity.Entity, prefix, protocol string) (discoveryMsg, error) {
	info := e.Info()
	topics := mqtt.Topics{}
	commandTopic := topics.BridgeCommand(protocol, info.UniqueID)

	cfg := haConfig{
		Name:     info.Name,
		UniqueID: info.UniqueID,
		Device:   deviceBlock(info.Device),
		Availability: []haAvailability{{
			Topic:         topics.SystemStatus(),
			ValueTemplate: availabilityTmpl,
		}},
		Icon:         info.Icon,
		CommandTopic: commandTopic,
	}

	switch ent := e.(type) {
	case entity.Cover:
		features := ent.Features()
		cfg.DeviceClass = string(ent.DeviceClass())
		cfg.Optimistic = info.AssumedState
		if features.Has(entity.CoverOpen) {
			cfg.PayloadOpen = PayloadOpen
		}
		if features.Has(entity.CoverClose) {
			cfg.PayloadClose = PayloadClose
		}
		if features.Has(entity.CoverStop) {
			cfg.PayloadStop = PayloadStop
		}
		if features.HasTilt() {
			opened, closed := TiltOpenedValue, TiltClosedValue
			cfg.TiltCommandTopic = topics.BridgeTiltCommand(protocol, info.UniqueID)
			cfg.TiltOpenedValue = &opened
			cfg.TiltClosedValue = &closed
			if features.Has(entity.CoverStopTilt) {
				cfg.PayloadStopTilt = PayloadStopTilt
			}
		}
	case entity.Button:
		cfg.PayloadPress = PayloadPress
		if cfg.Name == nil && info.TranslationKey != "" {
			if name, ok := buttonNames[info.TranslationKey]; ok {
				cfg.Name = &name
			}
		}
	default:
		return discoveryMsg{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, info.Kind)
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return discoveryMsg{}, fmt.Errorf("encoding discovery config: %w", err)
	}
	return discoveryMsg{
		UniqueID: info.UniqueID,
		Topic:    topics.Discovery(prefix, string(info.Kind), protocol, info.UniqueID),
		Payload:  payload,
	}, nil
}

// deviceBlock flattens (domain, id) identifier pairs to "domain_id".
func deviceBlock(d entity.DeviceInfo) haDevice {
	ids := make([]string, 0, len(d.Identifiers))
	for _, pair := range d.Identifiers {
		ids = append(ids, pair[0]+"_"+pair[1])
	}
	return haDevice{
		Identifiers:  ids,
		Manufacturer: d.Manufacturer,
		Name:         d.Name,
	}
}
