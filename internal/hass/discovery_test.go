package hass

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/gray-logic-wevolor/internal/bridges/wevolor"
	"github.com/nerrad567/gray-logic-wevolor/internal/entity"
)

func decodeConfig(t *testing.T, payload []byte) map[string]any {
	t.Helper()
	var cfg map[string]any
	if err := json.Unmarshal(payload, &cfg); err != nil {
		t.Fatalf("decoding config: %v", err)
	}
	return cfg
}

func TestBuildDiscovery_Shade(t *testing.T) {
	shade, err := wevolor.NewShade(nil, "abc", "2", wevolor.ChannelConfig{Name: "Kitchen"})
	if err != nil {
		t.Fatalf("NewShade() error = %v", err)
	}

	msg, err := buildDiscovery(shade, "homeassistant", "wevolor")
	if err != nil {
		t.Fatalf("buildDiscovery() error = %v", err)
	}
	if msg.Topic != "homeassistant/cover/wevolor/abc-2-cov/config" || msg.UniqueID != "abc-2-cov" {
		t.Errorf("msg = %s %s", msg.Topic, msg.UniqueID)
	}

	cfg := decodeConfig(t, msg.Payload)
	name, present := cfg["name"]
	if !present || name != nil {
		t.Errorf("name = %v (present %v), want null", name, present)
	}
	want := map[string]any{
		"unique_id":     "abc-2-cov",
		"command_topic": "graylogic/command/wevolor/abc-2-cov",
		"device_class":  "shade",
		"payload_open":  "OPEN",
		"payload_close": "CLOSE",
		"payload_stop":  "STOP",
		"optimistic":    true,
	}
	for k, v := range want {
		if cfg[k] != v {
			t.Errorf("%s = %v, want %v", k, cfg[k], v)
		}
	}
	if _, ok := cfg["tilt_command_topic"]; ok {
		t.Error("shade without tilt has a tilt topic")
	}

	device := cfg["device"].(map[string]any)
	if !reflect.DeepEqual(device["identifiers"], []any{"wevolor_abc-2"}) ||
		device["name"] != "Wevolor Kitchen" || device["manufacturer"] != "Wevolor" {
		t.Errorf("device = %v", device)
	}

	avail := cfg["availability"].([]any)[0].(map[string]any)
	if avail["topic"] != "graylogic/system/status" || avail["value_template"] != "{{ value_json.status }}" {
		t.Errorf("availability = %v", avail)
	}
}

func TestBuildDiscovery_Blind(t *testing.T) {
	blind, _ := wevolor.NewShade(nil, "abc", "4", wevolor.ChannelConfig{Name: "Office", SupportsTilt: true})

	msg, err := buildDiscovery(blind, "ha", "wevolor")
	if err != nil {
		t.Fatalf("buildDiscovery() error = %v", err)
	}
	cfg := decodeConfig(t, msg.Payload)

	if cfg["device_class"] != "blind" {
		t.Errorf("device_class = %v", cfg["device_class"])
	}
	if cfg["tilt_command_topic"] != "graylogic/command/wevolor/abc-4-cov/tilt" {
		t.Errorf("tilt_command_topic = %v", cfg["tilt_command_topic"])
	}
	if cfg["tilt_opened_value"] != float64(100) || cfg["tilt_closed_value"] != float64(0) {
		t.Errorf("tilt values = %v / %v", cfg["tilt_opened_value"], cfg["tilt_closed_value"])
	}
	if cfg["payload_stop_tilt"] != "STOP_TILT" {
		t.Errorf("payload_stop_tilt = %v", cfg["payload_stop_tilt"])
	}
}

func TestBuildDiscovery_Button(t *testing.T) {
	button, _ := wevolor.NewFavoriteButton(nil, "abc", "1", wevolor.ChannelConfig{Name: "Den"})

	msg, err := buildDiscovery(button, "homeassistant", "wevolor")
	if err != nil {
		t.Fatalf("buildDiscovery() error = %v", err)
	}
	if msg.Topic != "homeassistant/button/wevolor/abc-1-fav/config" {
		t.Errorf("topic = %s", msg.Topic)
	}
	cfg := decodeConfig(t, msg.Payload)
	if cfg["name"] != "Favorite" || cfg["icon"] != "mdi:heart" || cfg["payload_press"] != "PRESS" {
		t.Errorf("config = %v", cfg)
	}
	if _, ok := cfg["device_class"]; ok {
		t.Error("button has a device class")
	}
}

type plainEntity struct{}

func (plainEntity) Info() entity.Info { return entity.Info{UniqueID: "x", Kind: "sensor"} }

func TestBuildDiscovery_UnsupportedKind(t *testing.T) {
	if _, err := buildDiscovery(plainEntity{}, "ha", "wevolor"); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("buildDiscovery() error = %v, want ErrUnsupportedKind", err)
	}
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		payload string
		tilt    bool
		want    entity.Command
		wantErr bool
	}{
		{"OPEN", false, entity.CommandOpen, false},
		{"close", false, entity.CommandClose, false},
		{" STOP\n", false, entity.CommandStop, false},
		{"PRESS", false, entity.CommandPress, false},
		{"100", true, entity.CommandOpenTilt, false},
		{"0", true, entity.CommandCloseTilt, false},
		{"STOP_TILT", true, entity.CommandStopTilt, false},
		{"50", true, "", true},
		{"100", false, "", true},
		{"JUMP", false, "", true},
		{"", false, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, err := parsePayload([]byte(tt.payload), tt.tilt)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Errorf("parsePayload(%q) error = %v, want ErrInvalidPayload", tt.payload, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("parsePayload(%q) = %q, %v; want %q", tt.payload, got, err, tt.want)
			}
		})
	}
}
