package wevolor

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestMigrateRecord_Legacy(t *testing.T) {
	legacy := []byte(`{"host":"h","uid":"u","support_tilt":true,
		"channel_1":true,"channel_2":false,"channel_3":true,
		"channel_4":false,"channel_5":false,"channel_6":false}`)
	before := append([]byte(nil), legacy...)

	data, version, err := MigrateRecord(legacy, 1)
	if err != nil {
		t.Fatalf("MigrateRecord() error = %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	want := Record{
		Host: "h",
		UID:  "u",
		Channels: map[string]ChannelConfig{
			"1": {Name: "Channel 1", SupportsTilt: true},
			"3": {Name: "Channel 3", SupportsTilt: true},
		},
	}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("record = %+v, want %+v", rec, want)
	}
	if string(legacy) != string(before) {
		t.Error("input was modified")
	}
}

func TestMigrateRecord_Truthiness(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`-2.5`, true},
		{`0`, false},
		{`0.0`, false},
		{`"true"`, true},
		{`"false"`, true},
		{`"0"`, true},
		{`""`, false},
		{`null`, false},
		{`[1]`, true},
		{`[]`, false},
		{`{"a":1}`, true},
		{`{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			legacy := []byte(`{"host":"h","uid":"u","support_tilt":` + tt.value + `,"channel_4":` + tt.value + `}`)

			data, _, err := MigrateRecord(legacy, 1)
			if err != nil {
				t.Fatalf("MigrateRecord() error = %v", err)
			}
			rec, err := DecodeRecord(data)
			if err != nil {
				t.Fatalf("DecodeRecord() error = %v", err)
			}

			cfg, enabled := rec.Channels["4"]
			if enabled != tt.want {
				t.Fatalf("channel 4 enabled = %v, want %v", enabled, tt.want)
			}
			if enabled && cfg.SupportsTilt != tt.want {
				t.Errorf("SupportsTilt = %v, want %v", cfg.SupportsTilt, tt.want)
			}
		})
	}
}

func TestMigrateRecord_MissingFlagsAreFalse(t *testing.T) {
	data, _, err := MigrateRecord([]byte(`{"host":"h","uid":"u","channel_2":"yes"}`), 1)
	if err != nil {
		t.Fatalf("MigrateRecord() error = %v", err)
	}
	rec, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	if got := rec.ChannelIDs(); !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("channels = %v, want [2]", got)
	}
	if rec.Channels["2"].SupportsTilt || rec.Channels["2"].FavoriteIsDown {
		t.Errorf("channel 2 = %+v, want tilt and favorite false", rec.Channels["2"])
	}
}

func TestMigrateRecord_NoChannels(t *testing.T) {
	data, version, err := MigrateRecord([]byte(`{"host":"h","uid":"u"}`), 1)
	if err != nil {
		t.Fatalf("MigrateRecord() error = %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d", version)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if string(raw["channels"]) != "{}" {
		t.Errorf("channels = %s, want {}", raw["channels"])
	}
}

func TestMigrateRecord_Errors(t *testing.T) {
	valid := []byte(`{"host":"h","uid":"u","channel_1":true}`)

	tests := []struct {
		name    string
		data    []byte
		version int
		wantErr error
	}{
		{"future version", valid, 3, ErrDowngrade},
		{"far future version", valid, 10, ErrDowngrade},
		{"version zero", valid, 0, ErrUnknownSchemaVersion},
		{"negative version", valid, -1, ErrUnknownSchemaVersion},
		{"current version", valid, 2, ErrUnknownSchemaVersion},
		{"not json", []byte(`{host`), 1, ErrInvalidRecord},
		{"array", []byte(`[1,2]`), 1, ErrInvalidRecord},
		{"missing uid", []byte(`{"host":"h"}`), 1, ErrInvalidRecord},
		{"numeric host", []byte(`{"host":5,"uid":"u"}`), 1, ErrInvalidRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := string(tt.data)
			data, version, err := MigrateRecord(tt.data, tt.version)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("MigrateRecord() error = %v, want %v", err, tt.wantErr)
			}
			if data != nil || version != 0 {
				t.Errorf("MigrateRecord() = %s, %d on error", data, version)
			}
			if string(tt.data) != before {
				t.Error("input was modified")
			}
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"valid", `{"host":"h","uid":"u","channels":{"1":{"channel_name":"A"}}}`, false},
		{"no channels key", `{"host":"h","uid":"u"}`, false},
		{"bad json", `{`, true},
		{"missing host", `{"uid":"u","channels":{}}`, true},
		{"channel out of range", `{"host":"h","uid":"u","channels":{"7":{}}}`, true},
		{"channel not numeric", `{"host":"h","uid":"u","channels":{"a":{}}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeRecord([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRecord) {
					t.Errorf("DecodeRecord() error = %v, want ErrInvalidRecord", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeRecord() error = %v", err)
			}
			if rec.Channels == nil {
				t.Error("Channels should never be nil")
			}
		})
	}
}

func TestParseChannel(t *testing.T) {
	for _, id := range []string{"1", "6"} {
		if _, err := ParseChannel(id); err != nil {
			t.Errorf("ParseChannel(%q) error = %v", id, err)
		}
	}
	for _, id := range []string{"0", "7", "01", "", "x", " 1"} {
		if _, err := ParseChannel(id); !errors.Is(err, ErrInvalidChannel) {
			t.Errorf("ParseChannel(%q) error = %v, want ErrInvalidChannel", id, err)
		}
	}
}
