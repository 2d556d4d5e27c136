package wevolor

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// legacyVersion is the flat record layout:
//
//	{"host": "...", "uid": "...", "support_tilt": true,
//	 "channel_1": true, ..., "channel_6": false}
const legacyVersion = 1

// MigrateRecord converts data stored at version to the current Record
// layout. The input is never modified.
//
// Legacy channel flags and the bridge-wide support_tilt are read with
// Python truthiness, as the legacy layout was written by Python code.
// The single legacy tilt flag is copied to every enabled channel.
func MigrateRecord(data []byte, version int) (json.RawMessage, int, error) {
	if version > Version {
		return nil, 0, fmt.Errorf("%w: stored version %d, current %d", ErrDowngrade, version, Version)
	}
	if version != legacyVersion {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownSchemaVersion, version)
	}

	if !gjson.ValidBytes(data) {
		return nil, 0, fmt.Errorf("%w: not valid JSON", ErrInvalidRecord)
	}
	legacy := gjson.ParseBytes(data)
	if !legacy.IsObject() {
		return nil, 0, fmt.Errorf("%w: not an object", ErrInvalidRecord)
	}

	host, uid := legacy.Get(KeyHost), legacy.Get(KeyUID)
	if host.Type != gjson.String || uid.Type != gjson.String {
		return nil, 0, fmt.Errorf("%w: host and uid must be strings", ErrInvalidRecord)
	}

	tilt := truthy(legacy.Get(KeySupportTilt))
	channels := make(map[string]ChannelConfig)
	for n := MinChannel; n <= MaxChannel; n++ {
		if !truthy(legacy.Get("channel_" + strconv.Itoa(n))) {
			continue
		}
		channels[strconv.Itoa(n)] = ChannelConfig{
			Name:         "Channel " + strconv.Itoa(n),
			SupportsTilt: tilt,
		}
	}

	out, err := json.Marshal(Record{
		Host:     host.String(),
		UID:      uid.String(),
		Channels: channels,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("encoding migrated record: %w", err)
	}
	return out, Version, nil
}

// truthy reports whether v is set: true, a non-zero number, or a
// non-empty string, array or object. A string such as "false" is set.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	case gjson.JSON:
		if v.IsArray() {
			return len(v.Array()) > 0
		}
		return len(v.Map()) > 0
	default:
		return false
	}
}
