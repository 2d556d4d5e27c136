package wevolor

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Integration constants.
const (
	// Domain is the integration key for config entries and device identifiers.
	Domain = "wevolor"

	// Version is the current schema version of a stored Record.
	Version = 2

	// Manufacturer is reported in device info.
	Manufacturer = "Wevolor"

	// MinChannel and MaxChannel bound the radio channels of a controller.
	MinChannel = 1
	MaxChannel = 6
)

// Stored record keys.
const (
	KeyHost           = "host"
	KeyUID            = "uid"
	KeyChannels       = "channels"
	KeyChannelName    = "channel_name"
	KeySupportTilt    = "support_tilt"
	KeyFavoriteIsDown = "use_favorite_for_down"
)

// BridgeConfig is the validated result of the bridge step.
// Channels keep the user's selection order.
type BridgeConfig struct {
	Host     string
	UID      string
	Channels []string
}

// ChannelConfig configures one blind channel.
type ChannelConfig struct {
	Name           string `json:"channel_name"`
	SupportsTilt   bool   `json:"support_tilt"`
	FavoriteIsDown bool   `json:"use_favorite_for_down"`
}

// Record is the entry data persisted at Version.
type Record struct {
	Host     string                   `json:"host"`
	UID      string                   `json:"uid"`
	Channels map[string]ChannelConfig `json:"channels"`
}

// DecodeRecord parses and validates stored entry data.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if rec.Host == "" || rec.UID == "" {
		return Record{}, fmt.Errorf("%w: host and uid are required", ErrInvalidRecord)
	}
	for ch := range rec.Channels {
		if _, err := ParseChannel(ch); err != nil {
			return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
	}
	if rec.Channels == nil {
		rec.Channels = map[string]ChannelConfig{}
	}
	return rec, nil
}

// ChannelIDs returns the configured channels in numeric order.
func (r Record) ChannelIDs() []string {
	ids := make([]string, 0, len(r.Channels))
	for ch := range r.Channels {
		ids = append(ids, ch)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	return ids
}

// ParseChannel converts a channel id ("1".."6") to its number.
func ParseChannel(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n < MinChannel || n > MaxChannel || strconv.Itoa(n) != id {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChannel, id)
	}
	return n, nil
}
