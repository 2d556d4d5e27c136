package wevolor

import (
	"context"

	"github.com/nerrad567/gray-logic-wevolor/internal/entity"
)

// channelDevice returns the device shared by a channel's cover and button.
func channelDevice(uid, channelID string, cfg ChannelConfig) entity.DeviceInfo {
	return entity.DeviceInfo{
		Identifiers:  [][2]string{{Domain, uid + "-" + channelID}},
		Name:         "Wevolor " + cfg.Name,
		Manufacturer: Manufacturer,
	}
}

// Shade is the cover entity of one channel. The controller reports no
// position, so state is assumed and IsClosed is always unknown.
type Shade struct {
	client    Client
	uid       string
	channelID string
	channel   int
	cfg       ChannelConfig
}

// NewShade builds the cover for channelID of the bridge uid.
func NewShade(client Client, uid, channelID string, cfg ChannelConfig) (*Shade, error) {
	channel, err := ParseChannel(channelID)
	if err != nil {
		return nil, err
	}
	return &Shade{
		client:    client,
		uid:       uid,
		channelID: channelID,
		channel:   channel,
		cfg:       cfg,
	}, nil
}

// Info implements entity.Entity.
func (s *Shade) Info() entity.Info {
	return entity.Info{
		UniqueID:      s.uid + "-" + s.channelID + "-cov",
		Kind:          entity.KindCover,
		HasEntityName: true,
		AssumedState:  true,
		Device:        channelDevice(s.uid, s.channelID, s.cfg),
	}
}

// DeviceClass is blind for tilting channels, shade otherwise.
func (s *Shade) DeviceClass() entity.DeviceClass {
	if s.cfg.SupportsTilt {
		return entity.DeviceClassBlind
	}
	return entity.DeviceClassShade
}

// Features implements entity.Cover.
func (s *Shade) Features() entity.CoverFeature {
	f := entity.CoverOpen | entity.CoverClose | entity.CoverStop
	if s.cfg.SupportsTilt {
		f |= entity.CoverOpenTilt | entity.CoverCloseTilt | entity.CoverStopTilt
	}
	return f
}

// IsClosed implements entity.Cover.
func (s *Shade) IsClosed() *bool { return nil }

// Open implements entity.Cover.
func (s *Shade) Open(ctx context.Context) error {
	if s.client == nil {
		return ErrClientNotReady
	}
	return s.client.Open(ctx, s.channel)
}

// Close moves the blind down, or to its favorite position when the
// channel uses favorite as down.
func (s *Shade) Close(ctx context.Context) error {
	if s.client == nil {
		return ErrClientNotReady
	}
	if s.cfg.FavoriteIsDown {
		return s.client.SetFavorite(ctx, s.channel)
	}
	return s.client.Close(ctx, s.channel)
}

// Stop implements entity.Cover.
func (s *Shade) Stop(ctx context.Context) error {
	if s.client == nil {
		return ErrClientNotReady
	}
	return s.client.Stop(ctx, s.channel)
}

// OpenTilt implements entity.Cover.
func (s *Shade) OpenTilt(ctx context.Context) error {
	if s.client == nil {
		return ErrClientNotReady
	}
	return s.client.OpenTilt(ctx, s.channel)
}

// CloseTilt implements entity.Cover.
func (s *Shade) CloseTilt(ctx context.Context) error {
	if s.client == nil {
		return ErrClientNotReady
	}
	return s.client.CloseTilt(ctx, s.channel)
}

// StopTilt implements entity.Cover.
func (s *Shade) StopTilt(ctx context.Context) error {
	if s.client == nil {
		return ErrClientNotReady
	}
	return s.client.StopTilt(ctx, s.channel)
}
