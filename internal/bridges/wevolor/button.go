package wevolor

import (
	"context"

	"github.com/nerrad567/gray-logic-wevolor/internal/entity"
)

// FavoriteButton moves a channel's blind to its stored favorite position.
type FavoriteButton struct {
	client    Client
	uid       string
	channelID string
	channel   int
	cfg       ChannelConfig
}

// NewFavoriteButton builds the favorite button for channelID of the bridge uid.
func NewFavoriteButton(client Client, uid, channelID string, cfg ChannelConfig) (*FavoriteButton, error) {
	channel, err := ParseChannel(channelID)
	if err != nil {
		return nil, err
	}
	return &FavoriteButton{
		client:    client,
		uid:       uid,
		channelID: channelID,
		channel:   channel,
		cfg:       cfg,
	}, nil
}

// Info implements entity.Entity.
func (b *FavoriteButton) Info() entity.Info {
	return entity.Info{
		UniqueID:                b.uid + "-" + b.channelID + "-fav",
		Kind:                    entity.KindButton,
		HasEntityName:           true,
		TranslationKey:          "favorite_button",
		TranslationPlaceholders: map[string]string{"name": b.cfg.Name},
		Icon:                    "mdi:heart",
		Device:                  channelDevice(b.uid, b.channelID, b.cfg),
	}
}

// Press implements entity.Button.
func (b *FavoriteButton) Press(ctx context.Context) error {
	if b.client == nil {
		return ErrClientNotReady
	}
	return b.client.SetFavorite(ctx, b.channel)
}

// BuildEntities returns one cover per configured channel followed by a
// favorite button for every channel that does not already use favorite
// as its down action. Channels are visited in numeric order.
func BuildEntities(client Client, rec Record) ([]entity.Entity, error) {
	ids := rec.ChannelIDs()
	entities := make([]entity.Entity, 0, 2*len(ids))

	for _, id := range ids {
		shade, err := NewShade(client, rec.UID, id, rec.Channels[id])
		if err != nil {
			return nil, err
		}
		entities = append(entities, shade)
	}

	for _, id := range ids {
		cfg := rec.Channels[id]
		if cfg.FavoriteIsDown {
			continue
		}
		button, err := NewFavoriteButton(client, rec.UID, id, cfg)
		if err != nil {
			return nil, err
		}
		entities = append(entities, button)
	}
	return entities, nil
}
