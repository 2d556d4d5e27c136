package wevolor

import "context"

// Status is the identity a controller reports about itself.
type Status struct {
	UID        string `json:"uid"`
	RemoteName string `json:"remote"`
}

// Client controls one Wevolor controller. Channels are numbered 1..6.
//
// Status returns (nil, nil) when the controller answered without a payload.
// Commands are fire-and-forget radio transmissions; the controller reports
// no position.
type Client interface {
	Status(ctx context.Context) (*Status, error)
	Open(ctx context.Context, channel int) error
	Close(ctx context.Context, channel int) error
	Stop(ctx context.Context, channel int) error
	OpenTilt(ctx context.Context, channel int) error
	CloseTilt(ctx context.Context, channel int) error
	StopTilt(ctx context.Context, channel int) error
	SetFavorite(ctx context.Context, channel int) error
}

// ClientFactory creates the Client for the controller at host.
type ClientFactory func(host string) Client
