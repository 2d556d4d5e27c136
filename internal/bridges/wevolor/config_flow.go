package wevolor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/gray-logic-wevolor/internal/flow"
)

// Flow step ids and result codes.
const (
	StepConfigBridge  = "config_bridge"
	StepConfigChannel = "config_channel"

	ErrorNoChannels        = "no_channels"
	ErrorCannotConnect     = "cannot_connect"
	ErrorUnknown           = "unknown"
	AbortFlowFinished      = "flow_finished"
	AbortAlreadyConfigured = flow.AbortAlreadyConfigured
)

// EntryUpdater updates the entry of an already configured bridge.
type EntryUpdater interface {
	UpdateIfConfigured(ctx context.Context, domain, uniqueID string, updates map[string]any) (bool, error)
}

// bridgeForm asks for the controller host and the channels to set up.
var bridgeForm = func() flow.Form {
	options := make([]flow.Option, 0, MaxChannel)
	for n := MinChannel; n <= MaxChannel; n++ {
		options = append(options, flow.Option{
			Value: strconv.Itoa(n),
			Label: "channel_" + strconv.Itoa(n),
		})
	}
	return flow.Form{
		{Name: KeyHost, Type: flow.FieldString, Required: true},
		{Name: KeyChannels, Type: flow.FieldSelect, Multiple: true, Options: options, Default: []string{}},
	}
}()

// channelForm configures one channel.
var channelForm = flow.Form{
	{Name: KeyChannelName, Type: flow.FieldString, Required: true},
	{Name: KeySupportTilt, Type: flow.FieldBoolean, Required: true, Default: false},
	{Name: KeyFavoriteIsDown, Type: flow.FieldBoolean, Required: true, Default: false},
}

// step is the wizard state.
type step interface{ isStep() }

type stepBridgeInput struct{}

type stepChannelInput struct{ channel string }

type stepDone struct{}

func (stepBridgeInput) isStep()  {}
func (stepChannelInput) isStep() {}
func (stepDone) isStep()         {}

// ConfigFlow is the setup wizard for one controller:
// bridge input, then one channel input per selected channel, then done.
type ConfigFlow struct {
	newClient ClientFactory
	entries   EntryUpdater
	logger    Logger

	step     step
	title    string
	bridge   BridgeConfig
	channels map[string]ChannelConfig
}

// NewConfigFlow creates a wizard. newClient is used to reach the host the
// user enters; entries is consulted for already configured bridges.
func NewConfigFlow(newClient ClientFactory, entries EntryUpdater, logger Logger) *ConfigFlow {
	if logger == nil {
		logger = noopLogger{}
	}
	return &ConfigFlow{
		newClient: newClient,
		entries:   entries,
		logger:    logger,
		step:      stepBridgeInput{},
	}
}

// Init implements flow.Handler.
func (f *ConfigFlow) Init(context.Context) flow.Result {
	f.step = stepBridgeInput{}
	return flow.ShowForm(StepConfigBridge, bridgeForm, nil, nil)
}

// Submit implements flow.Handler.
func (f *ConfigFlow) Submit(ctx context.Context, input flow.Input) flow.Result {
	switch s := f.step.(type) {
	case stepBridgeInput:
		return f.submitBridge(ctx, input)
	case stepChannelInput:
		return f.submitChannel(s, input)
	default:
		return flow.Abort(AbortFlowFinished)
	}
}

func (f *ConfigFlow) submitBridge(ctx context.Context, input flow.Input) flow.Result {
	host := strings.TrimSpace(input.String(KeyHost))
	selected := dedupe(input.Strings(KeyChannels))

	if len(selected) == 0 {
		return f.bridgeError(KeyChannels, ErrorNoChannels)
	}
	for _, ch := range selected {
		if _, err := ParseChannel(ch); err != nil {
			f.logger.Warn("rejecting channel selection", "channel", ch, "error", err)
			return f.bridgeError("base", ErrorUnknown)
		}
	}

	status, err := f.queryStatus(ctx, host)
	switch {
	case errors.Is(err, ErrCannotConnect):
		f.logger.Info("wevolor controller did not answer", "host", host)
		return f.bridgeError("base", ErrorCannotConnect)
	case err != nil:
		f.logger.Error("unexpected error validating wevolor controller", "host", host, "error", err)
		return f.bridgeError("base", ErrorUnknown)
	}

	title := status.RemoteName
	if title == "" {
		title = "Wevolor-" + status.UID
	}

	updated, err := f.entries.UpdateIfConfigured(ctx, Domain, status.UID, map[string]any{KeyHost: host})
	if err != nil {
		f.logger.Error("updating existing wevolor entry", "uid", status.UID, "error", err)
		return f.bridgeError("base", ErrorUnknown)
	}
	if updated {
		f.logger.Info("wevolor controller already configured, host updated", "uid", status.UID, "host", host)
		f.step = stepDone{}
		return flow.Abort(AbortAlreadyConfigured)
	}

	f.title = title
	f.bridge = BridgeConfig{Host: host, UID: status.UID, Channels: selected}
	f.channels = make(map[string]ChannelConfig, len(selected))

	f.logger.Debug("bridge validated", "uid", status.UID, "channels", selected)
	return f.showChannel(f.nextChannel())
}

func (f *ConfigFlow) submitChannel(s stepChannelInput, input flow.Input) flow.Result {
	f.channels[s.channel] = ChannelConfig{
		Name:           input.String(KeyChannelName),
		SupportsTilt:   input.Bool(KeySupportTilt),
		FavoriteIsDown: input.Bool(KeyFavoriteIsDown),
	}

	if next := f.nextChannel(); next != "" {
		return f.showChannel(next)
	}

	data, err := json.Marshal(Record{
		Host:     f.bridge.Host,
		UID:      f.bridge.UID,
		Channels: f.channels,
	})
	if err != nil {
		f.logger.Error("encoding wevolor record", "error", err)
		f.step = stepDone{}
		return flow.Abort(ErrorUnknown)
	}

	f.step = stepDone{}
	f.logger.Debug("wevolor flow finished", "title", f.title)
	r := flow.CreateEntry(f.title, f.bridge.UID, data)
	r.UpdateOnDuplicate = map[string]any{KeyHost: f.bridge.Host}
	return r
}

// queryStatus asks the controller at host for its identity.
func (f *ConfigFlow) queryStatus(ctx context.Context, host string) (*Status, error) {
	client := f.newClient(host)
	if client == nil {
		return nil, fmt.Errorf("no client for host %q", host)
	}
	status, err := client.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying status: %w", err)
	}
	if status == nil {
		return nil, ErrCannotConnect
	}
	if status.UID == "" {
		return nil, ErrInvalidStatus
	}
	return status, nil
}

// nextChannel returns the first selected channel not yet configured, or "".
func (f *ConfigFlow) nextChannel() string {
	for _, ch := range f.bridge.Channels {
		if _, done := f.channels[ch]; !done {
			return ch
		}
	}
	return ""
}

func (f *ConfigFlow) showChannel(channel string) flow.Result {
	f.step = stepChannelInput{channel: channel}
	return flow.ShowForm(StepConfigChannel, channelForm, nil, map[string]string{"channel": channel})
}

func (f *ConfigFlow) bridgeError(field, code string) flow.Result {
	f.step = stepBridgeInput{}
	return flow.ShowForm(StepConfigBridge, bridgeForm, map[string]string{field: code}, nil)
}

// dedupe drops repeated values, keeping first occurrences in order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
