// Package wevolor integrates Wevolor controllers for Levolor motorised blinds.
//
// A controller drives up to six radio channels. Each configured channel
// becomes a cover entity, plus a favorite-position button unless the
// channel already uses its favorite position as "down".
//
// # Setup
//
// ConfigFlow is a three-state wizard:
//
//	stepBridgeInput ──▶ stepChannelInput(ch) ──▶ … ──▶ stepDone
//
// The bridge step queries the controller status for its uid. A uid that is
// already configured updates the stored host and aborts with
// "already_configured".
//
// # Stored data
//
// Entries are stored at Version 2:
//
//	{"host": "192.168.1.50", "uid": "abc123",
//	 "channels": {"1": {"channel_name": "Kitchen", "support_tilt": false,
//	                    "use_favorite_for_down": true}}}
//
// Version 1 entries used flat channel_1..channel_6 flags and a single
// support_tilt flag; MigrateRecord converts them.
//
// # Device access
//
// The Client interface is the controller surface. This package ships only
// Simulator, an in-memory controller used for development and tests.
package wevolor
