// Package hass exposes entities to Home Assistant over MQTT discovery.
//
// For every entity of a loaded config entry the Exporter publishes a
// retained config to
//
//	{prefix}/{cover|button}/{protocol}/{unique_id}/config
//
// and listens on graylogic/command/{protocol}/{unique_id} (plus /tilt for
// covers) for the hub's commands. Detaching an entry stops serving its
// commands and leaves the configs retained, so restarts are invisible to
// the hub. Removing an entry publishes empty retained payloads, which
// deletes the entities from the hub.
//
// Availability follows the service status topic, so entities go
// unavailable when the service stops or loses the broker. When the hub
// announces itself online on {prefix}/status, every config is
// republished.
package hass
