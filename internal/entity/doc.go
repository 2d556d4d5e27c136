// Package entity defines the entity surface integrations expose to the hub:
// covers and buttons, their device grouping, and a Platform that accepts
// the entities of a config entry.
//
// Execute is the single command entry point used by both the MQTT exporter
// and the HTTP API; it rejects actions an entity does not advertise.
package entity
