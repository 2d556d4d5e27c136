// Package influxdb records entity command telemetry in InfluxDB.
//
// Every command dispatched to a Wevolor channel, whether it came over
// MQTT or the HTTP API, becomes one point in the device_commands
// measurement:
//
//	device_commands,entity_id=abc-1-cov,command=close,status=ok duration_ms=3.2
//
// Telemetry is optional. With influxdb.enabled false, Connect returns
// ErrDisabled and the service runs without it.
//
// Writes are batched (batch_size, flush_interval) and never block the
// command path; asynchronous failures go to the SetOnError callback.
package influxdb
