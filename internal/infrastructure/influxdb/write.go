package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement and tag values for command telemetry.
const (
	MeasurementCommands = "device_commands"

	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RecordCommand writes one entity command outcome to the device_commands
// measurement. Tags are entity_id, command and status; fields are the
// duration in milliseconds and, for failures, the error text.
func (c *Client) RecordCommand(entityID, command string, elapsed time.Duration, cmdErr error) {
	c.WritePoint(commandPoint(entityID, command, elapsed, cmdErr, time.Now()))
}

func commandPoint(entityID, command string, elapsed time.Duration, cmdErr error, at time.Time) *write.Point {
	status := StatusOK
	fields := map[string]interface{}{
		"duration_ms": float64(elapsed) / float64(time.Millisecond),
	}
	if cmdErr != nil {
		status = StatusFailed
		fields["error"] = cmdErr.Error()
	}

	return write.NewPoint(
		MeasurementCommands,
		map[string]string{
			"entity_id": entityID,
			"command":   command,
			"status":    status,
		},
		fields,
		at,
	)
}

// WritePoint queues a point. Points are dropped while disconnected.
func (c *Client) WritePoint(point *write.Point) {
	if !c.IsConnected() || c.writeAPI == nil {
		return
	}
	c.writeAPI.WritePoint(point)
}
