package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteOperationLatency records the wall-clock duration of a completed
// write operation.
//
// The write is non-blocking; data is batched and sent asynchronously.
// This satisfies the inventory.LatencyRecorder interface.
//
// Parameters:
//   - eventType: Operation name (e.g., "device_create", "device_delete")
//   - durationMS: Wall-clock duration in milliseconds
//   - success: Whether the operation committed
func (c *Client) WriteOperationLatency(eventType string, durationMS float64, success bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"write_latency",
		map[string]string{
			"event_type": eventType,
		},
		map[string]interface{}{
			"duration_ms": durationMS,
			"success":     success,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
