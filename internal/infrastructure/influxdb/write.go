package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteGiftMetric writes a single gift event to InfluxDB.
//
// This is the primary method for recording stream activity.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - category: Gift category name (e.g., "Rose", "Galaxy")
//   - actor: Sender username
//   - magnitude: Repeat count carried by the event
//   - weight: Configured per-unit weight for the category
//   - score: Computed score (weight * magnitude)
//
// Example:
//
//	client.WriteGiftMetric("Rose", "alice", 5, 1, 5)
func (c *Client) WriteGiftMetric(category, actor string, magnitude, weight, score int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"gifts",
		map[string]string{
			"category": category,
			"actor":    actor,
		},
		map[string]interface{}{
			"magnitude": magnitude,
			"weight":    weight,
			"score":     score,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommandMetric writes a relay command delivery attempt.
//
// Used for tracking actuator activity and delivery reliability.
//
// Parameters:
//   - action: Firmware action string (e.g., "relay1nyala")
//   - duration: Activation duration in seconds
//   - delivered: Whether the controller acknowledged the command
func (c *Client) WriteCommandMetric(action string, duration int, delivered bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"commands",
		map[string]string{
			"action": action,
		},
		map[string]interface{}{
			"duration":  duration,
			"delivered": delivered,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSessionMetric writes aggregate session statistics.
//
// Typically called at session end with the final snapshot values.
//
// Parameters:
//   - sessionID: Session identifier
//   - totalUnits: Total weighted gift units received
//   - attempted: Command delivery attempts
//   - succeeded: Acknowledged deliveries
func (c *Client) WriteSessionMetric(sessionID string, totalUnits, attempted, succeeded int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sessions",
		map[string]string{
			"session_id": sessionID,
		},
		map[string]interface{}{
			"total_units": totalUnits,
			"attempted":   attempted,
			"succeeded":   succeeded,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
