// Package mqtt provides the optional broker mirror for committed
// inventory events.
//
// When enabled, every event pushed to WebSocket clients is also
// published to rackview/event/{type}, letting external consumers react
// to inventory changes without holding a WebSocket connection. The
// mirror is publish-only and best-effort: a broker outage never blocks
// or fails an inventory write.
//
// Connection management (auto-reconnect, LWT on rackview/system/status)
// is handled internally by the paho client.
package mqtt
