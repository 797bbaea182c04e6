package mqtt

import "fmt"

// topicPrefix is the root of the Rackview topic namespace.
const topicPrefix = "rackview"

// Topics builds MQTT topic strings for the Rackview namespace.
//
// Topic layout:
//
//	rackview/event/{type}     — mirrored inventory events (device_saved, device_deleted)
//	rackview/system/status    — online/offline status (retained, LWT)
//
// Usage:
//
//	t := mqtt.Topics{}
//	t.Event("device_saved")   // "rackview/event/device_saved"
//	t.SystemStatus()          // "rackview/system/status"
type Topics struct{}

// Event returns the topic for a mirrored inventory event.
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", topicPrefix, eventType)
}

// SystemStatus returns the retained status topic used for online,
// offline, and LWT messages.
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", topicPrefix)
}
