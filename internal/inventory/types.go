package inventory

import "time"

// DeviceKind classifies a device within a rack.
type DeviceKind string

// Device kinds.
const (
	KindServer DeviceKind = "SERVER"
	KindSwitch DeviceKind = "SWITCH"
	KindCustom DeviceKind = "CUSTOM"
)

// AllDeviceKinds returns all valid device kinds.
func AllDeviceKinds() []DeviceKind {
	return []DeviceKind{KindServer, KindSwitch, KindCustom}
}

// Valid reports whether the kind is one of the enumerated values.
func (k DeviceKind) Valid() bool {
	switch k {
	case KindServer, KindSwitch, KindCustom:
		return true
	}
	return false
}

// Rack represents a physical rack in the data center.
// The rack layout is fixed at installation time; there is no API for
// creating or removing racks.
type Rack struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// IPBinding is an IPv4 address bound to a device.
type IPBinding struct {
	ID       int64  `json:"id"`
	DeviceID string `json:"device_id"`
	Address  string `json:"address"`
}

// MACBinding is a MAC address bound to a device.
type MACBinding struct {
	ID       int64  `json:"id"`
	DeviceID string `json:"device_id"`
	Address  string `json:"address"`
}

// Device represents a rack-mounted device with its address bindings.
//
// Label and kind are fixed at creation; the only lifecycle transitions
// are create and delete.
type Device struct {
	ID        string       `json:"id"`
	RackID    string       `json:"rack_id"`
	Kind      DeviceKind   `json:"kind"`
	Label     string       `json:"label"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
	IPs       []IPBinding  `json:"ips"`
	MACs      []MACBinding `json:"macs"`
}

// AddressInput is a single address entry in a create request.
type AddressInput struct {
	Address string `json:"address"`
}

// DeviceInput is the payload for creating a device.
type DeviceInput struct {
	RackID string         `json:"rack_id"`
	Kind   DeviceKind     `json:"kind"`
	Label  string         `json:"label"`
	IPs    []AddressInput `json:"ips"`
	MACs   []AddressInput `json:"macs"`
}

// DeviceSummary is the minimal device representation carried by
// device_saved events.
type DeviceSummary struct {
	ID     string     `json:"id"`
	RackID string     `json:"rack_id"`
	Kind   DeviceKind `json:"kind"`
	Label  string     `json:"label"`
}
