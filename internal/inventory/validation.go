package inventory

import (
	"fmt"
	"regexp"
)

// Validation constants.
const (
	// maxAddressesPerList bounds each address list on a create request.
	maxAddressesPerList = 256
)

// Address syntax patterns. IPv4 is strict dotted-quad with per-octet
// range checks; MAC is six colon-separated two-digit hex octets.
var (
	ipv4Regex = regexp.MustCompile(`^(25[0-5]|2[0-4]\d|[01]?\d\d?)\.((25[0-5]|2[0-4]\d|[01]?\d\d?)\.){2}(25[0-5]|2[0-4]\d|[01]?\d\d?)$`)
	macRegex  = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)
)

// ValidIPv4 reports whether s is a strict dotted-quad IPv4 address.
func ValidIPv4(s string) bool {
	return ipv4Regex.MatchString(s)
}

// ValidMAC reports whether s is a colon-separated MAC address.
func ValidMAC(s string) bool {
	return macRegex.MatchString(s)
}

// ValidateDeviceInput checks a create request against the input rules.
//
// Returns nil when the input is valid, or FieldErrors describing every
// failing field. Validation never touches storage; a failure here
// produces no audit entry.
func ValidateDeviceInput(input DeviceInput) error {
	errs := FieldErrors{}

	if input.RackID == "" {
		errs.add("rack_id", "rack_id is required")
	}

	if !input.Kind.Valid() {
		errs.add("kind", fmt.Sprintf("kind must be one of %v", AllDeviceKinds()))
	}

	if input.Label == "" {
		errs.add("label", "label must not be empty")
	}

	if len(input.IPs) > maxAddressesPerList {
		errs.add("ips", fmt.Sprintf("at most %d addresses allowed", maxAddressesPerList))
	}
	for i, entry := range input.IPs {
		if !ValidIPv4(entry.Address) {
			errs.add("ips", fmt.Sprintf("ips[%d]: %q is not a valid IPv4 address", i, entry.Address))
		}
	}

	if len(input.MACs) > maxAddressesPerList {
		errs.add("macs", fmt.Sprintf("at most %d addresses allowed", maxAddressesPerList))
	}
	for i, entry := range input.MACs {
		if !ValidMAC(entry.Address) {
			errs.add("macs", fmt.Sprintf("macs[%d]: %q is not a valid MAC address", i, entry.Address))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
