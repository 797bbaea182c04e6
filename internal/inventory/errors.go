package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors for the inventory package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, inventory.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("inventory: device not found")

	// ErrStorageFailed is returned when a write transaction could not
	// be completed. The original cause is wrapped.
	ErrStorageFailed = errors.New("inventory: storage write failed")
)

// FieldErrors maps input field names to their validation failures.
// It is returned by validation before any storage is touched.
type FieldErrors map[string][]string

// Error implements the error interface.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("inventory: validation failed")
	for _, f := range fields {
		fmt.Fprintf(&b, "; %s: %s", f, strings.Join(e[f], ", "))
	}
	return b.String()
}

// add appends a message to the named field.
func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}
