package discovery

import (
	"fmt"
	"time"
)

// Device is a Nightstand controller found on the local network.
type Device struct {
	// Instance is the mDNS instance name (e.g., "nightstand-bedroom")
	Instance string

	// Hostname is the mDNS hostname (e.g., "nightstand.local.")
	Hostname string

	// IP is the address to reach the controller at (IPv4 preferred)
	IP string

	// Port is the HTTP control port
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "pixels=12", "version=1.2.0"
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("Nightstand %s (%s) at %s:%d", d.Instance, d.Hostname, d.IP, d.Port)
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// StreamURL returns the WebSocket endpoint for streaming color commands
func (d *Device) StreamURL() string {
	return fmt.Sprintf("ws://%s:%d/ws", d.IP, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
