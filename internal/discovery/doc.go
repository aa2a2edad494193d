// Package discovery provides mDNS announcement and lookup for Nightstand
// controllers.
//
// Controllers advertise themselves as "_nightstand._tcp" services with TXT
// records carrying the pixel count and build version. Clients browse for
// that service type to find a controller without knowing its address.
//
// # Usage Example
//
//	// Discover controllers with 10-second timeout
//	devices, err := discovery.Scan(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, device := range devices {
//	    fmt.Printf("Found: %s at %s\n", device.Instance, device.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
