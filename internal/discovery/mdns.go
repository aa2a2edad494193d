package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type Nightstand controllers advertise
	ServiceType = "_nightstand._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for controller discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default HTTP control port
	DefaultPort = 8080
)

// Scanner handles mDNS controller discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan discovers all Nightstand controllers on the local network
func (s *Scanner) Scan() ([]*Device, error) {
	return s.ScanWithContext(context.Background())
}

// ScanWithContext discovers controllers with a custom context
func (s *Scanner) ScanWithContext(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	devices := make([]*Device, 0)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device != nil {
				devices = append(devices, device)
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for the browse to finish and the collector to drain the channel
	<-ctx.Done()
	<-collected

	return devices, nil
}

// Find waits for a specific controller by instance name
// Returns the device or an error if not found within timeout
func (s *Scanner) Find(instance string) (*Device, error) {
	return s.FindWithContext(context.Background(), instance)
}

// FindWithContext waits for a specific controller with a custom context
func (s *Scanner) FindWithContext(ctx context.Context, instance string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	deviceChan := make(chan *Device, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device != nil && device.Instance == instance {
				deviceChan <- device
				cancel() // Found the controller, cancel context
				return
			}
		}
	}()

	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-deviceChan:
		return device, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("controller %q not found within timeout", instance)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Browse already filters on ServiceType, so every entry is a controller;
// entries without a reachable address are still dropped.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry.Instance == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Device{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience function to scan for controllers with a custom timeout
func Scan(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan()
}

// Advertiser announces this controller over mDNS for the lifetime of the
// process.
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers the controller instance on the local network. The TXT
// records carry the pixel count and build version so clients can size their
// payloads before connecting.
func Advertise(instance string, port int, txt map[string]string) (*Advertiser, error) {
	records := make([]string, 0, len(txt))
	for k, v := range txt {
		records = append(records, k+"="+v)
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, records, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the mDNS announcement.
func (a *Advertiser) Shutdown() {
	a.server.Shutdown()
}
