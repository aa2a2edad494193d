package discovery

import (
	"testing"
)

func TestDevice_String(t *testing.T) {
	device := &Device{
		Instance: "nightstand-bedroom",
		Hostname: "nightstand.local",
		IP:       "192.168.4.16",
		Port:     8080,
	}

	expected := "Nightstand nightstand-bedroom (nightstand.local) at 192.168.4.16:8080"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{
		Metadata: map[string]string{
			"pixels":  "12",
			"version": "1.2.0",
		},
	}

	tests := []struct {
		key      string
		expected string
	}{
		{"pixels", "12"},
		{"version", "1.2.0"},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := device.GetMetadata(tt.key); got != tt.expected {
				t.Errorf("GetMetadata(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata_NilMap(t *testing.T) {
	device := &Device{}
	if got := device.GetMetadata("pixels"); got != "" {
		t.Errorf("GetMetadata() on nil map = %q, want empty", got)
	}
}
