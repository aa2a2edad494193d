// Package config loads the daemon configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Strip describes the attached LED strip and its transmit peripheral.
type Strip struct {
	// Pixels is the number of LEDs on the strip.
	Pixels int `yaml:"pixels"`
	// SPIDev is the SPI port the strip data line hangs off, e.g.
	// "/dev/spidev0.0". Empty selects the first registered port.
	SPIDev string `yaml:"spi_dev"`
	// ClockHz is the transmit counter clock. 2.4MHz resolves the WS2812
	// pulse widths as 1-2 SPI bits per pulse.
	ClockHz int64 `yaml:"clock_hz"`
	// IntervalMs is the minimum spacing between strip updates.
	IntervalMs int `yaml:"interval_ms"`
}

// Blink describes the liveness indicator pin.
type Blink struct {
	// Pin is a periph.io pin name or number, e.g. "GPIO8". Empty disables
	// the blinker.
	Pin string `yaml:"pin"`
	// PeriodMs is the toggle period.
	PeriodMs int `yaml:"period_ms"`
}

// MQTT describes the optional broker intake.
type MQTT struct {
	// Broker is the broker URL, e.g. "tcp://192.168.1.10:1883". Empty
	// disables the MQTT intake.
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// Discovery describes mDNS advertisement.
type Discovery struct {
	Enabled  bool   `yaml:"enabled"`
	Instance string `yaml:"instance"`
}

// Config is the daemon configuration.
type Config struct {
	// Host/Port form the HTTP listen address.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// MaxPayload is the byte budget for one inbound color message.
	MaxPayload int `yaml:"max_payload"`

	LogLevel string `yaml:"log_level"`

	Strip     Strip     `yaml:"strip"`
	Blink     Blink     `yaml:"blink"`
	MQTT      MQTT      `yaml:"mqtt"`
	Discovery Discovery `yaml:"discovery"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Port:       8080,
		MaxPayload: 512,
		LogLevel:   "info",
		Strip: Strip{
			Pixels:     12,
			ClockHz:    2_400_000,
			IntervalMs: 50,
		},
		Blink: Blink{
			PeriodMs: 1000,
		},
		MQTT: MQTT{
			Topic:    "nightstand/params",
			ClientID: "nightstand",
		},
		Discovery: Discovery{
			Instance: "nightstand",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Validate rejects values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxPayload <= 0 {
		return fmt.Errorf("max_payload must be positive, got %d", c.MaxPayload)
	}
	if c.Strip.Pixels <= 0 {
		return fmt.Errorf("strip.pixels must be positive, got %d", c.Strip.Pixels)
	}
	if c.Strip.ClockHz <= 0 {
		return fmt.Errorf("strip.clock_hz must be positive, got %d", c.Strip.ClockHz)
	}
	if c.Strip.IntervalMs < 0 {
		return fmt.Errorf("strip.interval_ms must not be negative, got %d", c.Strip.IntervalMs)
	}
	if c.Blink.Pin != "" && c.Blink.PeriodMs <= 0 {
		return fmt.Errorf("blink.period_ms must be positive, got %d", c.Blink.PeriodMs)
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return fmt.Errorf("mqtt.topic required when a broker is configured")
	}
	return nil
}

// Clock returns the strip counter clock as a physic frequency.
func (c *Config) Clock() physic.Frequency {
	return physic.Frequency(c.Strip.ClockHz) * physic.Hertz
}

// Interval returns the minimum inter-frame spacing.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Strip.IntervalMs) * time.Millisecond
}

// BlinkPeriod returns the liveness toggle period.
func (c *Config) BlinkPeriod() time.Duration {
	return time.Duration(c.Blink.PeriodMs) * time.Millisecond
}

// ListenAddr returns the HTTP listen address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
