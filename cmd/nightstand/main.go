// Nightstand is a WS2812 LED strip controller driven over the network.
//
// It accepts JSON color commands over HTTP, WebSocket and (optionally) MQTT,
// validates them, and renders the latest command to the strip through an SPI
// port.
//
// Usage:
//
//	nightstand serve [flags]
//
// See 'nightstand serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"periph.io/x/host/v3"

	"github.com/TuteMthCD/nightstand/internal/blink"
	"github.com/TuteMthCD/nightstand/internal/command"
	"github.com/TuteMthCD/nightstand/internal/config"
	"github.com/TuteMthCD/nightstand/internal/discovery"
	"github.com/TuteMthCD/nightstand/internal/drive"
	"github.com/TuteMthCD/nightstand/internal/logging"
	"github.com/TuteMthCD/nightstand/internal/mqtt"
	"github.com/TuteMthCD/nightstand/internal/pixelbus"
	"github.com/TuteMthCD/nightstand/internal/server"
	"github.com/TuteMthCD/nightstand/internal/version"
	"github.com/TuteMthCD/nightstand/internal/ws2812"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nightstand",
	Short: "Nightstand LED strip controller",
	Long: `Nightstand drives a WS2812 LED strip from network color commands.

The daemon listens for JSON pixel arrays over HTTP POST and WebSocket, keeps
only the latest command when producers outpace the strip, and renders it
through an SPI port clocked to the WS2812 bit timing.

Note: For controlling a running daemon from the command line, use the
separate 'nightstand-ctl' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	configPath string
	listenPort int
	spiDev     string
	pixels     int
	logLevel   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the controller daemon",
	Long: `Start the Nightstand daemon.

Configuration is read from a YAML file when --config is given; flags override
individual values. Without a file the built-in defaults apply (port 8080,
12 pixels, 2.4MHz SPI clock).`,
	Example: `  # Start with defaults on the first registered SPI port
  nightstand serve

  # Start with a config file
  nightstand serve --config /etc/nightstand.yaml

  # Override the strip geometry and port
  nightstand serve --pixels 60 --spi-dev /dev/spidev0.0 --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file (optional)")
	serveCmd.Flags().IntVar(&listenPort, "port", 0, "HTTP listen port (overrides config)")
	serveCmd.Flags().StringVar(&spiDev, "spi-dev", "", "SPI port for the strip data line (overrides config)")
	serveCmd.Flags().IntVar(&pixels, "pixels", 0, "Number of LEDs on the strip (overrides config)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	logging.Info("Nightstand starting",
		zap.String("version", version.Full()),
		zap.Int("pixels", cfg.Strip.Pixels),
		zap.String("addr", cfg.ListenAddr()),
	)

	// Host drivers must be loaded before any port or pin lookup
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize host drivers: %w", err)
	}

	tx, err := ws2812.NewSPITransmitter(cfg.Strip.SPIDev, cfg.Clock())
	if err != nil {
		return fmt.Errorf("failed to open SPI port: %w", err)
	}
	defer func() { _ = tx.Close() }()

	bus := pixelbus.New()
	defer bus.Close()

	// An unrepresentable pulse width on this clock is a startup failure,
	// not something to discover mid-run
	loop, err := drive.New(bus, tx, cfg.Strip.Pixels, cfg.Interval())
	if err != nil {
		return fmt.Errorf("failed to set up drive loop: %w", err)
	}

	fatal := make(chan error, 1)
	go func() {
		fatal <- loop.Run()
	}()

	if cfg.Blink.Pin != "" {
		blinker, err := blink.New(cfg.Blink.Pin, cfg.BlinkPeriod())
		if err != nil {
			return fmt.Errorf("failed to set up status LED: %w", err)
		}
		blinker.Start()
		defer blinker.Stop()
	}

	if cfg.MQTT.Broker != "" {
		intake, err := mqtt.Start(mqtt.Config{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID,
		}, bus, &command.Validator{MaxPayload: cfg.MaxPayload})
		if err != nil {
			return fmt.Errorf("failed to start MQTT intake: %w", err)
		}
		defer intake.Close()
	}

	if cfg.Discovery.Enabled {
		advertiser, err := discovery.Advertise(cfg.Discovery.Instance, cfg.Port, map[string]string{
			"pixels":  fmt.Sprintf("%d", cfg.Strip.Pixels),
			"version": version.Version,
		})
		if err != nil {
			// Discovery is a convenience; the controller still works by address
			logging.Warn("Failed to advertise over mDNS", zap.Error(err))
		} else {
			defer advertiser.Shutdown()
		}
	}

	srv := server.New(&server.Config{
		Addr:        cfg.ListenAddr(),
		MaxPayload:  cfg.MaxPayload,
		StripPixels: cfg.Strip.Pixels,
	}, bus)

	return srv.Start(fatal)
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if listenPort != 0 {
		cfg.Port = listenPort
	}
	if spiDev != "" {
		cfg.Strip.SPIDev = spiDev
	}
	if pixels != 0 {
		cfg.Strip.Pixels = pixels
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nightstand %s (commit: %s)\n", version.Version, version.Commit)
	},
}
