package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/TuteMthCD/nightstand/internal/color"
	"github.com/TuteMthCD/nightstand/internal/discovery"
)

// Command flags
var (
	deviceAddr  string
	devicePort  int
	scanTimeout int
	repeat      int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&deviceAddr, "device", "", "Controller IP address (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", 8080, "Controller HTTP port")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(hsvCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(streamCmd)
}

// scanCmd discovers controllers on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Nightstand controllers on the network",
	Long: `Scan for Nightstand controllers using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts and displays all discovered
controllers with their addresses and strip metadata.`,
	Example: `  # Scan for 10 seconds (default)
  nightstand-ctl scan

  # Quick 3-second scan
  nightstand-ctl scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for Nightstand controllers (timeout: %ds)...\n\n", scanTimeout)

	devices, err := discovery.Scan(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No controllers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the controller is powered on and on the same network")
		fmt.Println("  - Check that discovery is enabled in the controller config")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --device flag to specify the IP manually")
		return nil
	}

	fmt.Printf("Found %d controller(s):\n\n", len(devices))

	for i, device := range devices {
		fmt.Printf("%d. %s\n", i+1, device.Instance)
		fmt.Printf("   IP:      %s:%d\n", device.IP, device.Port)
		if pixels := device.GetMetadata("pixels"); pixels != "" {
			fmt.Printf("   Pixels:  %s\n", pixels)
		}
		if v := device.GetMetadata("version"); v != "" {
			fmt.Printf("   Version: %s\n", v)
		}
		fmt.Println()
	}

	fmt.Println("Use 'nightstand-ctl set --device <ip> R G B' to set a color")
	return nil
}

// setCmd sets the strip to a solid RGB color
var setCmd = &cobra.Command{
	Use:   "set R G B",
	Short: "Set the strip to a solid RGB color",
	Long: `Set the strip to a solid color given as three 0-255 channel values.

The color is sent for --repeat pixels (default 1); the controller fills the
rest of the strip with black.`,
	Example: `  # One red pixel
  nightstand-ctl set 255 0 0

  # Twelve warm white pixels
  nightstand-ctl set 255 180 100 --repeat 12`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

// hsvCmd sets the strip via hue/saturation/value
var hsvCmd = &cobra.Command{
	Use:   "hsv H S V",
	Short: "Set the strip to a solid HSV color",
	Long: `Set the strip to a solid color given as hue (0-360 degrees), saturation
and value (both 0-100 percent).`,
	Example: `  # Full-brightness green
  nightstand-ctl hsv 120 100 100

  # Dim orange across 12 pixels
  nightstand-ctl hsv 30 100 20 --repeat 12`,
	Args: cobra.ExactArgs(3),
	RunE: runHSV,
}

// offCmd blanks the strip
var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Turn the strip off",
	Long:  `Send an empty command, which the controller renders as all pixels black.`,
	RunE:  runOff,
}

func init() {
	setCmd.Flags().IntVar(&repeat, "repeat", 1, "Number of pixels to set")
	hsvCmd.Flags().IntVar(&repeat, "repeat", 1, "Number of pixels to set")
}

func runSet(cmd *cobra.Command, args []string) error {
	channels := make([]uint8, 3)
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 0 || v > 255 {
			return fmt.Errorf("channel value %q must be an integer in 0-255", arg)
		}
		channels[i] = uint8(v)
	}

	return postColor(color.New(channels[0], channels[1], channels[2]), repeat)
}

func runHSV(cmd *cobra.Command, args []string) error {
	values := make([]float64, 3)
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", arg, err)
		}
		values[i] = v
	}

	c, err := color.FromHSV(values[0], values[1], values[2])
	if err != nil {
		return err
	}

	fmt.Printf("HSV(%g, %g, %g) -> %s\n", values[0], values[1], values[2], c)
	return postColor(c, repeat)
}

func runOff(cmd *cobra.Command, args []string) error {
	return postCommand([]byte("[]"))
}

// pixelJSON matches the wire format the controller validates.
type pixelJSON struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func postColor(c color.RGB, count int) error {
	if count < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}

	pixels := make([]pixelJSON, count)
	for i := range pixels {
		pixels[i] = pixelJSON{R: c.R, G: c.G, B: c.B}
	}

	payload, err := json.Marshal(pixels)
	if err != nil {
		return err
	}
	return postCommand(payload)
}

func postCommand(payload []byte) error {
	base, err := resolveDevice()
	if err != nil {
		return err
	}

	resp, err := http.Post(base+"/params", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to reach controller: %w", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("unexpected response (%d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("controller rejected command: %s", body["error"])
	}

	fmt.Println("OK")
	return nil
}

// streamCmd opens a WebSocket session and forwards stdin lines
var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream color commands over WebSocket",
	Long: `Open a WebSocket session to the controller and send each stdin line as
one color command. The controller's acknowledgement is printed per line.

Each line must be a JSON pixel array, e.g. [{"r":255,"g":0,"b":0}].`,
	Example: `  # Interactive session
  nightstand-ctl stream

  # Pipe a generated animation
  my-animation-generator | nightstand-ctl stream`,
	RunE: runStream,
}

func runStream(cmd *cobra.Command, args []string) error {
	base, err := resolveDevice()
	if err != nil {
		return err
	}
	url := "ws" + strings.TrimPrefix(base, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	// Session greeting
	_, greeting, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read greeting: %w", err)
	}
	fmt.Printf("connected: %s\n", greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return fmt.Errorf("write failed: %w", err)
		}

		_, ack, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("connection closed: %w", err)
		}
		fmt.Println(string(ack))
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return scanner.Err()
}

// resolveDevice turns the --device flag, or an mDNS scan when the flag is
// unset, into an HTTP base URL.
func resolveDevice() (string, error) {
	if deviceAddr != "" {
		return fmt.Sprintf("http://%s:%d", deviceAddr, devicePort), nil
	}

	fmt.Println("No --device given, discovering...")
	devices, err := discovery.Scan(3 * time.Second)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no controllers found; use --device to specify one")
	}

	device := devices[0]
	fmt.Printf("Using %s\n", device)
	return device.BaseURL(), nil
}
