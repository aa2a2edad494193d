// Package drive runs the real-time consumer side of the pixel pipeline.
package drive

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TuteMthCD/nightstand/internal/logging"
	"github.com/TuteMthCD/nightstand/internal/pixelbus"
	"github.com/TuteMthCD/nightstand/internal/strip"
	"github.com/TuteMthCD/nightstand/internal/ws2812"
)

// DefaultInterval is the minimum spacing between strip updates. It caps the
// physical refresh rate no matter how fast commands arrive; anything quicker
// is conflated away on the bus.
const DefaultInterval = 50 * time.Millisecond

// Loop is the sole owner of the transmit peripheral. It waits on the bus,
// encodes the latest command and pushes it to the hardware, pacing
// transmissions with a fixed minimum interval.
type Loop struct {
	bus      *pixelbus.Bus
	tx       ws2812.Transmitter
	timings  ws2812.Timings
	frame    strip.Frame
	black    strip.Frame
	interval time.Duration

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// New builds a Loop for a strip of pixelCount LEDs. It queries the
// transmitter's counter clock once to resolve the timing set; a clock that
// cannot express the protocol durations is a startup defect and fails here.
func New(bus *pixelbus.Bus, tx ws2812.Transmitter, pixelCount int, interval time.Duration) (*Loop, error) {
	timings, err := ws2812.NewTimings(tx.CounterClock())
	if err != nil {
		return nil, fmt.Errorf("drive: resolve strip timings: %w", err)
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		bus:      bus,
		tx:       tx,
		timings:  timings,
		frame:    strip.NewFrame(nil, pixelCount),
		black:    strip.Black(pixelCount),
		interval: interval,
		sleep:    time.Sleep,
	}, nil
}

// Run consumes the bus until it is closed. An empty command turns the whole
// strip off. Run returns a non-nil error when the bus is torn down or the
// peripheral fails; either way there is no LED output anymore, so the owner
// should treat the return as fatal.
func (l *Loop) Run() error {
	logging.Info("Drive loop started",
		zap.Int("pixels", l.black.Cap()),
		zap.Duration("interval", l.interval),
	)

	for {
		cmd, err := l.bus.Receive()
		if err != nil {
			return fmt.Errorf("drive: command channel torn down: %w", err)
		}

		frame := &l.frame
		if len(cmd) == 0 {
			frame = &l.black
		} else {
			frame.Fill(cmd)
		}

		pulses := ws2812.Encode(l.timings, frame.Strip())
		if err := l.tx.Transmit(pulses); err != nil {
			return fmt.Errorf("drive: transmit frame: %w", err)
		}
		logging.LogTransmit(frame.Len(), len(pulses))

		// Pace the loop; commands sent meanwhile conflate on the bus.
		l.sleep(l.interval)
	}
}
