// Package blink drives the status LED heartbeat. A steady blink means the
// process is up and the drive loop has not died.
package blink

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/TuteMthCD/nightstand/internal/logging"
)

// Output is the single pin operation the blinker needs. gpio.PinIO
// satisfies it.
type Output interface {
	Out(l gpio.Level) error
}

// Blinker toggles an output pin at a fixed period.
type Blinker struct {
	pin    Output
	period time.Duration
	stop   chan struct{}
	done   chan struct{}
}

// New creates a Blinker on the named GPIO pin.
func New(pinName string, period time.Duration) (*Blinker, error) {
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("blink: no such pin %q", pinName)
	}
	return NewWithOutput(pin, period), nil
}

// NewWithOutput creates a Blinker on an already-resolved output.
func NewWithOutput(pin Output, period time.Duration) *Blinker {
	return &Blinker{
		pin:    pin,
		period: period,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the blink loop. Stop ends it.
func (b *Blinker) Start() {
	go b.run()
}

func (b *Blinker) run() {
	defer close(b.done)

	ticker := time.NewTicker(b.period / 2)
	defer ticker.Stop()

	level := gpio.Low
	for {
		select {
		case <-b.stop:
			// Leave the LED off on the way out
			if err := b.pin.Out(gpio.Low); err != nil {
				logging.Warn("Failed to clear status LED", zap.Error(err))
			}
			return
		case <-ticker.C:
			level = !level
			if err := b.pin.Out(level); err != nil {
				logging.Warn("Failed to toggle status LED", zap.Error(err))
				return
			}
		}
	}
}

// Stop ends the blink loop and waits for it to exit.
func (b *Blinker) Stop() {
	close(b.stop)
	<-b.done
}
