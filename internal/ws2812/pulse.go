package ws2812

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Reference WS2812 timing contract. Adjust only for strip variants with a
// different datasheet.
const (
	T0H = 350 * time.Nanosecond
	T0L = 800 * time.Nanosecond
	T1H = 700 * time.Nanosecond
	T1L = 600 * time.Nanosecond
	// Reset must be at least 50us. Some sources use a sub-microsecond value
	// here; that does not latch the strip reliably.
	Reset = 50 * time.Microsecond
)

// maxPulseTicks is the widest representable pulse. Matches the 15-bit tick
// counter of RMT-style transmit peripherals.
const maxPulseTicks = 0x7FFF

// Pulse is one segment of the output waveform: a line level held for a number
// of counter-clock ticks.
type Pulse struct {
	High  bool
	Ticks uint16
}

// Timings holds the five pulse widths of the protocol, resolved against a
// concrete counter clock. Built once at startup and shared read-only.
type Timings struct {
	T0H   Pulse
	T0L   Pulse
	T1H   Pulse
	T1L   Pulse
	Reset Pulse
}

// TimingError reports a protocol duration that cannot be represented at the
// transmit peripheral's clock resolution.
type TimingError struct {
	Duration time.Duration
	Clock    physic.Frequency
	Ticks    int64
}

func (e *TimingError) Error() string {
	return fmt.Sprintf("ws2812: duration %v not representable at %s (%d ticks)",
		e.Duration, e.Clock, e.Ticks)
}

// NewTimings derives the timing set from the transmit peripheral's counter
// clock. It fails when the clock is too slow to distinguish the pulse widths
// or a pulse would overflow the tick counter.
func NewTimings(clock physic.Frequency) (Timings, error) {
	pulse := func(high bool, d time.Duration) (Pulse, error) {
		ticks := ticksFor(d, clock)
		if ticks < 1 || ticks > maxPulseTicks {
			return Pulse{}, &TimingError{Duration: d, Clock: clock, Ticks: ticks}
		}
		return Pulse{High: high, Ticks: uint16(ticks)}, nil
	}

	var t Timings
	var err error
	if t.T0H, err = pulse(true, T0H); err != nil {
		return Timings{}, err
	}
	if t.T0L, err = pulse(false, T0L); err != nil {
		return Timings{}, err
	}
	if t.T1H, err = pulse(true, T1H); err != nil {
		return Timings{}, err
	}
	if t.T1L, err = pulse(false, T1L); err != nil {
		return Timings{}, err
	}
	if t.Reset, err = pulse(false, Reset); err != nil {
		return Timings{}, err
	}
	return t, nil
}

// ticksFor rounds a duration to the nearest whole tick of clock.
func ticksFor(d time.Duration, clock physic.Frequency) int64 {
	hz := int64(clock / physic.Hertz)
	if hz <= 0 {
		return 0
	}
	return (d.Nanoseconds()*hz + 500_000_000) / 1_000_000_000
}
