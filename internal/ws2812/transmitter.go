package ws2812

import "periph.io/x/conn/v3/physic"

// Transmitter is the peripheral that turns a pulse train into electrical
// output. The drive loop holds the only reference after startup; concurrent
// transmissions would interleave pulses and corrupt the frame on the wire.
type Transmitter interface {
	// CounterClock is the tick frequency pulse widths are expressed in.
	// Queried once at startup to build the Timings.
	CounterClock() physic.Frequency

	// Transmit emits the pulse train and blocks until the line is idle again.
	Transmit(pulses []Pulse) error

	Close() error
}
