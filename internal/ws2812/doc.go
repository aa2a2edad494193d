// Package ws2812 encodes pixel data into the WS2812 one-wire pulse protocol.
//
// WS2812-family strips receive 24 bits per pixel (green byte first, then red,
// then blue, each most-significant-bit first). Every bit is a high/low pulse
// pair whose widths select the bit value, and a frame ends with an extended
// low "reset" gap that latches the strip:
//
//	bit 0:  ~350ns high, ~800ns low
//	bit 1:  ~700ns high, ~600ns low
//	reset:  >=50us low
//
// The encoder is a pure transform from (Timings, pixels) to a pulse list; it
// performs no I/O. Pulse widths are expressed in ticks of the transmit
// peripheral's counter clock, fixed at startup by NewTimings. Emitting the
// pulse list is the job of a Transmitter; SPITransmitter renders pulses as an
// NRZ bitstream on a SPI bus, one counter tick per SPI bit.
//
// The pulse widths must stay within the strip's tolerance (roughly +-150ns)
// or bits are misread on the wire, which is why NewTimings refuses clocks
// that cannot represent the protocol durations.
package ws2812
