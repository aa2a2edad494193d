package ws2812

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// SPITransmitter emits pulse trains as an NRZ bitstream on a SPI bus: the
// MOSI line is the strip's data line and every counter tick is one SPI bit.
// A clock in the 2.4-3.2MHz range resolves the WS2812 pulse widths well.
type SPITransmitter struct {
	port  spi.PortCloser
	conn  spi.Conn
	clock physic.Frequency
}

// NewSPITransmitter opens the SPI port registered under name (for example
// "/dev/spidev0.0", or "" for the first available) and configures it for
// strip output.
func NewSPITransmitter(name string, clock physic.Frequency) (*SPITransmitter, error) {
	port, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("ws2812: open spi port %q: %w", name, err)
	}

	conn, err := port.Connect(clock, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("ws2812: configure spi port %q: %w", name, err)
	}

	return &SPITransmitter{port: port, conn: conn, clock: clock}, nil
}

// CounterClock implements Transmitter. One tick equals one SPI bit, so the
// counter clock is the bus clock.
func (t *SPITransmitter) CounterClock() physic.Frequency {
	return t.clock
}

// Transmit implements Transmitter. The whole train goes out in a single
// transfer so the inter-pulse gaps stay within protocol tolerance.
func (t *SPITransmitter) Transmit(pulses []Pulse) error {
	buf := rasterize(pulses)
	if len(buf) == 0 {
		return nil
	}
	if err := t.conn.Tx(buf, nil); err != nil {
		return fmt.Errorf("ws2812: spi transfer: %w", err)
	}
	return nil
}

func (t *SPITransmitter) Close() error {
	return t.port.Close()
}

// rasterize packs a pulse train into bytes, most-significant bit first. The
// final partial byte is padded with low bits, which only stretches the
// terminal reset gap.
func rasterize(pulses []Pulse) []byte {
	var total int
	for _, p := range pulses {
		total += int(p.Ticks)
	}

	buf := make([]byte, (total+7)/8)
	pos := 0
	for _, p := range pulses {
		if p.High {
			for i := 0; i < int(p.Ticks); i++ {
				buf[pos>>3] |= 0x80 >> uint(pos&7)
				pos++
			}
		} else {
			pos += int(p.Ticks)
		}
	}
	return buf
}
