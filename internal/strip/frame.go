// Package strip models one snapshot of the LED strip.
package strip

import "github.com/TuteMthCD/nightstand/internal/color"

// Frame is a fixed-capacity run of pixels with a logical length. Positions
// past the logical length are black, never leftovers from a previous frame.
type Frame struct {
	length int
	pixels []color.RGB
}

// NewFrame copies up to capacity pixels from src. A longer src is truncated,
// a shorter one leaves the tail zeroed.
func NewFrame(src []color.RGB, capacity int) Frame {
	f := Frame{pixels: make([]color.RGB, capacity)}
	f.Fill(src)
	return f
}

// Black returns an all-off frame whose logical length covers the whole strip.
func Black(capacity int) Frame {
	return Frame{length: capacity, pixels: make([]color.RGB, capacity)}
}

// Fill replaces the frame contents with src, truncating to capacity and
// zeroing any slots src does not cover.
func (f *Frame) Fill(src []color.RGB) {
	n := copy(f.pixels, src)
	for i := n; i < len(f.pixels); i++ {
		f.pixels[i] = color.RGB{}
	}
	f.length = n
}

// Len returns the logical length.
func (f *Frame) Len() int {
	return f.length
}

// Cap returns the fixed capacity.
func (f *Frame) Cap() int {
	return len(f.pixels)
}

// Pixels returns the logical prefix of the frame.
func (f *Frame) Pixels() []color.RGB {
	return f.pixels[:f.length]
}

// Strip returns all capacity slots. Slots past the logical length are
// black, so encoding this drives the whole strip.
func (f *Frame) Strip() []color.RGB {
	return f.pixels
}
