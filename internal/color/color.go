package color

import (
	"fmt"
	"math"
)

// RGB is a single pixel color. The zero value is black.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// New returns an RGB with the given channel values. Every byte combination
// is a valid color, so there is nothing to validate.
func New(r, g, b uint8) RGB {
	return RGB{R: r, G: g, B: b}
}

// RangeError reports an HSV input outside the accepted domain.
type RangeError struct {
	Component string
	Value     float64
	Max       float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("color: %s=%g out of range [0,%g]", e.Component, e.Value, e.Max)
}

// FromHSV converts hue (0-360 degrees), saturation and value (both 0-100
// percent) to RGB using the six-sector decomposition. Sector boundaries are
// closed-open except the last, which absorbs h=360.
func FromHSV(h, s, v float64) (RGB, error) {
	switch {
	case h < 0 || h > 360:
		return RGB{}, &RangeError{Component: "hue", Value: h, Max: 360}
	case s < 0 || s > 100:
		return RGB{}, &RangeError{Component: "saturation", Value: s, Max: 100}
	case v < 0 || v > 100:
		return RGB{}, &RangeError{Component: "value", Value: v, Max: 100}
	}

	s /= 100.0
	v /= 100.0

	c := s * v
	x := c * (1.0 - math.Abs(math.Mod(h/60.0, 2.0)-1.0))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB{
		R: uint8(math.Round((r + m) * 255.0)),
		G: uint8(math.Round((g + m) * 255.0)),
		B: uint8(math.Round((b + m) * 255.0)),
	}, nil
}

// Packed returns the 24-bit wire representation with green in the
// most-significant byte:
//
//	e.g. RGB(1,2,4)
//	G        R        B
//	00000010 00000001 00000100
//
// WS2812 strips shift green out first, so the encoder walks this value
// most-significant-bit first. Changing this ordering swaps colors on the
// strip.
func (c RGB) Packed() uint32 {
	return uint32(c.G)<<16 | uint32(c.R)<<8 | uint32(c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}
