package ws2812

import "github.com/TuteMthCD/nightstand/internal/color"

// BitsPerPixel is the number of protocol bits per pixel (8 per channel, GRB).
const BitsPerPixel = 24

// EncodedLen returns the number of pulses Encode produces for n pixels: a
// high/low pair per bit plus the terminal reset gap.
func EncodedLen(n int) int {
	return 2*BitsPerPixel*n + 1
}

// Encode converts a pixel sequence into the ordered pulse train for one
// strip update. For every pixel the 24-bit packed color is walked
// most-significant-bit first, each bit mapping to its (high, low) pulse
// pair; the train ends with a single reset pulse.
func Encode(t Timings, pixels []color.RGB) []Pulse {
	pulses := make([]Pulse, 0, EncodedLen(len(pixels)))

	for _, px := range pixels {
		packed := px.Packed()
		for bit := BitsPerPixel - 1; bit >= 0; bit-- {
			if packed>>uint(bit)&1 != 0 {
				pulses = append(pulses, t.T1H, t.T1L)
			} else {
				pulses = append(pulses, t.T0H, t.T0L)
			}
		}
	}

	return append(pulses, t.Reset)
}
