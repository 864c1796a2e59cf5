package ledfx

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is the color of a single LED. There is no alpha channel.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color formatted as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBFromColorful converts a go-colorful color to RGB, clamping each
// channel first.
func RGBFromColorful(c colorful.Color) RGB {
	return RGB{
		R: channel8(c.R),
		G: channel8(c.G),
		B: channel8(c.B),
	}
}

// Frame is one refresh worth of colors, one per LED of the strip.
type Frame []RGB

// NewFrame allocates a frame for a strip of n LEDs.
func NewFrame(n int) (Frame, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	return make(Frame, n), nil
}

// HSV converts a hue, saturation and value triple, each in [0, 1], to an
// 8-bit color. The hue wraps around, so 1.25 is the same as 0.25.
func HSV(h, s, v float64) RGB {
	r, g, b := hsv(h, s, v)
	return RGB{
		R: channel8(r),
		G: channel8(g),
		B: channel8(b),
	}
}

// hsv is the float version of HSV. Results are in [0, 1].
func hsv(h, s, v float64) (r, g, b float64) {
	h -= math.Floor(h)
	if h >= 1 {
		// h was a hair below an integer and rounded up.
		h = 0
	}
	c := colorful.Hsv(h*360, clamp01(s), clamp01(v))
	return c.R, c.G, c.B
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// channel8 scales a [0, 1] channel to 0-255, truncating.
func channel8(x float64) uint8 {
	return uint8(clamp01(x) * 255)
}
