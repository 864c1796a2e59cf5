package ledfx

import "math"

// drogenRate is how fast the hue phase advances, in cycles per second.
const drogenRate = 0.4

// Drogen is a rainbow pulse mirrored around the middle of the strip. The
// pulse travels as its phase slowly advances.
type Drogen struct {
	n     int
	phase float64
}

// NewDrogen creates a Drogen effect for a strip of n LEDs.
func NewDrogen(n int) (*Drogen, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	return &Drogen{n: n}, nil
}

// Update implements Effect.
func (e *Drogen) Update(dt float64) {
	e.phase += dt * drogenRate
	if e.phase > 1 {
		e.phase -= math.Floor(e.phase)
	}
}

// Sample implements Effect.
func (e *Drogen) Sample(index, n int) RGB {
	half := float64(e.n) / 2
	c := 0.1 - math.Abs(float64(index)-half)/half
	c = wave(c)
	c = wave(c + e.phase)
	return HSV(c, 1, 1)
}

// Name implements Effect.
func (e *Drogen) Name() string { return "Drogen" }

// wave is a sine remapped to [0, 1] with a period of 2.
func wave(x float64) float64 {
	return 0.5 + 0.5*math.Sin(math.Pi*x)
}
