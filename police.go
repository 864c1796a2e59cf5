package ledfx

import (
	"fmt"
	"math"
)

// PoliceDot chases a red and a blue dot around the strip, always on
// opposite sides of each other.
type PoliceDot struct {
	speed float64
	size  int
	n     int

	time      float64
	red, blue span
}

// span is an inclusive range of LED indices that may wrap past the end of
// the strip.
type span struct {
	start, end int
}

func (s span) contains(i int) bool {
	if s.start <= s.end {
		return i >= s.start && i <= s.end
	}
	return i >= s.start || i <= s.end
}

// NewPoliceDot creates a PoliceDot effect for a strip of n LEDs. Speed is in
// laps per second and size is the number of LEDs past the head that are lit.
func NewPoliceDot(speed float64, size, n int) (*PoliceDot, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	if err := checkChase(speed, size); err != nil {
		return nil, err
	}

	e := &PoliceDot{
		speed: speed,
		size:  size,
		n:     n,
	}
	e.place()
	return e, nil
}

// Update implements Effect.
func (e *PoliceDot) Update(dt float64) {
	e.time = wrapUnit(e.time + dt*e.speed)
	e.place()
}

func (e *PoliceDot) place() {
	red, blue := heads(e.time, e.n)
	e.red = span{red, (red + e.size) % e.n}
	e.blue = span{blue, (blue + e.size) % e.n}
}

// Sample implements Effect.
func (e *PoliceDot) Sample(index, n int) RGB {
	var c RGB
	if e.red.contains(index) {
		c.R = 255
	}
	if e.blue.contains(index) {
		c.B = 255
	}
	return c
}

// Name implements Effect.
func (e *PoliceDot) Name() string { return "PoliceDot" }

// PoliceTrail is PoliceDot with a tail fading out behind each dot.
type PoliceTrail struct {
	speed       float64
	size        int
	trailLength int
	n           int

	time      float64
	red, blue int
}

// NewPoliceTrail creates a PoliceTrail effect for a strip of n LEDs. The
// tail fades to black over trailLength LEDs behind the size lit ones.
func NewPoliceTrail(speed float64, size, trailLength, n int) (*PoliceTrail, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	if err := checkChase(speed, size); err != nil {
		return nil, err
	}
	if trailLength < 0 {
		return nil, fmt.Errorf("%w: negative trail length %d", ErrInvalidOption, trailLength)
	}

	return &PoliceTrail{
		speed:       speed,
		size:        size,
		trailLength: trailLength,
		n:           n,
		blue:        n / 2,
	}, nil
}

// Update implements Effect.
func (e *PoliceTrail) Update(dt float64) {
	e.time = wrapUnit(e.time + dt*e.speed)
	e.red, e.blue = heads(e.time, e.n)
}

// Sample implements Effect.
func (e *PoliceTrail) Sample(index, n int) RGB {
	return RGB{
		R: e.brightness(distanceBehind(index, e.red, e.n)),
		B: e.brightness(distanceBehind(index, e.blue, e.n)),
	}
}

// brightness is full for the dot itself and fades linearly over the trail.
func (e *PoliceTrail) brightness(distance int) uint8 {
	switch {
	case distance < e.size:
		return 255
	case distance < e.size+e.trailLength:
		fade := 1 - float64(distance-e.size)/float64(e.trailLength)
		return uint8(255 * fade)
	default:
		return 0
	}
}

// Name implements Effect.
func (e *PoliceTrail) Name() string { return "PoliceTrail" }

// distanceBehind returns how many LEDs index trails head by, wrapping around
// the strip.
func distanceBehind(index, head, n int) int {
	if index <= head {
		return head - index
	}
	return n - index + head
}

// lapEpsilon absorbs the rounding error of summing many float tick sizes, so
// that a lap position that should land on an LED boundary does.
const lapEpsilon = 1e-9

// heads returns the red and blue head indices for a lap position t in
// [0, 1).
func heads(t float64, n int) (red, blue int) {
	red = int(math.Floor(t*float64(n)+lapEpsilon)) % n
	blue = (red + n/2) % n
	return red, blue
}

// wrapUnit wraps t into [0, 1). Values within lapEpsilon below a whole lap
// wrap to 0.
func wrapUnit(t float64) float64 {
	t -= math.Floor(t)
	if 1-t < lapEpsilon {
		return 0
	}
	return t
}

func checkChase(speed float64, size int) error {
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return fmt.Errorf("%w: speed %v", ErrInvalidOption, speed)
	}
	if size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrInvalidOption, size)
	}
	return nil
}
