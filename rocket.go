package ledfx

import (
	"fmt"
	"math"
)

// RocketOpts tunes a Rocket. Zero fields take the defaults listed.
type RocketOpts struct {
	// FlightTime is the time in seconds the rocket would take to reach the
	// end of the strip without boosting. Default 5.
	FlightTime float64
	// Size is the length of the rocket body in LEDs. It also scales how many
	// sparks are simulated. Default 5.
	Size int
	// BoostDelay is the time in seconds after launch when the booster kicks
	// in. Default 1.
	BoostDelay float64
	// BoostMultiplier scales the acceleration once boosting. Default 50.
	BoostMultiplier float64

	// ExhaustHue, ExhaustSat and ExhaustVal color the sparks. Unless
	// ExhaustColorSet is true, all three zero means 0.02, 1 and 1: a fiery
	// orange.
	ExhaustHue float64
	ExhaustSat float64
	ExhaustVal float64
	// ExhaustColorSet makes the Exhaust fields be used as given even when
	// zero.
	ExhaustColorSet bool
	// BodyHue, BodySat and BodyVal color the rocket body. Defaults 0, 0
	// and 1: white. Use BodyColorSet to ask for a black body.
	BodyHue float64
	BodySat float64
	BodyVal float64
	// BodyColorSet makes the Body fields be used as given even when zero.
	BodyColorSet bool

	// MultiColor gives every spark its own random hue instead of the
	// exhaust hue.
	MultiColor bool
	// Seed seeds the spark generator. Default 12345.
	Seed uint32
}

// DefaultRocketOpts returns the options a zero RocketOpts resolves to.
func DefaultRocketOpts() RocketOpts {
	return RocketOpts{
		FlightTime:      5,
		Size:            5,
		BoostDelay:      1,
		BoostMultiplier: 50,
		ExhaustHue:      0.02,
		ExhaustSat:      1,
		ExhaustVal:      1,
		ExhaustColorSet: true,
		BodyHue:         0,
		BodySat:         0,
		BodyVal:         1,
		BodyColorSet:    true,
		Seed:            12345,
	}
}

func (o RocketOpts) withDefaults() RocketOpts {
	d := DefaultRocketOpts()
	if o.FlightTime == 0 {
		o.FlightTime = d.FlightTime
	}
	if o.Size == 0 {
		o.Size = d.Size
	}
	if o.BoostDelay == 0 {
		o.BoostDelay = d.BoostDelay
	}
	if o.BoostMultiplier == 0 {
		o.BoostMultiplier = d.BoostMultiplier
	}
	if !o.ExhaustColorSet && o.ExhaustHue == 0 && o.ExhaustSat == 0 && o.ExhaustVal == 0 {
		o.ExhaustHue, o.ExhaustSat, o.ExhaustVal = d.ExhaustHue, d.ExhaustSat, d.ExhaustVal
	}
	o.ExhaustColorSet = true
	if !o.BodyColorSet {
		o.BodyHue, o.BodySat, o.BodyVal = d.BodyHue, d.BodySat, d.BodyVal
		o.BodyColorSet = true
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	return o
}

func (o RocketOpts) validate() error {
	switch {
	case !(o.FlightTime > 0) || math.IsInf(o.FlightTime, 0):
		return fmt.Errorf("%w: flight time %v", ErrInvalidOption, o.FlightTime)
	case o.Size < 0:
		return fmt.Errorf("%w: negative rocket size %d", ErrInvalidOption, o.Size)
	case !(o.BoostDelay >= 0) || math.IsInf(o.BoostDelay, 0):
		return fmt.Errorf("%w: boost delay %v", ErrInvalidOption, o.BoostDelay)
	case !(o.BoostMultiplier >= 0) || math.IsInf(o.BoostMultiplier, 0):
		return fmt.Errorf("%w: boost multiplier %v", ErrInvalidOption, o.BoostMultiplier)
	}
	return nil
}

// spark is a single particle of exhaust.
type spark struct {
	energy float64
	pos    float64
	hue    float64
}

// Rocket launches a rocket up the strip over and over. The rocket body
// accelerates, boosts, and sheds sparks that drift back down and cool off.
//
// Light is accumulated in a float buffer that persists across ticks: every
// tick the buffer cools, the sparks add to it, and the body is painted over
// it. Sparks therefore leave glowing trails.
type Rocket struct {
	opts RocketOpts
	n    int

	pos     float64
	vel     float64
	elapsed float64

	sparks   []spark
	friction float64
	rand     lcg

	bodyR, bodyG, bodyB float64
	r, g, b             []float64
}

// NewRocket creates a Rocket effect for a strip of n LEDs.
func NewRocket(n int, opts RocketOpts) (*Rocket, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	e := &Rocket{
		opts:     opts,
		n:        n,
		sparks:   make([]spark, max(1, n/6)),
		friction: 0.9 / float64(n),
		rand:     lcg(opts.Seed),
		r:        make([]float64, n),
		g:        make([]float64, n),
		b:        make([]float64, n),
	}

	for i := range e.sparks {
		s := &e.sparks[i]
		s.pos = e.rand.float() * float64(n)
		s.energy = (1 - s.pos/float64(n)) + e.rand.float()*0.4
		s.hue = e.rand.float()
	}

	e.bodyR, e.bodyG, e.bodyB = hsv(opts.BodyHue, opts.BodySat, opts.BodyVal)
	return e, nil
}

// Update implements Effect.
func (e *Rocket) Update(dt float64) {
	sparkDelta := dt * 10

	e.cool(math.Min(0.99, 0.1/sparkDelta))
	e.fly(dt)
	e.burn(sparkDelta)
	e.drawBody()
}

func (e *Rocket) cool(factor float64) {
	for i := range e.r {
		e.r[i] *= factor
		e.g[i] *= factor
		e.b[i] *= factor
	}
}

// fly moves the body using semi-implicit Euler integration. Once the body
// reaches the end of the strip it is relaunched from the start.
func (e *Rocket) fly(dt float64) {
	e.elapsed += dt

	accel := 2 * float64(e.n) / (e.opts.FlightTime * e.opts.FlightTime)
	if e.elapsed > e.opts.BoostDelay {
		accel *= e.opts.BoostMultiplier
	}

	e.vel += accel * dt
	e.pos += e.vel * dt

	if e.pos >= float64(e.n) {
		e.pos = 0
		e.vel = 0
		e.elapsed = 0
	}
}

// activeSparks is how many sparks are simulated, scaled by the body size.
func (e *Rocket) activeSparks() int {
	active := int(math.Floor(float64(len(e.sparks)) * float64(e.opts.Size) / 20))
	return min(active, len(e.sparks))
}

func (e *Rocket) burn(sparkDelta float64) {
	for i := range e.sparks[:e.activeSparks()] {
		s := &e.sparks[i]

		if s.energy <= 0 {
			s.energy = 1 + e.rand.float()*0.4
			s.pos = e.pos
			if e.opts.MultiColor {
				s.hue = e.rand.float()
			}
		}

		s.energy = math.Max(0, s.energy-e.friction*sparkDelta)
		s.pos -= s.energy * s.energy * sparkDelta

		if s.pos < 0 || s.pos >= float64(e.n) {
			// Burnt out; it respawns on the next tick.
			s.pos = e.pos
			s.energy = 0
			continue
		}

		v := s.energy * s.energy
		h := e.opts.ExhaustHue
		if e.opts.MultiColor {
			h = s.hue
		}
		if v < 0.5 {
			// Embers shift hue as they fizzle out.
			h += 0.1 + e.rand.float()*0.2
		}

		r, g, b := hsv(h,
			clamp01(e.opts.ExhaustSat*(1.1-v)),
			clamp01(v*e.opts.ExhaustVal))

		idx := int(s.pos)
		e.r[idx] += r
		e.g[idx] += g
		e.b[idx] += b
	}
}

// drawBody overwrites the pixels under the rocket body.
func (e *Rocket) drawBody() {
	for j := 0; j < e.opts.Size; j++ {
		idx := int(math.Floor(e.pos + float64(j)))
		if idx < e.n {
			e.r[idx] = e.bodyR
			e.g[idx] = e.bodyG
			e.b[idx] = e.bodyB
		}
	}
}

// Sample implements Effect.
func (e *Rocket) Sample(index, n int) RGB {
	return RGB{
		R: channel8(e.r[index]),
		G: channel8(e.g[index]),
		B: channel8(e.b[index]),
	}
}

// Name implements Effect.
func (e *Rocket) Name() string { return "Rocket" }

// lcg is a linear congruential generator. It is deterministic for a given
// seed so that spark trajectories can be reproduced.
type lcg uint32

// float returns the next number in [0, 1].
func (l *lcg) float() float64 {
	*l = *l*1664525 + 1013904223
	return float64(*l) / math.MaxUint32
}
