// Package ledfx renders animated effects onto an addressable LED strip.
//
// An Effect is advanced once per tick with the elapsed time and then sampled
// for every LED. A Controller holds the effects registered at startup and
// tracks which one is active, and a Loop drives the active effect at a fixed
// frame rate and hands each frame to a Driver.
package ledfx

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLength is returned when a strip length is not positive.
	ErrInvalidLength = errors.New("invalid strip length")
	// ErrInvalidOption is returned when an effect is constructed with an
	// unusable parameter.
	ErrInvalidOption = errors.New("invalid effect option")
	// ErrUnknownEffect is returned when no registered effect has the
	// requested name.
	ErrUnknownEffect = errors.New("unknown effect")
)

// Effect is an animation that yields a color for every LED of a strip.
//
// Effects are driven by a single goroutine. Update and Sample never block and
// do not allocate once the effect is constructed.
type Effect interface {
	// Update advances the animation by dt seconds.
	Update(dt float64)
	// Sample returns the color of the LED at index on a strip of n LEDs.
	// It does not modify the effect. The index must be in [0, n).
	Sample(index, n int) RGB
	// Name returns the stable name of the effect.
	Name() string
}

var (
	_ Effect = (*SolidColor)(nil)
	_ Effect = (*PoliceDot)(nil)
	_ Effect = (*PoliceTrail)(nil)
	_ Effect = (*Drogen)(nil)
	_ Effect = (*Rocket)(nil)
)

func checkLength(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	return nil
}
