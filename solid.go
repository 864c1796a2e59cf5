package ledfx

// SolidColor paints every LED the same color.
type SolidColor struct {
	Color RGB
}

// NewSolidColor creates a SolidColor effect.
func NewSolidColor(c RGB) *SolidColor {
	return &SolidColor{Color: c}
}

// Update implements Effect. A solid color has no animation.
func (e *SolidColor) Update(dt float64) {}

// Sample implements Effect.
func (e *SolidColor) Sample(index, n int) RGB { return e.Color }

// Name implements Effect.
func (e *SolidColor) Name() string { return "Solid Color" }
