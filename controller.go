package ledfx

import "fmt"

// Controller holds the effects registered at startup and tracks which one is
// active. The active effect only ever changes through Advance or
// ActivateByName.
//
// A Controller is not safe for concurrent use. It belongs to the render
// loop; other goroutines request switches through a SwitchSignal.
type Controller struct {
	effects []Effect
	active  int
}

// NewController creates a controller with the given effects registered in
// order.
func NewController(effects ...Effect) *Controller {
	c := &Controller{}
	for _, e := range effects {
		c.Register(e)
	}
	return c
}

// Register appends an effect. It does not change the active effect: until
// something is activated, the first registered effect is the active one.
func (c *Controller) Register(e Effect) {
	if e == nil {
		panic("ledfx: Register called with a nil effect")
	}
	c.effects = append(c.effects, e)
}

// Advance activates the effect registered after the active one, wrapping
// around to the first. It panics if no effects are registered.
func (c *Controller) Advance() {
	c.mustHaveEffects("Advance")
	c.active = (c.active + 1) % len(c.effects)
}

// ActivateByName activates the first registered effect with the given name.
// If there is none, the active effect is left alone and an error wrapping
// ErrUnknownEffect is returned.
func (c *Controller) ActivateByName(name string) error {
	for i, e := range c.effects {
		if e.Name() == name {
			c.active = i
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownEffect, name)
}

// Current returns the active effect. It panics if no effects are
// registered.
func (c *Controller) Current() Effect {
	c.mustHaveEffects("Current")
	return c.effects[c.active]
}

// Index returns the registration index of the active effect.
func (c *Controller) Index() int { return c.active }

// Len returns the number of registered effects.
func (c *Controller) Len() int { return len(c.effects) }

// Names returns the names of the registered effects in registration order.
func (c *Controller) Names() []string {
	names := make([]string, len(c.effects))
	for i, e := range c.effects {
		names[i] = e.Name()
	}
	return names
}

func (c *Controller) mustHaveEffects(op string) {
	if len(c.effects) == 0 {
		panic("ledfx: Controller." + op + " called with no effects registered")
	}
}
