package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

const (
	buttonPoll     = 100 * time.Millisecond
	buttonDebounce = 200 * time.Millisecond
)

// button is a push button wired between a GPIO pin and ground.
type button struct {
	pin    gpio.PinIO
	logger *slog.Logger
}

func newButton(name string, logger *slog.Logger) (*button, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown GPIO pin %q", name)
	}

	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("failed to set up button on %s: %v", name, err)
	}

	return &button{pin: pin, logger: logger}, nil
}

// run calls press for every debounced press until ctx is done.
func (b *button) run(ctx context.Context, press func()) error {
	defer b.pin.Halt()

	b.logger.Info(
		"listening for button presses",
		"pin", b.pin.Name())

	var last time.Time
	for ctx.Err() == nil {
		if !b.pin.WaitForEdge(buttonPoll) {
			continue
		}

		now := time.Now()
		if now.Sub(last) < buttonDebounce {
			continue
		}
		last = now

		b.logger.Debug("button pressed")
		press()
	}

	return nil
}
