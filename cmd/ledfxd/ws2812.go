package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"dev.acmcsuf.com/ledfx"
	"dev.acmcsuf.com/ledfx/internal/config"
	"libdb.so/ledctl"
)

// RGBController is a controller for RGB LEDs.
type RGBController interface {
	SetRGBAt(i int, color ledctl.RGB)
	Flush() error
}

var ws281xConfig = ledctl.WS281xConfig{
	ColorOrder:   ledctl.BGROrder,
	ColorModel:   ledctl.RGBModel,
	PWMFrequency: 800000,
}

// ws281xDriver copies frames into the controller's buffer. The buffer is
// flushed by start, at most once per written frame.
type ws281xDriver struct {
	logger *slog.Logger

	drawCh chan struct{}
	ctrl   RGBController
	ctrlMu sync.Mutex
	n      int // LEDs written so far
}

var _ ledfx.Driver = (*ws281xDriver)(nil)

func newWS281xDriver(cfg *config.Config, logger *slog.Logger) (*ws281xDriver, error) {
	wsCfg := ws281xConfig
	wsCfg.DMAChannel = cfg.WS281x.DMAChannel
	wsCfg.GPIOPins = []int{cfg.WS281x.GPIOPin}
	wsCfg.NumPixels = cfg.LEDs

	ws281x, err := ledctl.NewWS281x(wsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create a WS281x controller: %v", err)
	}

	return newRGBDriver(ws281x, logger), nil
}

func newRGBDriver(ctrl RGBController, logger *slog.Logger) *ws281xDriver {
	return &ws281xDriver{
		logger: logger,
		drawCh: make(chan struct{}, 1),
		ctrl:   ctrl,
	}
}

func (d *ws281xDriver) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.blank()
			return
		case <-d.drawCh:
		}

		d.flush()
	}
}

func (d *ws281xDriver) flush() {
	d.ctrlMu.Lock()
	defer d.ctrlMu.Unlock()

	if err := d.ctrl.Flush(); err != nil {
		d.logger.Error(
			"error writing LED strip",
			"error", err)
	}
}

// blank turns the strip off on shutdown.
func (d *ws281xDriver) blank() {
	d.ctrlMu.Lock()
	defer d.ctrlMu.Unlock()

	for i := range d.n {
		d.ctrl.SetRGBAt(i, ledctl.RGB{})
	}
	if err := d.ctrl.Flush(); err != nil {
		d.logger.Warn(
			"cannot blank LED strip",
			"error", err)
	}
}

func (d *ws281xDriver) WriteFrame(f ledfx.Frame) error {
	d.ctrlMu.Lock()
	defer d.ctrlMu.Unlock()

	for i, c := range f {
		d.ctrl.SetRGBAt(i, ledctl.RGB{R: c.R, G: c.G, B: c.B})
	}
	d.n = len(f)

	d.queueDraw()
	return nil
}

func (d *ws281xDriver) queueDraw() {
	select {
	case d.drawCh <- struct{}{}:
	default:
	}
}
