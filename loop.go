package ledfx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LoopOpts are options for a render loop.
type LoopOpts struct {
	// Controller holds the effects to render. It must have at least one
	// effect registered. The loop owns it from now on.
	Controller *Controller
	// Driver receives every rendered frame.
	Driver Driver
	// Switch optionally delivers effect switch requests from other
	// goroutines. It is polled once per tick.
	Switch *SwitchSignal
	// LEDs is the number of LEDs on the strip.
	LEDs int
	// FrameRate is the number of frames rendered per second.
	FrameRate int
	// Logger is the logger to use for the loop.
	Logger *slog.Logger
}

// Loop renders the active effect of a Controller at a fixed frame rate.
type Loop struct {
	opts  LoopOpts
	frame Frame
}

// NewLoop creates a new render loop.
func NewLoop(opts LoopOpts) (*Loop, error) {
	if opts.Controller == nil || opts.Controller.Len() == 0 {
		return nil, errors.New("render loop needs at least one effect")
	}
	if opts.Driver == nil {
		return nil, errors.New("render loop needs a driver")
	}
	if opts.FrameRate <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", opts.FrameRate)
	}

	frame, err := NewFrame(opts.LEDs)
	if err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Loop{
		opts:  opts,
		frame: frame,
	}, nil
}

// Run renders frames until ctx is done. Errors from the driver are logged
// and do not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	frameTicker := time.NewTicker(time.Second / time.Duration(l.opts.FrameRate))
	defer frameTicker.Stop()

	l.opts.Logger.DebugContext(ctx,
		"render loop started",
		"leds", len(l.frame),
		"fps", l.opts.FrameRate,
		"effect", l.opts.Controller.Current().Name())

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-frameTicker.C:
			l.Tick(now.Sub(last))
			last = now
		}
	}
}

// Tick renders and writes a single frame, dt after the previous one. Any
// pending switch request is applied first.
func (l *Loop) Tick(dt time.Duration) {
	l.applySwitch()

	effect := l.opts.Controller.Current()
	effect.Update(dt.Seconds())

	n := len(l.frame)
	for i := range l.frame {
		l.frame[i] = effect.Sample(i, n)
	}

	if err := l.opts.Driver.WriteFrame(l.frame); err != nil {
		l.opts.Logger.Error(
			"error writing LED strip",
			"effect", effect.Name(),
			"error", err)
	}
}

func (l *Loop) applySwitch() {
	if l.opts.Switch == nil {
		return
	}

	req, ok := l.opts.Switch.Poll()
	if !ok {
		return
	}

	ctrl := l.opts.Controller
	if req.Name == "" {
		ctrl.Advance()
	} else if err := ctrl.ActivateByName(req.Name); err != nil {
		l.opts.Logger.Warn(
			"ignoring effect switch request",
			"error", err)
		return
	}

	l.opts.Logger.Info(
		"switched effect",
		"effect", ctrl.Current().Name(),
		"index", ctrl.Index())
}
