package ledfx

import "errors"

// Driver writes frames out to an LED strip.
type Driver interface {
	// WriteFrame writes a frame to the strip. The caller reuses the frame
	// once WriteFrame returns, so drivers that keep it must copy it.
	WriteFrame(f Frame) error
}

// DriverFunc adapts a function into a Driver.
type DriverFunc func(f Frame) error

// WriteFrame implements Driver.
func (fn DriverFunc) WriteFrame(f Frame) error { return fn(f) }

// MultiDriver writes every frame to all of its drivers, even if some of
// them fail.
type MultiDriver []Driver

// WriteFrame implements Driver. The returned error joins the errors of all
// drivers that failed.
func (d MultiDriver) WriteFrame(f Frame) error {
	var errs []error
	for _, drv := range d {
		if err := drv.WriteFrame(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
