package main

import (
	"errors"
	"fmt"
	"sync"

	"dev.acmcsuf.com/ledfx"
	"dev.acmcsuf.com/ledfx/internal/config"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
)

// spiDriver drives a WS2812 strip over an SPI port's MOSI line.
type spiDriver struct {
	port spi.PortCloser
	dev  *nrzled.Dev

	mu  sync.Mutex
	buf []byte
}

var _ ledfx.Driver = (*spiDriver)(nil)

func newSPIDriver(cfg *config.Config) (*spiDriver, error) {
	port, err := spireg.Open(cfg.SPI.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %v", cfg.SPI.Port, err)
	}

	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: cfg.LEDs,
		Channels:  3,
		Freq:      800 * physic.KiloHertz,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to create NRZ LED device: %v", err)
	}

	return &spiDriver{
		port: port,
		dev:  dev,
		buf:  make([]byte, 0, 3*cfg.LEDs),
	}, nil
}

func (d *spiDriver) WriteFrame(f ledfx.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf = d.buf[:0]
	for _, c := range f {
		d.buf = append(d.buf, c.R, c.G, c.B)
	}

	_, err := d.dev.Write(d.buf)
	return err
}

// Close blanks the strip and releases the port.
func (d *spiDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return errors.Join(d.dev.Halt(), d.port.Close())
}
