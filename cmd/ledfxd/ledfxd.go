package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dev.acmcsuf.com/ledfx"
	"dev.acmcsuf.com/ledfx/internal/config"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"periph.io/x/host/v3"
)

var (
	configPath = "ledfx.yml"
	driverName = ""
	numLEDs    = 0
	frameRate  = 0
	effectName = ""
	buttonPin  = ""
	spiPort    = ""
	dumpConfig = ""
	verbose    = false
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "YAML config file")
	pflag.StringVarP(&driverName, "driver", "d", driverName, "LED driver: ws281x, spi or null")
	pflag.IntVarP(&numLEDs, "leds", "n", numLEDs, "number of LEDs on the strip")
	pflag.IntVar(&frameRate, "fps", frameRate, "frames per second")
	pflag.StringVarP(&effectName, "effect", "e", effectName, "initial effect name")
	pflag.StringVar(&buttonPin, "button-pin", buttonPin, "GPIO pin of the effect button, e.g. GPIO17")
	pflag.StringVar(&spiPort, "spi-port", spiPort, "SPI port for the spi driver")
	pflag.StringVar(&dumpConfig, "write-config", dumpConfig, "write the resolved config to this file and exit")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose logging")
}

func main() {
	log.SetFlags(0)
	pflag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05 PM", // extended time.Kitchen
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.FromFlags(pflag.CommandLine, configPath)
	if err != nil {
		return err
	}

	if dumpConfig != "" {
		if err := config.Save(dumpConfig, cfg); err != nil {
			return fmt.Errorf("failed to write config: %v", err)
		}
		logger.Info(
			"wrote config",
			"path", dumpConfig)
		return nil
	}

	ctrl, err := cfg.NewController()
	if err != nil {
		return fmt.Errorf("failed to create effects: %v", err)
	}

	if cfg.Driver != "null" || cfg.ButtonPin != "" {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("failed to initialize periph host: %v", err)
		}
	}

	errg, ctx := errgroup.WithContext(ctx)

	driver, err := openDriver(ctx, errg, cfg, logger.With("component", "driver"))
	if err != nil {
		return err
	}

	sig := ledfx.NewSwitchSignal()

	loop, err := ledfx.NewLoop(ledfx.LoopOpts{
		Controller: ctrl,
		Driver:     driver,
		Switch:     sig,
		LEDs:       cfg.LEDs,
		FrameRate:  cfg.FPS,
		Logger:     logger.With("component", "loop"),
	})
	if err != nil {
		return fmt.Errorf("failed to create render loop: %v", err)
	}

	logger.Info(
		"starting",
		"driver", cfg.Driver,
		"leds", cfg.LEDs,
		"fps", cfg.FPS,
		"effect", ctrl.Current().Name())

	if cfg.ButtonPin != "" {
		btn, err := newButton(cfg.ButtonPin, logger.With("component", "button"))
		if err != nil {
			return err
		}
		errg.Go(func() error {
			return btn.run(ctx, sig.Advance)
		})
	}

	errg.Go(func() error {
		return loop.Run(ctx)
	})

	return errg.Wait()
}

func openDriver(ctx context.Context, errg *errgroup.Group, cfg *config.Config, logger *slog.Logger) (ledfx.Driver, error) {
	switch cfg.Driver {
	case "ws281x":
		ws, err := newWS281xDriver(cfg, logger)
		if err != nil {
			return nil, err
		}
		errg.Go(func() error {
			ws.start(ctx)
			return nil
		})
		return ws, nil

	case "spi":
		spi, err := newSPIDriver(cfg)
		if err != nil {
			return nil, err
		}
		errg.Go(func() error {
			<-ctx.Done()
			return spi.Close()
		})
		return spi, nil

	case "null":
		return ledfx.DriverFunc(func(f ledfx.Frame) error {
			logger.Debug("frame", "led0", f[0].Hex())
			return nil
		}), nil

	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}
