package main

import (
	"context"
	"embed"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"dev.acmcsuf.com/ledfx"
	"dev.acmcsuf.com/ledfx/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"libdb.so/hserve"
)

//go:embed frontend
var frontendFS embed.FS
var frontendFilesFS, _ = fs.Sub(frontendFS, "frontend")

var (
	configPath = "ledfx.yml"
	numLEDs    = 0
	frameRate  = 0
	effectName = ""
	httpAddr   = ":9001"
	noTerm     = false
	verbose    = false
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "YAML config file")
	pflag.IntVarP(&numLEDs, "leds", "n", numLEDs, "number of simulated LEDs")
	pflag.IntVar(&frameRate, "fps", frameRate, "frames per second")
	pflag.StringVarP(&effectName, "effect", "e", effectName, "initial effect name")
	pflag.StringVarP(&httpAddr, "http-addr", "a", httpAddr, "HTTP preview server address, empty to disable")
	pflag.BoolVar(&noTerm, "no-term", noTerm, "do not draw the strip in the terminal")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose logging")
}

func main() {
	log.SetFlags(0)
	pflag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func newLogger(w io.Writer, color bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	logHandler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05 PM", // extended time.Kitchen
		NoColor:    !color,
	})

	return slog.New(logHandler)
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := newLogger(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
	slog.SetDefault(logger)

	cfg, err := config.FromFlags(pflag.CommandLine, configPath)
	if err != nil {
		return err
	}

	ctrl, err := cfg.NewController()
	if err != nil {
		return err
	}
	names := ctrl.Names()

	// Only read from the render loop's goroutine.
	currentName := func() string { return ctrl.Current().Name() }

	var term *termView
	if !noTerm {
		term, err = newTermView(names, func() (string, int) {
			return ctrl.Current().Name(), ctrl.Index()
		})
		if err != nil {
			return err
		}
		defer term.close()

		// Logs go to the bottom line of the screen while it is up.
		logger = newLogger(term, false)
		slog.SetDefault(logger)
	}

	hub := &previewHub{
		leds:    cfg.LEDs,
		effects: names,
		current: currentName,
		logger:  logger.With("component", "preview"),
	}

	drivers := ledfx.MultiDriver{hub}
	if term != nil {
		drivers = append(drivers, term)
	}

	sig := ledfx.NewSwitchSignal()

	loop, err := ledfx.NewLoop(ledfx.LoopOpts{
		Controller: ctrl,
		Driver:     drivers,
		Switch:     sig,
		LEDs:       cfg.LEDs,
		FrameRate:  cfg.FPS,
		Logger:     logger.With("component", "loop"),
	})
	if err != nil {
		return err
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return loop.Run(ctx)
	})

	if term != nil {
		errg.Go(func() error {
			return term.run(ctx, sig, cancel)
		})
	}

	if httpAddr != "" {
		errg.Go(func() error {
			r := newPreviewRouter(hub, logger)

			logger.Info(
				"starting HTTP preview server",
				"addr", httpAddr)

			return hserve.ListenAndServe(ctx, httpAddr, r)
		})
	}

	return errg.Wait()
}

func newPreviewRouter(hub *previewHub, logger *slog.Logger) http.Handler {
	httpLogger := &httplog.Logger{
		Logger: logger.With("component", "http"),
		Options: httplog.Options{
			Concise:         true,
			QuietDownRoutes: []string{"/health"},
			QuietDownPeriod: time.Minute,
		},
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(httpLogger))
	r.Get("/frames", hub.handleFrames)
	r.Get("/health", hub.handleHealth)
	r.Mount("/", http.FileServer(http.FS(frontendFilesFS)))
	return r
}
