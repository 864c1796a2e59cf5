// Package config loads the strip and effect configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"dev.acmcsuf.com/ledfx"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Drivers lists the valid values of Config.Driver.
var Drivers = []string{"ws281x", "spi", "null"}

// Config is the whole configuration of a strip.
type Config struct {
	LEDs      int    `yaml:"leds"`
	FPS       int    `yaml:"fps"`
	Driver    string `yaml:"driver"`     // "ws281x" | "spi" | "null"
	Effect    string `yaml:"effect"`     // initial effect, empty for the first one
	ButtonPin string `yaml:"button_pin"` // e.g. GPIO17, empty for none

	SPI     SPI     `yaml:"spi"`
	WS281x  WS281x  `yaml:"ws281x"`
	Effects Effects `yaml:"effects"`
}

// SPI configures the nrzled driver.
type SPI struct {
	Port string `yaml:"port"` // e.g. /dev/spidev0.0, empty for the first one
}

// WS281x configures the ws281x driver. See libdb.so/ledctl for the pins and
// channels that work on each Raspberry Pi.
type WS281x struct {
	GPIOPin    int `yaml:"gpio_pin"`
	DMAChannel int `yaml:"dma_channel"`
}

// Effects holds the tunables of every effect.
type Effects struct {
	Solid       Solid       `yaml:"solid"`
	PoliceDot   PoliceDot   `yaml:"police_dot"`
	PoliceTrail PoliceTrail `yaml:"police_trail"`
	Rocket      Rocket      `yaml:"rocket"`
}

// Solid configures the Solid Color effect.
type Solid struct {
	Color string `yaml:"color"` // #rrggbb
}

// PoliceDot configures the Police Dot effect.
type PoliceDot struct {
	Speed float64 `yaml:"speed"` // laps per second
	Size  int     `yaml:"size"`
}

// PoliceTrail configures the Police Trail effect. TrailLength counts the
// LEDs behind each head.
type PoliceTrail struct {
	Speed       float64 `yaml:"speed"`
	Size        int     `yaml:"size"`
	TrailLength int     `yaml:"trail_length"`
}

// Rocket configures the Rocket effect. Unlike ledfx.RocketOpts, every field
// is used as given: zero numbers are rejected instead of defaulted.
type Rocket struct {
	FlightTime      float64 `yaml:"flight_time"`
	Size            int     `yaml:"size"`
	BoostDelay      float64 `yaml:"boost_delay"`
	BoostMultiplier float64 `yaml:"boost_multiplier"`
	ExhaustColor    string  `yaml:"exhaust_color"` // #rrggbb
	BodyColor       string  `yaml:"body_color"`    // #rrggbb
	MultiColor      bool    `yaml:"multi_color"`
	Seed            uint32  `yaml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	rocket := ledfx.DefaultRocketOpts()
	return &Config{
		LEDs:   16,
		FPS:    20,
		Driver: "ws281x",
		WS281x: WS281x{
			GPIOPin:    12,
			DMAChannel: 10,
		},
		Effects: Effects{
			Solid:       Solid{Color: "#ff0000"},
			PoliceDot:   PoliceDot{Speed: 0.5, Size: 2},
			PoliceTrail: PoliceTrail{Speed: 0.5, Size: 2, TrailLength: 6},
			Rocket: Rocket{
				FlightTime:      rocket.FlightTime,
				Size:            rocket.Size,
				BoostDelay:      rocket.BoostDelay,
				BoostMultiplier: rocket.BoostMultiplier,
				ExhaustColor:    "#ff1e00",
				BodyColor:       "#ffffff",
				Seed:            rocket.Seed,
			},
		},
	}
}

// Load reads the YAML file at path on top of Default and validates the
// result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return cfg, nil
}

// FromFlags loads the file at path and applies the flags that were set on
// the command line on top of it. A missing file falls back to Default unless
// the --config flag was given explicitly.
func FromFlags(flags *pflag.FlagSet, path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("config") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = Default()
	}

	if err := cfg.ApplyFlags(flags); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyFlags overrides the fields whose flags were changed. Flags that the
// set does not define are ignored.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	stringFlags := map[string]*string{
		"driver":     &c.Driver,
		"effect":     &c.Effect,
		"button-pin": &c.ButtonPin,
		"spi-port":   &c.SPI.Port,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	intFlags := map[string]*int{
		"leds": &c.LEDs,
		"fps":  &c.FPS,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	return nil
}

// Save writes the configuration to path as YAML.
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks everything that can be checked without building the
// effects.
func (c *Config) Validate() error {
	var errs []error
	if c.LEDs <= 0 {
		errs = append(errs, fmt.Errorf("leds must be positive, got %d", c.LEDs))
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		errs = append(errs, fmt.Errorf("fps must be in 1..1000, got %d", c.FPS))
	}
	if !slices.Contains(Drivers, c.Driver) {
		errs = append(errs, fmt.Errorf("unknown driver %q, want one of %q", c.Driver, Drivers))
	}
	for key, hex := range map[string]string{
		"effects.solid.color":          c.Effects.Solid.Color,
		"effects.rocket.exhaust_color": c.Effects.Rocket.ExhaustColor,
		"effects.rocket.body_color":    c.Effects.Rocket.BodyColor,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid color %q", key, hex))
		}
	}
	errs = append(errs, c.Effects.Rocket.validate()...)
	return errors.Join(errs...)
}

// NewEffects builds the effects for the configured strip, in the order they
// are registered.
func (c *Config) NewEffects() ([]ledfx.Effect, error) {
	fx := c.Effects

	solid, err := colorful.Hex(fx.Solid.Color)
	if err != nil {
		return nil, fmt.Errorf("solid: %w", err)
	}

	dot, err := ledfx.NewPoliceDot(fx.PoliceDot.Speed, fx.PoliceDot.Size, c.LEDs)
	if err != nil {
		return nil, fmt.Errorf("police dot: %w", err)
	}

	trail, err := ledfx.NewPoliceTrail(fx.PoliceTrail.Speed, fx.PoliceTrail.Size, fx.PoliceTrail.TrailLength, c.LEDs)
	if err != nil {
		return nil, fmt.Errorf("police trail: %w", err)
	}

	drogen, err := ledfx.NewDrogen(c.LEDs)
	if err != nil {
		return nil, fmt.Errorf("drogen: %w", err)
	}

	rocketOpts, err := fx.Rocket.opts()
	if err != nil {
		return nil, fmt.Errorf("rocket: %w", err)
	}

	rocket, err := ledfx.NewRocket(c.LEDs, rocketOpts)
	if err != nil {
		return nil, fmt.Errorf("rocket: %w", err)
	}

	return []ledfx.Effect{
		ledfx.NewSolidColor(ledfx.RGBFromColorful(solid)),
		dot,
		trail,
		drogen,
		rocket,
	}, nil
}

// NewController builds the effects and activates the configured initial
// effect.
func (c *Config) NewController() (*ledfx.Controller, error) {
	effects, err := c.NewEffects()
	if err != nil {
		return nil, err
	}

	ctrl := ledfx.NewController(effects...)
	if c.Effect != "" {
		if err := ctrl.ActivateByName(c.Effect); err != nil {
			return nil, fmt.Errorf("initial effect: %w", err)
		}
	}

	return ctrl, nil
}

// validate rejects the zero values that ledfx.RocketOpts would silently
// replace with its defaults.
func (r Rocket) validate() []error {
	var errs []error
	if !(r.FlightTime > 0) {
		errs = append(errs, fmt.Errorf("effects.rocket.flight_time must be positive, got %v", r.FlightTime))
	}
	if r.Size < 1 {
		errs = append(errs, fmt.Errorf("effects.rocket.size must be at least 1, got %d", r.Size))
	}
	if !(r.BoostDelay > 0) {
		errs = append(errs, fmt.Errorf("effects.rocket.boost_delay must be positive, got %v", r.BoostDelay))
	}
	if !(r.BoostMultiplier > 0) {
		errs = append(errs, fmt.Errorf("effects.rocket.boost_multiplier must be positive, got %v", r.BoostMultiplier))
	}
	if r.Seed == 0 {
		errs = append(errs, errors.New("effects.rocket.seed must not be 0"))
	}
	return errs
}

func (r Rocket) opts() (ledfx.RocketOpts, error) {
	exhaust, err := colorful.Hex(r.ExhaustColor)
	if err != nil {
		return ledfx.RocketOpts{}, fmt.Errorf("exhaust color: %w", err)
	}

	body, err := colorful.Hex(r.BodyColor)
	if err != nil {
		return ledfx.RocketOpts{}, fmt.Errorf("body color: %w", err)
	}

	opts := ledfx.RocketOpts{
		FlightTime:      r.FlightTime,
		Size:            r.Size,
		BoostDelay:      r.BoostDelay,
		BoostMultiplier: r.BoostMultiplier,
		ExhaustColorSet: true,
		BodyColorSet:    true,
		MultiColor:      r.MultiColor,
		Seed:            r.Seed,
	}

	var h float64
	h, opts.ExhaustSat, opts.ExhaustVal = exhaust.Hsv()
	opts.ExhaustHue = h / 360

	h, opts.BodySat, opts.BodyVal = body.Hsv()
	opts.BodyHue = h / 360

	return opts, nil
}
