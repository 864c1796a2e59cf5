package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dev.acmcsuf.com/ledfx"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal("default config is invalid:", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
leds: 60
fps: 30
driver: spi
effect: Rocket
spi:
  port: /dev/spidev0.1
effects:
  solid:
    color: "#00ff00"
  rocket:
    multi_color: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal("cannot load config:", err)
	}

	want := Default()
	want.LEDs = 60
	want.FPS = 30
	want.Driver = "spi"
	want.Effect = "Rocket"
	want.SPI.Port = "/dev/spidev0.1"
	want.Effects.Solid.Color = "#00ff00"
	want.Effects.Rocket.MultiColor = true

	assertEq(t, want, cfg)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got error %v, want os.ErrNotExist", err)
	}
}

func newTestFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("config", "c", "", "")
	flags.StringP("driver", "d", "", "")
	flags.IntP("leds", "n", 0, "")
	flags.Int("fps", 0, "")
	flags.StringP("effect", "e", "", "")
	if err := flags.Parse(args); err != nil {
		t.Fatal(err)
	}
	return flags
}

func TestFromFlags(t *testing.T) {
	path := writeConfig(t, "leds: 60\nfps: 30\neffect: Drogen\n")

	tests := []struct {
		name string
		args []string
		want func(c *Config)
	}{
		{
			name: "file only",
			want: func(c *Config) {
				c.LEDs = 60
				c.FPS = 30
				c.Effect = "Drogen"
			},
		},
		{
			name: "flags override file",
			args: []string{"-n", "8", "--effect", "Rocket", "-d", "null"},
			want: func(c *Config) {
				c.LEDs = 8
				c.FPS = 30
				c.Effect = "Rocket"
				c.Driver = "null"
			},
		},
		{
			name: "empty flag still overrides",
			args: []string{"--effect="},
			want: func(c *Config) {
				c.LEDs = 60
				c.FPS = 30
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := FromFlags(newTestFlags(t, test.args...), path)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}

			want := Default()
			test.want(want)
			assertEq(t, want, cfg)
		})
	}
}

func TestFromFlagsMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yml")

	cfg, err := FromFlags(newTestFlags(t), missing)
	if err != nil {
		t.Fatal("implicit config path should fall back to defaults:", err)
	}
	assertEq(t, Default(), cfg)

	_, err = FromFlags(newTestFlags(t, "-c", missing), missing)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got error %v, want os.ErrNotExist", err)
	}

	_, err = FromFlags(newTestFlags(t, "--fps", "0"), missing)
	if err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledfx.yml")

	cfg := Default()
	cfg.Effect = "Drogen"
	if err := Save(path, cfg); err != nil {
		t.Fatal("cannot save config:", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal("cannot load config:", err)
	}
	assertEq(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"zero leds", func(c *Config) { c.LEDs = 0 }},
		{"negative fps", func(c *Config) { c.FPS = -1 }},
		{"huge fps", func(c *Config) { c.FPS = 5000 }},
		{"unknown driver", func(c *Config) { c.Driver = "opc" }},
		{"bad solid color", func(c *Config) { c.Effects.Solid.Color = "red" }},
		{"bad rocket color", func(c *Config) { c.Effects.Rocket.BodyColor = "#12" }},
		{"zero flight time", func(c *Config) { c.Effects.Rocket.FlightTime = 0 }},
		{"zero rocket size", func(c *Config) { c.Effects.Rocket.Size = 0 }},
		{"zero boost delay", func(c *Config) { c.Effects.Rocket.BoostDelay = 0 }},
		{"zero boost multiplier", func(c *Config) { c.Effects.Rocket.BoostMultiplier = 0 }},
		{"zero seed", func(c *Config) { c.Effects.Rocket.Seed = 0 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestNewController(t *testing.T) {
	cfg := Default()
	cfg.Effect = "Drogen"

	ctrl, err := cfg.NewController()
	if err != nil {
		t.Fatal("cannot build controller:", err)
	}

	assertEq(t, []string{"Solid Color", "PoliceDot", "PoliceTrail", "Drogen", "Rocket"}, ctrl.Names())
	assertEq(t, "Drogen", ctrl.Current().Name())

	solid := ctrl.Names()[0]
	if err := ctrl.ActivateByName(solid); err != nil {
		t.Fatal(err)
	}
	ctrl.Current().Update(0.1)
	assertEq(t, ledfx.RGB{R: 255}, ctrl.Current().Sample(0, cfg.LEDs))
}

func TestNewControllerErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"unknown effect", func(c *Config) { c.Effect = "Fireworks" }, ledfx.ErrUnknownEffect},
		{"negative speed", func(c *Config) { c.Effects.PoliceDot.Speed = -1 }, ledfx.ErrInvalidOption},
		{"negative trail", func(c *Config) { c.Effects.PoliceTrail.TrailLength = -1 }, ledfx.ErrInvalidOption},
		{"zero leds", func(c *Config) { c.LEDs = 0 }, ledfx.ErrInvalidLength},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			if _, err := cfg.NewController(); !errors.Is(err, test.want) {
				t.Fatalf("got error %v, want %v", err, test.want)
			}
		})
	}
}

func TestRocketColors(t *testing.T) {
	opts, err := Rocket{
		FlightTime:      1,
		Size:            5,
		BoostDelay:      1,
		BoostMultiplier: 2,
		ExhaustColor:    "#0000ff",
		BodyColor:       "#00ff00",
	}.opts()
	if err != nil {
		t.Fatal(err)
	}

	near := func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 }
	if !near(opts.ExhaustHue, 2.0/3) || !near(opts.ExhaustSat, 1) || !near(opts.ExhaustVal, 1) {
		t.Errorf("exhaust = %v/%v/%v, want blue", opts.ExhaustHue, opts.ExhaustSat, opts.ExhaustVal)
	}
	if !near(opts.BodyHue, 1.0/3) || !opts.BodyColorSet {
		t.Errorf("body hue = %v (set %v), want green", opts.BodyHue, opts.BodyColorSet)
	}
}

func TestRocketBlackExhaust(t *testing.T) {
	path := writeConfig(t, `
effects:
  rocket:
    exhaust_color: "#000000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal("cannot load config:", err)
	}

	opts, err := cfg.Effects.Rocket.opts()
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, true, opts.ExhaustColorSet)
	assertEq(t, 0.0, opts.ExhaustVal)

	if _, err := ledfx.NewRocket(cfg.LEDs, opts); err != nil {
		t.Fatal("black exhaust was rejected:", err)
	}
}

func TestZeroRocketFieldFromFile(t *testing.T) {
	path := writeConfig(t, `
effects:
  rocket:
    boost_delay: 0
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected boost_delay: 0 to be rejected")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ledfx.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assertEq[T any](t *testing.T, expected, actual T) {
	t.Helper()

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("unexpected diff (-want +got):\n%s", diff)
	}
}
