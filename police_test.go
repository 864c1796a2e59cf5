package ledfx

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var allowSpan = cmp.AllowUnexported(span{})

func TestSpanContains(t *testing.T) {
	tests := []struct {
		name string
		span span
		n    int
		want []int
	}{
		{"plain", span{3, 5}, 16, []int{3, 4, 5}},
		{"single", span{7, 7}, 16, []int{7}},
		{"wrapped", span{14, 2}, 16, []int{14, 15, 0, 1, 2}},
		{"wrapped at end", span{15, 0}, 16, []int{15, 0}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			want := make(map[int]bool)
			for _, i := range test.want {
				want[i] = true
			}

			for i := 0; i < test.n; i++ {
				if got := test.span.contains(i); got != want[i] {
					t.Errorf("%v.contains(%d) = %v, want %v", test.span, i, got, want[i])
				}
			}
		})
	}
}

func TestPoliceDotSample(t *testing.T) {
	e, err := NewPoliceDot(0, 2, 16)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 16; i++ {
		var want RGB
		if i <= 2 {
			want.R = 255
		}
		if i >= 8 && i <= 10 {
			want.B = 255
		}
		assertEq(t, want, e.Sample(i, 16))
	}
}

func TestPoliceDotWrapsAroundStart(t *testing.T) {
	e, err := NewPoliceDot(1, 4, 16)
	if err != nil {
		t.Fatal(err)
	}

	// 14/16 of a lap puts the red head at 14, so it wraps through 0.
	e.Update(0.875)
	assertEq(t, span{14, 2}, e.red, allowSpan)
	assertEq(t, span{6, 10}, e.blue, allowSpan)

	for i := 0; i < 16; i++ {
		lit := i >= 14 || i <= 2
		if got := e.Sample(i, 16).R == 255; got != lit {
			t.Errorf("LED %d red = %v, want %v", i, got, lit)
		}
	}
}

func TestPoliceDotPeriod(t *testing.T) {
	const speed = 0.5
	const dt = 0.25 // 8 ticks make 1/speed seconds

	e, err := NewPoliceDot(speed, 2, 16)
	if err != nil {
		t.Fatal(err)
	}

	start := e.red
	for i := 1; i <= 8; i++ {
		e.Update(dt)
		if i == 4 {
			assertEq(t, span{8, 10}, e.red, allowSpan)
		}
	}

	assertEq(t, start, e.red, allowSpan)
	assertEq(t, 0.0, e.time)
}

func TestPoliceLapWithUnevenTicks(t *testing.T) {
	const n = 16

	tests := []struct {
		speed float64
		ticks int // per lap
	}{
		{0.25, 80}, // 20 fps
		{0.5, 40},
		{0.3, 7},
		{0.3, 10},
		{0.7, 33},
		{1.1, 7},
		{3, 10},
		{3, 33},
	}

	for _, test := range tests {
		name := fmt.Sprintf("speed %v ticks %d", test.speed, test.ticks)
		t.Run(name, func(t *testing.T) {
			dt := 1 / (test.speed * float64(test.ticks))
			if test.ticks == 80 {
				dt = (50 * time.Millisecond).Seconds()
			}

			dot, err := NewPoliceDot(test.speed, 2, n)
			if err != nil {
				t.Fatal(err)
			}
			trail, err := NewPoliceTrail(test.speed, 2, 4, n)
			if err != nil {
				t.Fatal(err)
			}

			for i := 1; i <= test.ticks; i++ {
				dot.Update(dt)
				trail.Update(dt)

				if 2*i == test.ticks {
					assertEq(t, span{n / 2, n/2 + 2}, dot.red, allowSpan)
					assertEq(t, n/2, trail.red)
				}
			}

			assertEq(t, span{0, 2}, dot.red, allowSpan)
			assertEq(t, span{n / 2, n/2 + 2}, dot.blue, allowSpan)
			assertEq(t, 0, trail.red)
			assertEq(t, n/2, trail.blue)
			if dot.time > lapEpsilon {
				t.Errorf("lap position %v after a full lap, want 0", dot.time)
			}
		})
	}
}

func TestWrapUnit(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.25, 0.25},
		{1, 0},
		{1.5, 0.5},
		{0.9999999999999984, 0},
		{2.9999999999999996, 0},
		{0.999, 0.999},
	}

	for _, test := range tests {
		if got := wrapUnit(test.in); !nearFloat(got, test.want) {
			t.Errorf("wrapUnit(%v) = %v, want %v", test.in, got, test.want)
		}
	}
}

func TestPoliceTrailBrightness(t *testing.T) {
	e, err := NewPoliceTrail(0, 2, 4, 20)
	if err != nil {
		t.Fatal(err)
	}
	e.Update(0)

	red := []struct {
		index int
		want  uint8
	}{
		{0, 255},
		{19, 255},
		{18, 255},
		{17, 191},
		{16, 127},
		{15, 63},
		{14, 0},
		{1, 0},
	}
	for _, test := range red {
		if got := e.Sample(test.index, 20).R; got != test.want {
			t.Errorf("LED %d red = %d, want %d", test.index, got, test.want)
		}
	}

	assertEq(t, RGB{R: 0, B: 255}, e.Sample(10, 20))
	assertEq(t, RGB{R: 0, B: 191}, e.Sample(7, 20))
}

func TestPoliceTrailMoves(t *testing.T) {
	e, err := NewPoliceTrail(1, 1, 3, 16)
	if err != nil {
		t.Fatal(err)
	}

	e.Update(0.25)
	assertEq(t, 4, e.red)
	assertEq(t, 12, e.blue)

	// A full lap later the heads are back where they were.
	e.Update(1)
	assertEq(t, 4, e.red)
	assertEq(t, 12, e.blue)
}

func TestPoliceTrailNoTrail(t *testing.T) {
	e, err := NewPoliceTrail(0, 1, 0, 8)
	if err != nil {
		t.Fatal(err)
	}

	assertEq(t, uint8(255), e.Sample(0, 8).R)
	assertEq(t, uint8(0), e.Sample(7, 8).R)
}

func TestPoliceOptions(t *testing.T) {
	tests := []struct {
		name string
		new  func() error
		want error
	}{
		{"dot zero length", func() error { _, err := NewPoliceDot(1, 2, 0); return err }, ErrInvalidLength},
		{"dot negative speed", func() error { _, err := NewPoliceDot(-1, 2, 8); return err }, ErrInvalidOption},
		{"dot negative size", func() error { _, err := NewPoliceDot(1, -2, 8); return err }, ErrInvalidOption},
		{"trail zero length", func() error { _, err := NewPoliceTrail(1, 2, 3, 0); return err }, ErrInvalidLength},
		{"trail negative trail", func() error { _, err := NewPoliceTrail(1, 2, -3, 8); return err }, ErrInvalidOption},
		{"trail ok", func() error { _, err := NewPoliceTrail(1, 2, 3, 8); return err }, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.new()
			if test.want == nil {
				if err != nil {
					t.Fatal("unexpected error:", err)
				}
				return
			}
			if !errors.Is(err, test.want) {
				t.Fatalf("got error %v, want %v", err, test.want)
			}
		})
	}
}
