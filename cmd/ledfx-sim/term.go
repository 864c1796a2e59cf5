package main

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"dev.acmcsuf.com/ledfx"
	"github.com/gdamore/tcell/v2"
)

const ledCellWidth = 2

// termView draws the strip into the terminal and turns key presses into
// switch requests. It is also the log sink while the screen is up, showing
// the latest log line at the bottom. current is only called from WriteFrame.
type termView struct {
	screen  tcell.Screen
	names   []string
	current func() (name string, index int)

	mu      sync.Mutex
	frame   ledfx.Frame
	effect  string
	index   int
	logLine string

	finiOnce sync.Once
}

var _ ledfx.Driver = (*termView)(nil)

func newTermView(names []string, current func() (string, int)) (*termView, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal screen: %v", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset))
	screen.HideCursor()

	return &termView{
		screen:  screen,
		names:   names,
		current: current,
	}, nil
}

// close restores the terminal. It is safe to call more than once.
func (v *termView) close() {
	v.finiOnce.Do(v.screen.Fini)
}

// run handles terminal events until ctx is done or the user quits, in which
// case quit is called.
func (v *termView) run(ctx context.Context, sig *ledfx.SwitchSignal, quit func()) error {
	go func() {
		<-ctx.Done()
		v.close()
	}()

	for {
		// PollEvent returns nil once the screen is finalized.
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.screen.Sync()
			v.mu.Lock()
			v.draw()
			v.mu.Unlock()
		case *tcell.EventKey:
			if handleKey(ev.Key(), ev.Rune(), sig, v.names) {
				quit()
				return nil
			}
		}
	}
}

// handleKey maps a key press to a switch request. It reports whether the key
// asks to quit.
func handleKey(key tcell.Key, r rune, sig *ledfx.SwitchSignal, names []string) (quit bool) {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRight:
		sig.Advance()
	case tcell.KeyRune:
		switch {
		case r == 'q':
			return true
		case r == ' ' || r == 'n':
			sig.Advance()
		case r >= '1' && r <= '9':
			if slot := int(r - '1'); slot < len(names) {
				sig.Activate(names[slot])
			}
		}
	}
	return false
}

func (v *termView) WriteFrame(f ledfx.Frame) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.frame = append(v.frame[:0], f...)
	v.effect, v.index = v.current()
	v.draw()
	return nil
}

// Write implements io.Writer for the log handler.
func (v *termView) Write(p []byte) (int, error) {
	line := bytes.TrimRight(p, "\n")
	if i := bytes.LastIndexByte(line, '\n'); i >= 0 {
		line = line[i+1:]
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.logLine = string(line)
	v.draw()
	return len(p), nil
}

// draw must be called with mu held.
func (v *termView) draw() {
	s := v.screen
	s.Clear()

	w, h := s.Size()
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	status := fmt.Sprintf("%s [%d/%d]", v.effect, v.index+1, len(v.names))
	drawText(s, 0, 0, w, tcell.StyleDefault.Bold(true), status)
	drawText(s, 0, 1, w, dim, "space/n/→ next · 1-9 select · q quit")

	perRow := max(1, w/ledCellWidth)
	for i, c := range v.frame {
		x := (i % perRow) * ledCellWidth
		y := 3 + i/perRow
		if y >= h-1 {
			break
		}
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		s.SetContent(x, y, '█', nil, style) // the second cell is a gap
	}

	drawText(s, 0, h-1, w, dim, v.logLine)
	s.Show()
}

func drawText(s tcell.Screen, x, y, w int, style tcell.Style, text string) {
	for _, r := range text {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
