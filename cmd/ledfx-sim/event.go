package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dev.acmcsuf.com/ledfx"
)

// PreviewEvent is an SSE event sent to a preview viewer.
type PreviewEvent interface {
	Type() PreviewEventType
}

// PreviewEventType is the SSE event name.
type PreviewEventType string

const (
	PreviewEventTypeInit  PreviewEventType = "init"
	PreviewEventTypeFrame PreviewEventType = "frame"
)

// PreviewInit is the first event a viewer receives.
type PreviewInit struct {
	LEDs         int      `json:"leds"`
	Effects      []string `json:"effects"`
	SessionToken string   `json:"session_token"`
}

func (PreviewInit) Type() PreviewEventType {
	return PreviewEventTypeInit
}

// PreviewFrame is one rendered frame. Colors are #rrggbb strings.
type PreviewFrame struct {
	Effect    string   `json:"effect"`
	LEDColors []string `json:"led_colors"`
}

func (PreviewFrame) Type() PreviewEventType {
	return PreviewEventTypeFrame
}

func newPreviewFrame(effect string, f ledfx.Frame) PreviewFrame {
	colors := make([]string, len(f))
	for i, c := range f {
		colors[i] = c.Hex()
	}
	return PreviewFrame{Effect: effect, LEDColors: colors}
}

type sseEvent struct {
	Type string
	Data []byte
}

type writeFlusher interface {
	io.Writer
	http.Flusher
}

func writeSSE(w writeFlusher, ev sseEvent) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data)
	w.Flush()
}

func previewEventToSSE(event PreviewEvent) sseEvent {
	b, err := json.Marshal(event)
	if err != nil {
		panic(err)
	}
	return sseEvent{
		Type: string(event.Type()),
		Data: b,
	}
}
