package main

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"dev.acmcsuf.com/ledfx"
	"github.com/gofrs/uuid/v5"
	"gopkg.in/typ.v4/sync2"
)

// previewHub fans rendered frames out to the connected viewers. It is a
// ledfx.Driver; WriteFrame runs on the render loop's goroutine.
type previewHub struct {
	leds    int
	effects []string
	current func() string
	logger  *slog.Logger

	viewers sync2.Map[string, *viewer]
	watched atomic.Int32 // len(viewers)
}

var _ ledfx.Driver = (*previewHub)(nil)

// viewer only ever holds the newest frame. A slow viewer skips frames
// instead of queueing them.
type viewer struct {
	frame  chan struct{}
	latest atomic.Pointer[sseEvent]
}

func (v *viewer) queueFrame(ev *sseEvent) {
	v.latest.Store(ev)
	select {
	case v.frame <- struct{}{}:
	default:
	}
}

func (h *previewHub) WriteFrame(f ledfx.Frame) error {
	if h.watched.Load() == 0 {
		return nil
	}

	ev := previewEventToSSE(newPreviewFrame(h.current(), f))
	h.viewers.Range(func(_ string, v *viewer) bool {
		v.queueFrame(&ev)
		return true
	})
	return nil
}

func (h *previewHub) handleFrames(w http.ResponseWriter, r *http.Request) {
	wflush, ok := w.(writeFlusher)
	if !ok {
		http.Error(w, "server does not support flushing", http.StatusInternalServerError)
		return
	}

	v := &viewer{frame: make(chan struct{}, 1)}

	token := h.addViewer(v)
	defer h.removeViewer(token)

	h.logger.Info(
		"new preview viewer",
		"token", token)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	init := previewEventToSSE(PreviewInit{
		LEDs:         h.leds,
		Effects:      h.effects,
		SessionToken: token,
	})
	writeSSE(wflush, init)

frameLoop:
	for {
		select {
		case <-r.Context().Done():
			break frameLoop
		case <-v.frame:
			if ev := v.latest.Load(); ev != nil {
				writeSSE(wflush, *ev)
			}
		}
	}

	h.logger.Info(
		"preview viewer has left",
		"token", token)
}

func (h *previewHub) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func (h *previewHub) addViewer(v *viewer) string {
	for {
		uuid, err := uuid.NewV7()
		if err != nil {
			panic(err)
		}

		token := uuid.String()
		if _, collided := h.viewers.LoadOrStore(token, v); !collided {
			h.watched.Add(1)
			return token
		}
	}
}

func (h *previewHub) removeViewer(token string) {
	h.viewers.Delete(token)
	h.watched.Add(-1)
}
