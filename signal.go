package ledfx

// SwitchRequest asks the render loop to change the active effect.
type SwitchRequest struct {
	// Name is the effect to activate. If empty, the loop advances to the
	// next effect instead.
	Name string
}

// SwitchSignal carries at most one pending SwitchRequest from another
// goroutine, such as a button handler, to the render loop. Sending never
// blocks: a request that has not been picked up yet is replaced by the newer
// one.
type SwitchSignal struct {
	ch chan SwitchRequest
}

// NewSwitchSignal creates an empty SwitchSignal.
func NewSwitchSignal() *SwitchSignal {
	return &SwitchSignal{ch: make(chan SwitchRequest, 1)}
}

// Advance requests a switch to the next effect.
func (s *SwitchSignal) Advance() {
	s.send(SwitchRequest{})
}

// Activate requests a switch to the named effect.
func (s *SwitchSignal) Activate(name string) {
	s.send(SwitchRequest{Name: name})
}

func (s *SwitchSignal) send(req SwitchRequest) {
	for {
		select {
		case s.ch <- req:
			return
		default:
		}

		// Full. Drop the stale request and try again.
		select {
		case <-s.ch:
		default:
		}
	}
}

// Poll takes the pending request, if any, without blocking.
func (s *SwitchSignal) Poll() (SwitchRequest, bool) {
	select {
	case req := <-s.ch:
		return req, true
	default:
		return SwitchRequest{}, false
	}
}
