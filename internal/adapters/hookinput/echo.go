package hookinput

import (
	"sync"
	"time"

	"veto/internal/core/autoclicker"
)

// echoWindow bounds how late the event tap may deliver a synthetic event.
const echoWindow = 250 * time.Millisecond

type echoKey struct {
	code uint16
	down bool
}

// Echoes pairs synthetic button edges with the copies the event tap delivers
// back. The tap carries no injected marker, so the injector records each edge
// and the hook drops the first matching event inside echoWindow.
type Echoes struct {
	mu      sync.Mutex
	pending map[echoKey][]time.Time
	now     func() time.Time
}

func NewEchoes() *Echoes {
	return &Echoes{pending: make(map[echoKey][]time.Time), now: time.Now}
}

func (e *Echoes) expect(button autoclicker.Button, down bool) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	key := echoKey{code: button.Code(), down: down}
	e.pending[key] = append(e.pending[key], e.now().Add(echoWindow))
}

// forget drops the newest pending edge after the injection failed.
func (e *Echoes) forget(button autoclicker.Button, down bool) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	key := echoKey{code: button.Code(), down: down}
	deadlines := e.pending[key]
	if len(deadlines) <= 1 {
		delete(e.pending, key)
		return
	}
	e.pending[key] = deadlines[:len(deadlines)-1]
}

// take reports whether ev is the echo of a recorded synthetic edge and
// consumes it.
func (e *Echoes) take(ev autoclicker.Event) bool {
	if e == nil || ev.Kind != autoclicker.EventButton {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	key := echoKey{code: ev.Code, down: ev.Down}
	now := e.now()
	deadlines := e.pending[key]
	for len(deadlines) > 0 && now.After(deadlines[0]) {
		deadlines = deadlines[1:]
	}
	if len(deadlines) == 0 {
		delete(e.pending, key)
		return false
	}
	if len(deadlines) == 1 {
		delete(e.pending, key)
	} else {
		e.pending[key] = deadlines[1:]
	}
	return true
}
