//go:build darwin

package hookinput

import (
	"fmt"
	"sync"
	"time"

	"veto/internal/core/autoclicker"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"
)

// Hook listens through the global gohook event tap. macOS only delivers
// events once the process holds the Accessibility permission.
type Hook struct {
	logger autoclicker.Logger
	echoes *Echoes

	startOnce sync.Once
	stopOnce  sync.Once
	started   bool
	done      chan struct{}
}

// NewHook drops the echoes of edges recorded by an Injector sharing echoes.
func NewHook(logger autoclicker.Logger, echoes *Echoes) (*Hook, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Hook{logger: logger, echoes: echoes, done: make(chan struct{})}, nil
}

func (h *Hook) Start(sink func(autoclicker.Event)) error {
	if sink == nil {
		return fmt.Errorf("sink is nil")
	}
	h.startOnce.Do(func() {
		h.started = true
		events := hook.Start()
		h.logger.Info("Listening on global event tap")
		go h.readLoop(events, sink)
	})
	return nil
}

func (h *Hook) Stop() {
	h.stopOnce.Do(func() {
		if !h.started {
			return
		}
		hook.End()
		<-h.done
	})
}

func (h *Hook) readLoop(events chan hook.Event, sink func(autoclicker.Event)) {
	defer close(h.done)
	for e := range events {
		ev, ok := translate(e)
		if !ok || h.echoes.take(ev) {
			continue
		}
		sink(ev)
	}
}

// translate follows gohook's naming: KeyHold and MouseHold are presses,
// KeyUp and MouseDown are releases.
func translate(e hook.Event) (autoclicker.Event, bool) {
	switch e.Kind {
	case hook.KeyHold, hook.KeyUp:
		code, ok := keyCode(e.Keycode)
		if !ok {
			return autoclicker.Event{}, false
		}
		return autoclicker.KeyEvent(code, e.Kind == hook.KeyHold), true
	case hook.MouseHold, hook.MouseDown:
		code, ok := buttonCode(e.Button)
		if !ok {
			return autoclicker.Event{}, false
		}
		return autoclicker.ButtonEvent(code, e.Kind == hook.MouseHold), true
	default:
		return autoclicker.Event{}, false
	}
}

// Injector drives the system pointer through robotgo.
type Injector struct {
	clickDown time.Duration
	echoes    *Echoes
	mu        sync.Mutex
}

func NewInjector(clickDown time.Duration, echoes *Echoes) (*Injector, error) {
	if clickDown < 0 {
		clickDown = 0
	}
	return &Injector{clickDown: clickDown, echoes: echoes}, nil
}

func (i *Injector) Click(button autoclicker.Button) error {
	if err := i.Press(button); err != nil {
		return err
	}
	if i.clickDown > 0 {
		time.Sleep(i.clickDown)
	}
	return i.Release(button)
}

func (i *Injector) Press(button autoclicker.Button) error {
	return i.toggle(button, true)
}

func (i *Injector) Release(button autoclicker.Button) error {
	return i.toggle(button, false)
}

func (i *Injector) toggle(button autoclicker.Button, down bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	args := []interface{}{button.String()}
	if !down {
		args = append(args, "up")
	}
	i.echoes.expect(button, down)
	if err := robotgo.Toggle(args...); err != nil {
		i.echoes.forget(button, down)
		return err
	}
	return nil
}
