package autoclicker

import (
	"fmt"
	"time"

	"veto/internal/keycode"
)

const (
	DefaultCooldown = 200 * time.Millisecond

	holdPollInterval = 100 * time.Millisecond
)

// Button is a virtual mouse button the injector can drive.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("button(%d)", uint8(b))
	}
}

// Code returns the input code physical events use for b.
func (b Button) Code() uint16 {
	if b == ButtonRight {
		return keycode.BTNRight
	}
	return keycode.BTNLeft
}

type BindingKind uint8

const (
	BindingNone BindingKind = iota
	BindingKey
	BindingMouse
)

// Binding is a hotkey: a keyboard key or a mouse button, identified by its
// keycode. The zero value is unbound.
type Binding struct {
	Kind BindingKind
	Code uint16
}

// BindingFor classifies code as a key or mouse binding.
func BindingFor(code uint16) Binding {
	if keycode.IsButton(code) {
		return Binding{Kind: BindingMouse, Code: code}
	}
	return Binding{Kind: BindingKey, Code: code}
}

func (b Binding) IsZero() bool {
	return b.Kind == BindingNone
}

func (b Binding) IsMouse() bool {
	return b.Kind == BindingMouse
}

func (b Binding) String() string {
	if b.IsZero() {
		return keycode.NoneLabel
	}
	return keycode.Label(b.Code)
}

func (b Binding) matches(ev Event) bool {
	switch b.Kind {
	case BindingKey:
		return ev.Kind == EventKey && ev.Code == b.Code
	case BindingMouse:
		return ev.Kind == EventButton && ev.Code == b.Code
	default:
		return false
	}
}

type EventKind uint8

const (
	EventKey EventKind = iota
	EventButton
)

// Event is a single key or button transition reported by a hook.
type Event struct {
	Kind EventKind
	Code uint16
	Down bool
}

func KeyEvent(code uint16, down bool) Event {
	return Event{Kind: EventKey, Code: code, Down: down}
}

func ButtonEvent(code uint16, down bool) Event {
	return Event{Kind: EventButton, Code: code, Down: down}
}

// Injector emits synthetic mouse input. Calls are synchronous.
type Injector interface {
	Click(button Button) error
	Press(button Button) error
	Release(button Button) error
}

// Hook is a process-wide keyboard and mouse listener.
type Hook interface {
	Start(sink func(Event)) error
	Stop()
}

// BindingWatcher is implemented by hooks that only see the inputs they have
// explicitly grabbed. The controller calls it whenever the hotkey set or the
// capture state changes.
type BindingWatcher interface {
	WatchBindings(bindings []Binding, capturing bool)
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
