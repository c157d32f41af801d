//go:build linux

package linuxinput

import (
	"veto/internal/core/autoclicker"
	"veto/internal/keycode"

	evdev "github.com/holoplot/go-evdev"
)

// EV_KEY values; 2 is auto-repeat.
const (
	keyUp   int32 = 0
	keyDown int32 = 1
)

// translate maps a raw evdev event to a hook event. Non-key events and
// auto-repeat are dropped.
func translate(typ evdev.EvType, code evdev.EvCode, value int32) (autoclicker.Event, bool) {
	if typ != evdev.EV_KEY {
		return autoclicker.Event{}, false
	}
	var down bool
	switch value {
	case keyDown:
		down = true
	case keyUp:
		down = false
	default:
		return autoclicker.Event{}, false
	}

	c := uint16(code)
	if keycode.IsButton(c) {
		return autoclicker.ButtonEvent(c, down), true
	}
	if c >= uint16(evdev.BTN_MISC) {
		// joystick, tablet and touch buttons
		return autoclicker.Event{}, false
	}
	return autoclicker.KeyEvent(c, down), true
}

func buttonCode(button autoclicker.Button) evdev.EvCode {
	if button == autoclicker.ButtonRight {
		return evdev.BTN_RIGHT
	}
	return evdev.BTN_LEFT
}
