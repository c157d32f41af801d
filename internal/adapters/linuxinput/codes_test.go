//go:build linux

package linuxinput

import (
	"testing"

	"veto/internal/core/autoclicker"
	"veto/internal/keycode"

	evdev "github.com/holoplot/go-evdev"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name  string
		typ   evdev.EvType
		code  evdev.EvCode
		value int32
		want  autoclicker.Event
		ok    bool
	}{
		{name: "key down", typ: evdev.EV_KEY, code: evdev.KEY_F6, value: 1, want: autoclicker.KeyEvent(keycode.KeyF6, true), ok: true},
		{name: "key up", typ: evdev.EV_KEY, code: evdev.KEY_F6, value: 0, want: autoclicker.KeyEvent(keycode.KeyF6, false), ok: true},
		{name: "key repeat", typ: evdev.EV_KEY, code: evdev.KEY_F6, value: 2},
		{name: "left button", typ: evdev.EV_KEY, code: evdev.BTN_LEFT, value: 1, want: autoclicker.ButtonEvent(keycode.BTNLeft, true), ok: true},
		{name: "side button", typ: evdev.EV_KEY, code: evdev.BTN_SIDE, value: 0, want: autoclicker.ButtonEvent(keycode.BTNSide, false), ok: true},
		{name: "touch", typ: evdev.EV_KEY, code: evdev.BTN_TOUCH, value: 1},
		{name: "motion", typ: evdev.EV_REL, code: evdev.REL_X, value: 4},
		{name: "sync", typ: evdev.EV_SYN, code: evdev.SYN_REPORT, value: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := translate(tc.typ, tc.code, tc.value)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("translate() = %#v, %v; want %#v, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestButtonCode(t *testing.T) {
	if got := buttonCode(autoclicker.ButtonLeft); uint16(got) != keycode.BTNLeft {
		t.Fatalf("buttonCode(left) = %d", got)
	}
	if got := buttonCode(autoclicker.ButtonRight); uint16(got) != keycode.BTNRight {
		t.Fatalf("buttonCode(right) = %d", got)
	}
}
