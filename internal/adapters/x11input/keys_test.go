package x11input

import (
	"testing"

	"veto/internal/keycode"
)

func TestKeysymRoundTrip(t *testing.T) {
	codes := []uint16{
		keycode.KeyA, keycode.KeyF6, keycode.KeyF12, keycode.KeySpace, keycode.KeyEsc,
		keycode.KeyLeftShift, keycode.KeyPageUp, keycode.KeyDot, keycode.KeyKP7, keycode.KeyKPEnter,
	}
	for _, code := range codes {
		keysym, ok := keysymForCode(code)
		if !ok {
			t.Fatalf("keysymForCode(%s) not mapped", keycode.FormatCodeName(code))
		}
		got, ok := codeForKeysym(keysym)
		if !ok || got != code {
			t.Fatalf("codeForKeysym(%q) = %d, %v; want %d", keysym, got, ok, code)
		}
	}
}

func TestKeysymSpellings(t *testing.T) {
	cases := map[uint16]string{
		keycode.KeyA:     "a",
		keycode.Key1:     "1",
		keycode.KeyF6:    "F6",
		keycode.KeyEnter: "Return",
		keycode.KeyDot:   "period",
		keycode.KeyKP3:   "KP_3",
	}
	for code, want := range cases {
		if got, _ := keysymForCode(code); got != want {
			t.Fatalf("keysymForCode(%s) = %q, want %q", keycode.FormatCodeName(code), got, want)
		}
	}
	if _, ok := keysymForCode(keycode.BTNSide); ok {
		t.Fatalf("buttons have no keysym")
	}
	if _, ok := codeForKeysym("Hyper_L"); ok {
		t.Fatalf("unexpected mapping for Hyper_L")
	}
}

func TestXButtonMapping(t *testing.T) {
	for _, code := range []uint16{keycode.BTNLeft, keycode.BTNMiddle, keycode.BTNRight, keycode.BTNSide, keycode.BTNExtra} {
		button, ok := codeToXButton(code)
		if !ok {
			t.Fatalf("codeToXButton(%d) not mapped", code)
		}
		back, ok := xButtonToCode(button)
		if !ok || back != code {
			t.Fatalf("xButtonToCode(%d) = %d, want %d", button, back, code)
		}
	}
	if _, ok := xButtonToCode(4); ok {
		t.Fatalf("scroll button must not map to a code")
	}
}
