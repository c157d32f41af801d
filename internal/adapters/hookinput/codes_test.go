package hookinput

import (
	"testing"

	"veto/internal/keycode"
)

func TestKeyCodeMainBlockMatchesInputCodes(t *testing.T) {
	for _, code := range []uint16{keycode.KeyEsc, keycode.KeyA, keycode.KeyF6, keycode.KeyF12, keycode.KeySpace} {
		got, ok := keyCode(code)
		if !ok || got != code {
			t.Fatalf("keyCode(%#x)=%d,%v, want %d,true", code, got, ok, code)
		}
	}
}

func TestKeyCodeExtendedKeys(t *testing.T) {
	tests := []struct {
		vc   uint16
		want uint16
	}{
		{vc: 0x0E1C, want: keycode.KeyKPEnter},
		{vc: 0xE048, want: keycode.KeyUp},
		{vc: 0x0E53, want: keycode.KeyDelete},
		{vc: 0x005B, want: keycode.KeyF13},
		{vc: 0x006B, want: keycode.KeyF24},
	}
	for _, tc := range tests {
		got, ok := keyCode(tc.vc)
		if !ok || got != tc.want {
			t.Fatalf("keyCode(%#x)=%d,%v, want %d,true", tc.vc, got, ok, tc.want)
		}
	}
}

func TestKeyCodeRejectsUnknown(t *testing.T) {
	for _, vc := range []uint16{0, 0x0054, 0x00FF, 0x0E99} {
		if got, ok := keyCode(vc); ok {
			t.Fatalf("keyCode(%#x)=%d, want no mapping", vc, got)
		}
	}
}

func TestButtonCode(t *testing.T) {
	tests := []struct {
		button uint16
		want   uint16
	}{
		{button: mouseLeft, want: keycode.BTNLeft},
		{button: mouseRight, want: keycode.BTNRight},
		{button: mouseMiddle, want: keycode.BTNMiddle},
		{button: mouseX1, want: keycode.BTNSide},
		{button: mouseX2, want: keycode.BTNExtra},
	}
	for _, tc := range tests {
		got, ok := buttonCode(tc.button)
		if !ok || got != tc.want {
			t.Fatalf("buttonCode(%d)=%d,%v, want %d,true", tc.button, got, ok, tc.want)
		}
	}
	if _, ok := buttonCode(0); ok {
		t.Fatalf("buttonCode(0) should not map")
	}
}
