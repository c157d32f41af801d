package wininput

import (
	"testing"

	"veto/internal/keycode"
)

func TestCodeFromVKMappings(t *testing.T) {
	tests := []struct {
		name  string
		vk    uint32
		flags uint32
		want  uint16
	}{
		{name: "letter", vk: vkA, want: keycode.KeyA},
		{name: "function key", vk: vkF6, want: keycode.KeyF6},
		{name: "enter", vk: vkRETURN, want: keycode.KeyEnter},
		{name: "keypad enter", vk: vkRETURN, flags: llkhfExtended, want: keycode.KeyKPEnter},
		{name: "left ctrl", vk: vkCONTROL, want: keycode.KeyLeftCtrl},
		{name: "right ctrl", vk: vkCONTROL, flags: llkhfExtended, want: keycode.KeyRightCtrl},
		{name: "right alt", vk: vkMENU, flags: llkhfExtended, want: keycode.KeyRightAlt},
		{name: "side button", vk: vkXBUTTON1, want: keycode.BTNSide},
	}

	for _, tc := range tests {
		got, ok := CodeFromVK(tc.vk, tc.flags)
		if !ok || got != tc.want {
			t.Fatalf("%s: CodeFromVK(%#x, %#x)=%d,%v, want %d,true", tc.name, tc.vk, tc.flags, got, ok, tc.want)
		}
	}

	if _, ok := CodeFromVK(0xFF, 0); ok {
		t.Fatalf("CodeFromVK(0xFF) should not map")
	}
}

func TestCodeToVKMappings(t *testing.T) {
	if vk, ok := CodeToVK(keycode.KeyF8); !ok || vk != vkF8 {
		t.Fatalf("CodeToVK(KEY_F8)=%d,%v, want %d,true", vk, ok, vkF8)
	}
	if vk, ok := CodeToVK(keycode.BTNSide); !ok || vk != vkXBUTTON1 {
		t.Fatalf("CodeToVK(BTN_SIDE)=%d,%v, want %d,true", vk, ok, vkXBUTTON1)
	}
}

func TestEveryVKRoundTrips(t *testing.T) {
	for code, vk := range codeToVK {
		back, ok := CodeFromVK(vk, 0)
		if !ok {
			t.Fatalf("CodeFromVK(%#x) for code %d did not map", vk, code)
		}
		if again, _ := CodeToVK(back); again != vk {
			t.Fatalf("code %d: vk %#x maps back to %d with vk %#x", code, vk, back, again)
		}
	}
}
