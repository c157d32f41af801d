package hookinput

import "veto/internal/keycode"

// uiohook virtual key codes share the set-1 scan code layout with evdev for
// the main block. Extended keys carry a 0x0E00 or 0xE000 prefix.
const (
	vcBasicMax = 0x0058

	mouseLeft   = 1
	mouseRight  = 2
	mouseMiddle = 3
	mouseX1     = 4
	mouseX2     = 5
)

var extendedCodes = map[uint16]uint16{
	0x0E1C: keycode.KeyKPEnter,
	0x0E1D: keycode.KeyRightCtrl,
	0x0E35: keycode.KeyKPSlash,
	0x0E37: keycode.KeySysRq,
	0x0E38: keycode.KeyRightAlt,
	0x0E45: keycode.KeyPause,
	0x0E47: keycode.KeyHome,
	0xE048: keycode.KeyUp,
	0x0E49: keycode.KeyPageUp,
	0xE04B: keycode.KeyLeft,
	0xE04D: keycode.KeyRight,
	0x0E4F: keycode.KeyEnd,
	0xE050: keycode.KeyDown,
	0x0E51: keycode.KeyPageDown,
	0x0E52: keycode.KeyInsert,
	0x0E53: keycode.KeyDelete,
	0x0E5B: keycode.KeyLeftMeta,
	0x0E5C: keycode.KeyRightMeta,
	0x0E5D: keycode.KeyMenu,

	0x005B: keycode.KeyF13,
	0x005C: keycode.KeyF14,
	0x005D: keycode.KeyF15,
	0x0063: keycode.KeyF16,
	0x0064: keycode.KeyF17,
	0x0065: keycode.KeyF18,
	0x0066: keycode.KeyF19,
	0x0067: keycode.KeyF20,
	0x0068: keycode.KeyF21,
	0x0069: keycode.KeyF22,
	0x006A: keycode.KeyF23,
	0x006B: keycode.KeyF24,
}

// keyCode maps a uiohook virtual key code to an input code.
func keyCode(vc uint16) (uint16, bool) {
	if code, ok := extendedCodes[vc]; ok {
		return code, true
	}
	if vc == 0 || vc > vcBasicMax {
		return 0, false
	}
	if !keycode.Known(vc) {
		return 0, false
	}
	return vc, true
}

func buttonCode(button uint16) (uint16, bool) {
	switch button {
	case mouseLeft:
		return keycode.BTNLeft, true
	case mouseRight:
		return keycode.BTNRight, true
	case mouseMiddle:
		return keycode.BTNMiddle, true
	case mouseX1:
		return keycode.BTNSide, true
	case mouseX2:
		return keycode.BTNExtra, true
	default:
		return 0, false
	}
}
