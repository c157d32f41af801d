package x11input

import (
	"strings"

	"veto/internal/keycode"
)

// X11 core button numbers.
const (
	xButtonLeft   = 1
	xButtonMiddle = 2
	xButtonRight  = 3
	xButtonBack   = 8
	xButtonFwd    = 9
)

// Keysym names for KEY_ tokens whose X11 spelling differs.
var keysymByToken = map[string]string{
	"ESC":        "Escape",
	"ENTER":      "Return",
	"TAB":        "Tab",
	"SPACE":      "space",
	"BACKSPACE":  "BackSpace",
	"LEFTSHIFT":  "Shift_L",
	"RIGHTSHIFT": "Shift_R",
	"LEFTCTRL":   "Control_L",
	"RIGHTCTRL":  "Control_R",
	"LEFTALT":    "Alt_L",
	"RIGHTALT":   "Alt_R",
	"LEFTMETA":   "Super_L",
	"RIGHTMETA":  "Super_R",
	"CAPSLOCK":   "Caps_Lock",
	"NUMLOCK":    "Num_Lock",
	"SCROLLLOCK": "Scroll_Lock",
	"PAGEUP":     "Page_Up",
	"PAGEDOWN":   "Page_Down",
	"INSERT":     "Insert",
	"DELETE":     "Delete",
	"HOME":       "Home",
	"END":        "End",
	"UP":         "Up",
	"DOWN":       "Down",
	"LEFT":       "Left",
	"RIGHT":      "Right",
	"MENU":       "Menu",
	"PAUSE":      "Pause",
	"SYSRQ":      "Print",
	"MINUS":      "minus",
	"EQUAL":      "equal",
	"LEFTBRACE":  "bracketleft",
	"RIGHTBRACE": "bracketright",
	"SEMICOLON":  "semicolon",
	"APOSTROPHE": "apostrophe",
	"GRAVE":      "grave",
	"BACKSLASH":  "backslash",
	"COMMA":      "comma",
	"DOT":        "period",
	"SLASH":      "slash",
	"KPPLUS":     "KP_Add",
	"KPMINUS":    "KP_Subtract",
	"KPASTERISK": "KP_Multiply",
	"KPSLASH":    "KP_Divide",
	"KPDOT":      "KP_Decimal",
	"KPENTER":    "KP_Enter",
}

var tokenByKeysym = func() map[string]string {
	out := make(map[string]string, len(keysymByToken))
	for token, keysym := range keysymByToken {
		out[strings.ToLower(keysym)] = token
	}
	return out
}()

// keysymForCode returns the keysym name keybind resolves to X keycodes.
func keysymForCode(code uint16) (string, bool) {
	name := keycode.FormatCodeName(code)
	if !strings.HasPrefix(name, "KEY_") {
		return "", false
	}
	token := strings.TrimPrefix(name, "KEY_")

	if keysym, ok := keysymByToken[token]; ok {
		return keysym, true
	}
	if len(token) == 1 && token[0] >= 'A' && token[0] <= 'Z' {
		return strings.ToLower(token), true
	}
	if len(token) == 1 && token[0] >= '0' && token[0] <= '9' {
		return token, true
	}
	if strings.HasPrefix(token, "F") && isDigits(token[1:]) {
		return token, true
	}
	if strings.HasPrefix(token, "KP") && len(token) == 3 && token[2] >= '0' && token[2] <= '9' {
		return "KP_" + token[2:], true
	}
	return "", false
}

// codeForKeysym is the inverse of keysymForCode for strings returned by
// keybind.LookupString.
func codeForKeysym(value string) (uint16, bool) {
	raw := strings.ToLower(strings.TrimSpace(value))
	if raw == "" {
		return 0, false
	}

	token := ""
	switch {
	case len(raw) == 1 && (raw[0] >= 'a' && raw[0] <= 'z' || raw[0] >= '0' && raw[0] <= '9'):
		token = strings.ToUpper(raw)
	case strings.HasPrefix(raw, "f") && isDigits(raw[1:]):
		token = strings.ToUpper(raw)
	case strings.HasPrefix(raw, "kp_") && len(raw) == 4 && raw[3] >= '0' && raw[3] <= '9':
		token = "KP" + raw[3:]
	default:
		token = tokenByKeysym[raw]
	}
	if token == "" {
		return 0, false
	}
	code, err := keycode.ParseCode("KEY_" + token)
	if err != nil {
		return 0, false
	}
	return code, true
}

func codeToXButton(code uint16) (byte, bool) {
	switch code {
	case keycode.BTNLeft:
		return xButtonLeft, true
	case keycode.BTNMiddle:
		return xButtonMiddle, true
	case keycode.BTNRight:
		return xButtonRight, true
	case keycode.BTNSide:
		return xButtonBack, true
	case keycode.BTNExtra:
		return xButtonFwd, true
	default:
		return 0, false
	}
}

func xButtonToCode(button byte) (uint16, bool) {
	switch button {
	case xButtonLeft:
		return keycode.BTNLeft, true
	case xButtonMiddle:
		return keycode.BTNMiddle, true
	case xButtonRight:
		return keycode.BTNRight, true
	case xButtonBack:
		return keycode.BTNSide, true
	case xButtonFwd:
		return keycode.BTNExtra, true
	default:
		return 0, false
	}
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
