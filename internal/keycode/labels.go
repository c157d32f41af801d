package keycode

import (
	"errors"
	"fmt"
	"strings"
)

// NoneLabel is the label persisted for an unbound hotkey.
const NoneLabel = "None"

var ErrUnbound = errors.New("hotkey is unbound")

var buttonLabels = map[uint16]string{
	BTNLeft:   "Mouse Left",
	BTNRight:  "Mouse Right",
	BTNMiddle: "Mouse Middle",
	BTNSide:   "Mouse 4",
	BTNExtra:  "Mouse 5",
}

// Key names written by older settings files.
var labelAliases = map[string]string{
	"SHIFT":        "LEFTSHIFT",
	"SHIFT_L":      "LEFTSHIFT",
	"SHIFT_R":      "RIGHTSHIFT",
	"CTRL":         "LEFTCTRL",
	"CTRL_L":       "LEFTCTRL",
	"CTRL_R":       "RIGHTCTRL",
	"ALT":          "LEFTALT",
	"ALT_L":        "LEFTALT",
	"ALT_R":        "RIGHTALT",
	"ALT_GR":       "RIGHTALT",
	"CMD":          "LEFTMETA",
	"CMD_L":        "LEFTMETA",
	"CMD_R":        "RIGHTMETA",
	"CAPS_LOCK":    "CAPSLOCK",
	"NUM_LOCK":     "NUMLOCK",
	"SCROLL_LOCK":  "SCROLLLOCK",
	"PAGE_UP":      "PAGEUP",
	"PAGE_DOWN":    "PAGEDOWN",
	"PRINT_SCREEN": "SYSRQ",
	"RETURN":       "ENTER",
	"ESCAPE":       "ESC",
}

// Label renders code the way it is shown on the hotkey buttons and stored
// in the settings file: "F6", "A", "SPACE", "Mouse 4".
func Label(code uint16) string {
	if label, ok := buttonLabels[code]; ok {
		return label
	}
	name := FormatCodeName(code)
	return strings.TrimPrefix(name, "KEY_")
}

// ParseLabel resolves a label produced by Label (or a raw KEY_/BTN_ name)
// back to its code. "None" and the empty string yield ErrUnbound.
func ParseLabel(label string) (uint16, error) {
	raw := strings.TrimSpace(label)
	if raw == "" || strings.EqualFold(raw, NoneLabel) {
		return 0, ErrUnbound
	}
	for code, text := range buttonLabels {
		if strings.EqualFold(raw, text) {
			return code, nil
		}
	}

	upper := strings.ToUpper(raw)
	if alias, ok := labelAliases[upper]; ok {
		upper = alias
	}
	if code, ok := nameToCode["KEY_"+upper]; ok {
		return code, nil
	}
	if code, ok := nameToCode[upper]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("unknown hotkey label %q", label)
}
