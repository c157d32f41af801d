package wininput

import (
	"sort"

	"veto/internal/keycode"
)

const (
	vkLBUTTON  uint32 = 0x01
	vkRBUTTON  uint32 = 0x02
	vkMBUTTON  uint32 = 0x04
	vkXBUTTON1 uint32 = 0x05
	vkXBUTTON2 uint32 = 0x06

	vkBACK       uint32 = 0x08
	vkTAB        uint32 = 0x09
	vkRETURN     uint32 = 0x0D
	vkSHIFT      uint32 = 0x10
	vkCONTROL    uint32 = 0x11
	vkMENU       uint32 = 0x12
	vkPAUSE      uint32 = 0x13
	vkCAPITAL    uint32 = 0x14
	vkESCAPE     uint32 = 0x1B
	vkSPACE      uint32 = 0x20
	vkPRIOR      uint32 = 0x21
	vkNEXT       uint32 = 0x22
	vkEND        uint32 = 0x23
	vkHOME       uint32 = 0x24
	vkLEFT       uint32 = 0x25
	vkUP         uint32 = 0x26
	vkRIGHT      uint32 = 0x27
	vkDOWN       uint32 = 0x28
	vkSNAPSHOT   uint32 = 0x2C
	vkINSERT     uint32 = 0x2D
	vkDELETE     uint32 = 0x2E
	vk0          uint32 = 0x30
	vk1          uint32 = 0x31
	vk2          uint32 = 0x32
	vk3          uint32 = 0x33
	vk4          uint32 = 0x34
	vk5          uint32 = 0x35
	vk6          uint32 = 0x36
	vk7          uint32 = 0x37
	vk8          uint32 = 0x38
	vk9          uint32 = 0x39
	vkA          uint32 = 0x41
	vkB          uint32 = 0x42
	vkC          uint32 = 0x43
	vkD          uint32 = 0x44
	vkE          uint32 = 0x45
	vkF          uint32 = 0x46
	vkG          uint32 = 0x47
	vkH          uint32 = 0x48
	vkI          uint32 = 0x49
	vkJ          uint32 = 0x4A
	vkK          uint32 = 0x4B
	vkL          uint32 = 0x4C
	vkM          uint32 = 0x4D
	vkN          uint32 = 0x4E
	vkO          uint32 = 0x4F
	vkP          uint32 = 0x50
	vkQ          uint32 = 0x51
	vkR          uint32 = 0x52
	vkS          uint32 = 0x53
	vkT          uint32 = 0x54
	vkU          uint32 = 0x55
	vkV          uint32 = 0x56
	vkW          uint32 = 0x57
	vkX          uint32 = 0x58
	vkY          uint32 = 0x59
	vkZ          uint32 = 0x5A
	vkLWIN       uint32 = 0x5B
	vkRWIN       uint32 = 0x5C
	vkAPPS       uint32 = 0x5D
	vkNUMPAD0    uint32 = 0x60
	vkNUMPAD1    uint32 = 0x61
	vkNUMPAD2    uint32 = 0x62
	vkNUMPAD3    uint32 = 0x63
	vkNUMPAD4    uint32 = 0x64
	vkNUMPAD5    uint32 = 0x65
	vkNUMPAD6    uint32 = 0x66
	vkNUMPAD7    uint32 = 0x67
	vkNUMPAD8    uint32 = 0x68
	vkNUMPAD9    uint32 = 0x69
	vkMULTIPLY   uint32 = 0x6A
	vkADD        uint32 = 0x6B
	vkSUBTRACT   uint32 = 0x6D
	vkDECIMAL    uint32 = 0x6E
	vkDIVIDE     uint32 = 0x6F
	vkF1         uint32 = 0x70
	vkF2         uint32 = 0x71
	vkF3         uint32 = 0x72
	vkF4         uint32 = 0x73
	vkF5         uint32 = 0x74
	vkF6         uint32 = 0x75
	vkF7         uint32 = 0x76
	vkF8         uint32 = 0x77
	vkF9         uint32 = 0x78
	vkF10        uint32 = 0x79
	vkF11        uint32 = 0x7A
	vkF12        uint32 = 0x7B
	vkF13        uint32 = 0x7C
	vkF14        uint32 = 0x7D
	vkF15        uint32 = 0x7E
	vkF16        uint32 = 0x7F
	vkF17        uint32 = 0x80
	vkF18        uint32 = 0x81
	vkF19        uint32 = 0x82
	vkF20        uint32 = 0x83
	vkF21        uint32 = 0x84
	vkF22        uint32 = 0x85
	vkF23        uint32 = 0x86
	vkF24        uint32 = 0x87
	vkNUMLOCK    uint32 = 0x90
	vkSCROLL     uint32 = 0x91
	vkLSHIFT     uint32 = 0xA0
	vkRSHIFT     uint32 = 0xA1
	vkLCONTROL   uint32 = 0xA2
	vkRCONTROL   uint32 = 0xA3
	vkLMENU      uint32 = 0xA4
	vkRMENU      uint32 = 0xA5
	vkVOLUMEMUTE uint32 = 0xAD
	vkVOLUMEDOWN uint32 = 0xAE
	vkVOLUMEUP   uint32 = 0xAF
	vkOEM1       uint32 = 0xBA
	vkOEMPLUS    uint32 = 0xBB
	vkOEMCOMMA   uint32 = 0xBC
	vkOEMMINUS   uint32 = 0xBD
	vkOEMPERIOD  uint32 = 0xBE
	vkOEM2       uint32 = 0xBF
	vkOEM3       uint32 = 0xC0
	vkOEM4       uint32 = 0xDB
	vkOEM5       uint32 = 0xDC
	vkOEM6       uint32 = 0xDD
	vkOEM7       uint32 = 0xDE
)

const (
	llkhfExtended = 0x01
)

var codeToVK = map[uint16]uint32{
	keycode.BTNLeft:   vkLBUTTON,
	keycode.BTNRight:  vkRBUTTON,
	keycode.BTNMiddle: vkMBUTTON,
	keycode.BTNSide:   vkXBUTTON1,
	keycode.BTNExtra:  vkXBUTTON2,

	keycode.KeyEsc:        vkESCAPE,
	keycode.Key1:          vk1,
	keycode.Key2:          vk2,
	keycode.Key3:          vk3,
	keycode.Key4:          vk4,
	keycode.Key5:          vk5,
	keycode.Key6:          vk6,
	keycode.Key7:          vk7,
	keycode.Key8:          vk8,
	keycode.Key9:          vk9,
	keycode.Key0:          vk0,
	keycode.KeyMinus:      vkOEMMINUS,
	keycode.KeyEqual:      vkOEMPLUS,
	keycode.KeyBackspace:  vkBACK,
	keycode.KeyTab:        vkTAB,
	keycode.KeyQ:          vkQ,
	keycode.KeyW:          vkW,
	keycode.KeyE:          vkE,
	keycode.KeyR:          vkR,
	keycode.KeyT:          vkT,
	keycode.KeyY:          vkY,
	keycode.KeyU:          vkU,
	keycode.KeyI:          vkI,
	keycode.KeyO:          vkO,
	keycode.KeyP:          vkP,
	keycode.KeyLeftBrace:  vkOEM4,
	keycode.KeyRightBrace: vkOEM6,
	keycode.KeyEnter:      vkRETURN,
	keycode.KeyLeftCtrl:   vkLCONTROL,
	keycode.KeyA:          vkA,
	keycode.KeyS:          vkS,
	keycode.KeyD:          vkD,
	keycode.KeyF:          vkF,
	keycode.KeyG:          vkG,
	keycode.KeyH:          vkH,
	keycode.KeyJ:          vkJ,
	keycode.KeyK:          vkK,
	keycode.KeyL:          vkL,
	keycode.KeySemicolon:  vkOEM1,
	keycode.KeyApostrophe: vkOEM7,
	keycode.KeyGrave:      vkOEM3,
	keycode.KeyLeftShift:  vkLSHIFT,
	keycode.KeyBackslash:  vkOEM5,
	keycode.KeyZ:          vkZ,
	keycode.KeyX:          vkX,
	keycode.KeyC:          vkC,
	keycode.KeyV:          vkV,
	keycode.KeyB:          vkB,
	keycode.KeyN:          vkN,
	keycode.KeyM:          vkM,
	keycode.KeyComma:      vkOEMCOMMA,
	keycode.KeyDot:        vkOEMPERIOD,
	keycode.KeySlash:      vkOEM2,
	keycode.KeyRightShift: vkRSHIFT,
	keycode.KeyKPAsterisk: vkMULTIPLY,
	keycode.KeyLeftAlt:    vkLMENU,
	keycode.KeySpace:      vkSPACE,
	keycode.KeyCapsLock:   vkCAPITAL,
	keycode.KeyF1:         vkF1,
	keycode.KeyF2:         vkF2,
	keycode.KeyF3:         vkF3,
	keycode.KeyF4:         vkF4,
	keycode.KeyF5:         vkF5,
	keycode.KeyF6:         vkF6,
	keycode.KeyF7:         vkF7,
	keycode.KeyF8:         vkF8,
	keycode.KeyF9:         vkF9,
	keycode.KeyF10:        vkF10,
	keycode.KeyNumLock:    vkNUMLOCK,
	keycode.KeyScrollLock: vkSCROLL,
	keycode.KeyKP7:        vkNUMPAD7,
	keycode.KeyKP8:        vkNUMPAD8,
	keycode.KeyKP9:        vkNUMPAD9,
	keycode.KeyKPMinus:    vkSUBTRACT,
	keycode.KeyKP4:        vkNUMPAD4,
	keycode.KeyKP5:        vkNUMPAD5,
	keycode.KeyKP6:        vkNUMPAD6,
	keycode.KeyKPPlus:     vkADD,
	keycode.KeyKP1:        vkNUMPAD1,
	keycode.KeyKP2:        vkNUMPAD2,
	keycode.KeyKP3:        vkNUMPAD3,
	keycode.KeyKP0:        vkNUMPAD0,
	keycode.KeyKPDot:      vkDECIMAL,
	keycode.KeyF11:        vkF11,
	keycode.KeyF12:        vkF12,
	keycode.KeyKPEnter:    vkRETURN,
	keycode.KeyRightCtrl:  vkRCONTROL,
	keycode.KeyKPSlash:    vkDIVIDE,
	keycode.KeySysRq:      vkSNAPSHOT,
	keycode.KeyRightAlt:   vkRMENU,
	keycode.KeyHome:       vkHOME,
	keycode.KeyUp:         vkUP,
	keycode.KeyPageUp:     vkPRIOR,
	keycode.KeyLeft:       vkLEFT,
	keycode.KeyRight:      vkRIGHT,
	keycode.KeyEnd:        vkEND,
	keycode.KeyDown:       vkDOWN,
	keycode.KeyPageDown:   vkNEXT,
	keycode.KeyInsert:     vkINSERT,
	keycode.KeyDelete:     vkDELETE,
	keycode.KeyMute:       vkVOLUMEMUTE,
	keycode.KeyVolumeDown: vkVOLUMEDOWN,
	keycode.KeyVolumeUp:   vkVOLUMEUP,
	keycode.KeyPause:      vkPAUSE,
	keycode.KeyLeftMeta:   vkLWIN,
	keycode.KeyRightMeta:  vkRWIN,
	keycode.KeyMenu:       vkAPPS,
	keycode.KeyF13:        vkF13,
	keycode.KeyF14:        vkF14,
	keycode.KeyF15:        vkF15,
	keycode.KeyF16:        vkF16,
	keycode.KeyF17:        vkF17,
	keycode.KeyF18:        vkF18,
	keycode.KeyF19:        vkF19,
	keycode.KeyF20:        vkF20,
	keycode.KeyF21:        vkF21,
	keycode.KeyF22:        vkF22,
	keycode.KeyF23:        vkF23,
	keycode.KeyF24:        vkF24,
}

var vkToCode map[uint32]uint16

func init() {
	codes := make([]uint16, 0, len(codeToVK))
	for code := range codeToVK {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	vkToCode = make(map[uint32]uint16, len(codeToVK))
	for _, code := range codes {
		vk := codeToVK[code]
		if _, exists := vkToCode[vk]; exists {
			continue
		}
		vkToCode[vk] = code
	}
}

func CodeToVK(code uint16) (uint32, bool) {
	vk, ok := codeToVK[code]
	return vk, ok
}

// CodeFromVK maps a low-level hook virtual key to an input code. Generic
// modifier VKs are split by the extended-key flag.
func CodeFromVK(vk, flags uint32) (uint16, bool) {
	switch vk {
	case vkRETURN:
		if flags&llkhfExtended != 0 {
			return keycode.KeyKPEnter, true
		}
		return keycode.KeyEnter, true
	case vkSHIFT:
		return keycode.KeyLeftShift, true
	case vkCONTROL:
		if flags&llkhfExtended != 0 {
			return keycode.KeyRightCtrl, true
		}
		return keycode.KeyLeftCtrl, true
	case vkMENU:
		if flags&llkhfExtended != 0 {
			return keycode.KeyRightAlt, true
		}
		return keycode.KeyLeftAlt, true
	}

	code, ok := vkToCode[vk]
	return code, ok
}
