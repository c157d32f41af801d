// Package settings persists user preferences between runs as a flat JSON
// object. Reads are tolerant: every missing or malformed key falls back to
// its default on its own.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"veto/internal/core/autoclicker"
	"veto/internal/keycode"
)

const fileName = "settings.json"

// Macro is the persisted part of one macro.
type Macro struct {
	Enabled       bool
	Hotkey        string
	HotkeyIsMouse bool
}

type Hold struct {
	Macro
	Mode autoclicker.HoldMode
	CPS  float64
}

type Settings struct {
	MinCPS    float64
	MaxCPS    float64
	Randomize bool
	Left      Macro
	Right     Macro
	Hold      Hold
}

func Default() Settings {
	return Settings{
		MinCPS:    autoclicker.FallbackMinCPS,
		MaxCPS:    autoclicker.FallbackMaxCPS,
		Randomize: true,
		Left:      Macro{Enabled: true, Hotkey: "F6"},
		Right:     Macro{Hotkey: keycode.NoneLabel},
		Hold: Hold{
			Macro: Macro{Hotkey: keycode.NoneLabel},
			Mode:  autoclicker.HoldSingle,
			CPS:   autoclicker.DefaultHoldCPS,
		},
	}
}

// DefaultPath is settings.json under the user config dir, or the working
// directory when there is none.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		return filepath.Join(".", fileName)
	}
	return filepath.Join(configDir, "veto", fileName)
}

// Store reads and writes one settings file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings. A missing file yields the defaults and
// no error; an unreadable or unparsable file yields the defaults and the
// error, for the caller to log.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read settings %s: %w", s.path, err)
	}
	return Decode(data)
}

// Decode parses a settings document key by key.
func Decode(data []byte) (Settings, error) {
	out := Default()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return out, fmt.Errorf("failed to parse settings: %w", err)
	}

	out.MinCPS = decodeNumber(raw["min_cps"], out.MinCPS)
	out.MaxCPS = decodeNumber(raw["max_cps"], out.MaxCPS)
	out.Randomize = decodeBool(raw["randomize"], out.Randomize)

	out.Left = decodeMacro(raw, "left", out.Left)
	out.Right = decodeMacro(raw, "right", out.Right)
	out.Hold.Macro = decodeMacro(raw, "hold", out.Hold.Macro)

	if mode, err := autoclicker.ParseHoldMode(decodeString(raw["hold_mode"], string(out.Hold.Mode))); err == nil {
		out.Hold.Mode = mode
	}
	out.Hold.CPS = autoclicker.ClampHoldCPS(decodeNumber(raw["hold_cps"], out.Hold.CPS))
	return out, nil
}

func decodeMacro(raw map[string]json.RawMessage, prefix string, def Macro) Macro {
	return Macro{
		Enabled:       decodeBool(raw[prefix+"_enabled"], def.Enabled),
		Hotkey:        decodeString(raw[prefix+"_hotkey_str"], def.Hotkey),
		HotkeyIsMouse: decodeBool(raw[prefix+"_hotkey_is_mouse"], def.HotkeyIsMouse),
	}
}

// decodeNumber accepts 12, 12.5 or "12".
func decodeNumber(msg json.RawMessage, def float64) float64 {
	if len(msg) == 0 {
		return def
	}
	var n float64
	if err := json.Unmarshal(msg, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return def
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return n
}

func decodeBool(msg json.RawMessage, def bool) bool {
	if len(msg) == 0 {
		return def
	}
	var b bool
	if err := json.Unmarshal(msg, &b); err != nil {
		return def
	}
	return b
}

func decodeString(msg json.RawMessage, def string) string {
	if len(msg) == 0 {
		return def
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return def
	}
	return s
}

type document struct {
	MinCPS             string `json:"min_cps"`
	MaxCPS             string `json:"max_cps"`
	Randomize          bool   `json:"randomize"`
	LeftEnabled        bool   `json:"left_enabled"`
	LeftHotkeyStr      string `json:"left_hotkey_str"`
	LeftHotkeyIsMouse  bool   `json:"left_hotkey_is_mouse"`
	RightEnabled       bool   `json:"right_enabled"`
	RightHotkeyStr     string `json:"right_hotkey_str"`
	RightHotkeyIsMouse bool   `json:"right_hotkey_is_mouse"`
	HoldEnabled        bool   `json:"hold_enabled"`
	HoldHotkeyStr      string `json:"hold_hotkey_str"`
	HoldHotkeyIsMouse  bool   `json:"hold_hotkey_is_mouse"`
	HoldMode           string `json:"hold_mode"`
	HoldCPS            string `json:"hold_cps"`
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Encode renders s in the on-disk layout.
func Encode(s Settings) ([]byte, error) {
	doc := document{
		MinCPS:             formatNumber(s.MinCPS),
		MaxCPS:             formatNumber(s.MaxCPS),
		Randomize:          s.Randomize,
		LeftEnabled:        s.Left.Enabled,
		LeftHotkeyStr:      s.Left.Hotkey,
		LeftHotkeyIsMouse:  s.Left.HotkeyIsMouse,
		RightEnabled:       s.Right.Enabled,
		RightHotkeyStr:     s.Right.Hotkey,
		RightHotkeyIsMouse: s.Right.HotkeyIsMouse,
		HoldEnabled:        s.Hold.Enabled,
		HoldHotkeyStr:      s.Hold.Hotkey,
		HoldHotkeyIsMouse:  s.Hold.HotkeyIsMouse,
		HoldMode:           string(s.Hold.Mode),
		HoldCPS:            formatNumber(s.Hold.CPS),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save writes s through a temp file and rename.
func (s *Store) Save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	data, err := Encode(settings)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

// ResolveHotkey turns a stored label into a binding. "None" is unbound;
// anything unparsable, or a mouse label naming a primary button, yields
// fallback.
func ResolveHotkey(label string, isMouse bool, fallback autoclicker.Binding) autoclicker.Binding {
	code, err := keycode.ParseLabel(label)
	if errors.Is(err, keycode.ErrUnbound) {
		return autoclicker.Binding{}
	}
	if err != nil {
		return fallback
	}
	binding := autoclicker.BindingFor(code)
	if binding.IsMouse() != isMouse {
		return fallback
	}
	if binding.IsMouse() && !keycode.IsSideButton(code) {
		return fallback
	}
	return binding
}

// Config builds the controller configuration from s.
func (s Settings) Config() autoclicker.Config {
	cfg := autoclicker.DefaultConfig()
	rate := autoclicker.Rate{Min: s.MinCPS, Max: s.MaxCPS, Randomize: s.Randomize}

	cfg.Left = autoclicker.ClickConfig{
		Enabled: s.Left.Enabled,
		Hotkey:  ResolveHotkey(s.Left.Hotkey, s.Left.HotkeyIsMouse, autoclicker.BindingFor(keycode.KeyF6)),
		Rate:    rate,
	}
	cfg.Right = autoclicker.ClickConfig{
		Enabled: s.Right.Enabled,
		Hotkey:  ResolveHotkey(s.Right.Hotkey, s.Right.HotkeyIsMouse, autoclicker.Binding{}),
		Rate:    rate,
	}
	cfg.Hold = autoclicker.HoldConfig{
		Enabled: s.Hold.Enabled,
		Hotkey:  ResolveHotkey(s.Hold.Hotkey, s.Hold.HotkeyIsMouse, autoclicker.Binding{}),
		Mode:    s.Hold.Mode,
		CPS:     s.Hold.CPS,
	}
	return cfg
}

func macroFrom(enabled bool, hotkey autoclicker.Binding) Macro {
	return Macro{Enabled: enabled, Hotkey: hotkey.String(), HotkeyIsMouse: hotkey.IsMouse()}
}

// FromSnapshot captures the live controller configuration for saving.
func FromSnapshot(snap autoclicker.Snapshot) Settings {
	return Settings{
		MinCPS:    snap.Left.Rate.Min,
		MaxCPS:    snap.Left.Rate.Max,
		Randomize: snap.Left.Rate.Randomize,
		Left:      macroFrom(snap.Left.Enabled, snap.Left.Hotkey),
		Right:     macroFrom(snap.Right.Enabled, snap.Right.Hotkey),
		Hold: Hold{
			Macro: macroFrom(snap.Hold.Enabled, snap.Hold.Hotkey),
			Mode:  snap.Hold.Mode,
			CPS:   snap.Hold.CPS,
		},
	}
}
