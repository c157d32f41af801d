package autoclicker

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

type MacroID string

const (
	MacroLeft  MacroID = "left"
	MacroRight MacroID = "right"
	MacroHold  MacroID = "hold"
)

// dispatch order for hotkey matching
var macroOrder = []MacroID{MacroLeft, MacroRight, MacroHold}

type State uint32

const (
	StateOff State = iota
	StateArmed
	StateClicking
	StateActive
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StateArmed:
		return "ARMED"
	case StateClicking:
		return "CLICKING"
	case StateActive:
		return "ACTIVE"
	default:
		return fmt.Sprintf("State(%d)", uint32(s))
	}
}

type HoldMode string

const (
	HoldSingle HoldMode = "single"
	HoldBreak  HoldMode = "break"
)

func ParseHoldMode(value string) (HoldMode, error) {
	switch HoldMode(strings.ToLower(strings.TrimSpace(value))) {
	case HoldSingle:
		return HoldSingle, nil
	case HoldBreak:
		return HoldBreak, nil
	default:
		return HoldSingle, fmt.Errorf("invalid hold mode %q (expected single|break)", value)
	}
}

// Status is published to the Observer after every transition.
type Status struct {
	Macro     MacroID
	State     State
	Enabled   bool
	Hotkey    Binding
	Capturing bool
	// CPS is the configured hold rate, or the midpoint of the click range.
	CPS float64
}

// Observer receives state changes. Calls are delivered through the
// controller's TaskQueue, so they run on whichever goroutine drains it.
type Observer interface {
	MacroChanged(status Status)
	RateSampled(macro MacroID, cps float64)
}

type nopObserver struct{}

func (nopObserver) MacroChanged(Status)          {}
func (nopObserver) RateSampled(MacroID, float64) {}

// ClickConfig is the persisted part of a click macro.
type ClickConfig struct {
	Enabled bool
	Hotkey  Binding
	Rate    Rate
}

// HoldConfig is the persisted part of the hold macro.
type HoldConfig struct {
	Enabled bool
	Hotkey  Binding
	Mode    HoldMode
	CPS     float64
}

// Snapshot is the current configuration of every macro.
type Snapshot struct {
	Left  ClickConfig
	Right ClickConfig
	Hold  HoldConfig
}

// loop is the handle of one running emission goroutine.
type loop struct {
	id     string
	stopCh chan struct{}
	doneCh chan struct{}
}

func newLoop(id string) *loop {
	return &loop{id: id, stopCh: make(chan struct{}), doneCh: make(chan struct{})}
}

// stop signals the goroutine and waits for it to return.
func (l *loop) stop() {
	close(l.stopCh)
	<-l.doneCh
}

// macroFlags mirrors state for lock-free reads from other goroutines.
type macroFlags struct {
	state   atomic.Uint32
	enabled atomic.Bool
}

func (f *macroFlags) load() (State, bool) {
	return State(f.state.Load()), f.enabled.Load()
}

type clickMacro struct {
	id     MacroID
	button Button

	enabled bool
	state   State
	hotkey  Binding
	rate    atomic.Pointer[Rate]
	loop    *loop

	flags macroFlags
}

func newClickMacro(id MacroID, button Button, cfg ClickConfig) *clickMacro {
	m := &clickMacro{id: id, button: button, enabled: cfg.Enabled, hotkey: cfg.Hotkey}
	rate := cfg.Rate.normalized()
	rate.Min = clampCPS(rate.Min, FallbackMinCPS)
	rate.Max = clampCPS(rate.Max, FallbackMaxCPS)
	m.rate.Store(&rate)
	m.flags.enabled.Store(cfg.Enabled)
	return m
}

func (m *clickMacro) currentRate() Rate {
	return *m.rate.Load()
}

func (m *clickMacro) config() ClickConfig {
	return ClickConfig{Enabled: m.enabled, Hotkey: m.hotkey, Rate: m.currentRate()}
}

type holdMacro struct {
	enabled bool
	state   State
	hotkey  Binding
	mode    HoldMode
	cpsBits atomic.Uint64
	loop    *loop

	flags macroFlags
}

func newHoldMacro(cfg HoldConfig) *holdMacro {
	m := &holdMacro{enabled: cfg.Enabled, hotkey: cfg.Hotkey, mode: cfg.Mode}
	if m.mode != HoldBreak {
		m.mode = HoldSingle
	}
	m.setCPS(cfg.CPS)
	m.flags.enabled.Store(cfg.Enabled)
	return m
}

func (m *holdMacro) setCPS(v float64) float64 {
	v = ClampHoldCPS(v)
	m.cpsBits.Store(math.Float64bits(v))
	return v
}

func (m *holdMacro) cps() float64 {
	return math.Float64frombits(m.cpsBits.Load())
}

func (m *holdMacro) config() HoldConfig {
	return HoldConfig{Enabled: m.enabled, Hotkey: m.hotkey, Mode: m.mode, CPS: m.cps()}
}

// armed reports whether the hold macro is in ARMED or ACTIVE.
func (m *holdMacro) armed() bool {
	return m.state == StateArmed || m.state == StateActive
}
