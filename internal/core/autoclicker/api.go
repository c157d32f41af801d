package autoclicker

import (
	"fmt"

	"veto/internal/keycode"
)

// State returns the last published state of a macro. Safe from any goroutine.
func (c *Controller) State(id MacroID) State {
	f := c.flags(id)
	if f == nil {
		return StateOff
	}
	state, _ := f.load()
	return state
}

// Enabled reports whether a macro is enabled. Safe from any goroutine.
func (c *Controller) Enabled(id MacroID) bool {
	f := c.flags(id)
	if f == nil {
		return false
	}
	_, enabled := f.load()
	return enabled
}

func (c *Controller) flags(id MacroID) *macroFlags {
	switch id {
	case MacroLeft:
		return &c.left.flags
	case MacroRight:
		return &c.right.flags
	case MacroHold:
		return &c.hold.flags
	default:
		return nil
	}
}

// SetEnabled enables or disables a macro. Disabling stops any running loop
// and leaves the macro OFF.
func (c *Controller) SetEnabled(id MacroID, enabled bool) error {
	if err := validMacro(id); err != nil {
		return err
	}
	ok := c.do(func() {
		switch id {
		case MacroLeft, MacroRight:
			m := c.clickMacro(id)
			if m.enabled == enabled {
				return
			}
			m.enabled = enabled
			m.flags.enabled.Store(enabled)
			if !enabled {
				c.disarmClick(m)
			}
		case MacroHold:
			if c.hold.enabled == enabled {
				return
			}
			c.hold.enabled = enabled
			c.hold.flags.enabled.Store(enabled)
			if !enabled {
				c.disarmHold()
			}
		}
		c.logger.Info("Macro enabled", "macro", id, "enabled", enabled)
		c.syncWatcher()
		c.publish(id)
	})
	if !ok {
		return errStopped("set enabled")
	}
	return nil
}

// Hotkey returns the binding of a macro.
func (c *Controller) Hotkey(id MacroID) Binding {
	var binding Binding
	c.do(func() {
		_, binding = c.hotkeyOf(id)
	})
	return binding
}

// SetHotkey binds a macro directly. The zero Binding unbinds it.
func (c *Controller) SetHotkey(id MacroID, binding Binding) error {
	if err := validMacro(id); err != nil {
		return err
	}
	if binding.IsMouse() && !keycode.IsSideButton(binding.Code) {
		return fmt.Errorf("mouse hotkey must be a side button, got %s", binding)
	}
	ok := c.do(func() {
		if c.capture == id {
			c.capture = ""
		}
		c.setHotkey(id, binding)
		c.syncWatcher()
		c.publish(id)
	})
	if !ok {
		return errStopped("set hotkey")
	}
	return nil
}

// CaptureHotkey binds the next key or side-button press to id. A second
// request for another macro replaces the first.
func (c *Controller) CaptureHotkey(id MacroID) error {
	if err := validMacro(id); err != nil {
		return err
	}
	ok := c.do(func() {
		prev := c.capture
		c.capture = id
		if prev != "" && prev != id {
			c.publish(prev)
		}
		c.logger.Info("Capturing hotkey", "macro", id)
		c.syncWatcher()
		c.publish(id)
	})
	if !ok {
		return errStopped("capture hotkey")
	}
	return nil
}

func (c *Controller) CancelCapture() {
	c.do(func() {
		id := c.capture
		if id == "" {
			return
		}
		c.capture = ""
		c.syncWatcher()
		c.publish(id)
	})
}

// SetMinCPS sets the lower bound of the shared click range and returns the
// resulting range. Max is raised when needed.
func (c *Controller) SetMinCPS(v float64) Rate {
	return c.updateRate(func(r Rate) Rate { return r.withMin(v) })
}

// SetMaxCPS sets the upper bound and lowers Min when needed.
func (c *Controller) SetMaxCPS(v float64) Rate {
	return c.updateRate(func(r Rate) Rate { return r.withMax(v) })
}

func (c *Controller) SetRandomize(on bool) Rate {
	return c.updateRate(func(r Rate) Rate {
		r.Randomize = on
		return r
	})
}

// Rate returns the click range. Running loops pick up changes on their
// next iteration.
func (c *Controller) Rate() Rate {
	return c.left.currentRate()
}

func (c *Controller) updateRate(apply func(Rate) Rate) Rate {
	var next Rate
	ok := c.do(func() {
		next = apply(c.left.currentRate())
		for _, m := range []*clickMacro{c.left, c.right} {
			rate := next
			m.rate.Store(&rate)
			c.publish(m.id)
		}
	})
	if !ok {
		return c.Rate()
	}
	return next
}

// SetHoldMode switches between single and break. A running loop is
// restarted in the new mode.
func (c *Controller) SetHoldMode(mode HoldMode) error {
	if mode != HoldSingle && mode != HoldBreak {
		return fmt.Errorf("invalid hold mode %q", mode)
	}
	ok := c.do(func() {
		if c.hold.mode == mode {
			return
		}
		c.hold.mode = mode
		c.logger.Info("Hold mode", "mode", mode)
		if c.hold.armed() {
			c.startHoldLoop()
		}
		c.publish(MacroHold)
	})
	if !ok {
		return errStopped("set hold mode")
	}
	return nil
}

// SetHoldCPS sets the hold rate, clamped to [1, 5], and returns the value
// in effect.
func (c *Controller) SetHoldCPS(v float64) float64 {
	cps := c.hold.setCPS(v)
	c.do(func() { c.publish(MacroHold) })
	return cps
}

// Snapshot returns the configuration of every macro, for persisting.
func (c *Controller) Snapshot() Snapshot {
	var snap Snapshot
	ok := c.do(func() {
		snap = Snapshot{Left: c.left.config(), Right: c.right.config(), Hold: c.hold.config()}
	})
	if !ok {
		// the goroutine is gone, nothing mutates the macros any more
		snap = Snapshot{Left: c.left.config(), Right: c.right.config(), Hold: c.hold.config()}
	}
	return snap
}
