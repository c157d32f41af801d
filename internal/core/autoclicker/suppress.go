package autoclicker

import "sync/atomic"

// Suppressor marks buttons that currently have a synthetic input call in
// flight so hook events for them can be told apart from physical ones.
type Suppressor struct {
	left  atomic.Int32
	right atomic.Int32
}

func (s *Suppressor) counter(button Button) *atomic.Int32 {
	if button == ButtonRight {
		return &s.right
	}
	return &s.left
}

// Acquire takes a token for button. The returned func releases it and is
// safe to call more than once.
func (s *Suppressor) Acquire(button Button) (release func()) {
	c := s.counter(button)
	c.Add(1)
	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			c.Add(-1)
		}
	}
}

// Suppressed reports whether ev belongs to a button holding a token.
func (s *Suppressor) Suppressed(ev Event) bool {
	if ev.Kind != EventButton {
		return false
	}
	switch ev.Code {
	case ButtonLeft.Code():
		return s.left.Load() > 0
	case ButtonRight.Code():
		return s.right.Load() > 0
	default:
		return false
	}
}

// suppressedInjector wraps every call in a suppression token.
type suppressedInjector struct {
	next       Injector
	suppressor *Suppressor
}

func (i suppressedInjector) Click(button Button) error {
	release := i.suppressor.Acquire(button)
	defer release()
	return i.next.Click(button)
}

func (i suppressedInjector) Press(button Button) error {
	release := i.suppressor.Acquire(button)
	defer release()
	return i.next.Press(button)
}

func (i suppressedInjector) Release(button Button) error {
	release := i.suppressor.Acquire(button)
	defer release()
	return i.next.Release(button)
}
