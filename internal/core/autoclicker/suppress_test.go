package autoclicker

import (
	"testing"

	"veto/internal/keycode"
)

func TestSuppressorTokenPerButton(t *testing.T) {
	var s Suppressor
	release := s.Acquire(ButtonLeft)

	if !s.Suppressed(ButtonEvent(keycode.BTNLeft, true)) {
		t.Fatalf("expected left button to be suppressed")
	}
	if s.Suppressed(ButtonEvent(keycode.BTNRight, true)) {
		t.Fatalf("right button must not be suppressed by a left token")
	}
	if s.Suppressed(KeyEvent(keycode.KeyF6, true)) {
		t.Fatalf("keys are never suppressed")
	}

	release()
	release()
	if s.Suppressed(ButtonEvent(keycode.BTNLeft, false)) {
		t.Fatalf("expected token to be released")
	}

	first := s.Acquire(ButtonRight)
	second := s.Acquire(ButtonRight)
	first()
	if !s.Suppressed(ButtonEvent(keycode.BTNRight, true)) {
		t.Fatalf("expected right to stay suppressed while a token is held")
	}
	second()
	if s.Suppressed(ButtonEvent(keycode.BTNRight, true)) {
		t.Fatalf("expected right to be released")
	}
}

func TestSuppressedInjectorHoldsTokenDuringCall(t *testing.T) {
	s := &Suppressor{}
	var during []bool
	next := &recordingInjector{check: func(button Button) {
		during = append(during, s.Suppressed(ButtonEvent(button.Code(), true)))
	}}
	injector := suppressedInjector{next: next, suppressor: s}

	if err := injector.Click(ButtonLeft); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if err := injector.Press(ButtonRight); err != nil {
		t.Fatalf("Press() error = %v", err)
	}
	if err := injector.Release(ButtonRight); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	for i, held := range during {
		if !held {
			t.Fatalf("call %d ran without a suppression token", i)
		}
	}
	if s.Suppressed(ButtonEvent(keycode.BTNLeft, true)) || s.Suppressed(ButtonEvent(keycode.BTNRight, true)) {
		t.Fatalf("tokens leaked after calls returned")
	}
}
