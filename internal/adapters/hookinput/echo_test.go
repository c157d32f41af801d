package hookinput

import (
	"testing"
	"time"

	"veto/internal/core/autoclicker"
	"veto/internal/keycode"
)

func TestEchoesDropSyntheticEdgesOnce(t *testing.T) {
	e := NewEchoes()
	e.expect(autoclicker.ButtonLeft, true)
	e.expect(autoclicker.ButtonLeft, false)

	if !e.take(autoclicker.ButtonEvent(keycode.BTNLeft, true)) {
		t.Fatalf("expected synthetic press to be dropped")
	}
	if !e.take(autoclicker.ButtonEvent(keycode.BTNLeft, false)) {
		t.Fatalf("expected synthetic release to be dropped")
	}
	if e.take(autoclicker.ButtonEvent(keycode.BTNLeft, false)) {
		t.Fatalf("a second release is physical and must pass")
	}
}

func TestEchoesKeepButtonsApart(t *testing.T) {
	e := NewEchoes()
	e.expect(autoclicker.ButtonLeft, false)

	if e.take(autoclicker.ButtonEvent(keycode.BTNRight, false)) {
		t.Fatalf("right release must not match a left echo")
	}
	if e.take(autoclicker.KeyEvent(keycode.KeyF6, false)) {
		t.Fatalf("keys are never echoes")
	}
	if !e.take(autoclicker.ButtonEvent(keycode.BTNLeft, false)) {
		t.Fatalf("expected left echo to remain pending")
	}
}

func TestEchoesExpire(t *testing.T) {
	now := time.Unix(100, 0)
	e := NewEchoes()
	e.now = func() time.Time { return now }
	e.expect(autoclicker.ButtonLeft, false)

	now = now.Add(echoWindow + time.Millisecond)
	if e.take(autoclicker.ButtonEvent(keycode.BTNLeft, false)) {
		t.Fatalf("expired echo must not swallow a physical release")
	}
	if len(e.pending) != 0 {
		t.Fatalf("pending = %v, want empty", e.pending)
	}
}

func TestNilEchoesPassEverything(t *testing.T) {
	var e *Echoes
	e.expect(autoclicker.ButtonLeft, true)
	if e.take(autoclicker.ButtonEvent(keycode.BTNLeft, true)) {
		t.Fatalf("nil Echoes must not drop events")
	}
}

func TestEchoesForgetFailedInjection(t *testing.T) {
	e := NewEchoes()
	e.expect(autoclicker.ButtonRight, true)
	e.forget(autoclicker.ButtonRight, true)

	if e.take(autoclicker.ButtonEvent(keycode.BTNRight, true)) {
		t.Fatalf("forgotten edge must not drop a physical press")
	}
}
