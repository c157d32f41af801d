package autoclicker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"veto/internal/keycode"
)

type injectorCall struct {
	op     string
	button Button
}

type recordingInjector struct {
	mu    sync.Mutex
	calls []injectorCall
	err   error
	check func(Button)
}

func (r *recordingInjector) record(op string, button Button) error {
	if r.check != nil {
		r.check(button)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, injectorCall{op: op, button: button})
	return r.err
}

func (r *recordingInjector) Click(button Button) error   { return r.record("click", button) }
func (r *recordingInjector) Press(button Button) error   { return r.record("press", button) }
func (r *recordingInjector) Release(button Button) error { return r.record("release", button) }

func (r *recordingInjector) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, call := range r.calls {
		if call.op == op {
			n++
		}
	}
	return n
}

var errTest = errors.New("device gone")

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func fastWait(stop <-chan struct{}, _ time.Duration) bool {
	return sleepWithStop(stop, time.Millisecond)
}

func testConfig(clock *fakeClock) Config {
	cfg := DefaultConfig()
	cfg.Right.Enabled = true
	cfg.Right.Hotkey = BindingFor(keycode.KeyF7)
	cfg.Hold.Hotkey = BindingFor(keycode.KeyF8)
	cfg.Now = clock.Now
	cfg.Wait = fastWait
	return cfg
}

func newTestController(t *testing.T, cfg Config, injector Injector) *Controller {
	t.Helper()
	c, err := NewController(cfg, injector, noopLogger{})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	c.Start()
	t.Cleanup(c.Stop)
	return c
}

// flush waits until every previously submitted event has been handled.
func flush(c *Controller) {
	c.do(func() {})
}

func tap(c *Controller, ev Event) {
	ev.Down = true
	c.SubmitEvent(ev)
	ev.Down = false
	c.SubmitEvent(ev)
	flush(c)
}

func waitForState(t *testing.T, c *Controller, id MacroID, want State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.State(id) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("State(%s) = %s, want %s", id, c.State(id), want)
}

func waitForCount(t *testing.T, r *recordingInjector, op string, atLeast int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if r.count(op) >= atLeast {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("expected at least %d %s calls, got %d", atLeast, op, r.count(op))
}

func TestNewControllerValidatesArguments(t *testing.T) {
	if _, err := NewController(DefaultConfig(), nil, noopLogger{}); err == nil {
		t.Fatalf("expected error for nil injector")
	}
	if _, err := NewController(DefaultConfig(), &recordingInjector{}, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
	cfg := DefaultConfig()
	cfg.Cooldown = -time.Second
	if _, err := NewController(cfg, &recordingInjector{}, noopLogger{}); err == nil {
		t.Fatalf("expected error for negative cooldown")
	}
}

func TestHotkeyTogglesOnceInsideCooldown(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(t, testConfig(clock), &recordingInjector{})

	tap(c, KeyEvent(keycode.KeyF6, true))
	if got := c.State(MacroLeft); got != StateArmed {
		t.Fatalf("State(left) = %s after first toggle, want ARMED", got)
	}

	clock.Advance(50 * time.Millisecond)
	tap(c, KeyEvent(keycode.KeyF6, true))
	if got := c.State(MacroLeft); got != StateArmed {
		t.Fatalf("State(left) = %s after toggle inside cooldown, want ARMED", got)
	}

	clock.Advance(250 * time.Millisecond)
	tap(c, KeyEvent(keycode.KeyF6, true))
	if got := c.State(MacroLeft); got != StateOff {
		t.Fatalf("State(left) = %s after cooldown elapsed, want OFF", got)
	}
}

func TestCooldownIsSharedAcrossMacros(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(t, testConfig(clock), &recordingInjector{})

	tap(c, KeyEvent(keycode.KeyF6, true))
	clock.Advance(100 * time.Millisecond)
	tap(c, KeyEvent(keycode.KeyF7, true))

	if got := c.State(MacroRight); got != StateOff {
		t.Fatalf("State(right) = %s, want OFF inside shared cooldown", got)
	}
}

func TestKeyRepeatDoesNotToggle(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(t, testConfig(clock), &recordingInjector{})

	c.SubmitEvent(KeyEvent(keycode.KeyF6, true))
	flush(c)
	clock.Advance(time.Second)
	c.SubmitEvent(KeyEvent(keycode.KeyF6, true))
	flush(c)

	if got := c.State(MacroLeft); got != StateArmed {
		t.Fatalf("State(left) = %s after auto-repeat, want ARMED", got)
	}

	c.SubmitEvent(KeyEvent(keycode.KeyF6, false))
	clock.Advance(time.Second)
	tap(c, KeyEvent(keycode.KeyF6, true))
	if got := c.State(MacroLeft); got != StateOff {
		t.Fatalf("State(left) = %s after fresh press, want OFF", got)
	}
}

func TestDisabledMacroIgnoresHotkey(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	cfg.Hold.Enabled = false
	c := newTestController(t, cfg, &recordingInjector{})

	tap(c, KeyEvent(keycode.KeyF8, true))
	if got := c.State(MacroHold); got != StateOff {
		t.Fatalf("State(hold) = %s, want OFF while disabled", got)
	}
}

func TestArmedTriggerClicksUntilRelease(t *testing.T) {
	clock := newFakeClock()
	injector := &recordingInjector{}
	c := newTestController(t, testConfig(clock), injector)

	tap(c, KeyEvent(keycode.KeyF6, true))
	c.SubmitEvent(ButtonEvent(keycode.BTNLeft, true))
	flush(c)
	if got := c.State(MacroLeft); got != StateClicking {
		t.Fatalf("State(left) = %s, want CLICKING", got)
	}
	waitForCount(t, injector, "click", 3)

	c.SubmitEvent(ButtonEvent(keycode.BTNLeft, false))
	flush(c)
	if got := c.State(MacroLeft); got != StateArmed {
		t.Fatalf("State(left) = %s after release, want ARMED", got)
	}

	clicks := injector.count("click")
	time.Sleep(20 * time.Millisecond)
	if got := injector.count("click"); got != clicks {
		t.Fatalf("clicks continued after release: %d -> %d", clicks, got)
	}
}

func TestRightTriggerOnlyDrivesRightMacro(t *testing.T) {
	clock := newFakeClock()
	injector := &recordingInjector{}
	c := newTestController(t, testConfig(clock), injector)

	tap(c, KeyEvent(keycode.KeyF7, true))
	c.SubmitEvent(ButtonEvent(keycode.BTNLeft, true))
	flush(c)
	if got := c.State(MacroRight); got != StateArmed {
		t.Fatalf("State(right) = %s after left press, want ARMED", got)
	}

	c.SubmitEvent(ButtonEvent(keycode.BTNRight, true))
	flush(c)
	waitForCount(t, injector, "click", 1)

	injector.mu.Lock()
	first := injector.calls[0]
	injector.mu.Unlock()
	if first.button != ButtonRight {
		t.Fatalf("clicked %s, want right", first.button)
	}
}

func TestDisableWhileClickingStopsLoop(t *testing.T) {
	clock := newFakeClock()
	injector := &recordingInjector{}
	c := newTestController(t, testConfig(clock), injector)

	tap(c, KeyEvent(keycode.KeyF6, true))
	c.SubmitEvent(ButtonEvent(keycode.BTNLeft, true))
	waitForCount(t, injector, "click", 1)

	if err := c.SetEnabled(MacroLeft, false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if got := c.State(MacroLeft); got != StateOff {
		t.Fatalf("State(left) = %s after disable, want OFF", got)
	}
	if c.Enabled(MacroLeft) {
		t.Fatalf("expected left to report disabled")
	}

	clicks := injector.count("click")
	time.Sleep(20 * time.Millisecond)
	if got := injector.count("click"); got != clicks {
		t.Fatalf("clicks continued after disable: %d -> %d", clicks, got)
	}
}

func TestSuppressedEventsDoNotStartClicking(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(t, testConfig(clock), &recordingInjector{})

	tap(c, KeyEvent(keycode.KeyF6, true))

	release := c.suppressor.Acquire(ButtonLeft)
	c.SubmitEvent(ButtonEvent(keycode.BTNLeft, true))
	flush(c)
	release()

	if got := c.State(MacroLeft); got != StateArmed {
		t.Fatalf("State(left) = %s after suppressed press, want ARMED", got)
	}
}

func TestInjectorFailureReturnsToArmed(t *testing.T) {
	clock := newFakeClock()
	injector := &recordingInjector{err: errTest}
	c := newTestController(t, testConfig(clock), injector)

	tap(c, KeyEvent(keycode.KeyF6, true))
	c.SubmitEvent(ButtonEvent(keycode.BTNLeft, true))
	flush(c)

	waitForState(t, c, MacroLeft, StateArmed)
	if got := injector.count("click"); got != 1 {
		t.Fatalf("click calls = %d, want 1", got)
	}
}

func TestClickSpacingAtOneCPS(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	cfg.Left.Rate = Rate{Min: 1, Max: 1}

	var (
		mu    sync.Mutex
		waits []time.Duration
	)
	cfg.Wait = func(stop <-chan struct{}, d time.Duration) bool {
		mu.Lock()
		waits = append(waits, d)
		n := len(waits)
		mu.Unlock()
		if n >= 3 {
			<-stop
			return false
		}
		return true
	}

	injector := &recordingInjector{}
	c := newTestController(t, cfg, injector)

	tap(c, KeyEvent(keycode.KeyF6, true))
	c.SubmitEvent(ButtonEvent(keycode.BTNLeft, true))
	waitForCount(t, injector, "click", 3)

	mu.Lock()
	defer mu.Unlock()
	for i, d := range waits {
		if d != time.Second {
			t.Fatalf("wait %d = %v, want 1s", i, d)
		}
	}
}

func TestCaptureBindsNextKey(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(t, testConfig(clock), &recordingInjector{})

	if err := c.CaptureHotkey(MacroRight); err != nil {
		t.Fatalf("CaptureHotkey() error = %v", err)
	}

	// primary buttons are not bindable and pass through
	tap(c, ButtonEvent(keycode.BTNLeft, true))
	if got := c.Hotkey(MacroRight); got.Code != keycode.KeyF7 {
		t.Fatalf("Hotkey(right) = %s, capture should ignore left button", got)
	}

	tap(c, KeyEvent(keycode.KeyA, true))
	want := Binding{Kind: BindingKey, Code: keycode.KeyA}
	if got := c.Hotkey(MacroRight); got != want {
		t.Fatalf("Hotkey(right) = %s, want %s", got, want)
	}
	if got := c.State(MacroRight); got != StateOff {
		t.Fatalf("captured key must not toggle, State(right) = %s", got)
	}

	clock.Advance(time.Second)
	tap(c, KeyEvent(keycode.KeyA, true))
	if got := c.State(MacroRight); got != StateArmed {
		t.Fatalf("State(right) = %s after new hotkey, want ARMED", got)
	}
}

func TestCaptureBindsSideButton(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(t, testConfig(clock), &recordingInjector{})

	if err := c.CaptureHotkey(MacroLeft); err != nil {
		t.Fatalf("CaptureHotkey() error = %v", err)
	}
	tap(c, ButtonEvent(keycode.BTNSide, true))

	got := c.Hotkey(MacroLeft)
	if !got.IsMouse() || got.Code != keycode.BTNSide {
		t.Fatalf("Hotkey(left) = %#v, want Mouse 4", got)
	}
	if got.String() != "Mouse 4" {
		t.Fatalf("Hotkey(left).String() = %q, want Mouse 4", got.String())
	}
}

func TestCancelCaptureKeepsHotkey(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(t, testConfig(clock), &recordingInjector{})

	if err := c.CaptureHotkey(MacroLeft); err != nil {
		t.Fatalf("CaptureHotkey() error = %v", err)
	}
	c.CancelCapture()
	tap(c, KeyEvent(keycode.KeyA, true))

	if got := c.Hotkey(MacroLeft); got.Code != keycode.KeyF6 {
		t.Fatalf("Hotkey(left) = %s, want F6", got)
	}
}

func TestSetHotkeyRejectsPrimaryMouseButtons(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(t, testConfig(clock), &recordingInjector{})

	if err := c.SetHotkey(MacroLeft, BindingFor(keycode.BTNLeft)); err == nil {
		t.Fatalf("expected error binding the left button")
	}
	if err := c.SetHotkey(MacroLeft, BindingFor(keycode.BTNExtra)); err != nil {
		t.Fatalf("SetHotkey() error = %v", err)
	}
	if err := c.SetHotkey("middle", Binding{}); err == nil {
		t.Fatalf("expected error for unknown macro")
	}
}

func TestRateEditsClampOppositeBound(t *testing.T) {
	clock := newFakeClock()
	c := newTestController(t, testConfig(clock), &recordingInjector{})

	if got := c.SetMinCPS(18); got.Min != 18 || got.Max != 18 {
		t.Fatalf("SetMinCPS(18) = %+v, want 18/18", got)
	}
	if got := c.SetMaxCPS(4); got.Min != 4 || got.Max != 4 {
		t.Fatalf("SetMaxCPS(4) = %+v, want 4/4", got)
	}
	if got := c.SetMaxCPS(50); got.Max != MaxCPS {
		t.Fatalf("SetMaxCPS(50).Max = %v, want %v", got.Max, MaxCPS)
	}
	if got := c.SetRandomize(false); got.Randomize {
		t.Fatalf("SetRandomize(false) left randomization on")
	}
	if got := c.Snapshot().Right.Rate; got != c.Rate() {
		t.Fatalf("right rate %+v differs from shared rate %+v", got, c.Rate())
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []Status
}

func (o *recordingObserver) MacroChanged(status Status) {
	o.mu.Lock()
	o.statuses = append(o.statuses, status)
	o.mu.Unlock()
}

func (o *recordingObserver) RateSampled(MacroID, float64) {}

func TestStatusIsPublishedThroughTaskQueue(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	observer := &recordingObserver{}
	cfg.Observer = observer
	c := newTestController(t, cfg, &recordingInjector{})

	c.Tasks().Drain()
	observer.mu.Lock()
	observer.statuses = nil
	observer.mu.Unlock()

	tap(c, KeyEvent(keycode.KeyF6, true))

	observer.mu.Lock()
	if len(observer.statuses) != 0 {
		observer.mu.Unlock()
		t.Fatalf("observer called before the task queue was drained")
	}
	observer.mu.Unlock()

	c.Tasks().Drain()

	observer.mu.Lock()
	defer observer.mu.Unlock()
	if len(observer.statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(observer.statuses))
	}
	st := observer.statuses[0]
	if st.Macro != MacroLeft || st.State != StateArmed || !st.Enabled {
		t.Fatalf("unexpected status %+v", st)
	}
}

type recordingWatcher struct {
	mu        sync.Mutex
	bindings  []Binding
	capturing bool
}

func (w *recordingWatcher) WatchBindings(bindings []Binding, capturing bool) {
	w.mu.Lock()
	w.bindings = append([]Binding(nil), bindings...)
	w.capturing = capturing
	w.mu.Unlock()
}

func TestWatcherFollowsEnabledHotkeys(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	watcher := &recordingWatcher{}
	cfg.Watcher = watcher
	c := newTestController(t, cfg, &recordingInjector{})

	watcher.mu.Lock()
	if len(watcher.bindings) != 2 {
		t.Fatalf("watched %v, want left and right hotkeys", watcher.bindings)
	}
	watcher.mu.Unlock()

	if err := c.SetEnabled(MacroRight, false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if err := c.CaptureHotkey(MacroLeft); err != nil {
		t.Fatalf("CaptureHotkey() error = %v", err)
	}

	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if len(watcher.bindings) != 1 || watcher.bindings[0].Code != keycode.KeyF6 {
		t.Fatalf("watched %v, want only F6", watcher.bindings)
	}
	if !watcher.capturing {
		t.Fatalf("expected watcher to be told about capture")
	}
}

func TestCapturedKeyWithLostReleaseTogglesNextPress(t *testing.T) {
	clock := newFakeClock()
	cfg := testConfig(clock)
	cfg.Watcher = &recordingWatcher{}
	cfg.Hold.Enabled = true
	c := newTestController(t, cfg, &recordingInjector{})

	if err := c.CaptureHotkey(MacroHold); err != nil {
		t.Fatalf("CaptureHotkey() error = %v", err)
	}
	// the grab swap after capture sends the release to another window
	c.SubmitEvent(KeyEvent(keycode.KeyF9, true))
	flush(c)
	if got := c.Hotkey(MacroHold); got.Code != keycode.KeyF9 {
		t.Fatalf("Hotkey(hold) = %s, want F9", got)
	}

	clock.Advance(time.Second)
	tap(c, KeyEvent(keycode.KeyF9, true))
	waitForState(t, c, MacroHold, StateActive)
}

func TestRequestsAfterStopFail(t *testing.T) {
	clock := newFakeClock()
	c, err := NewController(testConfig(clock), &recordingInjector{}, noopLogger{})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	c.Start()
	c.Stop()

	if c.SubmitEvent(KeyEvent(keycode.KeyF6, true)) {
		t.Fatalf("SubmitEvent() accepted an event after Stop")
	}
	if err := c.SetEnabled(MacroLeft, false); err == nil {
		t.Fatalf("expected SetEnabled() to fail after Stop")
	}
	if got := c.Snapshot().Left.Hotkey.Code; got != keycode.KeyF6 {
		t.Fatalf("Snapshot() after Stop lost the left hotkey: %d", got)
	}
}
