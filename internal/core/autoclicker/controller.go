package autoclicker

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"veto/internal/keycode"
)

type Config struct {
	Left  ClickConfig
	Right ClickConfig
	Hold  HoldConfig

	// Cooldown is the window after an arm/disarm toggle during which further
	// hotkey toggles on any macro are ignored. Zero selects DefaultCooldown.
	Cooldown time.Duration

	Observer Observer
	Tasks    *TaskQueue
	Watcher  BindingWatcher

	// test hooks
	Now  func() time.Time
	Wait func(stop <-chan struct{}, d time.Duration) bool
}

// DefaultConfig is the state a fresh install starts in: left enabled on F6,
// right and hold disabled and unbound.
func DefaultConfig() Config {
	return Config{
		Left: ClickConfig{
			Enabled: true,
			Hotkey:  BindingFor(keycode.KeyF6),
			Rate:    DefaultRate(),
		},
		Right: ClickConfig{Rate: DefaultRate()},
		Hold:  HoldConfig{Mode: HoldSingle, CPS: DefaultHoldCPS},
	}
}

type pressKey struct {
	kind EventKind
	code uint16
}

// Controller owns every macro. All state changes run on a single goroutine
// fed through inbox: hook events, UI requests and loop exits are messages,
// which keeps at most one emission loop per macro.
type Controller struct {
	injector   Injector
	suppressor *Suppressor
	logger     Logger
	observer   Observer
	tasks      *TaskQueue
	watcher    BindingWatcher
	cooldown   time.Duration
	now        func() time.Time
	wait       func(stop <-chan struct{}, d time.Duration) bool

	left  *clickMacro
	right *clickMacro
	hold  *holdMacro

	// owned by the run goroutine
	capture    MacroID
	lastToggle time.Time
	pressed    map[pressKey]struct{}
	watched    []Binding
	watchedCap bool
	watchedSet bool

	inbox     chan func()
	stopCh    chan struct{}
	doneCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewController(cfg Config, injector Injector, logger Logger) (*Controller, error) {
	if injector == nil {
		return nil, fmt.Errorf("injector is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if cfg.Cooldown < 0 {
		return nil, fmt.Errorf("cooldown must be >= 0")
	}

	c := &Controller{
		suppressor: &Suppressor{},
		logger:     logger,
		observer:   cfg.Observer,
		tasks:      cfg.Tasks,
		watcher:    cfg.Watcher,
		cooldown:   cfg.Cooldown,
		now:        cfg.Now,
		wait:       cfg.Wait,
		left:       newClickMacro(MacroLeft, ButtonLeft, cfg.Left),
		right:      newClickMacro(MacroRight, ButtonRight, cfg.Right),
		hold:       newHoldMacro(cfg.Hold),
		pressed:    make(map[pressKey]struct{}),
		inbox:      make(chan func(), 256),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	c.injector = suppressedInjector{next: injector, suppressor: c.suppressor}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.tasks == nil {
		c.tasks = NewTaskQueue()
	}
	if c.cooldown == 0 {
		c.cooldown = DefaultCooldown
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.wait == nil {
		c.wait = sleepWithStop
	}
	return c, nil
}

// Tasks is the queue status updates are posted to.
func (c *Controller) Tasks() *TaskQueue {
	return c.tasks
}

// Start launches the controller goroutine. Requests made before Start
// block until it runs.
func (c *Controller) Start() {
	c.startOnce.Do(func() {
		go c.run()
		c.do(func() {
			c.syncWatcher()
			c.publishAll()
		})
	})
}

// Stop disarms every macro, waits for all emission loops to return and then
// stops the controller goroutine.
func (c *Controller) Stop() {
	c.startOnce.Do(func() {
		go c.run()
	})
	c.stopOnce.Do(func() {
		c.do(func() {
			c.capture = ""
			c.disarmClick(c.left)
			c.disarmClick(c.right)
			c.disarmHold()
		})
		close(c.stopCh)
		<-c.doneCh
	})
}

func (c *Controller) run() {
	defer close(c.doneCh)
	for {
		select {
		case <-c.stopCh:
			return
		case fn := <-c.inbox:
			fn()
		}
	}
}

// do runs fn on the controller goroutine and waits for it. It reports false
// once the controller has stopped.
func (c *Controller) do(fn func()) bool {
	done := make(chan struct{})
	select {
	case c.inbox <- func() { fn(); close(done) }:
	case <-c.doneCh:
		return false
	}
	select {
	case <-done:
		return true
	case <-c.doneCh:
		return false
	}
}

// SubmitEvent queues a hook event. Events for a button with a synthetic
// input call in flight are dropped. It reports false after Stop.
func (c *Controller) SubmitEvent(ev Event) bool {
	if c.suppressor.Suppressed(ev) {
		return true
	}
	select {
	case <-c.stopCh:
		return false
	default:
	}
	select {
	case c.inbox <- func() { c.handleEvent(ev) }:
		return true
	case <-c.stopCh:
		return false
	}
}

func (c *Controller) handleEvent(ev Event) {
	key := pressKey{kind: ev.Kind, code: ev.Code}
	if ev.Down {
		if _, held := c.pressed[key]; held {
			return
		}
		c.pressed[key] = struct{}{}
	} else {
		delete(c.pressed, key)
	}

	if ev.Down && c.capture != "" && capturable(ev) {
		c.bindCaptured(ev)
		return
	}

	if ev.Down {
		for _, id := range macroOrder {
			enabled, hotkey := c.hotkeyOf(id)
			if !enabled || !hotkey.matches(ev) {
				continue
			}
			c.toggleArmed(id)
			return
		}
	}

	if ev.Kind != EventButton {
		return
	}
	for _, m := range []*clickMacro{c.left, c.right} {
		if ev.Code == m.button.Code() {
			c.handleTrigger(m, ev.Down)
		}
	}
}

// capturable reports whether ev can become a hotkey: any key, or a mouse
// side button.
func capturable(ev Event) bool {
	if ev.Kind == EventKey {
		return true
	}
	return keycode.IsSideButton(ev.Code)
}

func (c *Controller) bindCaptured(ev Event) {
	id := c.capture
	c.capture = ""
	binding := BindingFor(ev.Code)
	if ev.Kind == EventKey {
		binding = Binding{Kind: BindingKey, Code: ev.Code}
	}
	c.setHotkey(id, binding)
	c.logger.Info("Captured hotkey", "macro", id, "hotkey", binding.String())
	c.syncWatcher()
	c.publish(id)
}

func (c *Controller) hotkeyOf(id MacroID) (bool, Binding) {
	switch id {
	case MacroLeft:
		return c.left.enabled, c.left.hotkey
	case MacroRight:
		return c.right.enabled, c.right.hotkey
	case MacroHold:
		return c.hold.enabled, c.hold.hotkey
	default:
		return false, Binding{}
	}
}

func (c *Controller) setHotkey(id MacroID, binding Binding) {
	switch id {
	case MacroLeft:
		c.left.hotkey = binding
	case MacroRight:
		c.right.hotkey = binding
	case MacroHold:
		c.hold.hotkey = binding
	}
}

func (c *Controller) toggleArmed(id MacroID) {
	now := c.now()
	if !c.lastToggle.IsZero() && now.Sub(c.lastToggle) < c.cooldown {
		c.logger.Debug("Toggle ignored inside cooldown", "macro", id)
		return
	}
	c.lastToggle = now

	switch id {
	case MacroLeft:
		c.toggleClick(c.left)
	case MacroRight:
		c.toggleClick(c.right)
	case MacroHold:
		if c.hold.armed() {
			c.disarmHold()
		} else {
			c.armHold()
		}
	}
}

func (c *Controller) toggleClick(m *clickMacro) {
	if m.state == StateOff {
		c.setClickState(m, StateArmed)
		return
	}
	c.disarmClick(m)
}

func (c *Controller) handleTrigger(m *clickMacro, down bool) {
	if !m.enabled {
		return
	}
	switch {
	case down && m.state == StateArmed:
		c.startClickLoop(m)
		c.setClickState(m, StateClicking)
	case !down && m.state == StateClicking:
		c.stopClickLoop(m)
		c.setClickState(m, StateArmed)
	}
}

func (c *Controller) startClickLoop(m *clickMacro) {
	c.stopClickLoop(m)
	l := newLoop(uuid.NewString())
	m.loop = l
	go c.runClickLoop(m, l)
}

func (c *Controller) stopClickLoop(m *clickMacro) {
	if m.loop == nil {
		return
	}
	m.loop.stop()
	m.loop = nil
}

func (c *Controller) disarmClick(m *clickMacro) {
	c.stopClickLoop(m)
	c.setClickState(m, StateOff)
}

func (c *Controller) setClickState(m *clickMacro, state State) {
	if m.state == state {
		return
	}
	c.logger.Info("Macro state", "macro", m.id, "from", m.state, "to", state)
	m.state = state
	m.flags.state.Store(uint32(state))
	c.publish(m.id)
}

func (c *Controller) armHold() {
	c.setHoldState(StateArmed)
	c.startHoldLoop()
}

func (c *Controller) startHoldLoop() {
	c.stopHoldLoop()
	l := newLoop(uuid.NewString())
	c.hold.loop = l
	if c.hold.mode == HoldBreak {
		go c.runHoldBreakLoop(l)
	} else {
		go c.runHoldSingleLoop(c.hold, l)
	}
	c.setHoldState(StateActive)
}

func (c *Controller) stopHoldLoop() {
	if c.hold.loop == nil {
		return
	}
	c.hold.loop.stop()
	c.hold.loop = nil
	if c.hold.state == StateActive {
		c.setHoldState(StateArmed)
	}
}

func (c *Controller) disarmHold() {
	c.stopHoldLoop()
	c.setHoldState(StateOff)
}

func (c *Controller) setHoldState(state State) {
	if c.hold.state == state {
		return
	}
	c.logger.Info("Macro state", "macro", MacroHold, "from", c.hold.state, "to", state)
	c.hold.state = state
	c.hold.flags.state.Store(uint32(state))
	c.publish(MacroHold)
}

func (c *Controller) handleLoopExit(id MacroID, l *loop) {
	switch id {
	case MacroLeft, MacroRight:
		m := c.clickMacro(id)
		if m == nil || m.loop != l {
			return
		}
		<-l.doneCh
		m.loop = nil
		if m.state == StateClicking {
			c.setClickState(m, StateArmed)
		}
	case MacroHold:
		if c.hold.loop != l {
			return
		}
		<-l.doneCh
		c.hold.loop = nil
		if c.hold.state == StateActive {
			c.setHoldState(StateArmed)
		}
	}
}

func (c *Controller) clickMacro(id MacroID) *clickMacro {
	switch id {
	case MacroLeft:
		return c.left
	case MacroRight:
		return c.right
	default:
		return nil
	}
}

func (c *Controller) status(id MacroID) Status {
	st := Status{Macro: id, Capturing: c.capture == id}
	switch id {
	case MacroLeft, MacroRight:
		m := c.clickMacro(id)
		st.State, st.Enabled, st.Hotkey = m.state, m.enabled, m.hotkey
		st.CPS = m.currentRate().Midpoint()
	case MacroHold:
		st.State, st.Enabled, st.Hotkey = c.hold.state, c.hold.enabled, c.hold.hotkey
		st.CPS = c.hold.cps()
	}
	return st
}

func (c *Controller) publish(id MacroID) {
	st := c.status(id)
	observer := c.observer
	c.tasks.Post(func() { observer.MacroChanged(st) })
}

func (c *Controller) publishAll() {
	for _, id := range macroOrder {
		c.publish(id)
	}
}

// syncWatcher hands the hotkeys of enabled macros to a grabbing hook.
// Changing the grab set can route a held key's release elsewhere, so keys
// and side buttons recorded as held are forgotten when it does.
func (c *Controller) syncWatcher() {
	if c.watcher == nil {
		return
	}
	bindings := make([]Binding, 0, len(macroOrder))
	for _, id := range macroOrder {
		enabled, hotkey := c.hotkeyOf(id)
		if enabled && !hotkey.IsZero() {
			bindings = append(bindings, hotkey)
		}
	}
	capturing := c.capture != ""
	if c.watchedSet && capturing == c.watchedCap && sameBindings(bindings, c.watched) {
		return
	}
	c.watched, c.watchedCap, c.watchedSet = bindings, capturing, true
	for key := range c.pressed {
		if capturable(Event{Kind: key.kind, Code: key.code}) {
			delete(c.pressed, key)
		}
	}
	c.watcher.WatchBindings(bindings, capturing)
}

func sameBindings(a, b []Binding) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func validMacro(id MacroID) error {
	switch id {
	case MacroLeft, MacroRight, MacroHold:
		return nil
	default:
		return fmt.Errorf("unknown macro %q", id)
	}
}

func errStopped(op string) error {
	return fmt.Errorf("%s: controller stopped", op)
}
