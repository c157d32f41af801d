//go:build linux

package x11input

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"veto/internal/core/autoclicker"
	"veto/internal/keycode"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

const pointerPollInterval = 5 * time.Millisecond

type RuntimeConfig struct {
	ClickDown time.Duration
}

// Runtime is the X11 backend. Hotkeys are delivered through passive grabs,
// the primary buttons by polling the pointer mask, and clicks are faked
// with XTEST. It implements autoclicker.Hook, autoclicker.BindingWatcher
// and autoclicker.Injector.
type Runtime struct {
	xu      *xgbutil.XUtil
	conn    *xgb.Conn
	rootWin xproto.Window
	logger  autoclicker.Logger
	cfg     RuntimeConfig

	sink func(autoclicker.Event)

	mu              sync.RWMutex
	keyToCode       map[xproto.Keycode]uint16
	grabbedKeys     []xproto.Keycode
	grabbedButtons  []byte
	keyboardGrabbed bool
	capturing       bool

	// injectMu serializes XTEST calls with pointer polling; held tracks
	// buttons pressed by Press and not yet released.
	injectMu sync.Mutex
	held     map[autoclicker.Button]bool

	startOnce sync.Once
	started   bool
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
	pollDone  chan struct{}
}

func NewRuntime(cfg RuntimeConfig, logger autoclicker.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	conn := xu.Conn()
	if conn == nil {
		return nil, fmt.Errorf("failed to open X11 connection")
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, err
	}
	keybind.Initialize(xu)

	return &Runtime{
		xu:        xu,
		conn:      conn,
		rootWin:   xu.RootWin(),
		logger:    logger,
		cfg:       cfg,
		keyToCode: make(map[xproto.Keycode]uint16),
		held:      make(map[autoclicker.Button]bool),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		pollDone:  make(chan struct{}),
	}, nil
}

func (r *Runtime) Start(sink func(autoclicker.Event)) error {
	if sink == nil {
		return fmt.Errorf("sink is nil")
	}
	r.startOnce.Do(func() {
		r.sink = sink
		r.started = true
		go r.eventLoop()
		go r.pollPointer()
	})
	return nil
}

func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)

		r.mu.Lock()
		r.ungrabAllLocked()
		r.ungrabKeyboardLocked()
		r.mu.Unlock()

		r.conn.Close()

		// blocks a later Start
		r.startOnce.Do(func() {})
		if r.started {
			<-r.doneCh
			<-r.pollDone
		}
	})
}

// WatchBindings grabs the hotkey keys and side buttons. While capturing,
// the whole keyboard and both side buttons are grabbed so the next press
// can be bound.
func (r *Runtime) WatchBindings(bindings []autoclicker.Binding, capturing bool) {
	keyToCode := make(map[xproto.Keycode]uint16)
	buttons := make(map[byte]struct{})
	for _, binding := range bindings {
		switch binding.Kind {
		case autoclicker.BindingMouse:
			if button, ok := codeToXButton(binding.Code); ok {
				buttons[button] = struct{}{}
			}
		case autoclicker.BindingKey:
			keys, err := r.resolveKey(binding.Code)
			if err != nil {
				r.logger.Warn("Failed to resolve hotkey", "hotkey", binding.String(), "err", err)
				continue
			}
			for _, key := range keys {
				keyToCode[key] = binding.Code
			}
		}
	}
	if capturing {
		buttons[xButtonBack] = struct{}{}
		buttons[xButtonFwd] = struct{}{}
	}

	keys := make([]xproto.Keycode, 0, len(keyToCode))
	for key := range keyToCode {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buttonList := make([]byte, 0, len(buttons))
	for button := range buttons {
		buttonList = append(buttonList, button)
	}
	sort.Slice(buttonList, func(i, j int) bool { return buttonList[i] < buttonList[j] })

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ungrabAllLocked()
	if err := r.grabAllLocked(keys, buttonList); err != nil {
		r.logger.Warn("Failed to grab hotkeys", "err", err)
	}
	r.keyToCode = keyToCode

	r.capturing = capturing
	if capturing {
		if err := r.grabKeyboardLocked(); err != nil {
			r.logger.Warn("Failed to grab keyboard for capture", "err", err)
		}
	} else {
		r.ungrabKeyboardLocked()
	}
}

func (r *Runtime) eventLoop() {
	defer close(r.doneCh)

	for {
		event, xerr := r.conn.WaitForEvent()
		if xerr != nil {
			select {
			case <-r.stopCh:
				return
			default:
			}
			r.logger.Warn("X11 event error", "err", xerr)
			continue
		}
		if event == nil {
			return
		}

		switch ev := event.(type) {
		case xproto.KeyPressEvent:
			if code, ok := r.lookupKey(ev.Detail, ev.State); ok {
				r.sink(autoclicker.KeyEvent(code, true))
			}
		case xproto.KeyReleaseEvent:
			if code, ok := r.lookupKey(ev.Detail, ev.State); ok {
				r.sink(autoclicker.KeyEvent(code, false))
			}
		case xproto.ButtonPressEvent:
			if code, ok := xButtonToCode(byte(ev.Detail)); ok && keycode.IsSideButton(code) {
				r.sink(autoclicker.ButtonEvent(code, true))
			}
		case xproto.ButtonReleaseEvent:
			if code, ok := xButtonToCode(byte(ev.Detail)); ok && keycode.IsSideButton(code) {
				r.sink(autoclicker.ButtonEvent(code, false))
			}
		}
	}
}

func (r *Runtime) lookupKey(key xproto.Keycode, state uint16) (uint16, bool) {
	r.mu.RLock()
	code, ok := r.keyToCode[key]
	capturing := r.capturing
	r.mu.RUnlock()
	if ok {
		return code, true
	}
	if !capturing {
		return 0, false
	}
	return codeForKeysym(keybind.LookupString(r.xu, state, key))
}

// pollPointer reports left and right button transitions. Passive grabs on
// the primary buttons would break normal clicking, so the mask is sampled
// instead.
func (r *Runtime) pollPointer() {
	defer close(r.pollDone)

	ticker := time.NewTicker(pointerPollInterval)
	defer ticker.Stop()

	type tracked struct {
		button autoclicker.Button
		mask   uint16
		down   bool
	}
	buttons := []*tracked{
		{button: autoclicker.ButtonLeft, mask: xproto.KeyButMaskButton1},
		{button: autoclicker.ButtonRight, mask: xproto.KeyButMaskButton3},
	}

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
		}

		r.injectMu.Lock()
		reply, err := xproto.QueryPointer(r.conn, r.rootWin).Reply()
		if err != nil {
			r.injectMu.Unlock()
			select {
			case <-r.stopCh:
				return
			default:
			}
			r.logger.Debug("QueryPointer failed", "err", err)
			continue
		}
		var events []autoclicker.Event
		for _, b := range buttons {
			down := reply.Mask&b.mask != 0
			if r.held[b.button] {
				b.down = down
				continue
			}
			if down != b.down {
				b.down = down
				events = append(events, autoclicker.ButtonEvent(b.button.Code(), down))
			}
		}
		r.injectMu.Unlock()

		for _, ev := range events {
			r.sink(ev)
		}
	}
}

func (r *Runtime) Click(button autoclicker.Button) error {
	r.injectMu.Lock()
	defer r.injectMu.Unlock()

	if err := r.fakeButton(xproto.ButtonPress, button); err != nil {
		return err
	}
	if r.cfg.ClickDown > 0 {
		time.Sleep(r.cfg.ClickDown)
	}
	return r.fakeButton(xproto.ButtonRelease, button)
}

func (r *Runtime) Press(button autoclicker.Button) error {
	r.injectMu.Lock()
	defer r.injectMu.Unlock()

	if err := r.fakeButton(xproto.ButtonPress, button); err != nil {
		return err
	}
	r.held[button] = true
	return nil
}

func (r *Runtime) Release(button autoclicker.Button) error {
	r.injectMu.Lock()
	defer r.injectMu.Unlock()

	delete(r.held, button)
	return r.fakeButton(xproto.ButtonRelease, button)
}

func (r *Runtime) fakeButton(eventType byte, button autoclicker.Button) error {
	detail := byte(xButtonLeft)
	if button == autoclicker.ButtonRight {
		detail = xButtonRight
	}
	if err := xtest.FakeInputChecked(
		r.conn,
		eventType,
		detail,
		xproto.TimeCurrentTime,
		r.rootWin,
		0,
		0,
		0,
	).Check(); err != nil {
		return err
	}
	r.conn.Sync()
	return nil
}

func (r *Runtime) grabAllLocked(keys []xproto.Keycode, buttons []byte) error {
	for _, key := range keys {
		if err := xproto.GrabKeyChecked(
			r.conn,
			false,
			r.rootWin,
			xproto.ModMaskAny,
			key,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Check(); err != nil {
			return err
		}
		r.grabbedKeys = append(r.grabbedKeys, key)
	}

	for _, button := range buttons {
		if err := xproto.GrabButtonChecked(
			r.conn,
			false,
			r.rootWin,
			xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
			xproto.WindowNone,
			xproto.CursorNone,
			button,
			xproto.ModMaskAny,
		).Check(); err != nil {
			return err
		}
		r.grabbedButtons = append(r.grabbedButtons, button)
	}
	return nil
}

func (r *Runtime) ungrabAllLocked() {
	for _, key := range r.grabbedKeys {
		xproto.UngrabKey(r.conn, key, r.rootWin, xproto.ModMaskAny)
	}
	for _, button := range r.grabbedButtons {
		xproto.UngrabButton(r.conn, button, r.rootWin, xproto.ModMaskAny)
	}
	r.grabbedKeys = nil
	r.grabbedButtons = nil
}

func (r *Runtime) grabKeyboardLocked() error {
	if r.keyboardGrabbed {
		return nil
	}
	reply, err := xproto.GrabKeyboard(
		r.conn,
		false,
		r.rootWin,
		xproto.TimeCurrentTime,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
	).Reply()
	if err != nil {
		return err
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("failed to grab keyboard (status=%d)", reply.Status)
	}
	r.keyboardGrabbed = true
	return nil
}

func (r *Runtime) ungrabKeyboardLocked() {
	if !r.keyboardGrabbed {
		return
	}
	xproto.UngrabKeyboard(r.conn, xproto.TimeCurrentTime)
	r.keyboardGrabbed = false
}

func (r *Runtime) resolveKey(code uint16) ([]xproto.Keycode, error) {
	keyName, ok := keysymForCode(code)
	if !ok {
		return nil, fmt.Errorf("unsupported X11 key code %s", keycode.FormatCodeName(code))
	}

	keycodes := keybind.StrToKeycodes(r.xu, keyName)
	if len(keycodes) == 0 {
		return nil, fmt.Errorf("failed to resolve X11 key %q", keyName)
	}

	uniq := make(map[xproto.Keycode]struct{}, len(keycodes))
	for _, key := range keycodes {
		uniq[key] = struct{}{}
	}
	result := make([]xproto.Keycode, 0, len(uniq))
	for key := range uniq {
		result = append(result, key)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}

type DeviceInfo struct {
	Path      string
	Name      string
	IsVirtual bool
	IsPointer bool
}

func ListInputDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{
		{
			Path:      "x11-global",
			Name:      "X11 Global Input",
			IsVirtual: false,
			IsPointer: true,
		},
	}, nil
}
