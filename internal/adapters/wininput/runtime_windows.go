//go:build windows

package wininput

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"veto/internal/core/autoclicker"
	"veto/internal/keycode"

	"golang.org/x/sys/windows"
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C

	xButton1 = 0x0001
	xButton2 = 0x0002

	llmhfInjected        = 0x00000001
	llkhfInjected        = 0x00000010
	llkhfLowerILInjected = 0x00000002

	inputMouse           = 0
	mouseeventfLeftDown  = 0x0002
	mouseeventfLeftUp    = 0x0004
	mouseeventfRightDown = 0x0008
	mouseeventfRightUp   = 0x0010
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessageW    = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procSendInput           = user32.NewProc("SendInput")

	mouseHookCallback    = windows.NewCallback(mouseLLCallback)
	keyboardHookCallback = windows.NewCallback(keyboardLLCallback)

	// low-level hook callbacks carry no user data, so one hook is active
	// per process
	activeHook atomic.Pointer[Hook]
)

type point struct {
	X int32
	Y int32
}

type mouseLLHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type keyboardLLHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type message struct {
	Hwnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type input struct {
	Type uint32
	Mi   mouseInput
}

// Injector sends synthetic button input through SendInput.
type Injector struct {
	clickDown time.Duration
}

func NewInjector(clickDown time.Duration) (*Injector, error) {
	if clickDown < 0 {
		clickDown = 0
	}
	return &Injector{clickDown: clickDown}, nil
}

func (i *Injector) Click(button autoclicker.Button) error {
	if err := i.Press(button); err != nil {
		return err
	}
	if i.clickDown > 0 {
		time.Sleep(i.clickDown)
	}
	return i.Release(button)
}

func (i *Injector) Press(button autoclicker.Button) error {
	if button == autoclicker.ButtonRight {
		return sendMouse(mouseeventfRightDown)
	}
	return sendMouse(mouseeventfLeftDown)
}

func (i *Injector) Release(button autoclicker.Button) error {
	if button == autoclicker.ButtonRight {
		return sendMouse(mouseeventfRightUp)
	}
	return sendMouse(mouseeventfLeftUp)
}

func sendMouse(flags uint32) error {
	in := input{Type: inputMouse, Mi: mouseInput{DwFlags: flags}}
	sent, _, callErr := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if sent != 1 {
		if callErr != nil && callErr != windows.ERROR_SUCCESS {
			return fmt.Errorf("SendInput: %w", callErr)
		}
		return fmt.Errorf("SendInput was blocked")
	}
	return nil
}

// Hook installs low-level keyboard and mouse hooks on a dedicated thread.
// Injected input is skipped by its flags.
type Hook struct {
	logger autoclicker.Logger
	sink   func(autoclicker.Event)

	stopOnce sync.Once
	threadID atomic.Uint32
	loopMu   sync.Mutex
	loopDone chan struct{}
}

func NewHook(logger autoclicker.Logger) (*Hook, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Hook{logger: logger, loopDone: closedSignalChan()}, nil
}

func (h *Hook) Start(sink func(autoclicker.Event)) error {
	if sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if !activeHook.CompareAndSwap(nil, h) {
		return fmt.Errorf("windows hook is already active")
	}
	h.sink = sink

	h.loopMu.Lock()
	h.loopDone = make(chan struct{})
	h.loopMu.Unlock()

	ready := make(chan error, 1)
	go h.hookLoop(ready)

	if err := <-ready; err != nil {
		h.Stop()
		return err
	}
	h.logger.Info("Listening on global hooks")
	return nil
}

func (h *Hook) Stop() {
	h.stopOnce.Do(func() {
		if threadID := h.threadID.Load(); threadID != 0 {
			_, _, _ = procPostThreadMessageW.Call(uintptr(threadID), uintptr(wmQuit), 0, 0)
		}

		h.loopMu.Lock()
		done := h.loopDone
		h.loopMu.Unlock()
		<-done

		activeHook.CompareAndSwap(h, nil)
	})
}

func (h *Hook) hookLoop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer func() {
		h.loopMu.Lock()
		done := h.loopDone
		h.loopMu.Unlock()
		close(done)
	}()

	h.threadID.Store(windows.GetCurrentThreadId())

	mouseHook, _, mouseErr := procSetWindowsHookExW.Call(uintptr(whMouseLL), mouseHookCallback, 0, 0)
	if mouseHook == 0 {
		ready <- fmt.Errorf("failed to install mouse hook: %w", mouseErr)
		return
	}
	defer func() {
		_, _, _ = procUnhookWindowsHookEx.Call(mouseHook)
	}()

	keyboardHook, _, keyboardErr := procSetWindowsHookExW.Call(uintptr(whKeyboardLL), keyboardHookCallback, 0, 0)
	if keyboardHook == 0 {
		ready <- fmt.Errorf("failed to install keyboard hook: %w", keyboardErr)
		return
	}
	defer func() {
		_, _, _ = procUnhookWindowsHookEx.Call(keyboardHook)
	}()

	ready <- nil

	var msg message
	for {
		ret, _, callErr := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			h.logger.Warn("Windows message loop failed", "err", callErr)
			return
		case 0:
			return
		default:
			_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			_, _, _ = procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
		}
	}
}

func mouseLLCallback(code int, wParam uintptr, lParam uintptr) uintptr {
	if code >= 0 {
		if h := activeHook.Load(); h != nil {
			h.handleMouseHook(wParam, lParam)
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wParam, lParam)
	return ret
}

func keyboardLLCallback(code int, wParam uintptr, lParam uintptr) uintptr {
	if code >= 0 {
		if h := activeHook.Load(); h != nil {
			h.handleKeyboardHook(wParam, lParam)
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wParam, lParam)
	return ret
}

func (h *Hook) handleMouseHook(wParam uintptr, lParam uintptr) {
	if lParam == 0 {
		return
	}
	event := (*mouseLLHookStruct)(unsafe.Pointer(lParam))
	if event.Flags&llmhfInjected != 0 {
		return
	}
	if ev, ok := mouseEvent(uint32(wParam), event.MouseData); ok {
		h.sink(ev)
	}
}

func (h *Hook) handleKeyboardHook(wParam uintptr, lParam uintptr) {
	if lParam == 0 {
		return
	}
	event := (*keyboardLLHookStruct)(unsafe.Pointer(lParam))
	if event.Flags&llkhfInjected != 0 || event.Flags&llkhfLowerILInjected != 0 {
		return
	}
	if ev, ok := keyEvent(uint32(wParam), event.VkCode, event.Flags); ok {
		h.sink(ev)
	}
}

func mouseEvent(msg uint32, mouseData uint32) (autoclicker.Event, bool) {
	var (
		code uint16
		down bool
	)
	switch msg {
	case wmLButtonDown:
		code, down = keycode.BTNLeft, true
	case wmLButtonUp:
		code = keycode.BTNLeft
	case wmRButtonDown:
		code, down = keycode.BTNRight, true
	case wmRButtonUp:
		code = keycode.BTNRight
	case wmMButtonDown:
		code, down = keycode.BTNMiddle, true
	case wmMButtonUp:
		code = keycode.BTNMiddle
	case wmXButtonDown:
		code, down = xButtonCode(mouseData), true
	case wmXButtonUp:
		code = xButtonCode(mouseData)
	}
	if code == 0 {
		return autoclicker.Event{}, false
	}
	return autoclicker.ButtonEvent(code, down), true
}

func keyEvent(msg uint32, vk uint32, flags uint32) (autoclicker.Event, bool) {
	code, ok := CodeFromVK(vk, flags)
	if !ok {
		return autoclicker.Event{}, false
	}
	switch msg {
	case wmKeyDown, wmSysKeyDown:
		return autoclicker.KeyEvent(code, true), true
	case wmKeyUp, wmSysKeyUp:
		return autoclicker.KeyEvent(code, false), true
	default:
		return autoclicker.Event{}, false
	}
}

func xButtonCode(mouseData uint32) uint16 {
	switch uint16(mouseData >> 16) {
	case xButton1:
		return keycode.BTNSide
	case xButton2:
		return keycode.BTNExtra
	default:
		return 0
	}
}

func ListInputDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{
		{
			Path:      "global",
			Name:      "Windows Global Input",
			IsVirtual: false,
			IsPointer: true,
		},
	}, nil
}

func closedSignalChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
