//go:build linux

package linuxinput

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"veto/internal/core/autoclicker"

	evdev "github.com/holoplot/go-evdev"
)

// Hook reads key and button transitions from evdev devices without
// grabbing them, so every input still reaches the desktop.
type Hook struct {
	devices []*evdev.InputDevice
	logger  autoclicker.Logger

	sink      func(autoclicker.Event)
	stopCh    chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	readersWG sync.WaitGroup
}

func NewHook(devices []*evdev.InputDevice, logger autoclicker.Logger) (*Hook, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("no source devices")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Hook{
		devices: devices,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

func (h *Hook) Start(sink func(autoclicker.Event)) error {
	if sink == nil {
		return fmt.Errorf("sink is nil")
	}
	var err error
	h.startOnce.Do(func() {
		for _, dev := range h.devices {
			if e := dev.NonBlock(); e != nil {
				err = fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), e)
				return
			}
		}
		h.sink = sink
		for _, dev := range h.devices {
			name, _ := dev.Name()
			h.logger.Info("Listening on source device", "path", dev.Path(), "name", name)
			h.readersWG.Add(1)
			go h.readLoop(dev)
		}
	})
	return err
}

func (h *Hook) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		closeInputDevices(h.devices)
		h.readersWG.Wait()
	})
}

func (h *Hook) readLoop(dev *evdev.InputDevice) {
	defer h.readersWG.Done()

	path := dev.Path()
	for {
		events, err := dev.ReadSlice(64)
		if err != nil {
			if h.stopped() || isDeviceClosedError(err) {
				return
			}
			if isWouldBlockError(err) {
				if !h.sleepWithStop(5 * time.Millisecond) {
					return
				}
				continue
			}
			h.logger.Warn("Read failed", "path", path, "err", err)
			if !h.sleepWithStop(100 * time.Millisecond) {
				return
			}
			continue
		}

		for _, event := range events {
			if ev, ok := translate(event.Type, event.Code, event.Value); ok {
				h.sink(ev)
			}
		}
	}
}

func (h *Hook) stopped() bool {
	select {
	case <-h.stopCh:
		return true
	default:
		return false
	}
}

func (h *Hook) sleepWithStop(duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-h.stopCh:
		return false
	case <-timer.C:
		return true
	}
}

// Injector writes left/right button events to a uinput device.
type Injector struct {
	dev       *evdev.InputDevice
	clickDown time.Duration
	mu        sync.Mutex
}

func NewInjector(clickDown time.Duration) (*Injector, error) {
	if clickDown < 0 {
		clickDown = 0
	}
	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}
	capabilities := map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: {evdev.BTN_LEFT, evdev.BTN_RIGHT},
	}
	dev, err := evdev.CreateDevice(VirtualDeviceName, id, capabilities)
	if err != nil {
		return nil, err
	}
	return &Injector{dev: dev, clickDown: clickDown}, nil
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
	return i.write(buttonCode(button), keyDown)
}

func (i *Injector) Release(button autoclicker.Button) error {
	return i.write(buttonCode(button), keyUp)
}

func (i *Injector) write(code evdev.EvCode, value int32) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	events := []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: code, Value: value},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
	}
	for idx := range events {
		if err := i.dev.WriteOne(&events[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (i *Injector) Close() error {
	if i.dev == nil {
		return nil
	}
	return i.dev.Close()
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
