//go:build !windows

package wininput

import (
	"fmt"
	"time"

	"veto/internal/core/autoclicker"
)

var errUnsupported = fmt.Errorf("windows input runtime is only available on Windows")

type Hook struct{}

func NewHook(logger autoclicker.Logger) (*Hook, error) {
	return nil, errUnsupported
}

func (h *Hook) Start(sink func(autoclicker.Event)) error {
	return errUnsupported
}

func (h *Hook) Stop() {}

type Injector struct{}

func NewInjector(clickDown time.Duration) (*Injector, error) {
	return nil, errUnsupported
}

func (i *Injector) Click(button autoclicker.Button) error {
	return errUnsupported
}

func (i *Injector) Press(button autoclicker.Button) error {
	return errUnsupported
}

func (i *Injector) Release(button autoclicker.Button) error {
	return errUnsupported
}

func ListInputDevices() ([]DeviceInfo, error) {
	return nil, errUnsupported
}
