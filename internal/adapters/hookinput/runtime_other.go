//go:build !darwin

package hookinput

import (
	"fmt"
	"time"

	"veto/internal/core/autoclicker"
)

var errUnsupported = fmt.Errorf("event tap runtime is only available on macOS")

type Hook struct{}

func NewHook(logger autoclicker.Logger, echoes *Echoes) (*Hook, error) {
	return nil, errUnsupported
}

func (h *Hook) Start(sink func(autoclicker.Event)) error {
	return errUnsupported
}

func (h *Hook) Stop() {}

type Injector struct{}

func NewInjector(clickDown time.Duration, echoes *Echoes) (*Injector, error) {
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
