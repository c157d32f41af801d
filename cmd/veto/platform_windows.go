//go:build windows

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"veto/internal/adapters/wininput"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "windows":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (windows supports auto|windows)", value)
	}
}

func listInputDevices(_ string) ([]deviceLine, error) {
	devices, err := wininput.ListInputDevices()
	if err != nil {
		return nil, err
	}
	lines := make([]deviceLine, 0, len(devices))
	for _, dev := range devices {
		lines = append(lines, deviceLine{path: dev.Path, name: dev.Name, virtual: dev.IsVirtual, pointer: dev.IsPointer})
	}
	return lines, nil
}

func permissionDeniedHint() string {
	return "Permission denied registering global input hooks. Run as Administrator and ensure input-hooking is allowed."
}

func openBackend(cfg config, logger *slog.Logger) (*backend, error) {
	if cfg.devicePath != "" {
		logger.Warn("--device is ignored on Windows; using global keyboard/mouse hooks")
	}

	hook, err := wininput.NewHook(logger)
	if err != nil {
		return nil, err
	}
	injector, err := wininput.NewInjector(cfg.clickDown())
	if err != nil {
		return nil, err
	}
	logger.Info("Input mode", "mode", "windows-global-hooks")
	return &backend{name: "windows", hook: hook, injector: injector}, nil
}
