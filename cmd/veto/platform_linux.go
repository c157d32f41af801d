//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"veto/internal/adapters/linuxinput"
	"veto/internal/adapters/x11input"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "wayland", "x11", "evdev":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (linux supports auto|wayland|x11)", value)
	}
}

func listInputDevices(backend string) ([]deviceLine, error) {
	var lines []deviceLine
	switch resolveLinuxBackend(backend) {
	case "x11":
		devices, err := x11input.ListInputDevices()
		if err != nil {
			return nil, err
		}
		for _, dev := range devices {
			lines = append(lines, deviceLine{path: dev.Path, name: dev.Name, virtual: dev.IsVirtual, pointer: dev.IsPointer})
		}
	default:
		devices, err := linuxinput.ListInputDevices()
		if err != nil {
			return nil, err
		}
		for _, dev := range devices {
			lines = append(lines, deviceLine{path: dev.Path, name: dev.Name, virtual: dev.IsVirtual, pointer: dev.IsPointer})
		}
	}
	return lines, nil
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend. On Wayland use root/udev for /dev/input + /dev/uinput. On X11 ensure an active X11 session and DISPLAY is set."
}

func openBackend(cfg config, logger *slog.Logger) (*backend, error) {
	switch resolveLinuxBackend(cfg.backend) {
	case "x11":
		return openX11Backend(cfg, logger)
	default:
		return openEvdevBackend(cfg, logger)
	}
}

func openEvdevBackend(cfg config, logger *slog.Logger) (*backend, error) {
	devices, err := linuxinput.OpenSources(cfg.devicePath)
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		name, _ := dev.Name()
		logger.Info("Using source device", "path", dev.Path(), "name", name)
	}

	hook, err := linuxinput.NewHook(devices, logger)
	if err != nil {
		for _, dev := range devices {
			_ = dev.Close()
		}
		return nil, err
	}

	injector, err := linuxinput.NewInjector(cfg.clickDown())
	if err != nil {
		hook.Stop()
		return nil, fmt.Errorf("failed to create virtual device: %w", err)
	}

	return &backend{
		name:     "wayland",
		hook:     hook,
		injector: injector,
		close: func() {
			if err := injector.Close(); err != nil {
				logger.Warn("Failed to close virtual device", "err", err)
			}
		},
	}, nil
}

func openX11Backend(cfg config, logger *slog.Logger) (*backend, error) {
	if cfg.devicePath != "" {
		logger.Warn("--device is ignored on X11 backend")
	}

	runtime, err := x11input.NewRuntime(x11input.RuntimeConfig{ClickDown: cfg.clickDown()}, logger)
	if err != nil {
		return nil, err
	}
	return &backend{
		name:       "x11",
		hook:       runtime,
		injector:   runtime,
		watcher:    runtime,
		sharedHook: true,
	}, nil
}

func resolveLinuxBackend(configured string) string {
	choice := strings.ToLower(strings.TrimSpace(configured))
	if choice == "" {
		choice = "auto"
	}
	if choice == "evdev" {
		choice = "wayland"
	}
	if choice != "auto" {
		return choice
	}

	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	switch sessionType {
	case "wayland":
		return "wayland"
	case "x11":
		return "x11"
	}

	if strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" {
		return "wayland"
	}
	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		return "x11"
	}
	return "wayland"
}
