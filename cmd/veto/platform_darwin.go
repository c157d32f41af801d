//go:build darwin

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"veto/internal/adapters/hookinput"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "hook":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (macOS supports auto|hook)", value)
	}
}

func listInputDevices(_ string) ([]deviceLine, error) {
	return []deviceLine{{path: "global", name: "macOS Event Tap", pointer: true}}, nil
}

func permissionDeniedHint() string {
	return "Permission denied installing the event tap. Grant Accessibility and Input Monitoring access in System Settings > Privacy & Security."
}

func openBackend(cfg config, logger *slog.Logger) (*backend, error) {
	if cfg.devicePath != "" {
		logger.Warn("--device is ignored on macOS; using the global event tap")
	}

	echoes := hookinput.NewEchoes()
	hook, err := hookinput.NewHook(logger, echoes)
	if err != nil {
		return nil, err
	}
	injector, err := hookinput.NewInjector(cfg.clickDown(), echoes)
	if err != nil {
		return nil, err
	}
	return &backend{name: "hook", hook: hook, injector: injector}, nil
}
