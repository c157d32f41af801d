//go:build !linux && !windows && !darwin

package main

import (
	"fmt"
	"log/slog"
	"strings"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" || backend == "auto" {
		return "auto", nil
	}
	return "", fmt.Errorf("invalid --backend %q (unsupported platform)", value)
}

func listInputDevices(_ string) ([]deviceLine, error) {
	return nil, fmt.Errorf("input device listing is not supported on this platform")
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend."
}

func openBackend(cfg config, logger *slog.Logger) (*backend, error) {
	return nil, fmt.Errorf("input backends are not supported on this platform")
}
