package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"veto/internal/core/autoclicker"
	"veto/internal/keycode"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatalf("parseConfig returned error: %v", err)
	}
	if cfg.backend != "auto" {
		t.Fatalf("backend=%q, want auto", cfg.backend)
	}
	if cfg.cooldown != autoclicker.DefaultCooldown {
		t.Fatalf("cooldown=%v, want %v", cfg.cooldown, autoclicker.DefaultCooldown)
	}
	if !cfg.ui {
		t.Fatalf("ui should default to true")
	}
	if cfg.clickDown() != 10*time.Millisecond {
		t.Fatalf("clickDown=%v, want 10ms", cfg.clickDown())
	}
	if cfg.settingsPath == "" {
		t.Fatalf("settings path should default to a file")
	}
}

func TestParseConfigFlags(t *testing.T) {
	cfg, err := parseConfig([]string{"--cli", "--cooldown", "350ms", "--down-ms", "0", "--settings", "/tmp/veto.json", "--log-level", "debug"})
	if err != nil {
		t.Fatalf("parseConfig returned error: %v", err)
	}
	if cfg.ui {
		t.Fatalf("--cli should disable the UI")
	}
	if cfg.cooldown != 350*time.Millisecond {
		t.Fatalf("cooldown=%v, want 350ms", cfg.cooldown)
	}
	if cfg.clickDown() != 0 {
		t.Fatalf("clickDown=%v, want 0", cfg.clickDown())
	}
	if cfg.settingsPath != "/tmp/veto.json" {
		t.Fatalf("settingsPath=%q", cfg.settingsPath)
	}
	if cfg.logLevel != slog.LevelDebug {
		t.Fatalf("logLevel=%v, want debug", cfg.logLevel)
	}
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	tests := [][]string{
		{"--cooldown", "-1s"},
		{"--down-ms", "-3"},
		{"--log-level", "loud"},
		{"--backend", "carrier-pigeon"},
		{"--settings", " "},
		{"extra"},
	}
	for _, args := range tests {
		if _, err := parseConfig(args); err == nil {
			t.Fatalf("parseConfig(%q) should fail", args)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for raw, want := range tests {
		got, err := parseLogLevel(raw)
		if err != nil {
			t.Fatalf("parseLogLevel(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parseLogLevel(%q)=%v, want %v", raw, got, want)
		}
	}
}

func TestLineSinkWriterSplitsLines(t *testing.T) {
	var lines []string
	w := &lineSinkWriter{sink: func(line string) { lines = append(lines, line) }}

	_, _ = w.Write([]byte("first\nsec"))
	_, _ = w.Write([]byte("ond\n\n  third  \n"))

	want := []string{"first", "second", "third"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines=%q, want %q", lines, want)
	}
}

func TestCLIObserverPrintsTransitions(t *testing.T) {
	var out bytes.Buffer
	observer := cliObserver{out: &out}

	observer.MacroChanged(autoclicker.Status{
		Macro:   autoclicker.MacroLeft,
		State:   autoclicker.StateArmed,
		Enabled: true,
		Hotkey:  autoclicker.BindingFor(keycode.KeyF6),
	})
	observer.MacroChanged(autoclicker.Status{
		Macro:     autoclicker.MacroHold,
		State:     autoclicker.StateOff,
		Capturing: true,
	})

	got := out.String()
	if !strings.Contains(got, "left  ARMED    hotkey=F6\n") {
		t.Fatalf("missing left line in %q", got)
	}
	if !strings.Contains(got, "hold  OFF      hotkey=None (disabled) (capturing)\n") {
		t.Fatalf("missing hold line in %q", got)
	}
}

func TestPrintDevices(t *testing.T) {
	var out bytes.Buffer
	printDevices(&out, []deviceLine{
		{path: "/dev/input/event3", name: "Mouse", pointer: true},
		{path: "/dev/input/event9", name: "veto-autoclicker", virtual: true},
	})
	want := "/dev/input/event3: Mouse [physical, pointer]\n/dev/input/event9: veto-autoclicker [virtual, non-pointer]\n"
	if out.String() != want {
		t.Fatalf("printDevices=%q, want %q", out.String(), want)
	}
}
