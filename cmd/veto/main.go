package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"veto/internal/core/autoclicker"
	"veto/internal/settings"
)

type config struct {
	backend      string
	devicePath   string
	settingsPath string
	cooldown     time.Duration
	downMS       float64
	listDevices  bool
	ui           bool
	logLevel     slog.Level
}

func (c config) clickDown() time.Duration {
	return time.Duration(math.Max(0, c.downMS) * float64(time.Millisecond))
}

type lineSinkWriter struct {
	sink  func(line string)
	mu    sync.Mutex
	lines bytes.Buffer
}

func (w *lineSinkWriter) Write(p []byte) (int, error) {
	if w.sink == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx == -1 {
			_, _ = w.lines.Write(p)
			break
		}
		_, _ = w.lines.Write(p[:idx])
		line := strings.TrimSpace(w.lines.String())
		w.lines.Reset()
		if line != "" {
			w.sink(line)
		}
		p = p[idx+1:]
	}
	return total, nil
}

func newSlogLogger(level slog.Level, sink func(line string)) *slog.Logger {
	if !debugLogsEnabled() {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: level,
		}))
	}

	out := io.Writer(os.Stderr)
	if sink != nil {
		out = io.MultiWriter(os.Stderr, &lineSinkWriter{sink: sink})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}

func debugLogsEnabled() bool {
	return strings.TrimSpace(os.Getenv("DEBUG")) == "1"
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func parseConfig(args []string) (config, error) {
	var cfg config
	flags := flag.NewFlagSet("veto", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var backendRaw string
	var logLevelRaw string
	var cliMode bool

	flags.StringVar(&backendRaw, "backend", "auto", "Input backend. Linux: auto|wayland|x11. Windows: auto|windows. macOS: auto|hook.")
	flags.StringVar(&cfg.devicePath, "device", "", "Input event device path to listen on, e.g. /dev/input/event4. All physical devices if omitted.")
	flags.StringVar(&cfg.settingsPath, "settings", settings.DefaultPath(), "Settings file path.")
	flags.DurationVar(&cfg.cooldown, "cooldown", autoclicker.DefaultCooldown, "Minimum time between two hotkey toggles.")
	flags.Float64Var(&cfg.downMS, "down-ms", 10.0, "How long each synthetic click stays down in ms (default: 10).")
	flags.BoolVar(&cfg.listDevices, "list-devices", false, "Print available input devices and exit.")
	flags.BoolVar(&cfg.ui, "ui", true, "Start desktop GUI (Fyne) by default. Use --ui=false or --cli for terminal mode.")
	flags.BoolVar(&cliMode, "cli", false, "Force terminal mode (disables GUI).")
	flags.StringVar(&logLevelRaw, "log-level", "info", "Log verbosity (default: info). Allowed: debug, info, warning, error.")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	if flags.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	if cfg.cooldown < 0 {
		return cfg, fmt.Errorf("--cooldown must be >= 0")
	}
	if cfg.downMS < 0 {
		return cfg, fmt.Errorf("--down-ms must be >= 0")
	}
	if strings.TrimSpace(cfg.settingsPath) == "" {
		return cfg, fmt.Errorf("--settings must not be empty")
	}
	if cliMode {
		cfg.ui = false
	}

	parsedLevel, err := parseLogLevel(logLevelRaw)
	if err != nil {
		return cfg, err
	}
	backendChoice, err := parseBackendChoice(backendRaw)
	if err != nil {
		return cfg, err
	}

	cfg.backend = backendChoice
	cfg.logLevel = parsedLevel
	return cfg, nil
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

func printDevices(out io.Writer, devices []deviceLine) {
	for _, dev := range devices {
		virtualTag := "physical"
		if dev.virtual {
			virtualTag = "virtual"
		}
		pointerTag := "non-pointer"
		if dev.pointer {
			pointerTag = "pointer"
		}
		fmt.Fprintf(out, "%s: %s [%s, %s]\n", dev.path, dev.name, virtualTag, pointerTag)
	}
}

// cliObserver prints every macro transition as one line.
type cliObserver struct {
	out io.Writer
}

func (o cliObserver) MacroChanged(status autoclicker.Status) {
	line := fmt.Sprintf("%-5s %-8s hotkey=%s", status.Macro, status.State, status.Hotkey)
	if !status.Enabled {
		line += " (disabled)"
	}
	if status.Capturing {
		line += " (capturing)"
	}
	fmt.Fprintln(o.out, line)
}

func (o cliObserver) RateSampled(autoclicker.MacroID, float64) {}

func runCLI(cfg config, stdout, stderr io.Writer) int {
	logger := newSlogLogger(cfg.logLevel, nil)
	sess, err := startSession(cfg, cliObserver{out: stdout}, logger)
	if err != nil {
		if isPermissionError(err) {
			fmt.Fprintln(stderr, permissionDeniedHint())
			return 1
		}
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tasksDone := make(chan struct{})
	go func() {
		defer close(tasksDone)
		sess.tasks().Run(ctx, nil)
	}()

	fmt.Fprintf(stdout, "Settings: %s. Press Ctrl+C to stop\n", cfg.settingsPath)
	<-ctx.Done()
	<-tasksDone
	sess.Stop()
	sess.tasks().Drain()
	return 0
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.listDevices {
		devices, err := listInputDevices(cfg.backend)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		printDevices(stdout, devices)
		return 0
	}

	if cfg.ui {
		if err := runUI(cfg); err != nil {
			if isPermissionError(err) {
				fmt.Fprintln(stderr, permissionDeniedHint())
				return 1
			}
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	return runCLI(cfg, stdout, stderr)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
