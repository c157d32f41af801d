package main

import (
	"fmt"
	"log/slog"
	"sync"

	"veto/internal/core/autoclicker"
	"veto/internal/settings"
)

// backend is the input pair a platform provides for one session.
type backend struct {
	name     string
	hook     autoclicker.Hook
	injector autoclicker.Injector
	watcher  autoclicker.BindingWatcher

	// sharedHook is set when hook and injector share one connection. The
	// hook is then stopped after the controller so the final releases
	// still go out.
	sharedHook bool
	close      func()
}

type deviceLine struct {
	path    string
	name    string
	virtual bool
	pointer bool
}

type session struct {
	controller *autoclicker.Controller
	backend    *backend
	store      *settings.Store
	logger     *slog.Logger

	stopOnce sync.Once
}

func startSession(cfg config, observer autoclicker.Observer, logger *slog.Logger) (*session, error) {
	store := settings.NewStore(cfg.settingsPath)
	stored, err := store.Load()
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", "path", store.Path(), "err", err)
		stored = settings.Default()
	}

	be, err := openBackend(cfg, logger)
	if err != nil {
		return nil, err
	}

	ccfg := stored.Config()
	ccfg.Cooldown = cfg.cooldown
	ccfg.Observer = observer
	ccfg.Watcher = be.watcher
	controller, err := autoclicker.NewController(ccfg, be.injector, logger)
	if err != nil {
		be.shutdown(nil)
		return nil, err
	}
	controller.Start()

	if err := be.hook.Start(func(ev autoclicker.Event) { controller.SubmitEvent(ev) }); err != nil {
		be.shutdown(controller)
		return nil, fmt.Errorf("failed to start %s backend: %w", be.name, err)
	}

	logger.Info("Backend", "name", be.name)
	logger.Info("Settings", "path", store.Path())
	for _, id := range []autoclicker.MacroID{autoclicker.MacroLeft, autoclicker.MacroRight, autoclicker.MacroHold} {
		logger.Info("Macro", "macro", id, "enabled", controller.Enabled(id), "hotkey", controller.Hotkey(id))
	}

	return &session{controller: controller, backend: be, store: store, logger: logger}, nil
}

func (s *session) tasks() *autoclicker.TaskQueue {
	return s.controller.Tasks()
}

// Stop saves the settings, then tears down hook, controller and injector.
func (s *session) Stop() {
	s.stopOnce.Do(func() {
		snap := s.controller.Snapshot()
		if err := s.store.Save(settings.FromSnapshot(snap)); err != nil {
			s.logger.Warn("Failed to save settings", "path", s.store.Path(), "err", err)
		} else {
			s.logger.Info("Settings saved", "path", s.store.Path())
		}
		s.backend.shutdown(s.controller)
	})
}

func (b *backend) shutdown(controller *autoclicker.Controller) {
	if b.sharedHook {
		if controller != nil {
			controller.Stop()
		}
		b.hook.Stop()
	} else {
		b.hook.Stop()
		if controller != nil {
			controller.Stop()
		}
	}
	if b.close != nil {
		b.close()
	}
}
