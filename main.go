package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/getlantern/systray"

	"dictator/pkg/app"
	"dictator/pkg/config"
	"dictator/pkg/desktop"
	"dictator/pkg/hotkey"
	"dictator/pkg/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	store := config.NewStore("")
	cfg, err := app.LoadConfig(store, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dictator: %v\n", err)
		return 1
	}

	log, logFile := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	defer logFile.Close()
	slog.SetDefault(log)
	log.Info("dictator starting", "config", store.Path())

	binding, err := hotkey.Parse(cfg.Hotkey)
	if err != nil {
		log.Error("invalid hotkey", "err", &config.ConfigError{Key: config.KeyHotkey, Err: err})
		return 1
	}
	injector, err := desktop.NewInjector(cfg.InjectMode, cfg.SettleDelay, log)
	if err != nil {
		log.Error("create injector", "err", err)
		return 1
	}

	t := newTray(log)
	a, err := app.New(context.Background(), cfg, store, app.Options{
		Presenter: t,
		Clipboard: desktop.Clipboard{},
		Injector:  injector,
		Logger:    log,
	})
	if err != nil {
		log.Error("startup failed", "err", err)
		return 1
	}
	defer a.Close()
	t.app = a

	t.listener, err = newListener(cfg.HotkeyMode, binding, a, log)
	if err != nil {
		log.Error("create hotkey listener", "err", err)
		return 1
	}

	systray.Run(t.onReady, t.onExit)
	code := int(t.exitCode.Load())
	log.Info("dictator exited", "code", code)
	return code
}

// newListener posts hotkey transitions to the dictation queue.
func newListener(mode string, b hotkey.Binding, a *app.App, log *slog.Logger) (hotkey.Listener, error) {
	h := hotkey.Handler{
		OnDown: func() { _ = a.Service.Post(dictationDown) },
		OnUp:   func() { _ = a.Service.Post(dictationUp) },
	}
	if mode == config.HotkeyModeHook {
		return hotkey.NewHookListener(b, h, log)
	}
	return hotkey.NewRegisterListener(b, h, log), nil
}
