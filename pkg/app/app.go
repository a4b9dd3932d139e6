// Package app assembles a dictation service from configuration. The tray
// program and the terminal driver both start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"dictator/pkg/audio"
	"dictator/pkg/config"
	"dictator/pkg/dictation"
	"dictator/pkg/dictionary"
	"dictator/pkg/language"
	"dictator/pkg/observe"
	"dictator/pkg/transcribe"
)

// Options supplies the front-end specific collaborators.
type Options struct {
	Presenter dictation.Presenter
	Clipboard dictation.Clipboard
	Injector  dictation.Injector
	Logger    *slog.Logger
}

// App owns the long-lived resources behind a Service.
type App struct {
	Config      config.Config
	Service     *dictation.Service
	Metrics     *observe.Provider
	Transcriber transcribe.Transcriber

	closers []func() error
	log     *slog.Logger
}

// LoadConfig reads the store and, when no credential is configured, asks
// for one on in/out and persists it.
func LoadConfig(store *config.Store, in io.Reader, out io.Writer) (config.Config, error) {
	cfg, err := store.Load()
	if err != nil {
		return config.Config{}, err
	}
	if cfg.RequireCredential() == nil {
		return cfg, nil
	}
	value, err := store.PromptCredential(in, out, cfg.CredentialKey)
	if err != nil {
		return config.Config{}, err
	}
	cfg.Credential = value
	return cfg, nil
}

// New opens the audio device, builds the transcriber and wires the
// service. On error everything opened so far is released.
func New(ctx context.Context, cfg config.Config, store dictation.LanguageStore, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	a := &App{Config: cfg, log: log}
	ready := false
	defer func() {
		if !ready {
			_ = a.Close()
		}
	}()

	dict, err := loadDictionary(cfg.DictionaryPath, log)
	if err != nil {
		return nil, err
	}

	a.Transcriber, err = transcribe.New(ctx, transcribe.Config{
		Provider: cfg.Provider,
		APIKey:   cfg.Credential,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		return nil, &config.ConfigError{Key: config.KeyProvider, Err: err}
	}
	if c, ok := a.Transcriber.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}

	a.Metrics, err = observe.InitProvider(cfg.MetricsAddr, log)
	if err != nil {
		return nil, &config.ConfigError{Key: config.KeyMetricsAddr, Err: err}
	}
	a.closers = append(a.closers, func() error { return a.Metrics.Shutdown(context.Background()) })

	dev, err := audio.OpenDevice(log)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	a.closers = append(a.closers, dev.Close)

	a.Service, err = dictation.New(dictation.Config{
		Recorder:        audio.NewRecorder(dev, log),
		Transcriber:     a.Transcriber,
		Dictionary:      dict,
		Presenter:       opts.Presenter,
		Clipboard:       opts.Clipboard,
		Injector:        opts.Injector,
		Store:           store,
		Language:        cfg.DefaultLanguage,
		Timeout:         cfg.Timeout,
		DisplayDuration: cfg.DisplayDuration,
		Logger:          log,
		Metrics:         a.Metrics.Metrics,
	})
	if err != nil {
		return nil, err
	}
	log.Info("dictator configured",
		"provider", a.Transcriber.Name(),
		"language", cfg.DefaultLanguage,
		"hotkey", cfg.Hotkey,
		"inject", cfg.InjectMode,
		"timeout", cfg.Timeout,
	)
	ready = true
	return a, nil
}

func loadDictionary(path string, log *slog.Logger) (*dictionary.Dictionary, error) {
	dict, err := dictionary.LoadFile(path)
	if err != nil {
		return nil, &config.ConfigError{Key: config.KeyDictionary, Err: err}
	}
	for _, lang := range language.All() {
		log.Debug("dictionary loaded", "language", lang, "words", strings.Join(dict.Words(lang), " "))
	}
	return dict, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
