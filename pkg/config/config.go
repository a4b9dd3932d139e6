// Package config loads and persists dictator settings in a .env file.
//
// Values set in the process environment take precedence over the file.
// Only DEFAULT_LANGUAGE and the provider credential are ever written back.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"dictator/pkg/language"
	"dictator/pkg/transcribe"
)

// Keys understood by Load.
const (
	KeyEnvFile         = "DICTATOR_ENV_FILE"
	KeyDefaultLanguage = "DEFAULT_LANGUAGE"
	KeyProvider        = "DICTATOR_PROVIDER"
	KeyModel           = "DICTATOR_MODEL"
	KeyBaseURL         = "DICTATOR_BASE_URL"
	KeyHotkey          = "DICTATOR_HOTKEY"
	KeyHotkeyMode      = "DICTATOR_HOTKEY_MODE"
	KeyInjectMode      = "DICTATOR_INJECT_MODE"
	KeyTimeout         = "DICTATOR_TIMEOUT"
	KeyDisplay         = "DICTATOR_DISPLAY"
	KeySettle          = "DICTATOR_SETTLE"
	KeyDictionary      = "DICTATOR_DICTIONARY"
	KeyLogFile         = "DICTATOR_LOG_FILE"
	KeyLogLevel        = "DICTATOR_LOG_LEVEL"
	KeyMetricsAddr     = "DICTATOR_METRICS_ADDR"
)

// Hotkey and injection modes.
const (
	HotkeyModeRegister = "register"
	HotkeyModeHook     = "hook"
	InjectModeType     = "type"
	InjectModePaste    = "paste"
)

const defaultEnvFile = ".env"

// ErrMissingCredential reports that no API key is configured for the
// selected provider.
var ErrMissingCredential = errors.New("no transcription credential configured")

// ConfigError is a fatal startup problem tied to one configuration key.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Config is the resolved, immutable startup configuration.
type Config struct {
	DefaultLanguage language.Language

	Provider      string
	CredentialKey string
	Credential    string
	Model         string
	BaseURL       string

	Hotkey     string
	HotkeyMode string
	InjectMode string

	Timeout         time.Duration
	DisplayDuration time.Duration
	SettleDelay     time.Duration

	DictionaryPath string
	LogFile        string
	LogLevel       string
	MetricsAddr    string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		DefaultLanguage: language.English,
		Provider:        transcribe.ProviderGroq,
		CredentialKey:   transcribe.CredentialKey(transcribe.ProviderGroq),
		Hotkey:          "f3",
		HotkeyMode:      HotkeyModeRegister,
		InjectMode:      InjectModeType,
		Timeout:         30 * time.Second,
		DisplayDuration: 3 * time.Second,
		SettleDelay:     100 * time.Millisecond,
		LogLevel:        "info",
	}
}

// RequireCredential returns a *ConfigError wrapping ErrMissingCredential
// when no credential is set.
func (c Config) RequireCredential() error {
	if c.Credential == "" {
		return &ConfigError{Key: c.CredentialKey, Err: ErrMissingCredential}
	}
	return nil
}

// Store reads and writes one .env file.
type Store struct {
	path string
}

// NewStore returns a store backed by path. An empty path resolves to
// $DICTATOR_ENV_FILE, then ".env" in the working directory.
func NewStore(path string) *Store {
	if path == "" {
		path = os.Getenv(KeyEnvFile)
	}
	if path == "" {
		path = defaultEnvFile
	}
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load resolves the configuration. A missing file is not an error.
func (s *Store) Load() (Config, error) {
	values, err := s.read()
	if err != nil {
		return Config{}, err
	}
	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(values[key])
	}

	cfg := Default()
	cfg.DefaultLanguage = language.ParseOrDefault(get(KeyDefaultLanguage))

	if v := get(KeyProvider); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if !validProvider(cfg.Provider) {
		return Config{}, &ConfigError{
			Key: KeyProvider,
			Err: fmt.Errorf("unknown provider %q (allowed: %s)", cfg.Provider, strings.Join(transcribe.Providers(), ", ")),
		}
	}
	cfg.CredentialKey = transcribe.CredentialKey(cfg.Provider)
	cfg.Credential = get(cfg.CredentialKey)
	cfg.Model = get(KeyModel)
	cfg.BaseURL = get(KeyBaseURL)

	if v := get(KeyHotkey); v != "" {
		cfg.Hotkey = strings.ToLower(v)
	}
	if cfg.HotkeyMode, err = oneOf(KeyHotkeyMode, get(KeyHotkeyMode), cfg.HotkeyMode, HotkeyModeRegister, HotkeyModeHook); err != nil {
		return Config{}, err
	}
	if cfg.InjectMode, err = oneOf(KeyInjectMode, get(KeyInjectMode), cfg.InjectMode, InjectModeType, InjectModePaste); err != nil {
		return Config{}, err
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{KeyTimeout, &cfg.Timeout},
		{KeyDisplay, &cfg.DisplayDuration},
		{KeySettle, &cfg.SettleDelay},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, get(d.key), d.dst); err != nil {
			return Config{}, err
		}
	}

	cfg.DictionaryPath = get(KeyDictionary)
	cfg.LogFile = get(KeyLogFile)
	if v := get(KeyLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.MetricsAddr = get(KeyMetricsAddr)
	return cfg, nil
}

// SaveDefaultLanguage persists lang as DEFAULT_LANGUAGE.
func (s *Store) SaveDefaultLanguage(lang language.Language) error {
	if !lang.Valid() {
		return &ConfigError{Key: KeyDefaultLanguage, Err: fmt.Errorf("invalid language %d", lang)}
	}
	return s.set(KeyDefaultLanguage, lang.String())
}

// SaveCredential persists an API key under key.
func (s *Store) SaveCredential(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return &ConfigError{Key: key, Err: ErrMissingCredential}
	}
	return s.set(key, value)
}

func (s *Store) read() (map[string]string, error) {
	values, err := godotenv.Read(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return values, nil
}

// set rewrites the file with key updated and every other key preserved.
func (s *Store) set(key, value string) error {
	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	if err := godotenv.Write(values, s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", s.path, err)
	}
	return nil
}

func validProvider(p string) bool {
	for _, known := range transcribe.Providers() {
		if p == known {
			return true
		}
	}
	return false
}

func oneOf(key, v, def string, allowed ...string) (string, error) {
	if v == "" {
		return def, nil
	}
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", &ConfigError{Key: key, Err: fmt.Errorf("invalid value %q (allowed: %s)", v, strings.Join(allowed, ", "))}
}

func parseDuration(key, v string, dst *time.Duration) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return &ConfigError{Key: key, Err: err}
	}
	if d < 0 {
		return &ConfigError{Key: key, Err: fmt.Errorf("negative duration %s", d)}
	}
	*dst = d
	return nil
}
