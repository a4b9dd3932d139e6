package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dictator/pkg/language"
)

// clearEnv blanks every key Load consults so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		KeyDefaultLanguage, KeyProvider, KeyModel, KeyBaseURL, KeyHotkey, KeyHotkeyMode,
		KeyInjectMode, KeyTimeout, KeyDisplay, KeySettle, KeyDictionary, KeyLogFile,
		KeyLogLevel, KeyMetricsAddr, KeyEnvFile,
		"GROQ_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	} {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	s := NewStore(filepath.Join(t.TempDir(), "absent.env"))
	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("Load = %+v, want %+v", cfg, want)
	}
	if !errors.Is(cfg.RequireCredential(), ErrMissingCredential) {
		t.Error("RequireCredential should report the missing key")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeEnv(t, strings.Join([]string{
		"DEFAULT_LANGUAGE=spanish",
		"GROQ_API_KEY=gsk_test",
		"DICTATOR_HOTKEY=Ctrl+F9",
		"DICTATOR_INJECT_MODE=paste",
		"DICTATOR_TIMEOUT=5s",
		"DICTATOR_SETTLE=250ms",
	}, "\n"))

	cfg, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLanguage != language.Spanish {
		t.Errorf("DefaultLanguage = %v", cfg.DefaultLanguage)
	}
	if cfg.CredentialKey != "GROQ_API_KEY" || cfg.Credential != "gsk_test" {
		t.Errorf("credential = %s=%q", cfg.CredentialKey, cfg.Credential)
	}
	if cfg.Hotkey != "ctrl+f9" || cfg.InjectMode != InjectModePaste {
		t.Errorf("hotkey = %q inject = %q", cfg.Hotkey, cfg.InjectMode)
	}
	if cfg.Timeout != 5*time.Second || cfg.SettleDelay != 250*time.Millisecond || cfg.DisplayDuration != 3*time.Second {
		t.Errorf("durations = %v %v %v", cfg.Timeout, cfg.SettleDelay, cfg.DisplayDuration)
	}
	if err := cfg.RequireCredential(); err != nil {
		t.Errorf("RequireCredential: %v", err)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeEnv(t, "DEFAULT_LANGUAGE=spanish\nDICTATOR_PROVIDER=groq\n")
	t.Setenv(KeyDefaultLanguage, "english")
	t.Setenv(KeyProvider, "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLanguage != language.English {
		t.Errorf("DefaultLanguage = %v, want english", cfg.DefaultLanguage)
	}
	if cfg.Provider != "openai" || cfg.CredentialKey != "OPENAI_API_KEY" || cfg.Credential != "sk-env" {
		t.Errorf("provider = %q %s=%q", cfg.Provider, cfg.CredentialKey, cfg.Credential)
	}
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	clearEnv(t)
	cfg, err := NewStore(writeEnv(t, "DEFAULT_LANGUAGE=klingon\n")).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLanguage != language.English {
		t.Errorf("DefaultLanguage = %v", cfg.DefaultLanguage)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		content string
		key     string
	}{
		{"DICTATOR_PROVIDER=azure", KeyProvider},
		{"DICTATOR_HOTKEY_MODE=poll", KeyHotkeyMode},
		{"DICTATOR_INJECT_MODE=dictate", KeyInjectMode},
		{"DICTATOR_TIMEOUT=soon", KeyTimeout},
		{"DICTATOR_DISPLAY=-1s", KeyDisplay},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			_, err := NewStore(writeEnv(t, tt.content+"\n")).Load()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
			if ce.Key != tt.key {
				t.Errorf("Key = %q, want %q", ce.Key, tt.key)
			}
		})
	}
}

func TestDefaultLanguagePersistsAcrossLoads(t *testing.T) {
	clearEnv(t)
	path := writeEnv(t, "GROQ_API_KEY=gsk_keep\nDEFAULT_LANGUAGE=english\n")

	if err := NewStore(path).SaveDefaultLanguage(language.Spanish); err != nil {
		t.Fatalf("SaveDefaultLanguage: %v", err)
	}

	cfg, err := NewStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLanguage != language.Spanish {
		t.Errorf("DefaultLanguage = %v, want spanish", cfg.DefaultLanguage)
	}
	if cfg.Credential != "gsk_keep" {
		t.Errorf("credential lost on rewrite: %q", cfg.Credential)
	}
}

func TestSaveDefaultLanguageCreatesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "new.env")
	s := NewStore(path)
	if err := s.SaveDefaultLanguage(language.Spanish); err != nil {
		t.Fatalf("SaveDefaultLanguage: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %v, want 0600", perm)
	}
	if err := s.SaveDefaultLanguage(language.Language(42)); err == nil {
		t.Error("expected error for invalid language")
	}
}

func TestNewStoreUsesEnvFileVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv(KeyEnvFile, "/tmp/custom.env")
	if got := NewStore("").Path(); got != "/tmp/custom.env" {
		t.Errorf("Path = %q", got)
	}
	os.Unsetenv(KeyEnvFile)
	if got := NewStore("").Path(); got != ".env" {
		t.Errorf("Path = %q, want .env", got)
	}
}

func TestPromptCredential(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	s := NewStore(path)

	var out strings.Builder
	got, err := s.PromptCredential(strings.NewReader("  gsk_typed \n"), &out, "GROQ_API_KEY")
	if err != nil {
		t.Fatalf("PromptCredential: %v", err)
	}
	if got != "gsk_typed" {
		t.Errorf("value = %q", got)
	}
	if !strings.Contains(out.String(), "GROQ_API_KEY") {
		t.Errorf("prompt = %q", out.String())
	}

	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Credential != "gsk_typed" {
		t.Errorf("persisted credential = %q", cfg.Credential)
	}
}

func TestPromptCredentialEmpty(t *testing.T) {
	clearEnv(t)
	s := NewStore(filepath.Join(t.TempDir(), ".env"))
	for _, in := range []string{"\n", ""} {
		_, err := s.PromptCredential(strings.NewReader(in), &strings.Builder{}, "GROQ_API_KEY")
		if !errors.Is(err, ErrMissingCredential) {
			t.Errorf("input %q: err = %v, want ErrMissingCredential", in, err)
		}
	}
	if _, err := os.Stat(s.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Error("empty answer must not create the file")
	}
}
