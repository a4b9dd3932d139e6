// Package transcribe turns finished WAV clips into text using a remote
// speech-to-text service.
//
// Every backend reports failures as *ServiceError so the caller can surface
// a single user-visible message regardless of provider. No backend retries.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"dictator/pkg/language"
)

// Provider names accepted by New.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderGoogle = "google"
)

// Transcriber converts a WAV clip to plain text.
type Transcriber interface {
	// Transcribe blocks until the service answers or ctx is done.
	Transcribe(ctx context.Context, wav []byte, lang language.Language) (string, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}

// ServiceError is returned for any failed remote call: network, auth,
// quota or an unreadable response.
type ServiceError struct {
	Provider   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s transcription failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s transcription failed: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsServiceError reports whether err carries a *ServiceError.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// Config selects and parameterises a backend.
type Config struct {
	Provider string
	APIKey   string
	// Model overrides the provider's default model.
	Model string
	// BaseURL overrides the provider's API root. Used by tests and
	// self-hosted OpenAI-compatible servers.
	BaseURL string
	// HTTPClient is used by the HTTP backends; nil means NewHTTPClient().
	HTTPClient *http.Client
}

// Providers lists the accepted provider names.
func Providers() []string {
	return []string{ProviderGroq, ProviderOpenAI, ProviderGemini, ProviderGoogle}
}

// CredentialKey returns the configuration key holding the API credential
// for provider.
func CredentialKey(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return "GROQ_API_KEY"
	}
}

// New builds the backend named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("transcribe: API key is required")
	}
	if cfg.HTTPClient == nil {
		c, err := NewHTTPClient()
		if err != nil {
			return nil, err
		}
		cfg.HTTPClient = c
	}
	switch strings.ToLower(cfg.Provider) {
	case ProviderGroq, "":
		return NewWhisper(cfg.APIKey, withDefaults(cfg, groqBaseURL, groqModel, ProviderGroq)...), nil
	case ProviderOpenAI:
		return NewWhisper(cfg.APIKey, withDefaults(cfg, openAIBaseURL, openAIModel, ProviderOpenAI)...), nil
	case ProviderGemini:
		opts := []GeminiOption{WithGeminiHTTPClient(cfg.HTTPClient)}
		if cfg.Model != "" {
			opts = append(opts, WithGeminiModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithGeminiBaseURL(cfg.BaseURL))
		}
		return NewGemini(cfg.APIKey, opts...), nil
	case ProviderGoogle:
		return NewGoogleSpeech(ctx, cfg.APIKey, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("transcribe: unknown provider %q (supported: %s)", cfg.Provider, strings.Join(Providers(), ", "))
	}
}

func withDefaults(cfg Config, baseURL, model, name string) []WhisperOption {
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if cfg.Model != "" {
		model = cfg.Model
	}
	return []WhisperOption{
		WithBaseURL(baseURL),
		WithModel(model),
		WithName(name),
		WithHTTPClient(cfg.HTTPClient),
	}
}
