package transcribe

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"dictator/pkg/language"
)

const (
	groqBaseURL   = "https://api.groq.com/openai/v1"
	groqModel     = "whisper-large-v3-turbo"
	openAIBaseURL = "https://api.openai.com/v1"
	openAIModel   = openai.Whisper1
)

// WhisperOption configures a Whisper backend.
type WhisperOption func(*Whisper)

// WithBaseURL sets the OpenAI-compatible API root.
func WithBaseURL(u string) WhisperOption {
	return func(w *Whisper) { w.baseURL = u }
}

// WithModel sets the transcription model.
func WithModel(m string) WhisperOption {
	return func(w *Whisper) { w.model = m }
}

// WithName sets the provider name reported in errors.
func WithName(n string) WhisperOption {
	return func(w *Whisper) { w.name = n }
}

// WithHTTPClient sets the HTTP client. The default is http.DefaultClient.
func WithHTTPClient(c *http.Client) WhisperOption {
	return func(w *Whisper) { w.httpClient = c }
}

// Whisper talks to any OpenAI-compatible /audio/transcriptions endpoint.
// The defaults target Groq's hosted whisper-large-v3-turbo.
type Whisper struct {
	name       string
	baseURL    string
	model      string
	httpClient *http.Client
	client     *openai.Client
}

var _ Transcriber = (*Whisper)(nil)

// NewWhisper returns a Whisper backend authenticated with apiKey.
func NewWhisper(apiKey string, opts ...WhisperOption) *Whisper {
	w := &Whisper{
		name:    ProviderGroq,
		baseURL: groqBaseURL,
		model:   groqModel,
	}
	for _, o := range opts {
		o(w)
	}
	if w.httpClient == nil {
		w.httpClient = http.DefaultClient
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(w.baseURL, "/")
	cfg.HTTPClient = w.httpClient
	w.client = openai.NewClientWithConfig(cfg)
	return w
}

// Name implements Transcriber.
func (w *Whisper) Name() string { return w.name }

// Transcribe uploads the clip as audio.wav and returns the plain-text reply.
func (w *Whisper) Transcribe(ctx context.Context, wav []byte, lang language.Language) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(wav),
		Language: lang.Code(),
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", &ServiceError{Provider: w.name, StatusCode: statusOf(err), Err: err}
	}
	return strings.TrimSpace(resp.Text), nil
}

func statusOf(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
