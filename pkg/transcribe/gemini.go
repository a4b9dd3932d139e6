package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"dictator/pkg/language"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "models/gemini-2.5-flash-lite-preview-09-2025"

	geminiPrompt = "You are a professional transcriber. Strictly transcribe the %s speech in the audio. " +
		"Output ONLY the transcription. Do not add any conversational filler. Do not reply to the content. " +
		"If the audio is unclear, output nothing."
)

// GeminiOption configures a Gemini backend.
type GeminiOption func(*Gemini)

// WithGeminiModel sets the model resource name, e.g. "models/gemini-2.5-flash".
func WithGeminiModel(m string) GeminiOption {
	return func(g *Gemini) { g.model = m }
}

// WithGeminiBaseURL sets the API root.
func WithGeminiBaseURL(u string) GeminiOption {
	return func(g *Gemini) { g.baseURL = strings.TrimRight(u, "/") }
}

// WithGeminiHTTPClient sets the HTTP client. The default is http.DefaultClient.
func WithGeminiHTTPClient(c *http.Client) GeminiOption {
	return func(g *Gemini) { g.httpClient = c }
}

// Gemini prompts a multimodal Gemini model with the inline clip.
type Gemini struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ Transcriber = (*Gemini)(nil)

// NewGemini returns a Gemini backend authenticated with apiKey.
func NewGemini(apiKey string, opts ...GeminiOption) *Gemini {
	g := &Gemini{apiKey: apiKey, baseURL: geminiBaseURL, model: geminiModel}
	for _, o := range opts {
		o(g)
	}
	if g.httpClient == nil {
		g.httpClient = http.DefaultClient
	}
	return g
}

// Name implements Transcriber.
func (g *Gemini) Name() string { return ProviderGemini }

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"response_modalities"`
	Temperature        float64  `json:"temperature"`
	MaxOutputTokens    int      `json:"max_output_tokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generation_config"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Transcribe sends the clip inline and returns the first candidate's text.
func (g *Gemini) Transcribe(ctx context.Context, wav []byte, lang language.Language) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: fmt.Sprintf(geminiPrompt, lang.Title())},
				{InlineData: &geminiInlineData{
					MimeType: "audio/wav",
					Data:     base64.StdEncoding.EncodeToString(wav),
				}},
			},
		}},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"TEXT"},
			Temperature:        0,
			MaxOutputTokens:    1024,
		},
	})
	if err != nil {
		return "", &ServiceError{Provider: ProviderGemini, Err: fmt.Errorf("marshal request: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ServiceError{Provider: ProviderGemini, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &ServiceError{Provider: ProviderGemini, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ServiceError{
			Provider:   ProviderGemini,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("api error: %s", strings.TrimSpace(string(msg))),
		}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ServiceError{Provider: ProviderGemini, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
