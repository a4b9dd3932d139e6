package transcribe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"dictator/pkg/language"
)

var testClip = []byte("RIFF....WAVEfmt fake clip")

func TestWhisperTranscribe(t *testing.T) {
	var gotPath, gotAuth string
	fields := map[string]string{}
	var gotFile []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		f, _, err := r.FormFile("file")
		if err == nil {
			gotFile, _ = io.ReadAll(f)
			f.Close()
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, " Hola Mundo\n")
	}))
	defer srv.Close()

	w := NewWhisper("secret", WithBaseURL(srv.URL+"/openai/v1"), WithHTTPClient(srv.Client()))
	text, err := w.Transcribe(context.Background(), testClip, language.Spanish)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "Hola Mundo" {
		t.Errorf("text = %q, want %q", text, "Hola Mundo")
	}
	if gotPath != "/openai/v1/audio/transcriptions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if fields["language"] != "es" || fields["model"] != groqModel || fields["response_format"] != "text" {
		t.Errorf("form fields = %v", fields)
	}
	if string(gotFile) != string(testClip) {
		t.Errorf("uploaded file = %q", gotFile)
	}
	if w.Name() != ProviderGroq {
		t.Errorf("Name = %q", w.Name())
	}
}

func TestWhisperServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	w := NewWhisper("bad", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	_, err := w.Transcribe(context.Background(), testClip, language.English)
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %T %v, want *ServiceError", err, err)
	}
	if se.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d", se.StatusCode)
	}
	if se.Provider != ProviderGroq {
		t.Errorf("Provider = %q", se.Provider)
	}
}

func TestWhisperNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	w := NewWhisper("k", WithBaseURL(url))
	_, err := w.Transcribe(context.Background(), testClip, language.English)
	if !IsServiceError(err) {
		t.Fatalf("err = %v, want ServiceError", err)
	}
}

func TestWhisperContextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	w := NewWhisper("k", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := w.Transcribe(ctx, testClip, language.English)
	if !IsServiceError(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want ServiceError wrapping DeadlineExceeded", err)
	}
}

func TestGeminiTranscribe(t *testing.T) {
	var got geminiRequest
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"hello "},{"text":"there\n"}]}}]}`)
	}))
	defer srv.Close()

	g := NewGemini("k&y", WithGeminiBaseURL(srv.URL+"/"), WithGeminiModel("models/test"), WithGeminiHTTPClient(srv.Client()))
	text, err := g.Transcribe(context.Background(), testClip, language.Spanish)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello there" {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/models/test:generateContent" || gotKey != "k&y" {
		t.Errorf("path = %q key = %q", gotPath, gotKey)
	}
	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 2 {
		t.Fatalf("request contents = %+v", got.Contents)
	}
	if !strings.Contains(got.Contents[0].Parts[0].Text, "Spanish") {
		t.Errorf("prompt does not name the language: %q", got.Contents[0].Parts[0].Text)
	}
	inline := got.Contents[0].Parts[1].InlineData
	if inline == nil || inline.MimeType != "audio/wav" || inline.Data != base64.StdEncoding.EncodeToString(testClip) {
		t.Errorf("inline data = %+v", inline)
	}
}

func TestGeminiErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGemini("k", WithGeminiBaseURL(srv.URL), WithGeminiHTTPClient(srv.Client()))
	_, err := g.Transcribe(context.Background(), testClip, language.English)
	var se *ServiceError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want 429 ServiceError", err)
	}
	if !strings.Contains(se.Error(), "quota exceeded") {
		t.Errorf("error message = %q", se.Error())
	}
}

func TestGeminiMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	}))
	defer srv.Close()

	g := NewGemini("k", WithGeminiBaseURL(srv.URL), WithGeminiHTTPClient(srv.Client()))
	if _, err := g.Transcribe(context.Background(), testClip, language.English); !IsServiceError(err) {
		t.Fatalf("err = %v, want ServiceError", err)
	}
}

type fakeSpeechServer struct {
	speechpb.UnimplementedSpeechServer
	req *speechpb.RecognizeRequest
	err error
}

func (f *fakeSpeechServer) Recognize(_ context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &speechpb.RecognizeResponse{Results: []*speechpb.SpeechRecognitionResult{
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "buenos dias"}, {Transcript: "ignored"}}},
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: " amigo "}}},
		{},
	}}, nil
}

func startFakeSpeech(t *testing.T, fake *fakeSpeechServer) *GoogleSpeech {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpc.NewServer()
	speechpb.RegisterSpeechServer(srv, fake)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	g, err := NewGoogleSpeech(context.Background(), "", "", option.WithGRPCConn(conn))
	if err != nil {
		t.Fatalf("NewGoogleSpeech: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestGoogleSpeechTranscribe(t *testing.T) {
	fake := &fakeSpeechServer{}
	g := startFakeSpeech(t, fake)

	text, err := g.Transcribe(context.Background(), testClip, language.Spanish)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "buenos dias amigo" {
		t.Errorf("text = %q", text)
	}
	cfg := fake.req.GetConfig()
	if cfg.GetLanguageCode() != "es-ES" || cfg.GetSampleRateHertz() != 16000 || cfg.GetEncoding() != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("config = %v", cfg)
	}
	if string(fake.req.GetAudio().GetContent()) != string(testClip) {
		t.Error("audio content not forwarded")
	}
}

func TestGoogleSpeechError(t *testing.T) {
	g := startFakeSpeech(t, &fakeSpeechServer{err: errors.New("boom")})
	_, err := g.Transcribe(context.Background(), testClip, language.English)
	if !IsServiceError(err) {
		t.Fatalf("err = %v, want ServiceError", err)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Config{Provider: ProviderGroq}); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := New(ctx, Config{Provider: "azure", APIKey: "k"}); err == nil {
		t.Error("expected error for unknown provider")
	}

	tests := []struct {
		provider string
		want     string
	}{
		{"", ProviderGroq},
		{"groq", ProviderGroq},
		{"OpenAI", ProviderOpenAI},
		{"gemini", ProviderGemini},
	}
	for _, tt := range tests {
		tr, err := New(ctx, Config{Provider: tt.provider, APIKey: "k"})
		if err != nil {
			t.Fatalf("New(%q): %v", tt.provider, err)
		}
		if tr.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.provider, tr.Name(), tt.want)
		}
	}

	tr, _ := New(ctx, Config{Provider: ProviderOpenAI, APIKey: "k"})
	if w := tr.(*Whisper); w.model != openAIModel || w.baseURL != openAIBaseURL {
		t.Errorf("openai defaults = %q %q", w.model, w.baseURL)
	}
	tr, _ = New(ctx, Config{Provider: ProviderGroq, APIKey: "k", Model: "distil", BaseURL: "http://local"})
	if w := tr.(*Whisper); w.model != "distil" || w.baseURL != "http://local" {
		t.Errorf("overrides = %q %q", w.model, w.baseURL)
	}
}

func TestCredentialKey(t *testing.T) {
	tests := map[string]string{
		"groq":   "GROQ_API_KEY",
		"":       "GROQ_API_KEY",
		"openai": "OPENAI_API_KEY",
		"gemini": "GEMINI_API_KEY",
		"google": "GOOGLE_API_KEY",
	}
	for provider, want := range tests {
		if got := CredentialKey(provider); got != want {
			t.Errorf("CredentialKey(%q) = %q, want %q", provider, got, want)
		}
	}
}

func TestNewHTTPClient(t *testing.T) {
	c, err := NewHTTPClient()
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport = %T", c.Transport)
	}
	if _, ok := tr.TLSNextProto["h2"]; !ok {
		t.Error("transport not configured for h2")
	}
}
