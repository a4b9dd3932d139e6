package transcribe

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"dictator/pkg/language"
)

// Clips are mono 16-bit PCM at 16 kHz.
const (
	googleSampleRate = 16000
	googleChannels   = 1
)

// GoogleSpeech uses Cloud Speech-to-Text synchronous recognition.
type GoogleSpeech struct {
	client *speech.Client
}

var _ Transcriber = (*GoogleSpeech)(nil)

// NewGoogleSpeech dials Cloud Speech with an API key. A non-empty endpoint
// replaces the default service address.
func NewGoogleSpeech(ctx context.Context, apiKey, endpoint string, extra ...option.ClientOption) (*GoogleSpeech, error) {
	var opts []option.ClientOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	opts = append(opts, extra...)
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("transcribe: create speech client: %w", err)
	}
	return &GoogleSpeech{client: c}, nil
}

// Name implements Transcriber.
func (g *GoogleSpeech) Name() string { return ProviderGoogle }

// Close closes the gRPC connection.
func (g *GoogleSpeech) Close() error { return g.client.Close() }

// Transcribe joins the top alternative of every result with spaces.
func (g *GoogleSpeech) Transcribe(ctx context.Context, wav []byte, lang language.Language) (string, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            googleSampleRate,
			AudioChannelCount:          googleChannels,
			LanguageCode:               lang.Locale(),
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: wav},
		},
	})
	if err != nil {
		return "", &ServiceError{Provider: ProviderGoogle, Err: err}
	}

	var parts []string
	for _, r := range resp.GetResults() {
		if alts := r.GetAlternatives(); len(alts) > 0 {
			if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " "), nil
}
