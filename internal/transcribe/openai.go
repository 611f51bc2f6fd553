package transcribe

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Lowellowuor/voicebridge/internal/audio"
)

// OpenAIEngine transcribes through the hosted Whisper API. Canonical audio
// is serialized as a 16-bit PCM WAV upload; the verbose JSON response format
// carries per-segment avg_logprob values for confidence estimation.
type OpenAIEngine struct {
	client *openai.Client
	model  string
}

// NewOpenAIEngine creates a hosted engine. The API key comes from the
// environment (OPENAI_API_KEY); model is the hosted model name, typically
// "whisper-1".
func NewOpenAIEngine(apiKey, model string) (*OpenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcribe: OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAIEngine{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Close is a no-op; the HTTP client holds no resources needing release.
func (e *OpenAIEngine) Close() error { return nil }

// Status reports the hosted model in use.
func (e *OpenAIEngine) Status() Status {
	return Status{
		Backend:     "openai",
		Model:       e.model,
		ModelLoaded: true,
	}
}

// Transcribe uploads canonical audio and maps the verbose response into a
// Result.
func (e *OpenAIEngine) Transcribe(ctx context.Context, c audio.Canonical, language string) (*Result, error) {
	wavData, err := audio.EncodeWAV(c)
	if err != nil {
		return nil, fmt.Errorf("transcribe: encode upload: %w", err)
	}

	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.model,
		Reader:   bytes.NewReader(wavData),
		FilePath: "audio.wav",
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: language,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe: hosted transcription: %w", err)
	}

	result := &Result{
		Text:     resp.Text,
		Language: resp.Language,
	}
	if result.Language == "" {
		result.Language = language
	}
	for _, seg := range resp.Segments {
		lp := seg.AvgLogprob
		result.Segments = append(result.Segments, Segment{
			Text:       seg.Text,
			Start:      seg.Start,
			End:        seg.End,
			AvgLogProb: &lp,
		})
	}
	return result, nil
}
