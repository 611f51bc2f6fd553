// Package transcribe provides speech-to-text backends.
//
// Supported backends:
//   - whisper: whisper.cpp via Go bindings (default, runs locally)
//   - openai: hosted Whisper API
package transcribe

import (
	"context"
	"fmt"
	"os"

	"github.com/Lowellowuor/voicebridge/internal/audio"
	"github.com/Lowellowuor/voicebridge/internal/config"
)

// Segment is one span of transcribed speech. AvgLogProb is the engine's
// average log-probability for the span; nil when the backend does not
// report one.
type Segment struct {
	Text       string   `json:"text"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	AvgLogProb *float64 `json:"avg_logprob,omitempty"`
}

// Result is a completed transcription.
type Result struct {
	Text     string
	Language string
	Segments []Segment
}

// Engine converts canonical audio to text.
type Engine interface {
	// Transcribe converts canonical audio to text in the given target
	// language ("" lets the engine decide).
	Transcribe(ctx context.Context, c audio.Canonical, language string) (*Result, error)
	// Status describes the engine for health reporting.
	Status() Status
	// Close releases backend resources.
	Close() error
}

// Status describes a loaded engine.
type Status struct {
	Backend     string `json:"backend"`
	Model       string `json:"model"`
	ModelLoaded bool   `json:"model_loaded"`
}

// New creates an Engine based on the config backend setting.
func New(cfg *config.EngineConfig) (Engine, error) {
	switch cfg.Backend {
	case "openai":
		return NewOpenAIEngine(os.Getenv("OPENAI_API_KEY"), cfg.OpenAIModel)
	case "whisper", "":
		return NewWhisperEngine(cfg.ModelPath)
	default:
		return nil, fmt.Errorf("transcribe: unknown backend %q (supported: whisper, openai)", cfg.Backend)
	}
}
