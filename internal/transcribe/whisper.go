package transcribe

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/Lowellowuor/voicebridge/internal/audio"
)

// WhisperEngine runs speech-to-text locally through a whisper.cpp model.
type WhisperEngine struct {
	model     whisper.Model
	modelPath string
}

// NewWhisperEngine loads a whisper model from the given path.
// The caller must call Close() when done.
func NewWhisperEngine(modelPath string) (*WhisperEngine, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: load whisper model %q: %w", modelPath, err)
	}
	return &WhisperEngine{model: model, modelPath: modelPath}, nil
}

// Close releases the whisper model resources.
func (e *WhisperEngine) Close() error {
	if e.model != nil {
		return e.model.Close()
	}
	return nil
}

// Status reports the loaded model.
func (e *WhisperEngine) Status() Status {
	return Status{
		Backend:     "whisper",
		Model:       filepath.Base(e.modelPath),
		ModelLoaded: e.model != nil,
	}
}

// Transcribe converts canonical audio to text.
func (e *WhisperEngine) Transcribe(ctx context.Context, c audio.Canonical, language string) (*Result, error) {
	wctx, err := e.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("transcribe: create context: %w", err)
	}

	if language != "" {
		if err := wctx.SetLanguage(language); err != nil {
			return nil, fmt.Errorf("transcribe: set language %q: %w", language, err)
		}
	}

	if err := wctx.Process(c.Samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("transcribe: process: %w", err)
	}

	result := &Result{Language: language}
	var texts []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transcribe: next segment: %w", err)
		}

		texts = append(texts, seg.Text)
		result.Segments = append(result.Segments, Segment{
			Text:       strings.TrimSpace(seg.Text),
			Start:      seg.Start.Seconds(),
			End:        seg.End.Seconds(),
			AvgLogProb: segmentLogProb(seg),
		})
	}

	result.Text = strings.TrimSpace(strings.Join(texts, " "))
	return result, nil
}

// segmentLogProb derives an average log-probability from the segment's token
// probabilities. whisper.cpp reports per-token probabilities rather than an
// avg_logprob field, so the mean token probability is mapped through log to
// match the shape the confidence estimator expects. Nil when the segment has
// no tokens.
func segmentLogProb(seg whisper.Segment) *float64 {
	if len(seg.Tokens) == 0 {
		return nil
	}
	var sum float64
	for _, tok := range seg.Tokens {
		sum += float64(tok.P)
	}
	mean := sum / float64(len(seg.Tokens))
	if mean <= 0 {
		mean = math.SmallestNonzeroFloat64
	}
	lp := math.Log(mean)
	return &lp
}
