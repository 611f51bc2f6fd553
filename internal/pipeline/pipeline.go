// Package pipeline runs one audio request end to end: validate, sniff,
// decode with cascading fallback, normalize, transcribe, and score
// confidence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Lowellowuor/voicebridge/internal/audio"
	"github.com/Lowellowuor/voicebridge/internal/decode"
	"github.com/Lowellowuor/voicebridge/internal/metrics"
	"github.com/Lowellowuor/voicebridge/internal/sniff"
	"github.com/Lowellowuor/voicebridge/internal/transcribe"
)

// ErrEmptyInput is returned before any decode attempt when the raw buffer
// has zero length.
var ErrEmptyInput = errors.New("pipeline: audio input is empty")

// OversizeError is returned before any decode attempt when the input
// exceeds the configured size cap.
type OversizeError struct {
	Size  int
	Limit int
}

func (e *OversizeError) Error() string {
	return fmt.Sprintf("pipeline: audio input too large: %d bytes (limit %d)", e.Size, e.Limit)
}

// RawAudio is one uploaded recording. Filename and MIMEType are advisory
// hints from the upload layer; the pipeline never trusts them.
type RawAudio struct {
	Data     []byte
	Filename string
	MIMEType string
}

// Result is the record returned to the caller for one request.
type Result struct {
	Text       string               `json:"text"`
	Language   string               `json:"language"`
	Confidence float64              `json:"confidence"`
	Duration   float64              `json:"duration_seconds"`
	Segments   []transcribe.Segment `json:"segments"`
}

// Options configures a Pipeline.
type Options struct {
	// Cascade overrides the default adapter order; mainly for tests.
	Cascade *decode.Cascade
	// Metrics may be nil.
	Metrics *metrics.Metrics
	// MaxInputBytes caps the accepted input size. <= 0 disables the
	// check for callers that already enforce their own limit.
	MaxInputBytes int
}

// Pipeline converts raw uploaded audio into a transcription result. It is
// constructed once at process start and safe for concurrent use: requests
// share no mutable state and each owns its temporary artifacts.
type Pipeline struct {
	engine   transcribe.Engine
	cascade  *decode.Cascade
	metrics  *metrics.Metrics
	maxBytes int
}

// New builds a pipeline around the given transcription engine.
func New(engine transcribe.Engine, opts Options) *Pipeline {
	cascade := opts.Cascade
	if cascade == nil {
		cascade = decode.DefaultCascade(opts.Metrics)
	}
	return &Pipeline{
		engine:   engine,
		cascade:  cascade,
		metrics:  opts.Metrics,
		maxBytes: opts.MaxInputBytes,
	}
}

// Status reports the pipeline's engine for health endpoints.
func (p *Pipeline) Status() transcribe.Status {
	return p.engine.Status()
}

// Process runs one request. The raw bytes are written to a temporary file
// named after the sniffed container (for path-based adapters) and the file
// is removed on every exit path.
func (p *Pipeline) Process(ctx context.Context, raw RawAudio, language string) (*Result, error) {
	if len(raw.Data) == 0 {
		return nil, ErrEmptyInput
	}
	if p.maxBytes > 0 && len(raw.Data) > p.maxBytes {
		return nil, &OversizeError{Size: len(raw.Data), Limit: p.maxBytes}
	}

	format := sniff.Detect(raw.Data)
	slog.Debug("audio received", "bytes", len(raw.Data), "sniffed", format, "filename", raw.Filename)

	path, cleanup, err := spool(raw.Data, format)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	decoded, err := p.cascade.Run(ctx, decode.Input{Data: raw.Data, Path: path})
	if err != nil {
		return nil, err
	}

	return p.ProcessDecoded(ctx, decoded, language)
}

// ProcessDecoded runs the pipeline from the normalize step onward. Used for
// sources that already produce linear PCM, such as microphone capture.
func (p *Pipeline) ProcessDecoded(ctx context.Context, decoded audio.Decoded, language string) (*Result, error) {
	if len(decoded.Samples) == 0 {
		return nil, ErrEmptyInput
	}

	canonical := audio.Normalize(decoded)
	p.metrics.ObserveAudioDuration(canonical.Duration())

	start := time.Now()
	tr, err := p.engine.Transcribe(ctx, canonical, language)
	if err != nil {
		p.metrics.ObserveTranscriptionFailure()
		return nil, fmt.Errorf("pipeline: transcription: %w", err)
	}
	p.metrics.ObserveTranscription(time.Since(start).Seconds())

	confidence := transcribe.EstimateConfidence(tr.Segments)
	p.metrics.ObserveConfidence(confidence)

	lang := tr.Language
	if lang == "" {
		lang = language
	}

	slog.Info("transcription completed",
		"duration_seconds", canonical.Duration(),
		"language", lang,
		"confidence", confidence,
		"segments", len(tr.Segments))

	return &Result{
		Text:       tr.Text,
		Language:   lang,
		Confidence: confidence,
		Duration:   canonical.Duration(),
		Segments:   tr.Segments,
	}, nil
}

// spool writes the raw bytes to a temporary file whose extension matches
// the sniffed container, returning the path and a cleanup func.
func spool(data []byte, format sniff.Format) (string, func(), error) {
	f, err := os.CreateTemp("", "voicebridge-*"+format.Ext())
	if err != nil {
		return "", nil, fmt.Errorf("pipeline: create temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("pipeline: write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("pipeline: close temp file: %w", err)
	}
	return path, cleanup, nil
}
