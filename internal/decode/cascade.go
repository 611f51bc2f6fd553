package decode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lowellowuor/voicebridge/internal/audio"
	"github.com/Lowellowuor/voicebridge/internal/metrics"
)

// Cascade tries decoder adapters in a fixed priority order: short-circuit on
// the first success, collect every failure, raise AllFailedError only when
// no adapter succeeds. Each adapter runs at most once per call; decode
// failures are not transient, so there is no retry or backoff.
type Cascade struct {
	adapters []Adapter
	metrics  *metrics.Metrics
}

// NewCascade builds a cascade over the given adapters, tried in argument
// order. The metrics handle may be nil.
func NewCascade(m *metrics.Metrics, adapters ...Adapter) *Cascade {
	return &Cascade{adapters: adapters, metrics: m}
}

// DefaultCascade wires the production adapter order: sample-accurate native
// readers first, the ffmpeg toolchain second, the permissive raw-PCM guess
// last.
func DefaultCascade(m *metrics.Metrics) *Cascade {
	return NewCascade(m, NativeAdapter{}, FFmpegAdapter{}, RawPCMAdapter{})
}

// Run decodes the input with the first adapter that succeeds. An adapter
// result with no samples or a non-positive rate or channel count counts as
// that adapter failing.
func (c *Cascade) Run(ctx context.Context, in Input) (audio.Decoded, error) {
	if len(c.adapters) == 0 {
		return audio.Decoded{}, fmt.Errorf("decode: no adapters configured")
	}

	attempts := make([]Attempt, 0, len(c.adapters))
	for _, adapter := range c.adapters {
		d, err := adapter.Decode(ctx, in)
		if err == nil {
			err = validate(adapter.Name(), d)
		}
		if err == nil {
			c.metrics.ObserveDecodeAttempt(adapter.Name(), "success")
			slog.Debug("audio decoded", "adapter", adapter.Name(),
				"sample_rate", d.SampleRate, "channels", d.Channels, "frames", d.Frames())
			return d, nil
		}

		var de *DecodeError
		if !errors.As(err, &de) {
			err = &DecodeError{Adapter: adapter.Name(), Err: err}
		}
		c.metrics.ObserveDecodeAttempt(adapter.Name(), "failure")
		slog.Warn("decode adapter failed", "adapter", adapter.Name(), "error", err)
		attempts = append(attempts, Attempt{Adapter: adapter.Name(), Err: err})
	}

	c.metrics.ObserveDecodeExhausted()
	return audio.Decoded{}, &AllFailedError{Attempts: attempts}
}

// validate rejects degenerate adapter output.
func validate(adapter string, d audio.Decoded) error {
	if len(d.Samples) == 0 {
		return &DecodeError{Adapter: adapter, Err: fmt.Errorf("decoded zero samples")}
	}
	if d.SampleRate <= 0 {
		return &DecodeError{Adapter: adapter, Err: fmt.Errorf("invalid sample rate %d", d.SampleRate)}
	}
	if d.Channels <= 0 {
		return &DecodeError{Adapter: adapter, Err: fmt.Errorf("invalid channel count %d", d.Channels)}
	}
	return nil
}
