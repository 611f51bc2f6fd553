// Package decode turns raw encoded audio bytes into linear PCM sample
// buffers. Three adapters with different format and robustness tradeoffs are
// tried in a fixed order by Cascade; each adapter is isolated and fails
// independently.
package decode

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lowellowuor/voicebridge/internal/audio"
)

// Input is one decode request. Data is always present. Path points at a
// temporary copy of the same bytes for adapters that need a file on disk;
// it may be empty when no file was materialized.
type Input struct {
	Data []byte
	Path string
}

// Adapter is one strategy for decoding encoded audio. Implementations must
// not share mutable state and must not leave partial results behind on
// failure.
type Adapter interface {
	// Name identifies the adapter in errors, logs and metrics.
	Name() string
	// Decode converts the input to linear PCM at its native sample rate
	// and channel count.
	Decode(ctx context.Context, in Input) (audio.Decoded, error)
}

// DecodeError is a single adapter's failure. Recoverable: the cascade
// records it and moves on to the next adapter.
type DecodeError struct {
	Adapter string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: adapter %s: %v", e.Adapter, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Attempt records one adapter's outcome within a cascade run.
type Attempt struct {
	Adapter string
	Err     error
}

// AllFailedError is raised when every adapter in the cascade failed. It
// carries the ordered per-adapter trail so callers can see which strategies
// ran and why each one failed, not just the last.
type AllFailedError struct {
	Attempts []Attempt
}

func (e *AllFailedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Adapter, a.Err)
	}
	return "decode: all adapters failed: " + strings.Join(parts, "; ")
}
