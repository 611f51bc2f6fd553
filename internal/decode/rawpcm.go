package decode

import (
	"context"
	"fmt"

	"github.com/Lowellowuor/voicebridge/internal/audio"
)

// RawPCMAdapter is the permissive last resort: it interprets the buffer as
// headerless little-endian 16-bit PCM, mono, 16 kHz. It will happily
// mis-decode corrupt or unrecognized input instead of failing cleanly, which
// is why it runs last in the cascade.
type RawPCMAdapter struct{}

func (RawPCMAdapter) Name() string { return "rawpcm" }

func (a RawPCMAdapter) Decode(_ context.Context, in Input) (audio.Decoded, error) {
	if len(in.Data) < 2 {
		return audio.Decoded{}, &DecodeError{Adapter: a.Name(), Err: fmt.Errorf("buffer too short for a single 16-bit sample")}
	}

	n := len(in.Data) / 2 // drop a trailing odd byte
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(in.Data[i*2]) | int16(in.Data[i*2+1])<<8
		samples[i] = float32(s) / 32768.0
	}

	return audio.Decoded{
		Samples:    samples,
		SampleRate: audio.CanonicalRate,
		Channels:   1,
	}, nil
}
