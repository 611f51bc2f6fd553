// Package audio defines the sample buffer types that move through the
// decode pipeline, and the normalization step that produces the canonical
// form the transcription engine expects.
package audio

// CanonicalRate is the sample rate required by the transcription engine.
const CanonicalRate = 16000

// PeakTarget is the amplitude the loudest sample is scaled to during
// normalization. 90% of full scale leaves headroom against clipping.
const PeakTarget = 0.9

// Decoded is the output of a single decoder adapter: linear PCM samples at
// the source's native rate and channel layout. Multi-channel samples are
// interleaved.
type Decoded struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (d Decoded) Frames() int {
	if d.Channels <= 0 {
		return 0
	}
	return len(d.Samples) / d.Channels
}

// Canonical is the only audio form that crosses into the transcription
// engine: mono, 16 kHz, float32, peak amplitude at most PeakTarget
// (all-zero for silence).
type Canonical struct {
	Samples []float32
}

// Duration returns the audio length in seconds.
func (c Canonical) Duration() float64 {
	return float64(len(c.Samples)) / float64(CanonicalRate)
}
