package audio

import "math"

// sincTaps is the half-width of the windowed-sinc resampling kernel.
// 16 zero crossings per side is enough for speech; the kernel is Hann
// windowed to bound ringing.
const sincTaps = 16

// Normalize converts decoded audio into the canonical form: downmix to mono
// by averaging, resample to 16 kHz, peak-normalize to PeakTarget. Degenerate
// inputs (no samples, silence) produce degenerate but well-formed output;
// there is no failure path.
func Normalize(d Decoded) Canonical {
	samples := Downmix(d.Samples, d.Channels)
	if d.SampleRate != CanonicalRate && d.SampleRate > 0 {
		samples = Resample(samples, d.SampleRate, CanonicalRate)
	}
	normalizePeak(samples)
	return Canonical{Samples: samples}
}

// Downmix reduces interleaved multi-channel samples to mono by arithmetic
// mean. Mono input is returned as-is.
func Downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}

// Resample converts mono samples from srcRate to dstRate using a
// Hann-windowed sinc kernel. Output length is round(n * dstRate / srcRate).
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(math.Round(float64(len(samples)) * float64(dstRate) / float64(srcRate)))
	out := make([]float32, outLen)

	// When downsampling, widen the kernel and lower its cutoff to the
	// destination Nyquist so aliasing energy is attenuated.
	cutoff := 1.0
	if ratio > 1 {
		cutoff = 1 / ratio
	}

	for i := range out {
		center := float64(i) * ratio
		lo := int(math.Ceil(center - sincTaps/cutoff))
		hi := int(math.Floor(center + sincTaps/cutoff))
		if lo < 0 {
			lo = 0
		}
		if hi > len(samples)-1 {
			hi = len(samples) - 1
		}

		var acc, norm float64
		for j := lo; j <= hi; j++ {
			w := windowedSinc((float64(j)-center)*cutoff, sincTaps)
			acc += w * float64(samples[j])
			norm += w
		}
		if norm != 0 {
			out[i] = float32(acc / norm)
		}
	}
	return out
}

// windowedSinc evaluates sinc(x) under a Hann window of half-width taps.
func windowedSinc(x float64, taps int) float64 {
	if math.Abs(x) >= float64(taps) {
		return 0
	}
	var sinc float64 = 1
	if x != 0 {
		px := math.Pi * x
		sinc = math.Sin(px) / px
	}
	hann := 0.5 * (1 + math.Cos(math.Pi*x/float64(taps)))
	return sinc * hann
}

// normalizePeak scales samples in place so the maximum absolute amplitude
// equals PeakTarget. All-zero input is left untouched.
func normalizePeak(samples []float32) {
	var peak float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	scale := float32(PeakTarget) / peak
	for i := range samples {
		samples[i] *= scale
	}
}
