// Package metrics defines Prometheus instrumentation for the audio pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the audio pipeline. A nil
// *Metrics is valid everywhere it is accepted; observations are dropped.
type Metrics struct {
	// Decode cascade
	DecodeAttempts  *prometheus.CounterVec
	DecodeExhausted prometheus.Counter
	DecodedDuration prometheus.Histogram

	// Transcription
	TranscriptionDuration prometheus.Histogram
	TranscriptionFailures prometheus.Counter
	Confidence            prometheus.Histogram
}

// New creates and registers all pipeline metrics with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DecodeAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicebridge_decode_attempts_total",
			Help: "Decode attempts by adapter and outcome",
		}, []string{"adapter", "status"}),
		DecodeExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicebridge_decode_exhausted_total",
			Help: "Requests for which every decode adapter failed",
		}),
		DecodedDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicebridge_audio_duration_seconds",
			Help:    "Duration of successfully decoded audio",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicebridge_transcription_duration_seconds",
			Help:    "Wall time spent in the transcription engine",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicebridge_transcription_failures_total",
			Help: "Transcription engine errors",
		}),
		Confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicebridge_confidence_score",
			Help:    "Distribution of confidence scores returned to callers",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
		}),
	}
}

// ObserveDecodeAttempt records one adapter attempt.
func (m *Metrics) ObserveDecodeAttempt(adapter, status string) {
	if m == nil {
		return
	}
	m.DecodeAttempts.WithLabelValues(adapter, status).Inc()
}

// ObserveDecodeExhausted records a request that no adapter could decode.
func (m *Metrics) ObserveDecodeExhausted() {
	if m == nil {
		return
	}
	m.DecodeExhausted.Inc()
}

// ObserveAudioDuration records the duration of decoded audio in seconds.
func (m *Metrics) ObserveAudioDuration(seconds float64) {
	if m == nil {
		return
	}
	m.DecodedDuration.Observe(seconds)
}

// ObserveTranscription records engine wall time in seconds.
func (m *Metrics) ObserveTranscription(seconds float64) {
	if m == nil {
		return
	}
	m.TranscriptionDuration.Observe(seconds)
}

// ObserveTranscriptionFailure records an engine error.
func (m *Metrics) ObserveTranscriptionFailure() {
	if m == nil {
		return
	}
	m.TranscriptionFailures.Inc()
}

// ObserveConfidence records a returned confidence score.
func (m *Metrics) ObserveConfidence(score float64) {
	if m == nil {
		return
	}
	m.Confidence.Observe(score)
}
