package transcribe

import "math"

// DefaultConfidence is returned when no segment carries a log-probability.
const DefaultConfidence = 0.7

// EstimateConfidence derives a single scalar confidence in [0.1, 0.99] from
// per-segment average log-probabilities.
//
// Each log-probability lp maps linearly to clamp((lp+10)/10, 0, 1): lp >= 0
// counts as full confidence, lp <= -10 as none. The result is the mean of
// the per-segment values, clamped to [0.1, 0.99] and rounded to two decimal
// places, half to even. The floor and ceiling keep callers from ever seeing
// exactly 0 or 1, which would read as certainty. The mapping is a
// calibration heuristic, not a probabilistic guarantee.
//
// Estimation never fails: with no segments, or no segment carrying a
// log-probability, it returns DefaultConfidence.
func EstimateConfidence(segments []Segment) float64 {
	if len(segments) == 0 {
		return DefaultConfidence
	}

	var sum float64
	var n int
	for _, seg := range segments {
		if seg.AvgLogProb == nil {
			continue
		}
		c := (*seg.AvgLogProb + 10) / 10
		if c < 0 {
			c = 0
		} else if c > 1 {
			c = 1
		}
		sum += c
		n++
	}
	if n == 0 {
		return DefaultConfidence
	}

	confidence := sum / float64(n)
	if confidence < 0.1 {
		confidence = 0.1
	} else if confidence > 0.99 {
		confidence = 0.99
	}
	return math.RoundToEven(confidence*100) / 100
}
