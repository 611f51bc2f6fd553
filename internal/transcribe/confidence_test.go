package transcribe

import (
	"math"
	"testing"
)

func lp(v float64) *float64 { return &v }

func TestEstimateConfidence(t *testing.T) {
	tests := []struct {
		name     string
		segments []Segment
		want     float64
	}{
		{
			name:     "no_segments_defaults",
			segments: nil,
			want:     0.7,
		},
		{
			name: "no_logprobs_defaults",
			segments: []Segment{
				{Text: "hello"},
				{Text: "world"},
			},
			want: 0.7,
		},
		{
			name:     "logprob_zero_is_capped_at_ceiling",
			segments: []Segment{{AvgLogProb: lp(0)}},
			want:     0.99,
		},
		{
			name:     "logprob_minus_ten_hits_floor",
			segments: []Segment{{AvgLogProb: lp(-10)}},
			want:     0.1,
		},
		{
			name:     "logprob_far_below_range_still_floor",
			segments: []Segment{{AvgLogProb: lp(-50)}},
			want:     0.1,
		},
		{
			name:     "midrange_mapping",
			segments: []Segment{{AvgLogProb: lp(-2.5)}},
			want:     0.75,
		},
		{
			name: "mean_of_segments",
			segments: []Segment{
				{AvgLogProb: lp(-2)}, // 0.8
				{AvgLogProb: lp(-4)}, // 0.6
			},
			want: 0.7,
		},
		{
			name: "segments_without_logprob_are_skipped",
			segments: []Segment{
				{AvgLogProb: lp(-2)}, // 0.8
				{Text: "no logprob"},
			},
			want: 0.8,
		},
		{
			name:     "rounds_to_two_decimals",
			segments: []Segment{{AvgLogProb: lp(-3.333)}},
			want:     0.67,
		},
		{
			// Exact midpoints round half to even: 0.125 -> 0.12.
			name:     "midpoint_rounds_down_to_even",
			segments: []Segment{{AvgLogProb: lp(-8.75)}},
			want:     0.12,
		},
		{
			// 0.375 -> 0.38, the even neighbor above.
			name:     "midpoint_rounds_up_to_even",
			segments: []Segment{{AvgLogProb: lp(-6.25)}},
			want:     0.38,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateConfidence(tt.segments)
			if got != tt.want {
				t.Errorf("EstimateConfidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateConfidenceBounds(t *testing.T) {
	// Sweep the log-probability range; the score must always land in
	// [0.1, 0.99].
	for v := -30.0; v <= 10.0; v += 0.5 {
		got := EstimateConfidence([]Segment{{AvgLogProb: lp(v)}})
		if got < 0.1 || got > 0.99 {
			t.Fatalf("EstimateConfidence(lp=%v) = %v, outside [0.1, 0.99]", v, got)
		}
	}
}

func TestEstimateConfidenceMonotonic(t *testing.T) {
	base := []Segment{
		{AvgLogProb: lp(-5)},
		{AvgLogProb: lp(-3)},
	}

	prev := 0.0
	for _, v := range []float64{-9, -6, -4, -2, -1, 0} {
		segs := append(append([]Segment(nil), base...), Segment{AvgLogProb: lp(v)})
		got := EstimateConfidence(segs)
		if got < prev {
			t.Fatalf("confidence decreased from %v to %v when a segment's logprob rose to %v", prev, got, v)
		}
		prev = got
	}
}

func TestEstimateConfidenceNeverNaN(t *testing.T) {
	inf := math.Inf(-1)
	got := EstimateConfidence([]Segment{{AvgLogProb: &inf}})
	if math.IsNaN(got) || got < 0.1 || got > 0.99 {
		t.Errorf("EstimateConfidence(-inf) = %v, want a value in [0.1, 0.99]", got)
	}
}
