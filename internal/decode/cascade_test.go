package decode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Lowellowuor/voicebridge/internal/audio"
)

// fakeAdapter lets tests script cascade outcomes.
type fakeAdapter struct {
	name   string
	out    audio.Decoded
	err    error
	called int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Decode(_ context.Context, _ Input) (audio.Decoded, error) {
	f.called++
	if f.err != nil {
		return audio.Decoded{}, f.err
	}
	return f.out, nil
}

func decodedFixture() audio.Decoded {
	return audio.Decoded{Samples: []float32{0.1, 0.2}, SampleRate: 44100, Channels: 1}
}

func TestCascadeFirstSuccessShortCircuits(t *testing.T) {
	a := &fakeAdapter{name: "a", err: errors.New("unsupported codec")}
	b := &fakeAdapter{name: "b", out: decodedFixture()}
	c := &fakeAdapter{name: "c", out: decodedFixture()}

	got, err := NewCascade(nil, a, b, c).Run(context.Background(), Input{Data: []byte{1}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", got.SampleRate)
	}
	if a.called != 1 || b.called != 1 {
		t.Errorf("a called %d times, b %d times; want 1 and 1", a.called, b.called)
	}
	if c.called != 0 {
		t.Errorf("c called %d times, want 0 (cascade must short-circuit)", c.called)
	}
}

func TestCascadeNoRetry(t *testing.T) {
	a := &fakeAdapter{name: "a", err: errors.New("boom")}
	b := &fakeAdapter{name: "b", out: decodedFixture()}

	cascade := NewCascade(nil, a, b)
	for i := 0; i < 3; i++ {
		if _, err := cascade.Run(context.Background(), Input{Data: []byte{1}}); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	}
	if a.called != 3 {
		t.Errorf("a called %d times across 3 runs, want 3 (once per run)", a.called)
	}
}

func TestCascadeAllFailedCarriesEveryAttempt(t *testing.T) {
	a := &fakeAdapter{name: "native", err: errors.New("invalid WAV file")}
	b := &fakeAdapter{name: "ffmpeg", err: errors.New("binary not found")}
	c := &fakeAdapter{name: "rawpcm", err: errors.New("buffer too short")}

	_, err := NewCascade(nil, a, b, c).Run(context.Background(), Input{Data: []byte{1}})
	if err == nil {
		t.Fatal("Run() should fail when all adapters fail")
	}

	var allFailed *AllFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("error type = %T, want *AllFailedError", err)
	}
	if len(allFailed.Attempts) != 3 {
		t.Fatalf("len(Attempts) = %d, want 3", len(allFailed.Attempts))
	}

	msg := err.Error()
	for _, want := range []string{
		"native", "invalid WAV file",
		"ffmpeg", "binary not found",
		"rawpcm", "buffer too short",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("aggregate error %q missing %q", msg, want)
		}
	}

	// Order of the trail matches adapter priority order.
	if allFailed.Attempts[0].Adapter != "native" ||
		allFailed.Attempts[1].Adapter != "ffmpeg" ||
		allFailed.Attempts[2].Adapter != "rawpcm" {
		t.Errorf("attempt order = %v", allFailed.Attempts)
	}
}

func TestCascadeRejectsDegenerateOutput(t *testing.T) {
	tests := []struct {
		name string
		out  audio.Decoded
	}{
		{"zero_samples", audio.Decoded{SampleRate: 16000, Channels: 1}},
		{"zero_rate", audio.Decoded{Samples: []float32{1}, Channels: 1}},
		{"zero_channels", audio.Decoded{Samples: []float32{1}, SampleRate: 16000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := &fakeAdapter{name: "bad", out: tt.out}
			good := &fakeAdapter{name: "good", out: decodedFixture()}

			got, err := NewCascade(nil, bad, good).Run(context.Background(), Input{Data: []byte{1}})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if good.called != 1 {
				t.Error("degenerate output should fall through to the next adapter")
			}
			if len(got.Samples) == 0 {
				t.Error("Run() returned degenerate result")
			}
		})
	}
}

func TestCascadeWrapsUntypedErrors(t *testing.T) {
	a := &fakeAdapter{name: "plain", err: fmt.Errorf("bare failure")}

	_, err := NewCascade(nil, a).Run(context.Background(), Input{Data: []byte{1}})

	var allFailed *AllFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("error type = %T, want *AllFailedError", err)
	}
	var de *DecodeError
	if !errors.As(allFailed.Attempts[0].Err, &de) {
		t.Fatalf("attempt error type = %T, want *DecodeError", allFailed.Attempts[0].Err)
	}
	if de.Adapter != "plain" {
		t.Errorf("DecodeError.Adapter = %q, want %q", de.Adapter, "plain")
	}
}
