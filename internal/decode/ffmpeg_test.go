package decode

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestFFmpegNoPath(t *testing.T) {
	_, err := FFmpegAdapter{}.Decode(context.Background(), Input{Data: []byte{1, 2}})
	if err == nil {
		t.Fatal("Decode() without a spooled file should fail")
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error type = %T, want *DecodeError", err)
	}
	if de.Adapter != "ffmpeg" {
		t.Errorf("DecodeError.Adapter = %q, want %q", de.Adapter, "ffmpeg")
	}
}

func TestFFmpegMissingBinary(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "in.wav")
	if err := os.WriteFile(tmp, buildWAV(t, []int16{1, 2, 3, 4}, 8000, 1), 0644); err != nil {
		t.Fatal(err)
	}

	a := FFmpegAdapter{Binary: "definitely-not-ffmpeg"}
	if _, err := a.Decode(context.Background(), Input{Path: tmp}); err == nil {
		t.Error("Decode() with a missing binary should fail")
	}
}

func TestFFmpegTranscode(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	pcm := make([]int16, 8000)
	for i := range pcm {
		pcm[i] = int16(i % 1000)
	}
	tmp := filepath.Join(t.TempDir(), "in.wav")
	if err := os.WriteFile(tmp, buildWAV(t, pcm, 8000, 1), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FFmpegAdapter{}.Decode(context.Background(), Input{Path: tmp})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", got.SampleRate)
	}
	if got.Channels != 1 {
		t.Errorf("Channels = %d, want 1", got.Channels)
	}
	if len(got.Samples) == 0 {
		t.Error("Decode() returned no samples")
	}
}

func TestFFmpegCorruptInput(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	tmp := filepath.Join(t.TempDir(), "in.webm")
	if err := os.WriteFile(tmp, []byte("this is not audio at all"), 0644); err != nil {
		t.Fatal(err)
	}

	a := FFmpegAdapter{}
	if _, err := a.Decode(context.Background(), Input{Path: tmp}); err == nil {
		t.Error("Decode() of garbage should fail")
	}
}
