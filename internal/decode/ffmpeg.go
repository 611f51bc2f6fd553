package decode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Lowellowuor/voicebridge/internal/audio"
)

// FFmpegAdapter transcodes arbitrary containers and codecs (WebM included)
// to PCM WAV by shelling out to the ffmpeg toolchain, then reads the result
// with the WAV decoder. It handles far more formats than the native adapter
// but depends on an external binary being installed.
type FFmpegAdapter struct {
	// Binary is the ffmpeg executable; "ffmpeg" (resolved via PATH) when
	// empty.
	Binary string
}

func (FFmpegAdapter) Name() string { return "ffmpeg" }

func (a FFmpegAdapter) Decode(ctx context.Context, in Input) (audio.Decoded, error) {
	if in.Path == "" {
		return audio.Decoded{}, &DecodeError{Adapter: a.Name(), Err: fmt.Errorf("no input file available")}
	}

	bin := a.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("voicebridge-%s.wav", uuid.New().String()))
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, bin,
		"-hide_banner",
		"-loglevel", "error",
		"-i", in.Path,
		"-acodec", "pcm_s16le",
		"-y",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return audio.Decoded{}, &DecodeError{Adapter: a.Name(), Err: fmt.Errorf("ffmpeg transcode: %w", err)}
	}

	wavData, err := os.ReadFile(outPath)
	if err != nil {
		return audio.Decoded{}, &DecodeError{Adapter: a.Name(), Err: fmt.Errorf("read transcoded output: %w", err)}
	}

	d, err := decodeWAV(wavData)
	if err != nil {
		return audio.Decoded{}, &DecodeError{Adapter: a.Name(), Err: err}
	}
	return d, nil
}
