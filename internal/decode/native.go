package decode

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/pion/opus"

	"github.com/Lowellowuor/voicebridge/internal/audio"
	"github.com/Lowellowuor/voicebridge/internal/sniff"
)

// NativeAdapter decodes containers with pure-Go readers: WAV, AIFF, FLAC,
// MP3, Ogg Vorbis and Ogg Opus. It is sample-accurate and needs no external
// toolchain, so it runs first in the cascade. Containers it cannot read
// (WebM among them) fail cleanly and fall through to the next adapter.
type NativeAdapter struct{}

func (NativeAdapter) Name() string { return "native" }

func (a NativeAdapter) Decode(_ context.Context, in Input) (audio.Decoded, error) {
	var (
		d   audio.Decoded
		err error
	)
	switch format := sniff.Detect(in.Data); format {
	case sniff.FormatWAV:
		d, err = decodeWAV(in.Data)
	case sniff.FormatAIFF:
		d, err = decodeAIFF(in.Data)
	case sniff.FormatFLAC:
		d, err = decodeFLAC(in.Data)
	case sniff.FormatMP3:
		d, err = decodeMP3(in.Data)
	case sniff.FormatOGG:
		d, err = decodeOgg(in.Data)
	default:
		return audio.Decoded{}, &DecodeError{Adapter: a.Name(), Err: fmt.Errorf("no native reader for %s container", format)}
	}
	if err != nil {
		return audio.Decoded{}, &DecodeError{Adapter: a.Name(), Err: err}
	}
	return d, nil
}

// decodeWAV reads a RIFF/WAVE file with the go-audio decoder.
func decodeWAV(data []byte) (audio.Decoded, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return audio.Decoded{}, fmt.Errorf("invalid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil && err != io.EOF {
		return audio.Decoded{}, fmt.Errorf("read PCM buffer: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return audio.Decoded{}, fmt.Errorf("WAV file contains no samples")
	}

	return intToFloat(buf.Data, int(dec.BitDepth), buf.Format.SampleRate, buf.Format.NumChannels)
}

// decodeAIFF reads a FORM/AIFF file with the go-audio decoder.
func decodeAIFF(data []byte) (audio.Decoded, error) {
	dec := aiff.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return audio.Decoded{}, fmt.Errorf("invalid AIFF file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil && err != io.EOF {
		return audio.Decoded{}, fmt.Errorf("read PCM buffer: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return audio.Decoded{}, fmt.Errorf("AIFF file contains no samples")
	}

	return intToFloat(buf.Data, int(dec.BitDepth), buf.Format.SampleRate, buf.Format.NumChannels)
}

// decodeFLAC reads a FLAC stream frame by frame, interleaving channels.
func decodeFLAC(data []byte) (audio.Decoded, error) {
	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		return audio.Decoded{}, fmt.Errorf("parse FLAC stream: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	scale := float32(int64(1) << (stream.Info.BitsPerSample - 1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return audio.Decoded{}, fmt.Errorf("parse FLAC frame: %w", err)
		}
		frames := len(frame.Subframes[0].Samples)
		for i := 0; i < frames; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, float32(frame.Subframes[ch].Samples[i])/scale)
			}
		}
	}
	if len(samples) == 0 {
		return audio.Decoded{}, fmt.Errorf("FLAC stream contains no samples")
	}

	return audio.Decoded{
		Samples:    samples,
		SampleRate: int(stream.Info.SampleRate),
		Channels:   channels,
	}, nil
}

// decodeMP3 reads an MP3 stream. The decoder always emits 16-bit stereo at
// the stream's sample rate.
func decodeMP3(data []byte) (audio.Decoded, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return audio.Decoded{}, fmt.Errorf("open MP3 stream: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return audio.Decoded{}, fmt.Errorf("read MP3 stream: %w", err)
	}
	if len(pcm) < 4 {
		return audio.Decoded{}, fmt.Errorf("MP3 stream contains no samples")
	}

	samples := make([]float32, 0, len(pcm)/2)
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(pcm[i]) | int16(pcm[i+1])<<8
		samples = append(samples, float32(s)/32768.0)
	}

	return audio.Decoded{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}

// decodeOgg dispatches an Ogg container to the Vorbis or Opus reader based
// on the codec identification header in the first page.
func decodeOgg(data []byte) (audio.Decoded, error) {
	codec, err := detectOggCodec(data)
	if err != nil {
		return audio.Decoded{}, err
	}
	switch codec {
	case "vorbis":
		return decodeOggVorbis(data)
	case "opus":
		return decodeOggOpus(data)
	default:
		return audio.Decoded{}, fmt.Errorf("unsupported Ogg codec %q", codec)
	}
}

// detectOggCodec reads the first Ogg page and looks for the Vorbis or Opus
// identification header.
func detectOggCodec(data []byte) (string, error) {
	r := bytes.NewReader(data)

	header := make([]byte, 27) // standard Ogg page header
	if _, err := io.ReadFull(r, header); err != nil {
		return "", fmt.Errorf("read Ogg page header: %w", err)
	}
	if !bytes.Equal(header[:4], []byte("OggS")) {
		return "", fmt.Errorf("not an Ogg stream")
	}

	segmentTable := make([]byte, int(header[26]))
	if _, err := io.ReadFull(r, segmentTable); err != nil {
		return "", fmt.Errorf("read Ogg segment table: %w", err)
	}
	var pageSize int
	for _, s := range segmentTable {
		pageSize += int(s)
	}

	page := make([]byte, pageSize)
	if _, err := io.ReadFull(r, page); err != nil {
		return "", fmt.Errorf("read Ogg first page: %w", err)
	}

	if bytes.Contains(page, []byte("vorbis")) {
		return "vorbis", nil
	}
	if bytes.Contains(page, []byte("OpusHead")) {
		return "opus", nil
	}
	return "", fmt.Errorf("unknown Ogg codec")
}

func decodeOggVorbis(data []byte) (audio.Decoded, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return audio.Decoded{}, fmt.Errorf("decode Ogg Vorbis: %w", err)
	}
	if len(samples) == 0 {
		return audio.Decoded{}, fmt.Errorf("Ogg Vorbis stream contains no samples")
	}
	return audio.Decoded{
		Samples:    samples,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
	}, nil
}

// oggPackets walks Ogg pages and reassembles the logical packet stream. A
// lacing value of 255 means the packet continues in the next segment (or the
// next page), so segments are accumulated until one shorter than 255
// terminates the packet. Empty packets are dropped.
func oggPackets(data []byte) ([][]byte, error) {
	r := bytes.NewReader(data)

	var packets [][]byte
	var pending []byte
	for {
		header := make([]byte, 27)
		if _, err := io.ReadFull(r, header); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("read Ogg page header: %w", err)
		}
		if !bytes.Equal(header[:4], []byte("OggS")) {
			return nil, fmt.Errorf("corrupt Ogg page header")
		}

		segmentTable := make([]byte, int(header[26]))
		if _, err := io.ReadFull(r, segmentTable); err != nil {
			return nil, fmt.Errorf("read Ogg segment table: %w", err)
		}

		for _, size := range segmentTable {
			segment := make([]byte, int(size))
			if _, err := io.ReadFull(r, segment); err != nil {
				return nil, fmt.Errorf("read Ogg segment: %w", err)
			}
			pending = append(pending, segment...)
			if size == 255 {
				continue // packet spills into the next segment
			}
			if len(pending) > 0 {
				packets = append(packets, pending)
				pending = nil
			}
		}
	}
	return packets, nil
}

// decodeOggOpus feeds the reassembled Opus packet stream to the pion
// decoder. The first two packets are OpusHead and OpusTags, not audio.
// Opus always decodes at 48 kHz.
func decodeOggOpus(data []byte) (audio.Decoded, error) {
	const frameSize = 960 // 20ms at 48kHz

	packets, err := oggPackets(data)
	if err != nil {
		return audio.Decoded{}, err
	}
	if len(packets) > 2 {
		packets = packets[2:] // skip OpusHead, OpusTags
	} else {
		packets = nil
	}

	dec := opus.NewDecoder()
	var samples []float32
	for _, packet := range packets {
		out := make([]byte, frameSize*2)
		if _, _, err := dec.Decode(packet, out); err != nil {
			// Damaged frames are dropped; the stream may still
			// contain usable audio.
			continue
		}
		for i := 0; i < frameSize; i++ {
			s := int16(out[i*2]) | int16(out[i*2+1])<<8
			samples = append(samples, float32(s)/32768.0)
		}
	}

	if len(samples) == 0 {
		return audio.Decoded{}, fmt.Errorf("no valid Opus frames decoded")
	}
	return audio.Decoded{
		Samples:    samples,
		SampleRate: 48000,
		Channels:   1,
	}, nil
}

// intToFloat converts integer PCM samples to float32 in [-1, 1] given the
// source bit depth.
func intToFloat(data []int, bitDepth, sampleRate, channels int) (audio.Decoded, error) {
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	if sampleRate <= 0 || channels <= 0 {
		return audio.Decoded{}, fmt.Errorf("invalid format: %d Hz, %d channels", sampleRate, channels)
	}

	scale := float32(int64(1) << (bitDepth - 1))
	samples := make([]float32, len(data))
	for i, s := range data {
		samples[i] = float32(s) / scale
	}

	return audio.Decoded{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
	}, nil
}
