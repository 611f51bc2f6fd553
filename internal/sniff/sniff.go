// Package sniff guesses an audio container from magic numbers.
//
// The guess is advisory: it names the temporary file handed to path-based
// decoders but never gates which decode strategies run. Upload metadata
// (filename, MIME type) is routinely wrong for browser recordings, so it is
// ignored entirely.
package sniff

import "bytes"

// Format is a file-extension-like container tag.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"
	FormatMP3  Format = "mp3"
	FormatOGG  Format = "ogg"
	FormatAIFF Format = "aiff"
	FormatWebM Format = "webm"
)

// Ext returns the tag as a file extension, dot included.
func (f Format) Ext() string {
	return "." + string(f)
}

// Detect inspects the first 12 bytes of data and returns the best-guess
// container tag. Buffers shorter than 12 bytes default to WAV; anything
// without a recognized signature defaults to WebM, the common case for
// browser recorders. Pure function, total over all inputs.
func Detect(data []byte) Format {
	if len(data) < 12 {
		return FormatWAV
	}

	switch {
	case bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.Equal(data[0:4], []byte("fLaC")):
		return FormatFLAC
	case bytes.Equal(data[0:3], []byte("ID3")):
		return FormatMP3
	case bytes.Equal(data[0:4], []byte("OggS")):
		return FormatOGG
	case bytes.Equal(data[0:4], []byte("FORM")) &&
		(bytes.Equal(data[8:12], []byte("AIFF")) || bytes.Equal(data[8:12], []byte("AIFC"))):
		return FormatAIFF
	default:
		return FormatWebM
	}
}
