// Package transcribe implements the single-shot batch transcription path:
// WAV container validation followed by one non-streaming decode over the
// whole payload. It shares the engine capability with the streaming path
// but holds no session state.
package transcribe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Errors surfaced to the HTTP layer, which maps them onto 4xx responses.
var (
	// ErrMalformedContainer - the payload is not a parsable WAV container.
	ErrMalformedContainer = errors.New("malformed WAV container")

	// ErrUnsupportedFormat - the container parses but the audio is not
	// 16-bit PCM mono/stereo. No conversion is attempted.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
	fmtChunkMinSize = 16

	formatPCM = 1
)

// WAVInfo is the validated content of a WAV container: the raw PCM data
// plus the facts the decoder and the response need.
type WAVInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Data          []byte
}

// Duration returns the audio duration implied by the data size.
func (w *WAVInfo) Duration() time.Duration {
	bytesPerSec := w.SampleRate * w.Channels * (w.BitsPerSample / 8)
	if bytesPerSec == 0 {
		return 0
	}
	return time.Duration(float64(len(w.Data)) / float64(bytesPerSec) * float64(time.Second))
}

// ParseWAV validates a complete WAV buffer. It walks the RIFF chunk list
// for the fmt and data chunks and enforces the contracted format: PCM,
// 16-bit, mono or stereo. The sample rate is whatever the header declares;
// no resampling happens server-side.
func ParseWAV(b []byte) (*WAVInfo, error) {
	if len(b) < riffHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a RIFF header", ErrMalformedContainer, len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE magic", ErrMalformedContainer)
	}

	var (
		info    WAVInfo
		gotFmt  bool
		gotData bool
	)

	off := riffHeaderSize
	for off+chunkHeaderSize <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		body := off + chunkHeaderSize
		if size < 0 || body+size > len(b) {
			return nil, fmt.Errorf("%w: chunk %q overruns the buffer", ErrMalformedContainer, id)
		}

		switch id {
		case "fmt ":
			if size < fmtChunkMinSize {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrMalformedContainer)
			}
			c := b[body : body+size]
			audioFormat := binary.LittleEndian.Uint16(c[0:2])
			info.Channels = int(binary.LittleEndian.Uint16(c[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(c[4:8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(c[14:16]))

			if audioFormat != formatPCM {
				return nil, fmt.Errorf("%w: only PCM is supported (format=%d)", ErrUnsupportedFormat, audioFormat)
			}
			gotFmt = true
		case "data":
			info.Data = b[body : body+size]
			gotData = true
		}

		// RIFF chunks are word-aligned.
		off = body + size
		if size%2 != 0 {
			off++
		}
	}

	if !gotFmt || !gotData {
		return nil, fmt.Errorf("%w: missing fmt or data chunk", ErrMalformedContainer)
	}
	if info.BitsPerSample != 16 {
		return nil, fmt.Errorf("%w: only 16-bit PCM is supported (bits=%d)", ErrUnsupportedFormat, info.BitsPerSample)
	}
	if info.Channels != 1 && info.Channels != 2 {
		return nil, fmt.Errorf("%w: only mono/stereo is supported (channels=%d)", ErrUnsupportedFormat, info.Channels)
	}
	if info.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: non-positive sample rate", ErrMalformedContainer)
	}
	return &info, nil
}
