package transcribe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

// buildWAV constructs a minimal PCM WAV container for tests.
func buildWAV(audioFormat, channels, sampleRate, bitsPerSample int, data []byte) []byte {
	var buf bytes.Buffer
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(data)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(audioFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)

	return buf.Bytes()
}

// pcmSeconds returns silent PCM data of the given duration.
func pcmSeconds(sampleRate, channels int, seconds float64) []byte {
	return make([]byte, int(float64(sampleRate)*seconds)*channels*2)
}

func TestParseWAV_Valid(t *testing.T) {
	data := pcmSeconds(16000, 1, 1.0)
	info, err := ParseWAV(buildWAV(1, 1, 16000, 16, data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.SampleRate != 16000 {
		t.Errorf("expected 16000 Hz, got %d", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("expected mono, got %d channels", info.Channels)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("expected 16-bit, got %d", info.BitsPerSample)
	}
	if len(info.Data) != len(data) {
		t.Errorf("expected %d data bytes, got %d", len(data), len(info.Data))
	}
	if d := info.Duration(); d != time.Second {
		t.Errorf("expected 1s duration, got %v", d)
	}
}

func TestParseWAV_Stereo(t *testing.T) {
	info, err := ParseWAV(buildWAV(1, 2, 44100, 16, pcmSeconds(44100, 2, 0.5)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Channels != 2 {
		t.Errorf("expected stereo, got %d channels", info.Channels)
	}
	if d := info.Duration(); d != 500*time.Millisecond {
		t.Errorf("expected 500ms duration, got %v", d)
	}
}

func TestParseWAV_Malformed(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
	}{
		{"empty", nil},
		{"too short", []byte("RIFF")},
		{"bad magic", bytes.Repeat([]byte("x"), 64)},
		{"truncated chunk", append(buildWAV(1, 1, 16000, 16, make([]byte, 100))[:40], 0xFF)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ParseWAV(c.b); !errors.Is(err, ErrMalformedContainer) {
				t.Errorf("expected ErrMalformedContainer, got %v", err)
			}
		})
	}
}

func TestParseWAV_MissingDataChunk(t *testing.T) {
	full := buildWAV(1, 1, 16000, 16, nil)
	headerOnly := full[:36] // RIFF header + fmt chunk, no data chunk
	if _, err := ParseWAV(headerOnly); !errors.Is(err, ErrMalformedContainer) {
		t.Errorf("expected ErrMalformedContainer, got %v", err)
	}
}

func TestParseWAV_UnsupportedFormat(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
	}{
		{"float pcm", buildWAV(3, 1, 16000, 32, make([]byte, 64))},
		{"8-bit", buildWAV(1, 1, 16000, 8, make([]byte, 64))},
		{"5.1 surround", buildWAV(1, 6, 16000, 16, make([]byte, 64))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ParseWAV(c.b); !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("expected ErrUnsupportedFormat, got %v", err)
			}
		})
	}
}
