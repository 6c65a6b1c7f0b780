package transcribe

import (
	"errors"
	"testing"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine/mock"
)

var batchScript = []mock.Utterance{
	{
		Partials:   []string{"hello", "hello wor"},
		Final:      "hello world",
		Confidence: 0.92,
	},
}

func TestRun_SingleUtterance(t *testing.T) {
	eng := mock.NewWithScript(batchScript)
	info, err := ParseWAV(buildWAV(1, 1, 16000, 16, pcmSeconds(16000, 1, 1.0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 32000 data bytes feed as four 8000-byte chunks: two partials
	// (discarded), one final, one trailing no-op.
	result, err := Run(eng, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", result.Text)
	}
	if len(result.Result) != 2 {
		t.Errorf("expected 2 words, got %d", len(result.Result))
	}
	if result.SampleRate != 16000 || result.Channels != 1 {
		t.Errorf("container facts not echoed: %+v", result)
	}
	if result.DurationSec != 1.0 {
		t.Errorf("expected 1s duration, got %v", result.DurationSec)
	}
}

func TestRun_FlushCollectsPending(t *testing.T) {
	eng := mock.NewWithScript(batchScript)
	// One chunk of audio: only the first partial fires during Accept, so
	// the utterance finalizes at Flush.
	info, err := ParseWAV(buildWAV(1, 1, 16000, 16, make([]byte, 8000)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := Run(eng, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "hello world" {
		t.Errorf("expected flushed final, got %q", result.Text)
	}
}

func TestRun_EmptyAudio(t *testing.T) {
	eng := mock.NewWithScript(batchScript)
	info, err := ParseWAV(buildWAV(1, 1, 16000, 16, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := Run(eng, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "" {
		t.Errorf("expected empty transcript, got %q", result.Text)
	}
	if result.Result == nil || len(result.Result) != 0 {
		t.Errorf("expected empty word list, got %+v", result.Result)
	}
}

// failingEngine mints sessions whose decode always errors.
type failingEngine struct{ err error }

func (f *failingEngine) NewSession(float64) (engine.Session, error) { return &failingSession{f.err}, nil }
func (f *failingEngine) Info() engine.Info                          { return engine.Info{Name: "failing"} }
func (f *failingEngine) Close() error                               { return nil }

type failingSession struct{ err error }

func (s *failingSession) Accept([]byte) (engine.Result, error) { return engine.Result{}, s.err }
func (s *failingSession) Flush() (engine.Result, error)        { return engine.Result{}, s.err }
func (s *failingSession) Release()                             {}

func TestRun_EngineFailure(t *testing.T) {
	boom := errors.New("model state corrupt")
	info, err := ParseWAV(buildWAV(1, 1, 16000, 16, make([]byte, 8000)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Run(&failingEngine{err: boom}, info); !errors.Is(err, boom) {
		t.Errorf("expected decode error to propagate, got %v", err)
	}
}
