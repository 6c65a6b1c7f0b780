// Package mock provides a deterministic scripted engine for tests and for
// running the server without a model on disk. It simulates realistic
// recognizer behavior: progressive partial hypotheses while audio arrives,
// exactly one final per utterance, and a flush that finalizes whatever is
// pending (empty text when nothing was decoded).
package mock

import (
	"strings"
	"sync"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/models"
)

// Utterance is a scripted utterance with progressive partials and one final.
type Utterance struct {
	Partials   []string
	Final      string
	Confidence float64
}

// DefaultScript provides sample utterances for simulation.
var DefaultScript = []Utterance{
	{
		Partials:   []string{"the quick", "the quick brown", "the quick brown fox"},
		Final:      "the quick brown fox jumps over the lazy dog",
		Confidence: 0.94,
	},
	{
		Partials:   []string{"testing", "testing one two"},
		Final:      "testing one two three",
		Confidence: 0.97,
	},
	{
		Partials:   []string{"thank you"},
		Final:      "thank you very much",
		Confidence: 0.98,
	},
}

// Engine mints scripted decoder sessions. Each session walks its own copy
// of the script, so concurrent sessions never observe each other.
type Engine struct {
	script []Utterance

	mu      sync.Mutex
	created []*Session
}

// New creates a mock engine with the default script.
func New() *Engine {
	return NewWithScript(DefaultScript)
}

// NewWithScript creates a mock engine with a custom script.
func NewWithScript(script []Utterance) *Engine {
	return &Engine{script: script}
}

// NewSession creates a new scripted decoder session. The sample rate is
// accepted but has no effect on the script.
func (e *Engine) NewSession(sampleRate float64) (engine.Session, error) {
	s := &Session{script: e.script, sampleRate: sampleRate}
	e.mu.Lock()
	e.created = append(e.created, s)
	e.mu.Unlock()
	return s, nil
}

// Last returns the most recently minted session, for tests that need to
// reach into a live decoder.
func (e *Engine) Last() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.created) == 0 {
		return nil
	}
	return e.created[len(e.created)-1]
}

// Info reports mock identification for /health.
func (e *Engine) Info() engine.Info {
	return engine.Info{Name: "mock", Version: "1.0.0", ModelName: "scripted"}
}

// Close is a no-op: the mock holds no native resources.
func (e *Engine) Close() error {
	return nil
}

// Session is a scripted decoder. One partial per frame until the current
// utterance's partials are exhausted, then the next frame yields the final
// and advances to the next utterance. Past the end of the script every
// frame decodes to nothing.
type Session struct {
	mu         sync.Mutex
	script     []Utterance
	sampleRate float64

	utterance int // index of the current utterance
	partial   int // next partial within the current utterance
	frames    int
	bytes     int64
	released  bool
	failErr   error
}

// Accept consumes one frame and reports the next scripted result.
func (s *Session) Accept(frame []byte) (engine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return engine.Result{}, engine.ErrReleased
	}
	if s.failErr != nil {
		return engine.Result{}, s.failErr
	}

	s.frames++
	s.bytes += int64(len(frame))

	if s.utterance >= len(s.script) {
		return engine.Result{Kind: engine.KindNone}, nil
	}

	utt := s.script[s.utterance]
	if s.partial < len(utt.Partials) {
		text := utt.Partials[s.partial]
		s.partial++
		return engine.Result{Kind: engine.KindPartial, Text: text}, nil
	}

	s.utterance++
	s.partial = 0
	return engine.Result{Kind: engine.KindFinal, Text: utt.Final, Words: scriptWords(utt)}, nil
}

// Flush finalizes the pending utterance, or reports an empty final when no
// audio was decoded since the last boundary.
func (s *Session) Flush() (engine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return engine.Result{}, engine.ErrReleased
	}
	if s.failErr != nil {
		return engine.Result{}, s.failErr
	}

	if s.utterance < len(s.script) && s.partial > 0 {
		utt := s.script[s.utterance]
		s.utterance++
		s.partial = 0
		return engine.Result{Kind: engine.KindFinal, Text: utt.Final, Words: scriptWords(utt)}, nil
	}
	return engine.Result{Kind: engine.KindFinal, Text: "", Words: []models.Word{}}, nil
}

// Release marks the session released. Idempotent.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
}

// Fail makes every subsequent Accept and Flush return err, simulating a
// decoder failure mid-stream.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Released reports whether Release has been called.
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Frames returns the number of frames accepted so far.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// scriptWords fabricates per-token timing for a scripted final: 300ms per
// word, the utterance's confidence on every token.
func scriptWords(utt Utterance) []models.Word {
	fields := strings.Fields(utt.Final)
	words := make([]models.Word, 0, len(fields))
	for i, f := range fields {
		words = append(words, models.Word{
			Word:  f,
			Start: float64(i) * 0.3,
			End:   float64(i+1) * 0.3,
			Conf:  utt.Confidence,
		})
	}
	return words
}
