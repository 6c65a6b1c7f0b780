// Package vosk implements the recognizer capability over libvosk via the
// official Go binding. One Model is loaded at process startup; every decoder
// session wraps its own KaldiRecognizer referencing that model.
package vosk

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/models"
)

// bindingVersion tracks the vosk-api release the Go binding is built against.
const bindingVersion = "0.3.50"

// Engine holds the loaded Vosk model.
type Engine struct {
	model *vosk.VoskModel
	info  engine.Info
}

// New loads the model at modelPath. A load failure here is meant to be fatal
// to startup: the server must not serve traffic without a working engine.
func New(modelPath string) (*Engine, error) {
	vosk.SetLogLevel(-1)

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("vosk: load model %q: %w", modelPath, err)
	}

	return &Engine{
		model: model,
		info: engine.Info{
			Name:      "vosk",
			Version:   bindingVersion,
			ModelName: filepath.Base(filepath.Clean(modelPath)),
			ModelPath: modelPath,
		},
	}, nil
}

// NewSession creates an independent recognizer bound to sampleRate.
// Word-level metadata is enabled so finals carry per-token timing.
func (e *Engine) NewSession(sampleRate float64) (engine.Session, error) {
	rec, err := vosk.NewRecognizer(e.model, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("vosk: new recognizer at %vHz: %w", sampleRate, err)
	}
	rec.SetWords(1)
	return &session{rec: rec}, nil
}

// Info reports engine and model identification.
func (e *Engine) Info() engine.Info {
	return e.info
}

// Close frees the loaded model. Call only after all sessions are released.
func (e *Engine) Close() error {
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

// session wraps one KaldiRecognizer.
type session struct {
	mu       sync.Mutex
	rec      *vosk.VoskRecognizer
	released bool
}

// finalPayload mirrors the recognizer's Result()/FinalResult() JSON.
type finalPayload struct {
	Text   string        `json:"text"`
	Result []models.Word `json:"result"`
}

// partialPayload mirrors the recognizer's PartialResult() JSON.
type partialPayload struct {
	Partial string `json:"partial"`
}

func (s *session) Accept(frame []byte) (engine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return engine.Result{}, engine.ErrReleased
	}

	if s.rec.AcceptWaveform(frame) != 0 {
		return parseFinal(s.rec.Result())
	}
	return parsePartial(s.rec.PartialResult())
}

func (s *session) Flush() (engine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return engine.Result{}, engine.ErrReleased
	}
	return parseFinal(s.rec.FinalResult())
}

func (s *session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true
	s.rec.Free()
}

func parseFinal(raw string) (engine.Result, error) {
	var p finalPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return engine.Result{}, fmt.Errorf("vosk: decode final result: %w", err)
	}
	return engine.Result{Kind: engine.KindFinal, Text: p.Text, Words: p.Result}, nil
}

func parsePartial(raw string) (engine.Result, error) {
	var p partialPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return engine.Result{}, fmt.Errorf("vosk: decode partial result: %w", err)
	}
	return engine.Result{Kind: engine.KindPartial, Text: p.Partial}, nil
}
