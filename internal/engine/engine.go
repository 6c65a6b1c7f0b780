// Package engine defines the recognizer capability consumed by the session
// core. The engine's decoder state is opaque: sessions address it only
// through Accept, Flush and Release, so any conforming engine can be
// substituted behind the same interface.
package engine

import (
	"errors"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/models"
)

// ErrReleased is returned when a decoder session is used after Release.
var ErrReleased = errors.New("decoder session already released")

// Kind discriminates the outcome of feeding audio to a decoder.
type Kind int

const (
	// KindNone - the decoder has no new information to report.
	KindNone Kind = iota
	// KindPartial - a revisable hypothesis for the open segment.
	KindPartial
	// KindFinal - a finalized segment the decoder will not revise.
	KindFinal
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPartial:
		return "partial"
	case KindFinal:
		return "final"
	default:
		return "unknown"
	}
}

// Result is what the decoder reports for one Accept or Flush call.
// Words is populated on finals only.
type Result struct {
	Kind  Kind
	Text  string
	Words []models.Word
}

// Info identifies the engine and its loaded model for /health.
type Info struct {
	Name      string
	Version   string
	ModelName string
	ModelPath string
}

// Session owns the decoder state for one audio stream. It is not safe for
// concurrent use; the owning session serializes all calls.
type Session interface {
	// Accept feeds one PCM S16LE frame to the decoder and returns whatever
	// it reports: nothing, a partial hypothesis, or a finalized segment.
	Accept(frame []byte) (Result, error)

	// Flush finalizes any buffered-but-not-yet-finalized audio. The result
	// is always final-shaped, possibly with empty text.
	Flush() (Result, error)

	// Release frees the decoder state. Decoder state is not reclaimed
	// otherwise, so Release must run on every exit path. Idempotent.
	Release()
}

// Engine wraps one loaded model and mints independent decoder sessions
// bound to a sample rate. The model itself is immutable and shared
// read-only across all sessions.
type Engine interface {
	NewSession(sampleRate float64) (Session, error)
	Info() Info
	Close() error
}
