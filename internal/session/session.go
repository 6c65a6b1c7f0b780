// Package session implements the streaming session core: per-connection
// orchestration of the decoder capability, the OPEN→CLOSING→CLOSED protocol
// state machine, and the process-wide registry of live sessions.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/models"
)

// Session owns the decoder state for exactly one transport connection.
// It drives the frame-ingest/event-emission protocol: frames go in via
// Ingest, transcript events come back in the exact order the frames were
// ingested. A session is never shared across connections; all methods are
// nevertheless safe for concurrent use because shutdown may race the
// connection's own goroutine.
type Session struct {
	id         string
	sampleRate int
	manager    *Manager
	dec        engine.Session
	log        zerolog.Logger

	mu           sync.Mutex
	state        State
	openedAt     time.Time
	lastActivity time.Time
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// SampleRate returns the sample rate the session was opened with.
func (s *Session) SampleRate() int {
	return s.sampleRate
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActivity returns when the session last ingested a frame.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Ingest feeds one PCM S16LE frame to the decoder and returns zero or one
// transcript event. Frames of odd byte length fail with ErrMalformedFrame
// and do not touch decoder state; the session stays OPEN. A decoder error
// is reported as ErrEngineFailure and the caller is expected to tear the
// session down.
func (s *Session) Ingest(frame []byte) (*models.TranscriptEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return nil, ErrSessionClosed
	}
	if len(frame)%2 != 0 {
		s.manager.metrics.RecordMalformedFrame()
		return nil, fmt.Errorf("%w: %d bytes is not a whole number of samples", ErrMalformedFrame, len(frame))
	}

	s.lastActivity = time.Now()
	s.manager.metrics.RecordFrame(len(frame))

	res, err := s.dec.Accept(frame)
	if err != nil {
		s.manager.metrics.RecordEngineError("accept")
		return nil, fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}
	return s.emitLocked(res), nil
}

// Finalize flushes buffered-but-not-yet-finalized audio into a last final
// event, even if its text is empty, and transitions the session to CLOSING.
// Idempotent: on an already CLOSING or CLOSED session it is a no-op
// returning no event.
func (s *Session) Finalize() (*models.TranscriptEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return nil, nil
	}
	s.state = StateClosing

	res, err := s.dec.Flush()
	if err != nil {
		s.manager.metrics.RecordEngineError("flush")
		return nil, fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}

	ev := models.NewFinal(res.Text, res.Words)
	s.manager.metrics.RecordFinal()
	s.manager.publisher.PublishFinal(context.Background(), s.id, ev)
	return ev, nil
}

// Close releases the decoder state and the registry entry. Always safe to
// call multiple times, and required on every exit path of the connection's
// lifetime: decoder state is not reclaimed otherwise.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	opened := s.openedAt
	s.mu.Unlock()

	s.dec.Release()
	s.manager.registry.Unregister(s.id)
	s.manager.metrics.RecordSessionClosed(time.Since(opened).Seconds())
	s.log.Info().Dur("lifetime", time.Since(opened)).Msg("Session closed")
}

// emitLocked maps a decoder result onto a transcript event. Caller holds
// s.mu.
func (s *Session) emitLocked(res engine.Result) *models.TranscriptEvent {
	switch res.Kind {
	case engine.KindPartial:
		ev := models.NewPartial(res.Text)
		s.manager.metrics.RecordPartial()
		s.manager.publisher.PublishPartial(context.Background(), s.id, ev)
		return ev
	case engine.KindFinal:
		ev := models.NewFinal(res.Text, res.Words)
		s.manager.metrics.RecordFinal()
		s.manager.publisher.PublishFinal(context.Background(), s.id, ev)
		return ev
	default:
		return nil
	}
}
