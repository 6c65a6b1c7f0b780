package session

import (
	"fmt"
	"time"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/events"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/observability/logging"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/observability/metrics"
)

// Manager opens and tracks streaming sessions against one loaded engine.
// The engine's model is shared read-only; every session gets its own
// decoder handle.
type Manager struct {
	engine    engine.Engine
	registry  *Registry
	publisher *events.Publisher
	metrics   *metrics.Metrics
	ids       *Generator
}

// NewManager creates a session manager.
func NewManager(eng engine.Engine, registry *Registry, publisher *events.Publisher) *Manager {
	return &Manager{
		engine:    eng,
		registry:  registry,
		publisher: publisher,
		metrics:   metrics.DefaultMetrics,
		ids:       NewGenerator(),
	}
}

// Open constructs a session bound to sampleRate and registers it.
// Fails with ErrInvalidConfig for a non-positive sample rate, with
// ErrCapacityExceeded when the registry is full, and with ErrEngineFailure
// when the engine cannot mint a decoder; in every failure case no session
// stays registered.
func (m *Manager) Open(sampleRate int) (*Session, error) {
	if sampleRate <= 0 {
		m.metrics.RecordSessionRejected("invalid_config")
		return nil, fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidConfig, sampleRate)
	}

	now := time.Now()
	s := &Session{
		id:           m.ids.Next(),
		sampleRate:   sampleRate,
		manager:      m,
		state:        StateOpen,
		openedAt:     now,
		lastActivity: now,
	}
	s.log = logging.WithComponent("session").With().
		Str("sessionId", s.id).
		Int("sampleRate", sampleRate).
		Logger()

	// The decoder exists before the session is visible to anything else:
	// a registry snapshot taken during shutdown must never hold a session
	// whose Finalize or Close would hit a nil decoder.
	dec, err := m.engine.NewSession(float64(sampleRate))
	if err != nil {
		m.metrics.RecordSessionRejected("engine")
		return nil, fmt.Errorf("%w: %v", ErrEngineFailure, err)
	}
	s.dec = dec

	if err := m.registry.Register(s); err != nil {
		dec.Release()
		m.metrics.RecordSessionRejected("capacity")
		return nil, err
	}

	m.metrics.RecordSessionOpened()
	s.log.Info().Msg("Session opened")
	return s, nil
}

// ActiveSessions returns the number of currently open sessions.
func (m *Manager) ActiveSessions() int {
	return m.registry.Count()
}

// CloseAll finalizes and closes every live session. Used at server
// shutdown as the backstop for connections whose transport goroutine is
// gone.
func (m *Manager) CloseAll() {
	for _, s := range m.registry.Sessions() {
		if _, err := s.Finalize(); err != nil {
			s.log.Warn().Err(err).Msg("Finalize on shutdown failed")
		}
		s.Close()
	}
}
