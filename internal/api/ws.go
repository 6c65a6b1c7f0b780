package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/observability/logging"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/session"
)

// Accepted sample_rate bounds for the streaming endpoint.
const (
	minSampleRate = 8000
	maxSampleRate = 48000
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWS is the streaming transport adapter. One handler goroutine is the
// connection's task: it blocks on the next inbound frame, feeds it to the
// session, and writes back whatever event the decoder reported before
// reading the next frame. That frame-synchronous loop is also the
// backpressure mechanism - a fast producer is throttled to decoder
// throughput, with no internal queue.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	rate := s.cfg.STT.DefaultSampleRate
	if q := r.URL.Query().Get("sample_rate"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < minSampleRate || v > maxSampleRate {
			writeError(w, http.StatusBadRequest,
				"sample_rate must be an integer between 8000 and 48000")
			return
		}
		rate = v
	}

	// Open before upgrading so capacity and config failures reject the
	// handshake instead of failing after the client thinks it connected.
	sess, err := s.sessions.Open(rate)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrCapacityExceeded):
			writeError(w, http.StatusServiceUnavailable, "too many concurrent sessions")
		case errors.Is(err, session.ErrInvalidConfig):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to open session")
		}
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sess.Close()
		return
	}

	// Defer the close-frame echo: the default handler answers a client
	// close immediately, which would block the closing final behind
	// ErrCloseSent. The deferred cleanup sends our close frame instead.
	conn.SetCloseHandler(func(code int, text string) error { return nil })

	log := logging.WithComponent("ws").With().Str("sessionId", sess.ID()).Logger()
	log.Info().Int("sampleRate", rate).Msg("Stream opened")

	defer func() {
		// Flush the closing final while the socket may still be writable.
		// An empty final is still sent: clients distinguish "stream ended,
		// nothing decoded" from a missing event.
		if ev, ferr := sess.Finalize(); ferr == nil && ev != nil {
			_ = conn.WriteJSON(ev)
		}
		sess.Close()
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = conn.Close()
		log.Info().Msg("Stream closed")
	}()

	for {
		if s.cfg.Limits.WSIdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.Limits.WSIdleTimeout))
		}

		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Msg("Read failed")
			}
			return
		}
		if mt != websocket.BinaryMessage {
			// Text frames are protocol violations. Drop the frame, keep
			// the session.
			log.Warn().Int("messageType", mt).Msg("Ignoring non-binary frame")
			continue
		}

		ev, err := sess.Ingest(data)
		if err != nil {
			if errors.Is(err, session.ErrMalformedFrame) {
				log.Warn().Int("bytes", len(data)).Msg("Rejected malformed frame")
				continue
			}
			log.Error().Err(err).Msg("Decoder failed, tearing down session")
			return
		}
		if ev == nil {
			continue
		}
		if err := conn.WriteJSON(ev); err != nil {
			log.Warn().Err(err).Msg("Write failed")
			return
		}
	}
}
