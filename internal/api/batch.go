package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/observability/logging"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/observability/metrics"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/transcribe"
)

// handleTranscribe accepts one complete WAV payload in the multipart field
// "file" and returns a single final-shaped result. Stateless: the decoder
// session lives only for this request and touches no registry entry.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logging.WithComponent("batch")
	m := metrics.DefaultMetrics

	fail := func(status int, reason, detail string) {
		m.RecordBatch(reason, time.Since(start).Seconds())
		writeError(w, status, detail)
	}

	maxSeconds := s.cfg.Limits.BatchMaxSeconds
	if q := r.URL.Query().Get("max_seconds"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 || v > 3600 {
			fail(http.StatusBadRequest, "bad_request", "max_seconds must be an integer between 1 and 3600")
			return
		}
		maxSeconds = v
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(http.StatusBadRequest, "bad_request", "missing multipart field 'file'")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".wav") {
		fail(http.StatusBadRequest, "bad_request", "Only .wav is supported (WAV/PCM).")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		fail(http.StatusBadRequest, "bad_request", "failed to read upload")
		return
	}
	if len(data) == 0 {
		fail(http.StatusBadRequest, "bad_request", "Empty file.")
		return
	}

	info, err := transcribe.ParseWAV(data)
	if err != nil {
		switch {
		case errors.Is(err, transcribe.ErrUnsupportedFormat):
			fail(http.StatusBadRequest, "unsupported_format", err.Error())
		default:
			fail(http.StatusBadRequest, "malformed_container", err.Error())
		}
		return
	}

	if info.Duration() > time.Duration(maxSeconds)*time.Second {
		fail(http.StatusRequestEntityTooLarge, "too_long",
			"Audio too long (> "+strconv.Itoa(maxSeconds)+"s).")
		return
	}

	result, err := transcribe.Run(s.engine, info)
	if err != nil {
		log.Error().Err(err).Msg("Batch transcription failed")
		fail(http.StatusInternalServerError, "engine_error", "transcription failed")
		return
	}

	m.RecordBatch("ok", time.Since(start).Seconds())
	log.Info().
		Int("sampleRate", info.SampleRate).
		Int("channels", info.Channels).
		Float64("durationSec", result.DurationSec).
		Dur("elapsed", time.Since(start)).
		Msg("Batch transcription completed")
	writeJSON(w, http.StatusOK, result)
}
