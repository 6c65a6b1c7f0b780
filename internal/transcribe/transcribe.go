package transcribe

import (
	"fmt"
	"strings"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/models"
)

// chunkFrames is how many samples-per-channel are fed to the decoder at a
// time. Feeding the whole buffer at once would make the decode call's
// latency proportional to total audio length in a single step.
const chunkFrames = 4000

// Run decodes one validated WAV payload through a throwaway decoder
// session and returns a single final-shaped result covering the whole
// buffer. Segment finals emitted along the way are concatenated.
func Run(eng engine.Engine, info *WAVInfo) (*models.BatchResult, error) {
	dec, err := eng.NewSession(float64(info.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("batch decoder session: %w", err)
	}
	defer dec.Release()

	var (
		texts []string
		words = []models.Word{}
	)

	chunkBytes := chunkFrames * info.Channels * 2
	data := info.Data
	for len(data) > 0 {
		n := chunkBytes
		if n > len(data) {
			n = len(data)
		}
		res, err := dec.Accept(data[:n])
		if err != nil {
			return nil, fmt.Errorf("batch decode: %w", err)
		}
		if res.Kind == engine.KindFinal && res.Text != "" {
			texts = append(texts, res.Text)
			words = append(words, res.Words...)
		}
		data = data[n:]
	}

	res, err := dec.Flush()
	if err != nil {
		return nil, fmt.Errorf("batch flush: %w", err)
	}
	if res.Text != "" {
		texts = append(texts, res.Text)
		words = append(words, res.Words...)
	}

	return &models.BatchResult{
		Text:        strings.Join(texts, " "),
		Result:      words,
		SampleRate:  info.SampleRate,
		Channels:    info.Channels,
		DurationSec: info.Duration().Seconds(),
	}, nil
}
