// Package models defines the wire-level data structures for transcript events.
package models

import "encoding/json"

// Event types as they appear on the wire.
const (
	EventPartial = "partial"
	EventFinal   = "final"
)

// Word is one recognized token of a final result, with timing in seconds
// and the engine's confidence for that token.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Conf  float64 `json:"conf"`
}

// TranscriptEvent is a single transcription event emitted by a session:
// either a revisable partial hypothesis or a finalized segment.
type TranscriptEvent struct {
	Type   string
	Text   string
	Result []Word
}

// NewPartial builds a partial event for the currently open segment.
func NewPartial(text string) *TranscriptEvent {
	return &TranscriptEvent{Type: EventPartial, Text: text}
}

// NewFinal builds a final event. A nil words slice is normalized to an
// empty one so the wire payload always carries a "result" array.
func NewFinal(text string, words []Word) *TranscriptEvent {
	if words == nil {
		words = []Word{}
	}
	return &TranscriptEvent{Type: EventFinal, Text: text, Result: words}
}

// IsFinal reports whether the event finalizes a segment.
func (e *TranscriptEvent) IsFinal() bool {
	return e.Type == EventFinal
}

// partialWire is the JSON shape of a partial event: {"type","text"}.
type partialWire struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// finalWire is the JSON shape of a final event: {"type","text","result"}.
type finalWire struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Result []Word `json:"result"`
}

// MarshalJSON emits the event in its wire shape. Partials carry no result
// array; finals always do, even when empty.
func (e *TranscriptEvent) MarshalJSON() ([]byte, error) {
	if e.Type == EventPartial {
		return json.Marshal(partialWire{Type: e.Type, Text: e.Text})
	}
	result := e.Result
	if result == nil {
		result = []Word{}
	}
	return json.Marshal(finalWire{Type: e.Type, Text: e.Text, Result: result})
}

// UnmarshalJSON accepts either wire shape.
func (e *TranscriptEvent) UnmarshalJSON(data []byte) error {
	var w finalWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.Type = w.Type
	e.Text = w.Text
	e.Result = w.Result
	return nil
}

// BatchResult is the response body of the batch transcription endpoint.
// It is final-shaped, with container facts echoed back to the caller.
type BatchResult struct {
	Text        string  `json:"text"`
	Result      []Word  `json:"result"`
	SampleRate  int     `json:"sample_rate"`
	Channels    int     `json:"channels"`
	DurationSec float64 `json:"duration_sec"`
}
