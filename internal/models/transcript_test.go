package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMarshal_Partial(t *testing.T) {
	ev := NewPartial("hello wor")

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(b)
	if got != `{"type":"partial","text":"hello wor"}` {
		t.Errorf("unexpected partial payload: %s", got)
	}
}

func TestMarshal_FinalWithWords(t *testing.T) {
	ev := NewFinal("hello world", []Word{
		{Word: "hello", Start: 0, End: 0.4, Conf: 0.95},
		{Word: "world", Start: 0.4, End: 0.9, Conf: 0.88},
	})

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, `"type":"final"`) {
		t.Errorf("missing type tag: %s", got)
	}
	if !strings.Contains(got, `"result":[{"word":"hello"`) {
		t.Errorf("missing result array: %s", got)
	}
}

func TestMarshal_EmptyFinalKeepsResultArray(t *testing.T) {
	// Clients rely on "result" being present on every final, including the
	// empty closing final of a silent stream.
	ev := NewFinal("", nil)

	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `{"type":"final","text":"","result":[]}` {
		t.Errorf("unexpected empty final payload: %s", string(b))
	}
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	for _, raw := range []string{
		`{"type":"partial","text":"abc"}`,
		`{"type":"final","text":"abc def","result":[{"word":"abc","start":0,"end":0.3,"conf":1}]}`,
	} {
		var ev TranscriptEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if ev.Type == "" || ev.Text == "" {
			t.Errorf("lost fields unmarshaling %s: %+v", raw, ev)
		}
	}
}

func TestIsFinal(t *testing.T) {
	if NewPartial("x").IsFinal() {
		t.Error("partial must not be final")
	}
	if !NewFinal("x", nil).IsFinal() {
		t.Error("final must be final")
	}
}
