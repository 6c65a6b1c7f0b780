package mock

import (
	"errors"
	"testing"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine"
)

var script = []Utterance{
	{Partials: []string{"one", "one two"}, Final: "one two three", Confidence: 0.9},
	{Partials: []string{"four"}, Final: "four five", Confidence: 0.8},
}

func mustSession(t *testing.T, e *Engine) engine.Session {
	t.Helper()
	s, err := e.NewSession(16000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestAccept_WalksScript(t *testing.T) {
	s := mustSession(t, NewWithScript(script))

	want := []struct {
		kind engine.Kind
		text string
	}{
		{engine.KindPartial, "one"},
		{engine.KindPartial, "one two"},
		{engine.KindFinal, "one two three"},
		{engine.KindPartial, "four"},
		{engine.KindFinal, "four five"},
		{engine.KindNone, ""},
	}

	for i, w := range want {
		res, err := s.Accept(make([]byte, 320))
		if err != nil {
			t.Fatalf("frame %d: unexpected error: %v", i, err)
		}
		if res.Kind != w.kind || res.Text != w.text {
			t.Errorf("frame %d: got %v %q, want %v %q", i, res.Kind, res.Text, w.kind, w.text)
		}
	}
}

func TestAccept_FinalCarriesWords(t *testing.T) {
	s := mustSession(t, NewWithScript(script))

	s.Accept(make([]byte, 2))
	s.Accept(make([]byte, 2))
	res, err := s.Accept(make([]byte, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != engine.KindFinal {
		t.Fatalf("expected final, got %v", res.Kind)
	}
	if len(res.Words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(res.Words))
	}
	if res.Words[0].Word != "one" || res.Words[0].Conf != 0.9 {
		t.Errorf("unexpected first word: %+v", res.Words[0])
	}
	if res.Words[1].Start >= res.Words[1].End {
		t.Errorf("word timing must be increasing: %+v", res.Words[1])
	}
}

func TestFlush_PendingUtterance(t *testing.T) {
	s := mustSession(t, NewWithScript(script))

	s.Accept(make([]byte, 2))
	res, err := s.Flush()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != engine.KindFinal || res.Text != "one two three" {
		t.Errorf("expected pending final, got %v %q", res.Kind, res.Text)
	}
}

func TestFlush_NothingPending(t *testing.T) {
	s := mustSession(t, NewWithScript(script))

	res, err := s.Flush()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != engine.KindFinal || res.Text != "" {
		t.Errorf("expected empty final, got %v %q", res.Kind, res.Text)
	}
	if res.Words == nil || len(res.Words) != 0 {
		t.Errorf("expected empty word list, got %+v", res.Words)
	}
}

func TestAccept_AfterRelease(t *testing.T) {
	s := mustSession(t, New())
	s.Release()
	s.Release() // idempotent

	if _, err := s.Accept(make([]byte, 2)); !errors.Is(err, engine.ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}
	if _, err := s.Flush(); !errors.Is(err, engine.ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}
}

func TestFail_ForcesErrors(t *testing.T) {
	eng := New()
	s := mustSession(t, eng)

	boom := errors.New("boom")
	eng.Last().Fail(boom)

	if _, err := s.Accept(make([]byte, 2)); !errors.Is(err, boom) {
		t.Errorf("expected forced error, got %v", err)
	}
}

func TestSessions_AreIndependent(t *testing.T) {
	eng := NewWithScript(script)
	a := mustSession(t, eng)
	b := mustSession(t, eng)

	resA, _ := a.Accept(make([]byte, 2))
	resB, _ := b.Accept(make([]byte, 2))

	if resA.Text != "one" || resB.Text != "one" {
		t.Errorf("each session must start its own script: a=%q b=%q", resA.Text, resB.Text)
	}
}
