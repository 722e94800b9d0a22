package log

import "testing"

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{SessionID: "ignored"})
}

func TestMultiLoggerFansOut(t *testing.T) {
	var a, b []Event
	m := NewMultiLogger(
		LoggerFunc(func(e Event) { a = append(a, e) }),
		nil,
		LoggerFunc(func(e Event) { b = append(b, e) }),
	)

	m.Log(Event{SessionID: "1"})
	m.Log(Event{SessionID: "2"})

	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("got %d and %d events, want 2 each", len(a), len(b))
	}
	if a[1].SessionID != "2" || b[0].SessionID != "1" {
		t.Error("events delivered out of order")
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	l := LoggerFunc(func(Event) {})
	if OrNoop(l) == nil {
		t.Error("OrNoop should keep a non-nil logger")
	}
}
