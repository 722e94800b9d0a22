package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logOne(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsStanzaEvent(t *testing.T) {
	entry := logOne(t, Event{
		Timestamp: time.Now(),
		SessionID: "sess-123",
		Direction: DirectionOut,
		Layer:     LayerTransport,
		Category:  CategoryStanza,
		Stanza:    CaptureStanza("iq", "set", "abc", "pubsub.example.com", []byte("<iq/>")),
	})

	checks := map[string]any{
		"session_id":  "sess-123",
		"direction":   "OUT",
		"layer":       "TRANSPORT",
		"stanza":      "iq",
		"stanza_type": "set",
		"stanza_id":   "abc",
		"peer":        "pubsub.example.com",
		"stanza_size": float64(5),
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s: got %v, want %v", k, entry[k], want)
		}
	}
}

func TestSlogAdapterLogsPubSubEvent(t *testing.T) {
	entry := logOne(t, Event{
		Layer:    LayerPubSub,
		Category: CategoryNotification,
		PubSub:   &PubSubEvent{Kind: "onRetract", URI: "xmpp:ps?;node=x;item=7", Delivered: true},
	})

	if entry["kind"] != "onRetract" {
		t.Errorf("kind = %v", entry["kind"])
	}
	if entry["uri"] != "xmpp:ps?;node=x;item=7" {
		t.Errorf("uri = %v", entry["uri"])
	}
	if entry["delivered"] != true {
		t.Errorf("delivered = %v", entry["delivered"])
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level = %v, want DEBUG", entry["level"])
	}
}

func TestSlogAdapterLogsErrorEvent(t *testing.T) {
	entry := logOne(t, Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Layer: LayerPubSub, Message: "boom", Condition: "gone", Context: "subscribe"},
	})

	if entry["error_msg"] != "boom" || entry["error_condition"] != "gone" || entry["error_context"] != "subscribe" {
		t.Errorf("unexpected entry: %v", entry)
	}
}
