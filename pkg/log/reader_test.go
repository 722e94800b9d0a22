package log

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.olog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "s-1", Direction: DirectionOut, Layer: LayerTransport, Category: CategoryStanza},
		{Timestamp: time.Now(), SessionID: "s-2", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryStanza},
		{Timestamp: time.Now(), SessionID: "s-3", Direction: DirectionIn, Layer: LayerPubSub, Category: CategoryNotification},
	}

	r, err := NewReader(createTestLogFile(t, events))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	read := readAll(t, r)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	for i, want := range []string{"s-1", "s-2", "s-3"} {
		if read[i].SessionID != want {
			t.Errorf("event %d SessionID = %q, want %q", i, read[i].SessionID, want)
		}
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, Direction: DirectionOut, Layer: LayerTransport, Category: CategoryStanza, Service: "a"},
		{Timestamp: base.Add(time.Second), Direction: DirectionIn, Layer: LayerPubSub, Category: CategoryNotification, Service: "a"},
		{Timestamp: base.Add(2 * time.Second), Direction: DirectionIn, Layer: LayerPubSub, Category: CategoryRedirect, Service: "b"},
	}
	path := createTestLogFile(t, events)

	in := DirectionIn
	pubsubLayer := LayerPubSub
	redirect := CategoryRedirect
	start := base.Add(time.Second)
	end := base.Add(2 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"All", Filter{}, 3},
		{"Direction", Filter{Direction: &in}, 2},
		{"Layer", Filter{Layer: &pubsubLayer}, 2},
		{"Category", Filter{Category: &redirect}, 1},
		{"Service", Filter{Service: "a"}, 2},
		{"TimeWindow", Filter{TimeStart: &start, TimeEnd: &end}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer r.Close()

			if got := len(readAll(t, r)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.olog")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFilterNodeAndKind(t *testing.T) {
	events := []Event{
		{Category: CategoryStanza, Stanza: &StanzaEvent{Name: "iq"}},
		{Category: CategoryNotification, PubSub: &PubSubEvent{Kind: "onPublish", URI: "xmpp:pubsub.a?;node=/alice;item=1"}},
		{Category: CategoryNotification, PubSub: &PubSubEvent{Kind: "onSubscribed", URI: "xmpp:pubsub.a?;node=/bob"}},
		{Category: CategoryRedirect, Redirect: &RedirectEvent{OriginalNode: "/old", FromNode: "/old", ToNode: "/alice"}},
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"NodeInURI", Filter{Node: "/bob"}, 1},
		{"NodeInRedirect", Filter{Node: "/old"}, 1},
		{"NodeAnywhere", Filter{Node: "/alice"}, 2},
		{"Kind", Filter{Kind: "onPublish"}, 1},
		{"KindAndNode", Filter{Kind: "onPublish", Node: "/bob"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := 0
			for _, e := range events {
				if tt.filter.Matches(e) {
					got++
				}
			}
			if got != tt.want {
				t.Errorf("matched %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReadFromTruncatedStream(t *testing.T) {
	path := createTestLogFile(t, []Event{
		{SessionID: "s-1", Category: CategoryStanza},
		{SessionID: "s-2", Category: CategoryStanza},
	})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	r := ReadFrom(bytes.NewReader(data[:len(data)-3]), Filter{})
	defer r.Close()

	read := readAll(t, r)
	if len(read) != 1 || read[0].SessionID != "s-1" {
		t.Errorf("got %+v, want only the complete first event", read)
	}
}
