package uri

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		path   string
		action string
		node   string
		item   string
	}{
		{in: "xmpp:pubsub.example.com", path: "pubsub.example.com"},
		{in: "xmpp:pubsub.example.com?;node=/calls", path: "pubsub.example.com", node: "/calls"},
		{in: "xmpp:pubsub.example.com?;node=songs;item=7", path: "pubsub.example.com", node: "songs", item: "7"},
		{in: "xmpp:pubsub.example.com?pubsub;node=x", path: "pubsub.example.com", action: "pubsub", node: "x"},
		{in: "pubsub.example.com?;node=bare", path: "pubsub.example.com", node: "bare"},
		{in: "XMPP:pubsub.example.com", path: "pubsub.example.com"},
		{in: "xmpp://pubsub.example.com", path: "pubsub.example.com"},
		{in: "alice@example.com/res:1", path: "alice@example.com/res:1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if u.Path() != tt.path {
				t.Errorf("Path() = %q, want %q", u.Path(), tt.path)
			}
			if u.Action() != tt.action {
				t.Errorf("Action() = %q, want %q", u.Action(), tt.action)
			}
			if u.Node() != tt.node {
				t.Errorf("Node() = %q, want %q", u.Node(), tt.node)
			}
			if u.Item() != tt.item {
				t.Errorf("Item() = %q, want %q", u.Item(), tt.item)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "http://example.com", "xmpp:pubsub.example.com?;node=%zz"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidURI) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidURI", in, err)
		}
	}
}

func TestString(t *testing.T) {
	base := New("pubsub.example.com")

	if got := base.String(); got != "xmpp:pubsub.example.com" {
		t.Errorf("base = %q", got)
	}
	if got := base.WithNode("songs").String(); got != "xmpp:pubsub.example.com?;node=songs" {
		t.Errorf("WithNode = %q", got)
	}
	if got := base.WithItem("songs", "1").String(); got != "xmpp:pubsub.example.com?;node=songs;item=1" {
		t.Errorf("WithItem = %q", got)
	}
}

func TestImmutable(t *testing.T) {
	base := New("pubsub.example.com")
	a := base.WithNode("a")
	b := a.WithItem("b", "1")

	if base.Node() != "" {
		t.Errorf("base mutated: %s", base)
	}
	if a.Node() != "a" || a.Item() != "" {
		t.Errorf("a mutated: %s", a)
	}
	if b.Node() != "b" || b.Item() != "1" {
		t.Errorf("b = %s", b)
	}
	if !b.Service().Equal(base) {
		t.Errorf("Service() = %s, want %s", b.Service(), base)
	}
}

func TestRoundTrip(t *testing.T) {
	in := "xmpp:pubsub.voicemail.xmpp.onsip.com?;node=/me/inbox;item=abc"
	u := MustParse(in)
	if u.String() != in {
		t.Errorf("String() = %q, want %q", u.String(), in)
	}
}

func TestQueryEscaping(t *testing.T) {
	u, err := Parse("xmpp:pubsub.example.com?;node=princely%20musings;item=a%3Bb")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if u.Node() != "princely musings" {
		t.Errorf("Node() = %q, want %q", u.Node(), "princely musings")
	}
	if u.Item() != "a;b" {
		t.Errorf("Item() = %q, want %q", u.Item(), "a;b")
	}

	tests := []struct {
		node string
		want string
	}{
		{"princely musings", "xmpp:pubsub.example.com?;node=princely%20musings"},
		{"/alice@example.com", "xmpp:pubsub.example.com?;node=/alice@example.com"},
		{"a;item=b", "xmpp:pubsub.example.com?;node=a%3Bitem%3Db"},
		{"100%", "xmpp:pubsub.example.com?;node=100%25"},
		{"café", "xmpp:pubsub.example.com?;node=café"},
	}
	for _, tt := range tests {
		got := New("pubsub.example.com").WithNode(tt.node)
		if got.String() != tt.want {
			t.Errorf("WithNode(%q).String() = %q, want %q", tt.node, got.String(), tt.want)
		}
		back, err := Parse(got.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", got.String(), err)
		}
		if back.Node() != tt.node {
			t.Errorf("round trip of %q gave %q", tt.node, back.Node())
		}
	}
}
