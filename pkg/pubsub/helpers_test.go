package pubsub

import (
	"fmt"
	"sync"
	"testing"

	"github.com/onsip/ox-go/pkg/stanza"
	"github.com/onsip/ox-go/pkg/uri"
)

const (
	testService = "pubsub.example.com"
	testJID     = "alice@example.com/web"
)

// fakeTransport records requests and replies through responder, if set.
type fakeTransport struct {
	mu        sync.Mutex
	jid       string
	sent      []*stanza.Element
	responder func(n int, req *stanza.Element) *stanza.Element
	listeners map[string]func(*stanza.Element)
	pending   []func(*stanza.Element)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{jid: testJID, listeners: make(map[string]func(*stanza.Element))}
}

func (f *fakeTransport) Send(req *stanza.Element, onComplete func(*stanza.Element)) {
	f.mu.Lock()
	f.sent = append(f.sent, req)
	n := len(f.sent)
	responder := f.responder
	if responder == nil {
		f.pending = append(f.pending, onComplete)
	}
	f.mu.Unlock()

	if responder != nil {
		onComplete(responder(n, req))
	}
}

func (f *fakeTransport) RegisterPermanentListener(address string, handler func(*stanza.Element)) {
	f.listeners[address] = handler
}

func (f *fakeTransport) LocalJID() string { return f.jid }

func (f *fakeTransport) requests() []*stanza.Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*stanza.Element(nil), f.sent...)
}

// complete answers the oldest unanswered request.
func (f *fakeTransport) complete(resp *stanza.Element) {
	f.mu.Lock()
	cb := f.pending[0]
	f.pending = f.pending[1:]
	f.mu.Unlock()
	cb(resp)
}

// push delivers doc to the listener registered for the service.
func (f *fakeTransport) push(t *testing.T, doc *stanza.Element) {
	t.Helper()
	h, ok := f.listeners[testService]
	if !ok {
		t.Fatal("no listener registered for service")
	}
	h(doc)
}

func newTestEngine(t *testing.T, tr *fakeTransport, dec ItemDecoder) *Engine {
	t.Helper()
	e, err := New(Config{Transport: tr, Address: uri.New(testService), Decoder: dec})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func mustParse(t *testing.T, format string, args ...any) *stanza.Element {
	t.Helper()
	doc, err := stanza.Parse([]byte(fmt.Sprintf(format, args...)))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func resultIQ(t *testing.T, body string) *stanza.Element {
	t.Helper()
	return mustParse(t, `<iq xmlns="jabber:client" type="result" from="%s">%s</iq>`, testService, body)
}

func errorIQ(t *testing.T, condition, detail string) *stanza.Element {
	t.Helper()
	return mustParse(t, `<iq xmlns="jabber:client" type="error" from="%s"><error type="modify"><%s xmlns="urn:ietf:params:xml:ns:xmpp-stanzas">%s</%s></error></iq>`,
		testService, condition, detail, condition)
}

func redirectTo(t *testing.T, node string) *stanza.Element {
	t.Helper()
	return errorIQ(t, stanza.ConditionRedirect, "xmpp:"+testService+"?;node="+node)
}

// payloadOf returns the first child of the request's pubsub element.
func payloadOf(t *testing.T, req *stanza.Element) *stanza.Element {
	t.Helper()
	ps := req.Child("pubsub")
	if ps == nil || ps.Space != stanza.NSPubSub {
		t.Fatalf("request has no pubsub payload: %s", req)
	}
	return ps.FirstChild()
}

// recorder collects notifications per kind.
type recorder struct {
	mu   sync.Mutex
	got  []Notification
	seen map[EventKind]int
}

func newRecorder(e *Engine) *recorder {
	r := &recorder{seen: make(map[EventKind]int)}
	for k := EventKind(0); k < numEventKinds; k++ {
		_ = e.RegisterHandler(k, r.handle)
	}
	return r
}

func (r *recorder) handle(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	r.seen[n.Kind]++
}
