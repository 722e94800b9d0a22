package transport

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onsip/ox-go/pkg/log"
	"github.com/onsip/ox-go/pkg/stanza"
)

// Adapter errors.
var (
	ErrNoSender   = errors.New("transport: sender is required")
	ErrNoLocalJID = errors.New("transport: local JID is required")
	ErrClosed     = errors.New("transport: adapter is closed")
)

// Config configures an Adapter.
type Config struct {
	// Sender writes serialized stanzas. Required.
	Sender StanzaSender

	// LocalJID is the session's full JID. Required.
	LocalJID string

	// Logger receives operational logs. Defaults to slog.Default().
	Logger *slog.Logger

	// ProtocolLogger captures every stanza sent and received.
	ProtocolLogger log.Logger

	// SessionID tags protocol log events. Defaults to a random UUID.
	SessionID string
}

// Adapter implements pubsub.Transport over a StanzaSender.
type Adapter struct {
	sender    StanzaSender
	jid       string
	logger    *slog.Logger
	plog      log.Logger
	sessionID string

	mu        sync.Mutex
	pending   map[string]func(*stanza.Element)
	listeners map[string][]func(*stanza.Element)
	closed    bool
}

// NewAdapter creates an Adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Sender == nil {
		return nil, ErrNoSender
	}
	if cfg.LocalJID == "" {
		return nil, ErrNoLocalJID
	}

	a := &Adapter{
		sender:    cfg.Sender,
		jid:       cfg.LocalJID,
		logger:    cfg.Logger,
		plog:      log.OrNoop(cfg.ProtocolLogger),
		sessionID: cfg.SessionID,
		pending:   make(map[string]func(*stanza.Element)),
		listeners: make(map[string][]func(*stanza.Element)),
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.sessionID == "" {
		a.sessionID = uuid.NewString()
	}
	a.logger = a.logger.With("jid", a.jid, "session", a.sessionID)
	return a, nil
}

// LocalJID returns the session's full JID.
func (a *Adapter) LocalJID() string { return a.jid }

// SessionID returns the protocol log session id.
func (a *Adapter) SessionID() string { return a.sessionID }

// Send assigns req a fresh id, writes it, and calls onComplete with the
// matching response. If the adapter is closed or the write fails,
// onComplete is called with nil before Send returns.
func (a *Adapter) Send(req *stanza.Element, onComplete func(*stanza.Element)) {
	if onComplete == nil {
		onComplete = func(*stanza.Element) {}
	}

	id := uuid.NewString()
	req.SetAttr("id", id)
	if req.Attr("from") == "" {
		req.SetAttr("from", a.jid)
	}

	data, err := stanza.Marshal(req)
	if err != nil {
		a.logger.Warn("cannot serialize request", "error", err)
		onComplete(nil)
		return
	}

	// Register before writing: a synchronous peer may answer from inside Send.
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		onComplete(nil)
		return
	}
	a.pending[id] = onComplete
	a.mu.Unlock()

	a.capture(log.DirectionOut, req, req.To(), data)
	if err := a.sender.Send(data); err != nil {
		a.logger.Warn("send failed", "id", id, "to", req.To(), "error", err)
		if cb := a.take(id); cb != nil {
			cb(nil)
		}
	}
}

// RegisterPermanentListener adds handler for stanzas whose bare from
// address is address. Several handlers may share an address.
func (a *Adapter) RegisterPermanentListener(address string, handler func(*stanza.Element)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := bare(address)
	a.listeners[key] = append(a.listeners[key], handler)
}

// HandleData parses data as one stanza and routes it.
func (a *Adapter) HandleData(data []byte) error {
	doc, err := stanza.Parse(data)
	if err != nil {
		return err
	}
	a.route(doc, data)
	return nil
}

// HandleStanza routes an already parsed inbound stanza.
func (a *Adapter) HandleStanza(doc *stanza.Element) {
	data, _ := stanza.Marshal(doc)
	a.route(doc, data)
}

func (a *Adapter) route(doc *stanza.Element, data []byte) {
	a.capture(log.DirectionIn, doc, doc.From(), data)

	if doc.IsResponse() {
		if cb := a.take(doc.ID()); cb != nil {
			cb(doc)
			return
		}
		a.logger.Debug("dropping unmatched response", "id", doc.ID(), "from", doc.From())
		return
	}

	a.mu.Lock()
	handlers := a.listeners[bare(doc.From())]
	a.mu.Unlock()

	if len(handlers) == 0 {
		a.logger.Debug("no listener for stanza", "stanza", doc.Local, "from", doc.From())
		return
	}
	for _, h := range handlers {
		h(doc)
	}
}

// Pending returns the number of requests awaiting a response.
func (a *Adapter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Close completes every pending request with nil. Later sends complete
// immediately with nil.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	pending := a.pending
	a.pending = make(map[string]func(*stanza.Element))
	a.mu.Unlock()

	for _, cb := range pending {
		cb(nil)
	}
	a.logger.Debug("adapter closed", "abandoned", len(pending))
	return nil
}

func (a *Adapter) take(id string) func(*stanza.Element) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cb, ok := a.pending[id]
	if !ok {
		return nil
	}
	delete(a.pending, id)
	return cb
}

func (a *Adapter) capture(dir log.Direction, doc *stanza.Element, peer string, data []byte) {
	a.plog.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: a.sessionID,
		Direction: dir,
		Layer:     log.LayerTransport,
		Category:  log.CategoryStanza,
		LocalJID:  a.jid,
		Service:   bare(peer),
		Stanza:    log.CaptureStanza(doc.Local, doc.Type(), doc.ID(), peer, data),
	})
}

// bare strips the resource from a JID.
func bare(jid string) string {
	if i := strings.IndexByte(jid, '/'); i >= 0 {
		return jid[:i]
	}
	return jid
}
