package simservice

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/onsip/ox-go/pkg/stanza"
	"github.com/onsip/ox-go/pkg/uri"
)

// Stanza error conditions used by the service.
const (
	condItemNotFound      = "item-not-found"
	condUnexpectedRequest = "unexpected-request"
	condBadRequest        = "bad-request"
	condNotImplemented    = "feature-not-implemented"
)

type item struct {
	id        string
	payload   *stanza.Element
	published time.Time
}

type subscription struct {
	jid     string
	state   string
	subid   string
	options map[string][]string
}

type node struct {
	name  string
	items []item
	subs  map[string]*subscription
}

type forward struct {
	condition string
	target    string
}

// Service is a simulated pubsub service.
type Service struct {
	address string
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	nodes     map[string]*node
	forwards  map[string]forward
	approval  map[string]bool
	autoNodes bool
	sessions  map[string]*Session
	nextSubID int
	requests  int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the time source used for publish times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStrictNodes makes requests for nodes that were never created fail
// with item-not-found. By default nodes are created on first use.
func WithStrictNodes() Option {
	return func(s *Service) { s.autoNodes = false }
}

// New creates a Service answering as address.
func New(address string, opts ...Option) *Service {
	s := &Service{
		address:   address,
		logger:    slog.Default(),
		now:       time.Now,
		nodes:     make(map[string]*node),
		forwards:  make(map[string]forward),
		approval:  make(map[string]bool),
		autoNodes: true,
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("sim", address)
	return s
}

// Address returns the service JID.
func (s *Service) Address() string { return s.address }

// URI returns the service URI.
func (s *Service) URI() uri.URI { return uri.New(s.address) }

// Requests returns the number of iq requests handled so far.
func (s *Service) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// CreateNode creates an empty node. It is a no-op for existing nodes.
func (s *Service) CreateNode(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeLocked(name, true)
}

// SetRedirect makes requests for from answer with a redirect to target.
func (s *Service) SetRedirect(from, target string) {
	s.setForward(from, forward{condition: stanza.ConditionRedirect, target: target})
}

// SetGone makes requests for from answer with gone. A non-empty target is
// carried as the replacement node.
func (s *Service) SetGone(from, target string) {
	s.setForward(from, forward{condition: stanza.ConditionGone, target: target})
}

// ClearForward removes a redirect or gone rule.
func (s *Service) ClearForward(from string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forwards, from)
}

func (s *Service) setForward(from string, f forward) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forwards[from] = f
}

// RequireApproval makes new subscriptions to node start as pending.
func (s *Service) RequireApproval(node string, required bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approval[node] = required
}

// Connect attaches a client. deliver receives every stanza the service
// sends to jid.
func (s *Service) Connect(jid string, deliver func([]byte) error) *Session {
	sess := &Session{svc: s, jid: jid, deliver: deliver}
	s.mu.Lock()
	s.sessions[bareJID(jid)] = sess
	s.mu.Unlock()
	return sess
}

// Publish stores an item and notifies subscribed clients. An empty id is
// replaced by a generated one, which is returned.
func (s *Service) Publish(nodeName, id string, payload *stanza.Element) string {
	s.mu.Lock()
	n := s.nodeLocked(nodeName, true)
	if id == "" {
		id = strconv.FormatInt(s.now().UnixNano(), 36)
	}
	it := item{id: id, payload: clone(payload), published: s.now().UTC()}
	replaced := false
	for i := range n.items {
		if n.items[i].id == id {
			n.items[i] = it
			replaced = true
		}
	}
	if !replaced {
		n.items = append(n.items, it)
	}

	out := s.broadcastLocked(n, func(to string) *stanza.Element {
		msg, items := s.eventMessage(to, n.name)
		items.AddChild(it.entry())
		return msg
	})
	s.mu.Unlock()

	s.logger.Debug("published", "node", nodeName, "item", id, "notified", len(out))
	s.flush(out)
	return id
}

// Retract removes an item and notifies subscribed clients. It reports
// whether the item existed.
func (s *Service) Retract(nodeName, id string) bool {
	s.mu.Lock()
	n := s.nodeLocked(nodeName, false)
	if n == nil {
		s.mu.Unlock()
		return false
	}
	found := false
	for i := range n.items {
		if n.items[i].id == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			found = true
			break
		}
	}
	var out []outbound
	if found {
		out = s.broadcastLocked(n, func(to string) *stanza.Element {
			msg, items := s.eventMessage(to, n.name)
			items.AddChild(stanza.NewElement("", "retract")).SetAttr("id", id)
			return msg
		})
	}
	s.mu.Unlock()

	s.flush(out)
	return found
}

// Approve moves a pending subscription to subscribed and notifies the
// subscriber.
func (s *Service) Approve(nodeName, jid string) error {
	return s.setState(nodeName, jid, "subscribed")
}

// Revoke removes a subscription and notifies the former subscriber with
// state none.
func (s *Service) Revoke(nodeName, jid string) error {
	return s.setState(nodeName, jid, "none")
}

func (s *Service) setState(nodeName, jid, state string) error {
	s.mu.Lock()
	n := s.nodeLocked(nodeName, false)
	if n == nil {
		s.mu.Unlock()
		return fmt.Errorf("simservice: no node %q", nodeName)
	}
	sub, ok := n.subs[jid]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("simservice: %s has no subscription to %q", jid, nodeName)
	}
	if state == "none" {
		delete(n.subs, jid)
	} else {
		sub.state = state
	}

	var out []outbound
	if sess := s.sessions[bareJID(jid)]; sess != nil {
		out = append(out, outbound{sess: sess, doc: s.subscriptionMessage(jid, n.name, state)})
	}
	s.mu.Unlock()

	s.flush(out)
	return nil
}

// Subscribers returns the JIDs subscribed to node with their states.
func (s *Service) Subscribers(nodeName string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	if n := s.nodeLocked(nodeName, false); n != nil {
		for jid, sub := range n.subs {
			out[jid] = sub.state
		}
	}
	return out
}

// SubscriptionOptions returns the last options submitted for jid on node.
func (s *Service) SubscriptionOptions(nodeName, jid string) map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.nodeLocked(nodeName, false); n != nil {
		if sub, ok := n.subs[jid]; ok {
			return sub.options
		}
	}
	return nil
}

// Nodes returns the node names in sorted order.
func (s *Service) Nodes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.nodes))
	for name := range s.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) nodeLocked(name string, create bool) *node {
	if n, ok := s.nodes[name]; ok {
		return n
	}
	if !create {
		return nil
	}
	n := &node{name: name, subs: make(map[string]*subscription)}
	s.nodes[name] = n
	return n
}

type outbound struct {
	sess *Session
	doc  *stanza.Element
}

func (s *Service) broadcastLocked(n *node, build func(to string) *stanza.Element) []outbound {
	jids := make([]string, 0, len(n.subs))
	for jid, sub := range n.subs {
		if sub.state == "subscribed" {
			jids = append(jids, jid)
		}
	}
	sort.Strings(jids)

	var out []outbound
	for _, jid := range jids {
		if sess := s.sessions[bareJID(jid)]; sess != nil {
			out = append(out, outbound{sess: sess, doc: build(jid)})
		}
	}
	return out
}

func (s *Service) flush(out []outbound) {
	for _, o := range out {
		if err := o.sess.write(o.doc); err != nil {
			s.logger.Warn("delivery failed", "to", o.sess.jid, "error", err)
		}
	}
}

func (s *Service) eventMessage(to, nodeName string) (msg, items *stanza.Element) {
	msg = stanza.NewElement(stanza.NSClient, stanza.NameMessage).
		SetAttr("from", s.address).
		SetAttr("to", to)
	event := msg.AddChild(stanza.NewElement(stanza.NSPubSubEvent, "event"))
	items = event.AddChild(stanza.NewElement("", "items")).SetAttr("node", nodeName)
	return msg, items
}

func (s *Service) subscriptionMessage(to, nodeName, state string) *stanza.Element {
	msg := stanza.NewElement(stanza.NSClient, stanza.NameMessage).
		SetAttr("from", s.address).
		SetAttr("to", to)
	msg.AddChild(stanza.NewElement(stanza.NSPubSubEvent, "event")).
		AddChild(stanza.NewElement("", "subscription")).
		SetAttr("node", nodeName).
		SetAttr("jid", to).
		SetAttr("subscription", state)
	return msg
}

func (it item) entry() *stanza.Element {
	entry := stanza.NewElement("", "item").SetAttr("id", it.id)
	if it.payload != nil {
		p := clone(it.payload)
		if p.Attr("publish-time") == "" {
			p.SetAttr("publish-time", it.published.Format(time.RFC3339Nano))
		}
		entry.AddChild(p)
	}
	return entry
}

func clone(e *stanza.Element) *stanza.Element {
	if e == nil {
		return nil
	}
	c := &stanza.Element{Space: e.Space, Local: e.Local, Text: e.Text}
	c.Attrs = append(c.Attrs, e.Attrs...)
	for _, child := range e.Children {
		c.Children = append(c.Children, clone(child))
	}
	return c
}

func bareJID(jid string) string {
	if i := strings.IndexByte(jid, '/'); i >= 0 {
		return jid[:i]
	}
	return jid
}
