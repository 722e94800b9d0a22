package simservice

import (
	"fmt"
	"sync"

	"github.com/onsip/ox-go/pkg/stanza"
)

// Network joins several services behind one client connection, the way a
// server routes by the to address. Stanzas for an address no service
// claims go to the fallback, which answers pings and ad hoc commands.
type Network struct {
	mu       sync.Mutex
	services map[string]*Service
	order    []*Service
}

// NewNetwork creates a Network. The first service is the fallback.
func NewNetwork(svcs ...*Service) *Network {
	n := &Network{services: make(map[string]*Service)}
	for _, s := range svcs {
		n.Add(s)
	}
	return n
}

// Add attaches another service. A service for an address already
// claimed is ignored.
func (n *Network) Add(s *Service) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.services[s.address]; ok {
		return
	}
	n.order = append(n.order, s)
	n.services[s.address] = s
}

// Service returns the service answering as address.
func (n *Network) Service(address string) (*Service, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	s, ok := n.services[address]
	return s, ok
}

// Connect attaches jid to every service and returns the routing sender.
func (n *Network) Connect(jid string, deliver func([]byte) error) *NetworkSession {
	n.mu.Lock()
	defer n.mu.Unlock()
	ns := &NetworkSession{sessions: make(map[string]*Session, len(n.order))}
	for _, s := range n.order {
		ns.sessions[s.address] = s.Connect(jid, deliver)
	}
	if len(n.order) > 0 {
		ns.fallback = ns.sessions[n.order[0].address]
	}
	return ns
}

// NetworkSession is one client's connection to a Network. It implements
// transport.StanzaSender.
type NetworkSession struct {
	sessions map[string]*Session
	fallback *Session
}

// Send routes one stanza to the session for its to address.
func (ns *NetworkSession) Send(data []byte) error {
	doc, err := stanza.Parse(data)
	if err != nil {
		return fmt.Errorf("simservice: %w", err)
	}
	sess, ok := ns.sessions[bareJID(doc.To())]
	if !ok {
		sess = ns.fallback
	}
	if sess == nil {
		return fmt.Errorf("simservice: no service for %q", doc.To())
	}
	return sess.Send(data)
}
