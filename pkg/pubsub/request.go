package pubsub

import (
	"github.com/onsip/ox-go/pkg/stanza"
)

// newRequest creates an iq of type typ to the service with an empty pubsub payload.
func (e *Engine) newRequest(typ string) (iq, ps *stanza.Element) {
	iq = stanza.NewIQ(e.address.Path(), typ)
	ps = iq.AddChild(stanza.NewPubSub())
	return iq, ps
}

// buildSubscribe builds a subscribe request for node. A nil form omits the options.
func (e *Engine) buildSubscribe(node string, form *stanza.Element) *stanza.Element {
	iq, ps := e.newRequest(stanza.TypeSet)
	ps.AddChild(stanza.NewElement("", "subscribe")).
		SetAttr("node", node).
		SetAttr("jid", e.transport.LocalJID())
	if form != nil {
		ps.AddChild(form)
	}
	return iq
}

func (e *Engine) buildUnsubscribe(node string) *stanza.Element {
	iq, ps := e.newRequest(stanza.TypeSet)
	ps.AddChild(stanza.NewElement("", "unsubscribe")).
		SetAttr("node", node).
		SetAttr("jid", e.transport.LocalJID())
	return iq
}

func (e *Engine) buildGetItems(node string) *stanza.Element {
	iq, ps := e.newRequest(stanza.TypeGet)
	ps.AddChild(stanza.NewElement("", "items")).SetAttr("node", node)
	return iq
}

// buildGetSubscriptions omits the node attribute when node is empty,
// which asks for subscriptions on every node of the service.
func (e *Engine) buildGetSubscriptions(node string) *stanza.Element {
	iq, ps := e.newRequest(stanza.TypeGet)
	subs := ps.AddChild(stanza.NewElement("", "subscriptions"))
	if node != "" {
		subs.SetAttr("node", node)
	}
	return iq
}

func (e *Engine) buildConfigure(sub Subscription, opts Options) (*stanza.Element, error) {
	iq, ps := e.newRequest(stanza.TypeSet)

	form, err := EncodeOptions(opts)
	if err != nil {
		return nil, err
	}
	form.SetAttr("node", sub.Node).SetAttr("jid", sub.JID)
	if sub.SubID != "" {
		form.SetAttr("subid", sub.SubID)
	}
	ps.AddChild(form)
	return iq, nil
}
