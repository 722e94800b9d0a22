package pubsub

import (
	"time"

	"github.com/onsip/ox-go/pkg/log"
	"github.com/onsip/ox-go/pkg/stanza"
	"github.com/onsip/ox-go/pkg/uri"
)

// Classify inspects an inbound document and returns its pubsub event.
// It returns a nil Event for documents that carry no event envelope or
// whose envelope is not a recognized shape. A non-nil error reports item
// entries that failed to decode; the Event then holds the remaining items.
func (e *Engine) Classify(doc *stanza.Element) (Event, error) {
	envelopes := doc.ElementsByTag("event")
	if len(envelopes) == 0 {
		return nil, nil
	}
	payload := envelopes[0].FirstChild()
	if payload == nil {
		return nil, nil
	}

	base := e.baseFor(doc)
	switch payload.Local {
	case "subscription":
		return classifySubscription(payload, base.WithNode(nodeOrDefault(payload.Attr("node")))), nil

	case "items":
		node := nodeOrDefault(payload.Attr("node"))
		if first := payload.FirstChild(); first != nil && first.Local == "retract" {
			return Retracted{URI: base.WithItem(node, first.Attr("id"))}, nil
		}
		items, err := e.extractItems(doc)
		return Published{Items: items}, err
	}
	return nil, nil
}

// classifySubscription maps a subscription element's state to its event.
// States other than none, pending and subscribed produce no event.
func classifySubscription(sub *stanza.Element, u uri.URI) Event {
	switch SubscriptionState(sub.Attr("subscription")) {
	case StateNone:
		return Unsubscribed{URI: u}
	case StatePending:
		return Pending{URI: u}
	case StateSubscribed:
		return Subscribed{URI: u}
	}
	return nil
}

// handlePush is the permanent listener for the service address.
func (e *Engine) handlePush(doc *stanza.Element) {
	if doc == nil {
		return
	}
	ev, err := e.Classify(doc)
	if err != nil {
		e.logger.Warn("dropping undecodable items", "error", err)
		e.logError("notification", "", err)
	}
	if ev == nil {
		if err == nil {
			e.logger.Debug("ignoring non-pubsub stanza", "stanza", doc.Local, "from", doc.From())
		}
		return
	}
	e.dispatch(ev)
}

// dispatch invokes the handler registered for ev's kind. A missing handler is a no-op.
func (e *Engine) dispatch(ev Event) {
	switch ev := ev.(type) {
	case Subscribed:
		e.deliver(Notification{Kind: KindSubscribed, URI: ev.URI})
	case Pending:
		e.deliver(Notification{Kind: KindPending, URI: ev.URI})
	case Unsubscribed:
		e.deliver(Notification{Kind: KindUnsubscribed, URI: ev.URI})
	case Retracted:
		e.deliver(Notification{Kind: KindRetract, URI: ev.URI})
	case Published:
		for i := range ev.Items {
			item := ev.Items[i]
			e.deliver(Notification{Kind: KindPublish, URI: item.URI, Item: &item})
		}
	}
}

func (e *Engine) deliver(n Notification) {
	h := e.handlers.get(n.Kind)
	e.plog.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Layer:     log.LayerPubSub,
		Category:  log.CategoryNotification,
		LocalJID:  e.transport.LocalJID(),
		Service:   e.address.Path(),
		PubSub: &log.PubSubEvent{
			Kind:      n.Kind.String(),
			URI:       n.URI.String(),
			Delivered: h != nil,
		},
	})
	if h != nil {
		h(n)
	}
}
