package pubsub

import (
	"github.com/onsip/ox-go/pkg/stanza"
)

// Unsubscribe removes the local JID's subscription to node.
func (e *Engine) Unsubscribe(node string, done func(UnsubscribeResult)) {
	done = once(done)
	u := e.address.WithNode(node)
	e.transport.Send(e.buildUnsubscribe(node), func(resp *stanza.Element) {
		if resp == nil {
			return
		}
		res := UnsubscribeResult{URI: u, Response: resp}
		if se := interpret(resp); se != nil {
			res.Err = se
		}
		done(res)
	})
}

// GetItems fetches the items published on node.
func (e *Engine) GetItems(node string, done func(ItemsResult)) {
	done = once(done)
	u := e.address.WithNode(node)
	e.transport.Send(e.buildGetItems(node), func(resp *stanza.Element) {
		if resp == nil {
			return
		}
		res := ItemsResult{URI: u, Response: resp}
		if se := interpret(resp); se != nil {
			res.Err = se
			done(res)
			return
		}
		res.Items, res.Err = e.extractItems(resp)
		done(res)
	})
}

// QueryOption customizes GetSubscriptions.
type QueryOption func(*subscriptionsQuery)

type subscriptionsQuery struct {
	node   string
	strict bool
}

// WithNode limits GetSubscriptions to node. Without it every node of the
// service is queried.
func WithNode(node string) QueryOption {
	return func(q *subscriptionsQuery) { q.node = node }
}

// StrictJIDMatch keeps only subscriptions whose jid is exactly the local
// JID. A bare JID does not match a full JID.
func StrictJIDMatch() QueryOption {
	return func(q *subscriptionsQuery) { q.strict = true }
}

// GetSubscriptions lists the local entity's subscriptions on the service.
func (e *Engine) GetSubscriptions(done func(SubscriptionsResult), opts ...QueryOption) {
	var q subscriptionsQuery
	for _, opt := range opts {
		opt(&q)
	}

	done = once(done)
	u := e.address.Service()
	if q.node != "" {
		u = e.address.WithNode(q.node)
	}

	e.transport.Send(e.buildGetSubscriptions(q.node), func(resp *stanza.Element) {
		if resp == nil {
			return
		}
		res := SubscriptionsResult{Requested: u, Final: u, Response: resp}
		if se := interpret(resp); se != nil {
			res.Err = se
			done(res)
			return
		}
		res.Subscriptions = e.parseSubscriptions(resp, q.strict)
		done(res)
	})
}

func (e *Engine) parseSubscriptions(resp *stanza.Element, strict bool) []Subscription {
	local := e.transport.LocalJID()

	var subs []Subscription
	for _, el := range resp.ElementsByTag("subscription") {
		jid := el.Attr("jid")
		if strict && jid != local {
			continue
		}
		subs = append(subs, Subscription{
			Node:  nodeOrDefault(el.Attr("node")),
			JID:   jid,
			State: SubscriptionState(el.Attr("subscription")),
			SubID: el.Attr("subid"),
		})
	}
	return subs
}

// ConfigureNode submits subscription options for sub. Redirects are not
// followed.
func (e *Engine) ConfigureNode(sub Subscription, opts Options, done func(ConfigureResult)) error {
	req, err := e.buildConfigure(sub, opts)
	if err != nil {
		return err
	}

	done = once(done)
	e.transport.Send(req, func(resp *stanza.Element) {
		if resp == nil {
			return
		}
		res := ConfigureResult{Subscription: sub, Response: resp}
		if se := interpret(resp); se != nil {
			res.Err = se
		}
		done(res)
	})
	return nil
}
