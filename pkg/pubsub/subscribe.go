package pubsub

import (
	"fmt"
	"time"

	"github.com/onsip/ox-go/pkg/log"
	"github.com/onsip/ox-go/pkg/stanza"
	"github.com/onsip/ox-go/pkg/uri"
)

// MaxSubscribeAttempts bounds the requests issued by one Subscribe call,
// the first request included.
const MaxSubscribeAttempts = 5

// redirectState tracks one Subscribe call across redirects.
type redirectState struct {
	originalNode string
	currentNode  string
	depth        int
}

// step is the decision taken on a subscribe response.
type step struct {
	retry bool
	next  redirectState
	err   error
}

// advance decides what to do with resp. It retries only for redirect or
// gone errors naming a replacement address and node, and only while
// another attempt fits in MaxSubscribeAttempts.
func (s redirectState) advance(resp *stanza.Element) step {
	se := interpret(resp)
	if se == nil {
		return step{}
	}
	if se.Condition != stanza.ConditionRedirect && se.Condition != stanza.ConditionGone {
		return step{err: se}
	}
	if s.depth+1 >= MaxSubscribeAttempts {
		return step{err: fmt.Errorf("%w after %d attempts: %w", ErrRedirectLimit, s.depth+1, se)}
	}

	target, err := uri.Parse(se.Detail)
	if err != nil || target.Path() == "" || target.Node() == "" {
		return step{err: fmt.Errorf("%w: %q: %w", ErrInvalidRedirect, se.Detail, se)}
	}
	return step{
		retry: true,
		next: redirectState{
			originalNode: s.originalNode,
			currentNode:  target.Node(),
			depth:        s.depth + 1,
		},
	}
}

// Subscribe subscribes the local JID to node. A nil opts sends no options
// form. done is called once with the terminal outcome; it may be nil.
func (e *Engine) Subscribe(node string, opts Options, done func(SubscribeResult)) error {
	var form *stanza.Element
	if opts != nil {
		var err error
		if form, err = EncodeOptions(opts); err != nil {
			return err
		}
	}
	e.sendSubscribe(redirectState{originalNode: node, currentNode: node}, form, once(done))
	return nil
}

func (e *Engine) sendSubscribe(st redirectState, form *stanza.Element, done func(SubscribeResult)) {
	e.transport.Send(e.buildSubscribe(st.currentNode, form), func(resp *stanza.Element) {
		if resp == nil {
			return
		}
		e.handleSubscribe(resp, st, form, done)
	})
}

func (e *Engine) handleSubscribe(resp *stanza.Element, st redirectState, form *stanza.Element, done func(SubscribeResult)) {
	s := st.advance(resp)
	if s.retry {
		e.logRedirect(st, s.next, stanza.ParseError(resp).Condition)
		e.sendSubscribe(s.next, form, done)
		return
	}

	res := SubscribeResult{
		Requested: e.address.WithNode(st.originalNode),
		Final:     e.address.WithNode(st.currentNode),
		Redirects: st.depth,
		Response:  resp,
		Err:       s.err,
	}
	done(res)
	if res.Err != nil {
		return
	}

	// A subscription element in the result is also a state notification.
	if sub := resp.Child("pubsub").FirstChild(); sub != nil && sub.Local == "subscription" {
		if ev := classifySubscription(sub, res.Final); ev != nil {
			e.dispatch(ev)
		}
	}
}

func (e *Engine) logRedirect(from, to redirectState, condition string) {
	e.logger.Info("following subscribe redirect",
		"node", from.originalNode,
		"from", from.currentNode,
		"to", to.currentNode,
		"depth", to.depth)
	e.plog.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Layer:     log.LayerPubSub,
		Category:  log.CategoryRedirect,
		LocalJID:  e.transport.LocalJID(),
		Service:   e.address.Path(),
		Redirect: &log.RedirectEvent{
			OriginalNode: from.originalNode,
			FromNode:     from.currentNode,
			ToNode:       to.currentNode,
			Condition:    condition,
			Depth:        to.depth,
		},
	})
}
