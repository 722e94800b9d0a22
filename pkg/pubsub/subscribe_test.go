package pubsub

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onsip/ox-go/pkg/stanza"
)

func TestSubscribeRequestShape(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	require.NoError(t, e.Subscribe("/calls", nil, nil))
	require.NoError(t, e.Subscribe("/calls", Options{"deliver": true}, nil))

	reqs := tr.requests()
	require.Len(t, reqs, 2)

	first := reqs[0]
	assert.Equal(t, "iq", first.Local)
	assert.Equal(t, stanza.TypeSet, first.Type())
	assert.Equal(t, testService, first.To())

	sub := payloadOf(t, first)
	assert.Equal(t, "subscribe", sub.Local)
	assert.Equal(t, "/calls", sub.Attr("node"))
	assert.Equal(t, testJID, sub.Attr("jid"))
	assert.Nil(t, first.Child("pubsub").Child("options"), "nil options must not send a form")

	opts := reqs[1].Child("pubsub").Child("options")
	require.NotNil(t, opts)
	require.NotNil(t, opts.Child("x"))
	assert.Equal(t, stanza.NSDataForms, opts.Child("x").Space)
}

func TestSubscribeSuccess(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)
	rec := newRecorder(e)

	var results []SubscribeResult
	require.NoError(t, e.Subscribe("/calls", nil, func(r SubscribeResult) { results = append(results, r) }))

	resp := resultIQ(t, `<pubsub xmlns="http://jabber.org/protocol/pubsub"><subscription node="/calls" jid="alice@example.com/web" subscription="subscribed"/></pubsub>`)
	tr.complete(resp)

	require.Len(t, results, 1)
	res := results[0]
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, res.Redirects)
	assert.Equal(t, "xmpp:pubsub.example.com?;node=/calls", res.Requested.String())
	assert.Equal(t, "xmpp:pubsub.example.com?;node=/calls", res.Final.String())
	assert.Same(t, resp, res.Response)

	require.Len(t, rec.got, 1, "subscription element must be routed as a notification")
	assert.Equal(t, KindSubscribed, rec.got[0].Kind)
	assert.Equal(t, "xmpp:pubsub.example.com?;node=/calls", rec.got[0].URI.String())
}

func TestSubscribePendingResultRoutesPending(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)
	rec := newRecorder(e)

	require.NoError(t, e.Subscribe("/vm", nil, nil))
	tr.complete(resultIQ(t, `<pubsub xmlns="http://jabber.org/protocol/pubsub"><subscription node="/vm" subscription="pending"/></pubsub>`))

	require.Len(t, rec.got, 1)
	assert.Equal(t, KindPending, rec.got[0].Kind)
}

func TestSubscribeRedirectChains(t *testing.T) {
	for k := 0; k < MaxSubscribeAttempts; k++ {
		t.Run(fmt.Sprintf("Redirects%d", k), func(t *testing.T) {
			tr := newFakeTransport()
			tr.responder = func(n int, req *stanza.Element) *stanza.Element {
				if n <= k {
					return redirectTo(t, fmt.Sprintf("/hop%d", n))
				}
				return resultIQ(t, "")
			}
			e := newTestEngine(t, tr, nil)

			calls := 0
			var res SubscribeResult
			require.NoError(t, e.Subscribe("/start", nil, func(r SubscribeResult) {
				calls++
				res = r
			}))

			reqs := tr.requests()
			assert.Len(t, reqs, k+1)
			assert.Equal(t, 1, calls)
			assert.NoError(t, res.Err)
			assert.Equal(t, k, res.Redirects)
			assert.Equal(t, "/start", res.Requested.Node())

			wantFinal := "/start"
			if k > 0 {
				wantFinal = fmt.Sprintf("/hop%d", k)
			}
			assert.Equal(t, wantFinal, res.Final.Node())
			assert.Equal(t, wantFinal, payloadOf(t, reqs[len(reqs)-1]).Attr("node"))
		})
	}
}

func TestSubscribeRedirectLimit(t *testing.T) {
	tr := newFakeTransport()
	var responses []*stanza.Element
	tr.responder = func(n int, req *stanza.Element) *stanza.Element {
		resp := redirectTo(t, fmt.Sprintf("/loop%d", n))
		responses = append(responses, resp)
		return resp
	}
	e := newTestEngine(t, tr, nil)

	calls := 0
	var res SubscribeResult
	require.NoError(t, e.Subscribe("/start", nil, func(r SubscribeResult) {
		calls++
		res = r
	}))

	require.Len(t, tr.requests(), MaxSubscribeAttempts, "no request after the fifth")
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, res.Err, ErrRedirectLimit)

	var se *StanzaError
	require.ErrorAs(t, res.Err, &se)
	assert.Equal(t, stanza.ConditionRedirect, se.Condition)
	assert.Same(t, responses[MaxSubscribeAttempts-1], res.Response, "the fifth response is delivered verbatim")
	assert.Equal(t, MaxSubscribeAttempts-1, res.Redirects)
	assert.Equal(t, "/start", res.Requested.Node())
	assert.Equal(t, "/loop4", res.Final.Node())
}

func TestSubscribeGoneWithoutNode(t *testing.T) {
	tr := newFakeTransport()
	tr.responder = func(int, *stanza.Element) *stanza.Element {
		return errorIQ(t, stanza.ConditionGone, "")
	}
	e := newTestEngine(t, tr, nil)

	var res SubscribeResult
	require.NoError(t, e.Subscribe("/old", nil, func(r SubscribeResult) { res = r }))

	assert.Len(t, tr.requests(), 1)
	assert.ErrorIs(t, res.Err, ErrInvalidRedirect)
}

func TestSubscribeGoneWithReplacement(t *testing.T) {
	tr := newFakeTransport()
	tr.responder = func(n int, req *stanza.Element) *stanza.Element {
		if n == 1 {
			return errorIQ(t, stanza.ConditionGone, "xmpp:"+testService+"?;node=/new")
		}
		return resultIQ(t, "")
	}
	e := newTestEngine(t, tr, nil)

	var res SubscribeResult
	require.NoError(t, e.Subscribe("/old", nil, func(r SubscribeResult) { res = r }))

	assert.Len(t, tr.requests(), 2)
	assert.NoError(t, res.Err)
	assert.Equal(t, "/new", res.Final.Node())
	assert.Equal(t, "/old", res.Requested.Node())
}

func TestSubscribeRedirectStaysOnService(t *testing.T) {
	tr := newFakeTransport()
	tr.responder = func(n int, req *stanza.Element) *stanza.Element {
		if n == 1 {
			return errorIQ(t, stanza.ConditionRedirect, "xmpp:other.example.com?;node=princely%20musings")
		}
		return resultIQ(t, "")
	}
	e := newTestEngine(t, tr, nil)

	var res SubscribeResult
	require.NoError(t, e.Subscribe("/old", nil, func(r SubscribeResult) { res = r }))

	reqs := tr.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, testService, reqs[1].To(), "the address in the detail is not followed")
	assert.Equal(t, "princely musings", payloadOf(t, reqs[1]).Attr("node"))
	assert.NoError(t, res.Err)
	assert.Equal(t, "xmpp:"+testService+"?;node=princely%20musings", res.Final.String())
}

func TestSubscribeOtherError(t *testing.T) {
	tr := newFakeTransport()
	tr.responder = func(int, *stanza.Element) *stanza.Element {
		return errorIQ(t, "not-authorized", "")
	}
	e := newTestEngine(t, tr, nil)
	rec := newRecorder(e)

	var res SubscribeResult
	require.NoError(t, e.Subscribe("/x", nil, func(r SubscribeResult) { res = r }))

	assert.Len(t, tr.requests(), 1)
	var se *StanzaError
	require.ErrorAs(t, res.Err, &se)
	assert.Equal(t, "not-authorized", se.Condition)
	assert.Empty(t, rec.got)
}

func TestSubscribeKeepsOptionsAcrossRedirects(t *testing.T) {
	tr := newFakeTransport()
	tr.responder = func(n int, req *stanza.Element) *stanza.Element {
		if n == 1 {
			return redirectTo(t, "/b")
		}
		return resultIQ(t, "")
	}
	e := newTestEngine(t, tr, nil)

	expire := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, e.Subscribe("/a", Options{OptionExpire: expire}, nil))

	for _, req := range tr.requests() {
		assert.NotNil(t, req.Child("pubsub").Child("options"), "every attempt carries the options form")
	}
}

func TestSubscribeAbsentResponse(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	called := false
	require.NoError(t, e.Subscribe("/x", nil, func(SubscribeResult) { called = true }))
	tr.complete(nil)

	assert.False(t, called)
}

func TestSubscribeInvalidOptions(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	err := e.Subscribe("/x", Options{OptionExpire: "tomorrow"}, nil)
	assert.ErrorIs(t, err, ErrInvalidOptionValue)
	assert.Empty(t, tr.requests())
}

func TestSubscribeConcurrentCallsDoNotCrossTalk(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	var a, b SubscribeResult
	require.NoError(t, e.Subscribe("/a", nil, func(r SubscribeResult) { a = r }))
	require.NoError(t, e.Subscribe("/b", nil, func(r SubscribeResult) { b = r }))

	tr.complete(resultIQ(t, ""))
	tr.complete(errorIQ(t, "forbidden", ""))

	assert.NoError(t, a.Err)
	assert.Equal(t, "/a", a.Final.Node())
	assert.Error(t, b.Err)
	assert.Equal(t, "/b", b.Final.Node())
}

func TestRedirectStateAdvance(t *testing.T) {
	st := redirectState{originalNode: "/a", currentNode: "/a"}

	t.Run("Success", func(t *testing.T) {
		s := st.advance(resultIQ(t, ""))
		assert.False(t, s.retry)
		assert.NoError(t, s.err)
	})

	t.Run("Redirect", func(t *testing.T) {
		s := st.advance(redirectTo(t, "/b"))
		require.True(t, s.retry)
		assert.Equal(t, redirectState{originalNode: "/a", currentNode: "/b", depth: 1}, s.next)
	})

	t.Run("RedirectWithoutPath", func(t *testing.T) {
		s := st.advance(errorIQ(t, stanza.ConditionRedirect, "?;node=/b"))
		assert.False(t, s.retry)
		assert.ErrorIs(t, s.err, ErrInvalidRedirect)
	})

	t.Run("LastAttempt", func(t *testing.T) {
		last := redirectState{originalNode: "/a", currentNode: "/d", depth: MaxSubscribeAttempts - 1}
		s := last.advance(redirectTo(t, "/e"))
		assert.False(t, s.retry)
		assert.ErrorIs(t, s.err, ErrRedirectLimit)
	})

	t.Run("OtherCondition", func(t *testing.T) {
		s := st.advance(errorIQ(t, "item-not-found", ""))
		assert.False(t, s.retry)
		var se *StanzaError
		assert.True(t, errors.As(s.err, &se))
	})
}
