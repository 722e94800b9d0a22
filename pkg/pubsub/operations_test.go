package pubsub

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onsip/ox-go/pkg/pubsub/mocks"
	"github.com/onsip/ox-go/pkg/stanza"
	"github.com/onsip/ox-go/pkg/uri"
)

const subscriptionsBody = `<pubsub xmlns="http://jabber.org/protocol/pubsub"><subscriptions>` +
	`<subscription node="/calls" jid="alice@example.com/web" subscription="subscribed" subid="s1"/>` +
	`<subscription node="/calls" jid="alice@example.com" subscription="subscribed" subid="s2"/>` +
	`<subscription jid="alice@example.com/web" subscription="pending"/>` +
	`</subscriptions></pubsub>`

func TestUnsubscribe(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		tr := newFakeTransport()
		e := newTestEngine(t, tr, nil)

		var res UnsubscribeResult
		e.Unsubscribe("/calls", func(r UnsubscribeResult) { res = r })

		req := tr.requests()[0]
		assert.Equal(t, stanza.TypeSet, req.Type())
		p := payloadOf(t, req)
		assert.Equal(t, "unsubscribe", p.Local)
		assert.Equal(t, "/calls", p.Attr("node"))
		assert.Equal(t, testJID, p.Attr("jid"))

		tr.complete(resultIQ(t, ""))
		assert.NoError(t, res.Err)
		assert.Equal(t, "xmpp:pubsub.example.com?;node=/calls", res.URI.String())
	})

	t.Run("Error", func(t *testing.T) {
		tr := newFakeTransport()
		e := newTestEngine(t, tr, nil)

		var res UnsubscribeResult
		e.Unsubscribe("/calls", func(r UnsubscribeResult) { res = r })
		resp := errorIQ(t, "unexpected-request", "")
		tr.complete(resp)

		var se *StanzaError
		require.ErrorAs(t, res.Err, &se)
		assert.Equal(t, "unexpected-request", se.Condition)
		assert.Same(t, resp, se.Response)
	})

	t.Run("AbsentResponse", func(t *testing.T) {
		tr := newFakeTransport()
		e := newTestEngine(t, tr, nil)

		called := false
		e.Unsubscribe("/calls", func(UnsubscribeResult) { called = true })
		tr.complete(nil)
		assert.False(t, called)
	})
}

func TestGetItems(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	var res ItemsResult
	e.GetItems("songs", func(r ItemsResult) { res = r })

	req := tr.requests()[0]
	assert.Equal(t, stanza.TypeGet, req.Type())
	assert.Equal(t, "items", payloadOf(t, req).Local)
	assert.Equal(t, "songs", payloadOf(t, req).Attr("node"))

	tr.complete(resultIQ(t, `<pubsub xmlns="http://jabber.org/protocol/pubsub"><items node="songs"><item id="1"><song/></item><item id="2"><song/></item></items></pubsub>`))

	require.NoError(t, res.Err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "xmpp:pubsub.example.com?;node=songs;item=1", res.Items[0].URI.String())
	assert.Equal(t, "xmpp:pubsub.example.com?;node=songs;item=2", res.Items[1].URI.String())
	assert.Equal(t, "xmpp:pubsub.example.com?;node=songs", res.URI.String())
}

func TestGetItemsEmptyNode(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	var res ItemsResult
	called := 0
	e.GetItems("empty", func(r ItemsResult) {
		res = r
		called++
	})
	tr.complete(resultIQ(t, `<pubsub xmlns="http://jabber.org/protocol/pubsub"><items node="empty"/></pubsub>`))

	assert.Equal(t, 1, called)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Items)
}

func TestGetItemsPartialDecode(t *testing.T) {
	dec := mocks.NewMockItemDecoder(t)
	dec.EXPECT().DecodeItem(mock.Anything).RunAndReturn(func(entry *stanza.Element) (any, error) {
		if entry.FirstChild() == nil {
			return nil, errors.New("empty entry")
		}
		return entry.FirstChild().Local, nil
	}).Times(3)

	tr := newFakeTransport()
	e := newTestEngine(t, tr, dec)

	var res ItemsResult
	e.GetItems("/vm", func(r ItemsResult) { res = r })
	tr.complete(resultIQ(t, `<pubsub xmlns="http://jabber.org/protocol/pubsub"><items node="/vm"><item id="1"><voicemail/></item><item id="2"/><item id="3"><voicemail/></item></items></pubsub>`))

	var de *DecodeError
	require.ErrorAs(t, res.Err, &de)
	assert.Equal(t, "2", de.ItemID)
	assert.Equal(t, "/vm", de.Node)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "1", res.Items[0].ID)
	assert.Equal(t, "3", res.Items[1].ID)
	assert.Equal(t, "voicemail", res.Items[0].Payload)
}

func TestGetItemsError(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	var res ItemsResult
	e.GetItems("missing", func(r ItemsResult) { res = r })
	tr.complete(errorIQ(t, "item-not-found", ""))

	var se *StanzaError
	require.ErrorAs(t, res.Err, &se)
	assert.Equal(t, "item-not-found", se.Condition)
	assert.Empty(t, res.Items)
}

func TestGetSubscriptions(t *testing.T) {
	t.Run("AllNodes", func(t *testing.T) {
		tr := newFakeTransport()
		e := newTestEngine(t, tr, nil)

		var res SubscriptionsResult
		e.GetSubscriptions(func(r SubscriptionsResult) { res = r })

		p := payloadOf(t, tr.requests()[0])
		assert.Equal(t, "subscriptions", p.Local)
		_, hasNode := p.LookupAttr("node")
		assert.False(t, hasNode)

		tr.complete(resultIQ(t, subscriptionsBody))
		require.NoError(t, res.Err)
		assert.Equal(t, "xmpp:pubsub.example.com", res.Requested.String())
		assert.Equal(t, res.Requested, res.Final)
		require.Len(t, res.Subscriptions, 3)
		assert.Equal(t, Subscription{Node: "/calls", JID: "alice@example.com/web", State: StateSubscribed, SubID: "s1"}, res.Subscriptions[0])
		assert.Equal(t, DefaultNode, res.Subscriptions[2].Node)
		assert.Equal(t, StatePending, res.Subscriptions[2].State)
	})

	t.Run("EmptyNodeMatchesNoNode", func(t *testing.T) {
		tr := newFakeTransport()
		e := newTestEngine(t, tr, nil)

		e.GetSubscriptions(nil)
		e.GetSubscriptions(nil, WithNode(""))

		reqs := tr.requests()
		require.Len(t, reqs, 2)
		a, b := payloadOf(t, reqs[0]), payloadOf(t, reqs[1])
		assert.Equal(t, a.Attrs, b.Attrs)
	})

	t.Run("WithNode", func(t *testing.T) {
		tr := newFakeTransport()
		e := newTestEngine(t, tr, nil)

		var res SubscriptionsResult
		e.GetSubscriptions(func(r SubscriptionsResult) { res = r }, WithNode("/calls"))
		assert.Equal(t, "/calls", payloadOf(t, tr.requests()[0]).Attr("node"))

		tr.complete(resultIQ(t, subscriptionsBody))
		assert.Equal(t, "xmpp:pubsub.example.com?;node=/calls", res.Requested.String())
	})

	t.Run("StrictJIDMatch", func(t *testing.T) {
		tr := newFakeTransport()
		e := newTestEngine(t, tr, nil)

		var res SubscriptionsResult
		e.GetSubscriptions(func(r SubscriptionsResult) { res = r }, StrictJIDMatch())
		tr.complete(resultIQ(t, subscriptionsBody))

		require.Len(t, res.Subscriptions, 2)
		for _, s := range res.Subscriptions {
			assert.Equal(t, testJID, s.JID)
		}
	})

	t.Run("StrictJIDMatchBareLocal", func(t *testing.T) {
		tr := newFakeTransport()
		tr.jid = "a@b"
		e := newTestEngine(t, tr, nil)

		body := `<pubsub xmlns="http://jabber.org/protocol/pubsub"><subscriptions>` +
			`<subscription node="/n" jid="a@b/res1" subscription="subscribed"/>` +
			`<subscription node="/n" jid="a@b" subscription="subscribed"/>` +
			`</subscriptions></pubsub>`

		var res SubscriptionsResult
		e.GetSubscriptions(func(r SubscriptionsResult) { res = r }, StrictJIDMatch())
		tr.complete(resultIQ(t, body))

		require.Len(t, res.Subscriptions, 1)
		assert.Equal(t, "a@b", res.Subscriptions[0].JID)
	})

	t.Run("Error", func(t *testing.T) {
		tr := newFakeTransport()
		e := newTestEngine(t, tr, nil)

		var res SubscriptionsResult
		e.GetSubscriptions(func(r SubscriptionsResult) { res = r })
		tr.complete(errorIQ(t, "feature-not-implemented", ""))

		assert.Error(t, res.Err)
		assert.Nil(t, res.Subscriptions)
	})
}

func TestConfigureNode(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	sub := Subscription{Node: "/calls", JID: testJID, SubID: "s1"}
	expire := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	var res ConfigureResult
	require.NoError(t, e.ConfigureNode(sub, Options{OptionExpire: expire}, func(r ConfigureResult) { res = r }))

	req := tr.requests()[0]
	assert.Equal(t, stanza.TypeSet, req.Type())
	opts := payloadOf(t, req)
	assert.Equal(t, "options", opts.Local)
	assert.Equal(t, "/calls", opts.Attr("node"))
	assert.Equal(t, testJID, opts.Attr("jid"))
	assert.Equal(t, "s1", opts.Attr("subid"))

	var expireValue string
	for _, f := range opts.Child("x").Children {
		if f.Attr("var") == "pubsub#expire" {
			expireValue = f.Child("value").Text
		}
	}
	assert.Equal(t, "2024-01-02T03:04:05.0060Z", expireValue)

	tr.complete(redirectTo(t, "/elsewhere"))
	assert.Len(t, tr.requests(), 1, "configure does not follow redirects")
	var se *StanzaError
	require.ErrorAs(t, res.Err, &se)
	assert.Equal(t, sub, res.Subscription)
}

func TestConfigureNodeOmitsEmptySubID(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	require.NoError(t, e.ConfigureNode(Subscription{Node: "/a", JID: testJID}, Options{}, nil))
	_, ok := payloadOf(t, tr.requests()[0]).LookupAttr("subid")
	assert.False(t, ok)
}

func TestConfigureNodeInvalidOptions(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	err := e.ConfigureNode(Subscription{Node: "/a"}, Options{OptionExpire: 5}, nil)
	assert.ErrorIs(t, err, ErrInvalidOptionValue)
	assert.Empty(t, tr.requests())
}

func TestCompletionRunsOnce(t *testing.T) {
	mt := mocks.NewMockTransport(t)
	mt.EXPECT().RegisterPermanentListener(testService, mock.Anything).Return()
	mt.EXPECT().LocalJID().Return(testJID)
	mt.EXPECT().Send(mock.Anything, mock.Anything).Run(func(req *stanza.Element, onComplete func(*stanza.Element)) {
		resp := resultIQ(t, "")
		onComplete(resp)
		onComplete(resp)
	}).Times(2)

	e, err := New(Config{Transport: mt, Address: uri.New(testService)})
	require.NoError(t, err)

	unsub := 0
	e.Unsubscribe("/calls", func(UnsubscribeResult) { unsub++ })
	items := 0
	e.GetItems("/calls", func(ItemsResult) { items++ })

	assert.Equal(t, 1, unsub)
	assert.Equal(t, 1, items)
}
