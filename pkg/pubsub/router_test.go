package pubsub

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onsip/ox-go/pkg/stanza"
)

const eventMessage = `<message xmlns="jabber:client" from="pubsub.example.com" to="alice@example.com/web"><event xmlns="http://jabber.org/protocol/pubsub#event">%s</event></message>`

func TestRouterPublish(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)
	rec := newRecorder(e)

	tr.push(t, mustParse(t, eventMessage,
		`<items node="/calls">`+
			`<item id="1"><call publish-time="2024-05-06T07:08:09.5Z"/></item>`+
			`<item id="2"><call/></item>`+
			`</items>`))

	require.Len(t, rec.got, 2)
	assert.Equal(t, 2, rec.seen[KindPublish])

	first := rec.got[0]
	assert.Equal(t, KindPublish, first.Kind)
	assert.Equal(t, "xmpp:pubsub.example.com?;node=/calls;item=1", first.URI.String())
	require.NotNil(t, first.Item)
	assert.Equal(t, "1", first.Item.ID)
	assert.Equal(t, "/calls", first.Item.Node)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 500_000_000, time.UTC), first.Item.PublishTime)

	second := rec.got[1]
	assert.Equal(t, "2", second.Item.ID)
	assert.True(t, second.Item.PublishTime.IsZero())

	entry, ok := second.Item.Payload.(*stanza.Element)
	require.True(t, ok, "RawItems payload is the entry element")
	assert.Equal(t, "item", entry.Local)
}

func TestRouterRetract(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)
	rec := newRecorder(e)

	tr.push(t, mustParse(t, eventMessage, `<items node="/calls"><retract id="7"/></items>`))

	require.Len(t, rec.got, 1)
	assert.Equal(t, KindRetract, rec.got[0].Kind)
	assert.Equal(t, "xmpp:pubsub.example.com?;node=/calls;item=7", rec.got[0].URI.String())
	assert.Nil(t, rec.got[0].Item)
	assert.Zero(t, rec.seen[KindPublish])
}

func TestRouterSubscriptionStates(t *testing.T) {
	tests := []struct {
		state string
		want  EventKind
	}{
		{"subscribed", KindSubscribed},
		{"pending", KindPending},
		{"none", KindUnsubscribed},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			tr := newFakeTransport()
			e := newTestEngine(t, tr, nil)
			rec := newRecorder(e)

			tr.push(t, mustParse(t, eventMessage, `<subscription node="/vm" jid="alice@example.com/web" subscription="`+tt.state+`"/>`))

			require.Len(t, rec.got, 1)
			assert.Equal(t, tt.want, rec.got[0].Kind)
			assert.Equal(t, "xmpp:pubsub.example.com?;node=/vm", rec.got[0].URI.String())
		})
	}
}

func TestRouterDropsUnknownShapes(t *testing.T) {
	docs := []string{
		`<message xmlns="jabber:client" from="pubsub.example.com"><body>hi</body></message>`,
		`<message xmlns="jabber:client" from="pubsub.example.com"><event xmlns="http://jabber.org/protocol/pubsub#event"/></message>`,
		`<message xmlns="jabber:client" from="pubsub.example.com"><event xmlns="http://jabber.org/protocol/pubsub#event"><subscription node="/a" subscription="unconfigured"/></event></message>`,
		`<message xmlns="jabber:client" from="pubsub.example.com"><event xmlns="http://jabber.org/protocol/pubsub#event"><configuration node="/a"/></event></message>`,
	}

	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)
	rec := newRecorder(e)

	for _, doc := range docs {
		tr.push(t, mustParse(t, "%s", doc))
	}
	assert.Empty(t, rec.got)
}

func TestRouterNoHandlerIsNoop(t *testing.T) {
	tr := newFakeTransport()
	newTestEngine(t, tr, nil)

	assert.NotPanics(t, func() {
		tr.push(t, mustParse(t, eventMessage, `<items node="/calls"><item id="1"/></items>`))
		tr.push(t, mustParse(t, eventMessage, `<items node="/calls"><retract id="1"/></items>`))
	})
}

func TestRouterDefaultNode(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)
	rec := newRecorder(e)

	tr.push(t, mustParse(t, eventMessage, `<items><retract id="3"/></items>`))

	require.Len(t, rec.got, 1)
	assert.Equal(t, DefaultNode, rec.got[0].URI.Node())
}

func TestRouterFallsBackToEngineAddress(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	doc := mustParse(t, `<message xmlns="jabber:client"><event xmlns="http://jabber.org/protocol/pubsub#event"><items node="/n"><retract id="3"/></items></event></message>`)
	ev, err := e.Classify(doc)
	require.NoError(t, err)
	r, ok := ev.(Retracted)
	require.True(t, ok)
	assert.Equal(t, testService, r.URI.Path())
}

func TestRouterDecoderFailures(t *testing.T) {
	dec := ItemDecoderFunc(func(entry *stanza.Element) (any, error) {
		switch entry.Attr("id") {
		case "bad":
			return nil, errors.New("no payload")
		case "boom":
			var missing *stanza.Element
			return missing.Children[0], nil
		}
		return entry.Attr("id"), nil
	})

	tr := newFakeTransport()
	e := newTestEngine(t, tr, dec)
	rec := newRecorder(e)

	doc := mustParse(t, eventMessage, `<items node="/calls"><item id="a"/><item id="bad"/><item id="boom"/><item id="b"/></items>`)

	ev, err := e.Classify(doc)
	require.Error(t, err)
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ErrMalformedDocument, "a decoder panic is reported as malformed")

	pub, ok := ev.(Published)
	require.True(t, ok)
	require.Len(t, pub.Items, 2)
	assert.Equal(t, "a", pub.Items[0].Payload)
	assert.Equal(t, "b", pub.Items[1].Payload)

	tr.push(t, doc)
	require.Len(t, rec.got, 2, "decodable items are still delivered")
}

func TestRouterScansEveryItemsContainer(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	doc := mustParse(t, eventMessage,
		`<items node="/a"><item id="1"/></items><items node="/b"><item id="2"/></items>`)

	ev, err := e.Classify(doc)
	require.NoError(t, err)
	pub := ev.(Published)
	require.Len(t, pub.Items, 2)
	assert.Equal(t, "/a", pub.Items[0].Node)
	assert.Equal(t, "/b", pub.Items[1].Node)
}

func TestRegisterHandlerReplaces(t *testing.T) {
	tr := newFakeTransport()
	e := newTestEngine(t, tr, nil)

	var first, second int
	require.NoError(t, e.RegisterHandler(KindRetract, func(Notification) { first++ }))
	require.NoError(t, e.RegisterHandler(KindRetract, func(Notification) { second++ }))

	tr.push(t, mustParse(t, eventMessage, `<items node="/c"><retract id="1"/></items>`))
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	require.NoError(t, e.UnregisterHandler(KindRetract))
	tr.push(t, mustParse(t, eventMessage, `<items node="/c"><retract id="2"/></items>`))
	assert.Equal(t, 1, second)
}
