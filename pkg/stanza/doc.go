// Package stanza provides the minimal XML document model used by the
// pubsub engine.
//
// Inbound stanzas are parsed into an Element tree which keeps the
// resolved namespace of every element, its attributes in document order,
// its element children and its character data. The tree is
// loose: callers navigate it by local name, the same way a DOM would be
// navigated, and the engine decides what shapes it accepts.
//
// # Building Requests
//
//	iq := stanza.NewIQ("pubsub.example.com", stanza.TypeSet)
//	ps := iq.AddChild(stanza.NewPubSub())
//	ps.AddChild(stanza.NewElement("", "subscribe")).
//	    SetAttr("node", "/calls").
//	    SetAttr("jid", "alice@example.com")
//
//	data, err := stanza.Marshal(iq)
//
// An element whose namespace equals its parent's namespace is written
// without an xmlns attribute.
package stanza
