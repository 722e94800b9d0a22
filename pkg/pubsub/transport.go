package pubsub

import (
	"github.com/onsip/ox-go/pkg/stanza"
)

// Transport is the connection collaborator the engine sends requests over.
type Transport interface {
	// Send dispatches req asynchronously and calls onComplete exactly once
	// with the response, or with nil if the request could not be delivered.
	Send(req *stanza.Element, onComplete func(resp *stanza.Element))

	// RegisterPermanentListener installs handler for every inbound
	// stanza from address. There is no way to unregister.
	RegisterPermanentListener(address string, handler func(doc *stanza.Element))

	// LocalJID returns the local entity's own address.
	LocalJID() string
}

// ItemDecoder turns an item entry element into a domain payload.
type ItemDecoder interface {
	DecodeItem(entry *stanza.Element) (any, error)
}

// ItemDecoderFunc adapts a function to the ItemDecoder interface.
type ItemDecoderFunc func(entry *stanza.Element) (any, error)

// DecodeItem calls f(entry).
func (f ItemDecoderFunc) DecodeItem(entry *stanza.Element) (any, error) {
	return f(entry)
}

// RawItems is the ItemDecoder that returns the entry element unchanged.
var RawItems ItemDecoder = ItemDecoderFunc(func(entry *stanza.Element) (any, error) {
	return entry, nil
})
