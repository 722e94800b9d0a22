package pubsub

import (
	"errors"
	"fmt"
	"time"

	"github.com/onsip/ox-go/pkg/stanza"
	"github.com/onsip/ox-go/pkg/uri"
)

// Item is one decoded entry of a node.
type Item struct {
	// ID is the item id attribute.
	ID string

	// Node is the node the item belongs to.
	Node string

	// URI names the item: service + node + item id.
	URI uri.URI

	// PublishTime is the publish-time of the entry's first child, or the
	// zero time when absent or unparseable.
	PublishTime time.Time

	// Payload is whatever the service's ItemDecoder produced.
	Payload any
}

// extractItems decodes every item entry of every items element in doc.
//
// The scan is shallow: any element named items anywhere in
// the document is a container, and its direct item children are entries.
// Entries that fail to decode are left out and reported through the
// returned error; the remaining items are still returned in document order.
func (e *Engine) extractItems(doc *stanza.Element) ([]Item, error) {
	base := e.baseFor(doc)

	var items []Item
	var errs []error
	for _, container := range doc.ElementsByTag("items") {
		node := nodeOrDefault(container.Attr("node"))
		for _, entry := range container.Children {
			if entry.Local != "item" {
				continue
			}
			item, err := e.decodeEntry(base, node, entry)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			items = append(items, item)
		}
	}
	return items, errors.Join(errs...)
}

// decodeEntry runs the item decoder on one entry. A decoder panic on an
// unexpected document shape is converted into a DecodeError.
func (e *Engine) decodeEntry(base uri.URI, node string, entry *stanza.Element) (item Item, err error) {
	id := entry.Attr("id")
	defer func() {
		if r := recover(); r != nil {
			err = &DecodeError{Node: node, ItemID: id, Err: fmt.Errorf("%w: %v", ErrMalformedDocument, r)}
		}
	}()

	payload, derr := e.decoder.DecodeItem(entry)
	if derr != nil {
		return Item{}, &DecodeError{Node: node, ItemID: id, Err: derr}
	}

	item = Item{
		ID:      id,
		Node:    node,
		URI:     base.WithItem(node, id),
		Payload: payload,
	}
	if first := entry.FirstChild(); first != nil {
		if raw := first.Attr("publish-time"); raw != "" {
			if ts, perr := time.Parse(time.RFC3339Nano, raw); perr == nil {
				item.PublishTime = ts
			} else {
				e.logger.Debug("unparseable publish-time", "node", node, "item", id, "value", raw)
			}
		}
	}
	return item, nil
}

// baseFor returns the service URI items in doc are named under: the
// document's sender, falling back to the engine's address.
func (e *Engine) baseFor(doc *stanza.Element) uri.URI {
	if from := doc.From(); from != "" {
		return uri.New(from)
	}
	return e.address.Service()
}
