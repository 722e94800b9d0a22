package pubsub

import (
	"fmt"
	"sync"

	"github.com/onsip/ox-go/pkg/uri"
)

// EventKind names a handler slot.
type EventKind uint8

// Event kinds.
const (
	KindPending EventKind = iota
	KindSubscribed
	KindUnsubscribed
	KindPublish
	KindRetract

	numEventKinds
)

var eventKindNames = [numEventKinds]string{
	KindPending:      "onPending",
	KindSubscribed:   "onSubscribed",
	KindUnsubscribed: "onUnsubscribed",
	KindPublish:      "onPublish",
	KindRetract:      "onRetract",
}

// String returns the handler name, e.g. "onPublish".
func (k EventKind) String() string {
	if k < numEventKinds {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool { return k < numEventKinds }

// ParseEventKind maps a handler name ("onPublish") to its kind.
func ParseEventKind(name string) (EventKind, error) {
	for k, n := range eventKindNames {
		if n == name {
			return EventKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
}

// Event is the classified content of an inbound document. It is one of
// Subscribed, Pending, Unsubscribed, Published or Retracted.
type Event interface {
	Kind() EventKind
}

// Subscribed reports an active subscription on URI.
type Subscribed struct{ URI uri.URI }

// Pending reports a subscription awaiting approval.
type Pending struct{ URI uri.URI }

// Unsubscribed reports a removed subscription.
type Unsubscribed struct{ URI uri.URI }

// Published carries the items of a publish notification in document order.
type Published struct{ Items []Item }

// Retracted reports the removal of the item named by URI.
type Retracted struct{ URI uri.URI }

func (Subscribed) Kind() EventKind   { return KindSubscribed }
func (Pending) Kind() EventKind      { return KindPending }
func (Unsubscribed) Kind() EventKind { return KindUnsubscribed }
func (Published) Kind() EventKind    { return KindPublish }
func (Retracted) Kind() EventKind    { return KindRetract }

// Notification is what a Handler receives. For KindPublish, Item is the
// published item and URI is its item URI; otherwise Item is nil.
type Notification struct {
	Kind EventKind
	URI  uri.URI
	Item *Item
}

// Handler receives notifications of one kind.
type Handler func(Notification)

// handlerRegistry holds one optional handler per event kind. Transports
// deliver from their own goroutine, so slots are swapped under a lock.
type handlerRegistry struct {
	mu    sync.RWMutex
	slots [numEventKinds]Handler
}

func (r *handlerRegistry) set(kind EventKind, h Handler) {
	r.mu.Lock()
	r.slots[kind] = h
	r.mu.Unlock()
}

func (r *handlerRegistry) get(kind EventKind) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.slots[kind]
}
