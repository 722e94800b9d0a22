package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the connection session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates stanza flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalJID is the identity of the local entity.
	LocalJID string `cbor:"6,keyasint,omitempty"`

	// Service is the pubsub service address the event relates to.
	Service string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Stanza   *StanzaEvent    `cbor:"10,keyasint,omitempty"` // Transport layer
	PubSub   *PubSubEvent    `cbor:"11,keyasint,omitempty"` // Classified notifications
	Redirect *RedirectEvent  `cbor:"12,keyasint,omitempty"` // Subscribe redirects
	Error    *ErrorEventData `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of stanza flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming stanza.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing stanza.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the stanza routing layer (raw documents).
	LayerTransport Layer = 0
	// LayerPubSub is the pubsub engine layer (classified events).
	LayerPubSub Layer = 1
	// LayerService is the per-service item layer.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerPubSub:
		return "PUBSUB"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryStanza indicates a sent or received stanza.
	CategoryStanza Category = 0
	// CategoryNotification indicates a classified pubsub notification.
	CategoryNotification Category = 1
	// CategoryRedirect indicates a followed subscribe redirect.
	CategoryRedirect Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryStanza:
		return "STANZA"
	case CategoryNotification:
		return "NOTIFICATION"
	case CategoryRedirect:
		return "REDIRECT"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StanzaEvent captures a raw stanza at the transport layer.
type StanzaEvent struct {
	// Name is the top-level element name (iq, message, presence).
	Name string `cbor:"1,keyasint"`

	// Type is the stanza type attribute.
	Type string `cbor:"2,keyasint,omitempty"`

	// ID is the stanza id attribute; correlates iq requests and responses.
	ID string `cbor:"3,keyasint,omitempty"`

	// Peer is the to (outgoing) or from (incoming) address.
	Peer string `cbor:"4,keyasint,omitempty"`

	// Size is the serialized stanza size in bytes.
	Size int `cbor:"5,keyasint"`

	// Data is the serialized stanza (may be truncated for large stanzas).
	Data []byte `cbor:"6,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"7,keyasint,omitempty"`
}

// PubSubEvent captures a classified notification.
type PubSubEvent struct {
	// Kind is the event kind name (onPublish, onRetract, ...).
	Kind string `cbor:"1,keyasint"`

	// URI is the subscription or item URI the event refers to.
	URI string `cbor:"2,keyasint"`

	// Delivered indicates a handler was registered and invoked.
	Delivered bool `cbor:"3,keyasint,omitempty"`
}

// RedirectEvent captures one followed subscribe redirect.
type RedirectEvent struct {
	// OriginalNode is the node the caller asked for.
	OriginalNode string `cbor:"1,keyasint"`

	// FromNode is the node that answered with redirect or gone.
	FromNode string `cbor:"2,keyasint"`

	// ToNode is the replacement node.
	ToNode string `cbor:"3,keyasint,omitempty"`

	// Condition is redirect or gone.
	Condition string `cbor:"4,keyasint"`

	// Depth is the number of redirects followed including this one.
	Depth int `cbor:"5,keyasint"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Condition is the stanza error condition (if applicable).
	Condition string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
