package pubsub

import (
	"errors"
	"fmt"

	"github.com/onsip/ox-go/pkg/stanza"
)

// Engine errors.
var (
	ErrNoTransport             = errors.New("pubsub: transport is required")
	ErrNoAddress               = errors.New("pubsub: service address is required")
	ErrUnknownEvent            = errors.New("pubsub: unknown event kind")
	ErrInvalidOptionValue      = errors.New("pubsub: invalid option value")
	ErrOptionDecodeUnsupported = errors.New("pubsub: option decoding is not supported")
	ErrRedirectLimit           = errors.New("pubsub: redirect limit reached")
	ErrInvalidRedirect         = errors.New("pubsub: redirect without usable node")
	ErrMalformedDocument       = errors.New("pubsub: malformed document")
)

// StanzaError is a protocol-level error response. The engine does not
// interpret the condition beyond redirect handling; callers inspect it.
type StanzaError struct {
	// Type is the error type attribute (cancel, modify, auth, wait).
	Type string

	// Condition is the defined condition, e.g. item-not-found.
	Condition string

	// Detail is the condition's character data.
	Detail string

	// Text is the human-readable text, if any.
	Text string

	// Response is the raw error stanza.
	Response *stanza.Element
}

func (e *StanzaError) Error() string {
	msg := "pubsub: error response"
	if e.Condition != "" {
		msg += ": " + e.Condition
	}
	if e.Text != "" {
		msg += " (" + e.Text + ")"
	}
	return msg
}

// ErrorFromResponse builds a StanzaError from an error response.
func ErrorFromResponse(resp *stanza.Element) *StanzaError {
	se := &StanzaError{Response: resp}
	if parsed := stanza.ParseError(resp); parsed != nil {
		se.Type = parsed.Type
		se.Condition = parsed.Condition
		se.Detail = parsed.Detail
		se.Text = parsed.Text
	}
	return se
}

// DecodeError reports an item entry that the item decoder rejected or that
// lacked a required structural element.
type DecodeError struct {
	Node   string
	ItemID string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pubsub: decode item %q on node %q: %v", e.ItemID, e.Node, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
