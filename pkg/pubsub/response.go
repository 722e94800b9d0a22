package pubsub

import (
	"github.com/onsip/ox-go/pkg/stanza"
	"github.com/onsip/ox-go/pkg/uri"
)

// SubscribeResult is the outcome of Subscribe.
type SubscribeResult struct {
	// Requested is the URI of the node the caller asked for.
	Requested uri.URI

	// Final is the URI of the node that gave the terminal response.
	Final uri.URI

	// Redirects is the number of redirects followed.
	Redirects int

	// Response is the terminal response stanza.
	Response *stanza.Element

	// Err is nil on success. Otherwise it wraps a *StanzaError.
	Err error
}

// UnsubscribeResult is the outcome of Unsubscribe.
type UnsubscribeResult struct {
	URI      uri.URI
	Response *stanza.Element
	Err      error
}

// ItemsResult is the outcome of GetItems.
type ItemsResult struct {
	URI uri.URI

	// Items holds the decoded items in document order.
	Items []Item

	Response *stanza.Element

	// Err is a *StanzaError for an error response, or joined *DecodeError
	// values when some entries could not be decoded. In the latter case
	// Items still holds the entries that decoded.
	Err error
}

// SubscriptionsResult is the outcome of GetSubscriptions.
type SubscriptionsResult struct {
	Requested     uri.URI
	Final         uri.URI
	Subscriptions []Subscription
	Response      *stanza.Element
	Err           error
}

// ConfigureResult is the outcome of ConfigureNode.
type ConfigureResult struct {
	Subscription Subscription
	Response     *stanza.Element
	Err          error
}

// interpret classifies a response. It returns nil for success and a
// *StanzaError for an error response.
func interpret(resp *stanza.Element) *StanzaError {
	if resp.IsError() {
		return ErrorFromResponse(resp)
	}
	return nil
}
