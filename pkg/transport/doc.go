// Package transport connects a pubsub engine to an XMPP stanza stream.
//
// The Adapter implements pubsub.Transport on top of a StanzaSender, the
// raw write side of an established XMPP session. It owns the iq id space:
//
//   - every outgoing request gets a fresh id and a pending entry
//   - inbound iq results and errors complete the pending entry with that id
//   - every other inbound stanza goes to the permanent listeners
//     registered for the sender's bare address
//
// Closing the adapter completes every pending request with a nil response,
// which the engine treats as "no answer".
//
// # Read Loop
//
// Serve reads a stanza stream (the children of <stream:stream>) and feeds
// each stanza to the adapter:
//
//	go adapter.Serve(ctx, conn)
//
// # Keep-Alive
//
// A Pinger sends XEP-0199 pings through the adapter and reports the
// session dead after MaxMissedPongs unanswered pings.
package transport
