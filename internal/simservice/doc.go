// Package simservice is an in-process XEP-0060 pubsub service for tests
// and the shell's simulation mode.
//
// A Service holds nodes, their items and their subscriptions. Clients
// attach with Connect, which returns a Session: the write side a
// transport.Adapter sends through. Responses and event pushes are written
// back through the Session's deliver func, synchronously and outside the
// service lock, so a client may issue follow-up requests from a callback.
//
// Beyond the protocol, the Service exposes operator controls: Publish,
// Retract, Approve, SetRedirect, SetGone and RequireApproval.
package simservice
