// Package pubsub implements the client side of XEP-0060 publish-subscribe.
//
// An Engine is bound to one pubsub service address. It issues the five
// request shapes the services need (subscribe, unsubscribe, items,
// subscriptions and subscription options), interprets their responses, and
// turns unsolicited event messages from the service into typed
// notifications delivered to registered handlers.
//
// # Request Flow
//
// Every operation builds a request, hands it to the Transport together with
// a completion closure, and returns immediately. When the Transport delivers
// the response the engine classifies it as success or error and calls the
// caller's completion func exactly once with a result value. A transport
// that completes with a nil response (delivery failure) causes no callback.
// There is no timeout: a response that never arrives leaves the request
// pending forever.
//
//	eng.Subscribe("/me/calls", nil, func(res pubsub.SubscribeResult) {
//	    if res.Err != nil {
//	        // res.Response is the raw error stanza
//	        return
//	    }
//	    fmt.Println("subscribed to", res.Final)
//	})
//
// # Redirects
//
// Subscribe follows redirect and gone errors whose detail names a
// replacement node. At most MaxSubscribeAttempts requests are issued per
// call, strictly one after the other. The result carries both the requested
// and the final URI.
//
// # Notifications
//
// New registers the engine with the Transport's permanent listener for the
// service address. Each inbound document is classified once into one of
// Subscribed, Pending, Unsubscribed, Published or Retracted before dispatch;
// anything else is dropped. Handlers are registered per EventKind, one slot
// per kind:
//
//	eng.RegisterHandler(pubsub.KindPublish, func(n pubsub.Notification) {
//	    fmt.Println("published", n.Item.URI)
//	})
//
// Notifications are not ordered with respect to in-flight requests: a
// Subscribed notification may arrive before or after the Subscribe result
// for the same node.
package pubsub
