// Package services binds the pubsub engine to the OnSIP service family.
//
// Each service is a pubsub engine with a fixed default address and an item
// decoder for its payload type:
//
//	active-calls   ActiveCall        xmpp:pubsub.active-calls.xmpp.onsip.com
//	user-agents    UserAgent         xmpp:pubsub.user-agents.xmpp.onsip.com
//	voicemail      VoicemailMessage  xmpp:pubsub.voicemail.xmpp.onsip.com
//	recent-calls   RecentCall        xmpp:pubsub.recent-calls.xmpp.onsip.com
//	directories    raw element       xmpp:pubsub.directories.xmpp.onsip.com
//	preferences    Preference        xmpp:pubsub.preferences.xmpp.onsip.com
//
// Example usage:
//
//	calls, err := services.NewActiveCalls(adapter)
//	calls.RegisterHandler(pubsub.KindPublish, func(n pubsub.Notification) {
//		call := n.Item.Payload.(services.ActiveCall)
//		...
//	})
//	calls.Subscribe("/alice@example.onsip.com", nil, nil)
//
// # Commands
//
// Some services also accept XEP-0050 ad hoc commands on a sibling
// commands.* address, e.g. AuthenticatePlain and ActiveCalls.Create.
package services
