package pubsub

// DefaultNode is assumed when a node attribute is absent.
const DefaultNode = "/"

// SubscriptionState is the state of a subscription as reported by the service.
type SubscriptionState string

// Subscription states.
const (
	StateNone         SubscriptionState = "none"
	StatePending      SubscriptionState = "pending"
	StateSubscribed   SubscriptionState = "subscribed"
	StateUnconfigured SubscriptionState = "unconfigured"
)

// Subscription describes one subscription entry. JID and SubID are opaque
// correlation tokens and are never normalized.
type Subscription struct {
	Node  string
	JID   string
	State SubscriptionState
	SubID string
}

func nodeOrDefault(node string) string {
	if node == "" {
		return DefaultNode
	}
	return node
}
