package stanza

// IQ types.
const (
	TypeGet    = "get"
	TypeSet    = "set"
	TypeResult = "result"
	TypeError  = "error"
)

// Top-level stanza names.
const (
	NameIQ       = "iq"
	NameMessage  = "message"
	NamePresence = "presence"
)

// NewIQ creates an iq stanza addressed to to.
func NewIQ(to, typ string) *Element {
	iq := NewElement(NSClient, NameIQ)
	if to != "" {
		iq.SetAttr("to", to)
	}
	return iq.SetAttr("type", typ)
}

// NewPubSub creates an empty pubsub payload element.
func NewPubSub() *Element {
	return NewElement(NSPubSub, "pubsub")
}

// Type returns the stanza's type attribute.
func (e *Element) Type() string { return e.Attr("type") }

// ID returns the stanza's id attribute.
func (e *Element) ID() string { return e.Attr("id") }

// From returns the stanza's from attribute.
func (e *Element) From() string { return e.Attr("from") }

// To returns the stanza's to attribute.
func (e *Element) To() string { return e.Attr("to") }

// IsError reports whether the stanza is an error response.
func (e *Element) IsError() bool {
	return e != nil && e.Type() == TypeError
}

// IsResponse reports whether the stanza is an iq result or error.
func (e *Element) IsResponse() bool {
	if e == nil || e.Local != NameIQ {
		return false
	}
	t := e.Type()
	return t == TypeResult || t == TypeError
}
