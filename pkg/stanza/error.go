package stanza

import "strings"

// Defined conditions relevant to pubsub redirects.
const (
	ConditionRedirect = "redirect"
	ConditionGone     = "gone"
)

// Error is the structured payload of an error stanza.
type Error struct {
	// Type is the error type attribute (cancel, modify, auth, wait, continue).
	Type string

	// Condition is the local name of the first child of the error element.
	Condition string

	// Detail is the character data of the condition element. For redirect
	// and gone conditions it carries the replacement address.
	Detail string

	// Text is the optional human-readable text element.
	Text string
}

// ParseError extracts the error payload of an error stanza. It returns nil
// if the stanza carries no error element.
func ParseError(doc *Element) *Error {
	errs := doc.ElementsByTag("error")
	if len(errs) == 0 {
		return nil
	}
	el := errs[0]

	out := &Error{Type: el.Attr("type")}
	if cond := el.FirstChild(); cond != nil {
		out.Condition = cond.Local
		out.Detail = strings.TrimSpace(cond.TextContent())
	}
	if text := el.Child("text"); text != nil {
		out.Text = strings.TrimSpace(text.TextContent())
	}
	return out
}

// IsRedirect reports whether the condition asks the requester to go elsewhere.
func (e *Error) IsRedirect() bool {
	return e != nil && (e.Condition == ConditionRedirect || e.Condition == ConditionGone)
}
