package stanza

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Namespaces used by the pubsub engine.
const (
	NSClient      = "jabber:client"
	NSPubSub      = "http://jabber.org/protocol/pubsub"
	NSPubSubEvent = "http://jabber.org/protocol/pubsub#event"
	NSPubSubOwner = "http://jabber.org/protocol/pubsub#owner"
	NSDataForms   = "jabber:x:data"
	NSStanzas     = "urn:ietf:params:xml:ns:xmpp-stanzas"
)

// Parse errors.
var (
	ErrEmptyDocument = errors.New("stanza: empty document")
	ErrTrailingData  = errors.New("stanza: trailing data after root element")
)

// Element is a node of a parsed or constructed XML document.
type Element struct {
	// Space is the resolved namespace URI ("" inherits the parent's).
	Space string

	// Local is the local element name.
	Local string

	// Attrs holds the non-namespace attributes in document order.
	Attrs []xml.Attr

	// Children holds the element children in document order.
	Children []*Element

	// Text is the concatenated character data directly inside the element.
	Text string
}

// NewElement creates an element with the given namespace and local name.
func NewElement(space, local string) *Element {
	return &Element{Space: space, Local: local}
}

// Attr returns the value of the attribute with the given local name,
// or "" if the attribute is absent.
func (e *Element) Attr(local string) string {
	v, _ := e.LookupAttr(local)
	return v
}

// LookupAttr returns the attribute value and whether it was present.
func (e *Element) LookupAttr(local string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets (or replaces) an attribute and returns the element for chaining.
func (e *Element) SetAttr(local, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name.Local == local {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: local}, Value: value})
	return e
}

// AddChild appends child and returns it.
func (e *Element) AddChild(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// FirstChild returns the first element child, or nil if there is none.
func (e *Element) FirstChild() *Element {
	if e == nil || len(e.Children) == 0 {
		return nil
	}
	return e.Children[0]
}

// Child returns the first direct child with the given local name.
func (e *Element) Child(local string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Local == local {
			return c
		}
	}
	return nil
}

// ElementsByTag returns every descendant (not including e itself) with the
// given local name, in document order.
func (e *Element) ElementsByTag(local string) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		for _, c := range n.Children {
			if c.Local == local {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if e != nil {
		walk(e)
	}
	return out
}

// TextContent returns the character data of e and all of its descendants.
func (e *Element) TextContent() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*Element)
	walk = func(n *Element) {
		b.WriteString(n.Text)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(e)
	return b.String()
}

// String returns the serialized element, or an error marker if it cannot be encoded.
func (e *Element) String() string {
	data, err := Marshal(e)
	if err != nil {
		return fmt.Sprintf("<!-- %v -->", err)
	}
	return string(data)
}

// Parse decodes a single XML document into an Element tree.
func Parse(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root, err := decodeNext(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, err
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return root, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return nil, ErrTrailingData
			}
		case xml.StartElement:
			return nil, ErrTrailingData
		}
	}
}

// decodeNext skips to the next start element and decodes it with its subtree.
func decodeNext(dec *xml.Decoder) (*Element, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return decodeElement(dec, start)
		}
	}
}

// decodeElement builds an Element from start and consumes tokens up to its end tag.
func decodeElement(dec *xml.Decoder, start xml.StartElement) (*Element, error) {
	el := &Element{Space: start.Name.Space, Local: start.Name.Local}
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		el.Attrs = append(el.Attrs, xml.Attr{Name: xml.Name{Local: a.Name.Local}, Value: a.Value})
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			el.Text = text.String()
			return el, nil
		}
	}
}

// Marshal serializes e and its subtree.
func Marshal(e *Element) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := encodeElement(enc, e, ""); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeElement(enc *xml.Encoder, e *Element, parentSpace string) error {
	name := xml.Name{Local: e.Local}
	space := parentSpace
	if e.Space != "" && e.Space != parentSpace {
		name.Space = e.Space
		space = e.Space
	}

	start := xml.StartElement{Name: name, Attr: e.Attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := encodeElement(enc, c, space); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
