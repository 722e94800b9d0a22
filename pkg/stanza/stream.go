package stanza

import (
	"encoding/xml"
	"errors"
	"io"
)

// StreamReader splits an XML stream into top-level stanzas.
//
// The stream header (the outermost element) is consumed on the first call
// to Next and is available afterwards via Header. Every subsequent call
// returns one complete child of the stream element.
type StreamReader struct {
	dec    *xml.Decoder
	header *Element
	opened bool
}

// NewStreamReader creates a StreamReader reading from r.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{dec: xml.NewDecoder(r)}
}

// Header returns the stream header element once it has been read.
func (s *StreamReader) Header() *Element {
	return s.header
}

// Next returns the next stanza. It returns io.EOF when the stream element is closed.
func (s *StreamReader) Next() (*Element, error) {
	if !s.opened {
		start, err := s.nextStart()
		if err != nil {
			return nil, err
		}
		s.header = &Element{Space: start.Name.Space, Local: start.Name.Local}
		for _, a := range start.Attr {
			if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
				continue
			}
			s.header.Attrs = append(s.header.Attrs, xml.Attr{Name: xml.Name{Local: a.Name.Local}, Value: a.Value})
		}
		s.opened = true
	}

	for {
		tok, err := s.dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return decodeElement(s.dec, t)
		case xml.EndElement:
			return nil, io.EOF
		}
	}
}

func (s *StreamReader) nextStart() (xml.StartElement, error) {
	for {
		tok, err := s.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, io.EOF
			}
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}
