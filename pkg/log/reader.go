package log

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/onsip/ox-go/pkg/uri"
)

// Filter selects protocol log events. A zero field matches every event.
type Filter struct {
	SessionID string
	Direction *Direction
	Layer     *Layer
	Category  *Category

	// TimeStart and TimeEnd bound a half-open window [TimeStart, TimeEnd).
	TimeStart *time.Time
	TimeEnd   *time.Time

	// Service is a bare pubsub service address.
	Service string

	// Node matches notifications whose URI names the node, and redirects
	// that start, pass through or end at it. Stanza events never match.
	Node string

	// Kind matches notifications of one event kind, such as onPublish.
	Kind string
}

// Matches reports whether event satisfies every criterion of f.
func (f *Filter) Matches(event Event) bool {
	switch {
	case f.SessionID != "" && event.SessionID != f.SessionID:
		return false
	case f.Direction != nil && event.Direction != *f.Direction:
		return false
	case f.Layer != nil && event.Layer != *f.Layer:
		return false
	case f.Category != nil && event.Category != *f.Category:
		return false
	case f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart):
		return false
	case f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd):
		return false
	case f.Service != "" && event.Service != f.Service:
		return false
	case f.Kind != "" && (event.PubSub == nil || event.PubSub.Kind != f.Kind):
		return false
	case f.Node != "" && !eventTouchesNode(event, f.Node):
		return false
	}
	return true
}

func eventTouchesNode(event Event, node string) bool {
	if r := event.Redirect; r != nil {
		return r.OriginalNode == node || r.FromNode == node || r.ToNode == node
	}
	if p := event.PubSub; p != nil {
		u, err := uri.Parse(p.URI)
		return err == nil && u.Node() == node
	}
	return false
}

// Reader iterates over the events of a CBOR protocol log, skipping the
// ones its filter rejects.
type Reader struct {
	src     io.Reader
	decoder *cbor.Decoder
	filter  Filter
}

// NewReader opens the log file at path and reads every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens the log file at path and reads the events
// matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return ReadFrom(f, filter), nil
}

// ReadFrom reads events matching filter from r, such as a pipe. Close
// closes r when it is an io.Closer.
func ReadFrom(r io.Reader, filter Filter) *Reader {
	return &Reader{src: r, decoder: NewDecoder(r), filter: filter}
}

// Next returns the next matching event, or io.EOF at the end of the log.
// A log cut short inside an event also ends with io.EOF.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		err := r.decoder.Decode(&event)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, err
		}
		if r.filter.Matches(event) {
			return event, nil
		}
	}
}

// Close releases the underlying source.
func (r *Reader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
