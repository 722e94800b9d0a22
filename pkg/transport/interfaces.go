package transport

import (
	"io"
	"sync"

	"github.com/onsip/ox-go/pkg/pubsub"
)

// StanzaSender writes one serialized top-level stanza to the session.
type StanzaSender interface {
	Send(data []byte) error
}

// WriterSender is a StanzaSender writing to an io.Writer, as for a TCP or
// TLS connection. Writes are serialized.
type WriterSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSender returns a WriterSender for w.
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

// Send writes data as a single write.
func (s *WriterSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.w.Write(data)
	return err
}

// Compile-time interface satisfaction checks.
var (
	_ StanzaSender     = (*WriterSender)(nil)
	_ pubsub.Transport = (*Adapter)(nil)
)
