package log

import (
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger writes protocol events as a CBOR stream.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	mu      sync.Mutex
	closer  io.Closer
	encoder *cbor.Encoder
	closed  bool
}

// NewFileLogger creates a FileLogger appending to path. The file is
// created with permissions 0644 if it doesn't exist.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewStreamLogger(f), nil
}

// NewStreamLogger creates a FileLogger writing to w. If w is an io.Closer
// it is closed by Close.
func NewStreamLogger(w io.Writer) *FileLogger {
	l := &FileLogger{encoder: NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Log writes an event. Encoding errors are dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	_ = l.encoder.Encode(event)
}

// Close closes the underlying writer. Later Log calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

var _ Logger = (*FileLogger)(nil)
