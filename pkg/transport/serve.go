package transport

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/onsip/ox-go/pkg/stanza"
)

// Serve reads stanzas from r until the stream closes, ctx is done, or a
// read fails, and routes each one through the adapter. A cleanly closed
// stream returns nil. Serve closes the adapter before returning.
//
// A blocking read is not interrupted by ctx; close r to stop promptly.
func (a *Adapter) Serve(ctx context.Context, r io.Reader) error {
	defer a.Close()

	sr := stanza.NewStreamReader(r)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		doc, err := sr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.logger.Debug("stream closed")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read stanza: %w", err)
		}
		a.HandleStanza(doc)
	}
}
