package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.LocalJID != "" {
		attrs = append(attrs, slog.String("jid", event.LocalJID))
	}
	if event.Service != "" {
		attrs = append(attrs, slog.String("service", event.Service))
	}

	switch {
	case event.Stanza != nil:
		attrs = append(attrs,
			slog.String("stanza", event.Stanza.Name),
			slog.Int("stanza_size", event.Stanza.Size),
		)
		if event.Stanza.Type != "" {
			attrs = append(attrs, slog.String("stanza_type", event.Stanza.Type))
		}
		if event.Stanza.ID != "" {
			attrs = append(attrs, slog.String("stanza_id", event.Stanza.ID))
		}
		if event.Stanza.Peer != "" {
			attrs = append(attrs, slog.String("peer", event.Stanza.Peer))
		}
	case event.PubSub != nil:
		attrs = append(attrs,
			slog.String("kind", event.PubSub.Kind),
			slog.String("uri", event.PubSub.URI),
			slog.Bool("delivered", event.PubSub.Delivered),
		)
	case event.Redirect != nil:
		attrs = append(attrs,
			slog.String("original_node", event.Redirect.OriginalNode),
			slog.String("from_node", event.Redirect.FromNode),
			slog.String("to_node", event.Redirect.ToNode),
			slog.String("condition", event.Redirect.Condition),
			slog.Int("depth", event.Redirect.Depth),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Condition != "" {
			attrs = append(attrs, slog.String("error_condition", event.Error.Condition))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
