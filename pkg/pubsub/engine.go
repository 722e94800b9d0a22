package pubsub

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/onsip/ox-go/pkg/log"
	"github.com/onsip/ox-go/pkg/uri"
)

// Config configures an Engine.
type Config struct {
	// Transport sends requests and delivers notifications. Required.
	Transport Transport

	// Address is the pubsub service URI. Its path is the service JID. Required.
	Address uri.URI

	// Decoder turns item entries into payloads. Defaults to RawItems.
	Decoder ItemDecoder

	// Logger receives operational logs. Defaults to slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives protocol capture events. Defaults to NoopLogger.
	ProtocolLogger log.Logger
}

// Engine speaks XEP-0060 to a single pubsub service on behalf of one
// owning entity.
type Engine struct {
	transport Transport
	address   uri.URI
	decoder   ItemDecoder
	logger    *slog.Logger
	plog      log.Logger

	handlers handlerRegistry
}

// New creates an Engine and binds it to the transport's permanent listener
// for the service address.
func New(cfg Config) (*Engine, error) {
	if cfg.Transport == nil {
		return nil, ErrNoTransport
	}
	if cfg.Address.Path() == "" {
		return nil, ErrNoAddress
	}

	e := &Engine{
		transport: cfg.Transport,
		address:   cfg.Address.Service(),
		decoder:   cfg.Decoder,
		logger:    cfg.Logger,
		plog:      log.OrNoop(cfg.ProtocolLogger),
	}
	if e.decoder == nil {
		e.decoder = RawItems
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("service", e.address.Path())

	// The registry is a field of e, so it exists before the first push arrives.
	cfg.Transport.RegisterPermanentListener(e.address.Path(), e.handlePush)
	return e, nil
}

// Address returns the service URI.
func (e *Engine) Address() uri.URI { return e.address }

// LocalJID returns the transport's local identity.
func (e *Engine) LocalJID() string { return e.transport.LocalJID() }

// RegisterHandler sets the handler for kind, replacing any previous one.
// A nil handler clears the slot.
func (e *Engine) RegisterHandler(kind EventKind, h Handler) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, kind)
	}
	e.handlers.set(kind, h)
	return nil
}

// UnregisterHandler clears the handler slot for kind.
func (e *Engine) UnregisterHandler(kind EventKind) error {
	return e.RegisterHandler(kind, nil)
}

// logError records an engine-level error in the protocol log.
func (e *Engine) logError(context, condition string, err error) {
	e.plog.Log(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerPubSub,
		Category:  log.CategoryError,
		LocalJID:  e.transport.LocalJID(),
		Service:   e.address.Path(),
		Error: &log.ErrorEventData{
			Layer:     log.LayerPubSub,
			Message:   err.Error(),
			Condition: condition,
			Context:   context,
		},
	})
}

// once wraps a completion func so it runs at most once; nil is allowed.
func once[T any](done func(T)) func(T) {
	if done == nil {
		return func(T) {}
	}
	var o sync.Once
	return func(v T) {
		o.Do(func() { done(v) })
	}
}
