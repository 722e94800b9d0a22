package services

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/onsip/ox-go/pkg/log"
	"github.com/onsip/ox-go/pkg/pubsub"
	"github.com/onsip/ox-go/pkg/uri"
)

// Service names.
const (
	NameActiveCalls = "active-calls"
	NameUserAgents  = "user-agents"
	NameVoicemail   = "voicemail"
	NameRecentCalls = "recent-calls"
	NameDirectories = "directories"
	NamePreferences = "preferences"
)

// Definition describes one pubsub service.
type Definition struct {
	Name    string
	Address uri.URI
	Decoder pubsub.ItemDecoder
}

// DefaultAddress returns the production pubsub address for a service name.
func DefaultAddress(name string) uri.URI {
	return uri.New("pubsub." + name + ".xmpp.onsip.com")
}

var definitions = map[string]Definition{
	NameActiveCalls: {Name: NameActiveCalls, Address: DefaultAddress(NameActiveCalls), Decoder: xmlDecoder[ActiveCall]("active-call")},
	NameUserAgents:  {Name: NameUserAgents, Address: DefaultAddress(NameUserAgents), Decoder: xmlDecoder[UserAgent]("user-agent")},
	NameVoicemail:   {Name: NameVoicemail, Address: DefaultAddress(NameVoicemail), Decoder: xmlDecoder[VoicemailMessage]("voicemail")},
	NameRecentCalls: {Name: NameRecentCalls, Address: DefaultAddress(NameRecentCalls), Decoder: xmlDecoder[RecentCall]("recent-call")},
	NameDirectories: {Name: NameDirectories, Address: DefaultAddress(NameDirectories), Decoder: pubsub.RawItems},
	NamePreferences: {Name: NamePreferences, Address: DefaultAddress(NamePreferences), Decoder: xmlDecoder[Preference]("preference")},
}

// Lookup returns the definition for name.
func Lookup(name string) (Definition, bool) {
	d, ok := definitions[name]
	return d, ok
}

// Names returns every known service name in sorted order.
func Names() []string {
	names := make([]string, 0, len(definitions))
	for n := range definitions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Option customizes the engine behind a Service.
type Option func(*pubsub.Config)

// WithAddress overrides the service's default pubsub address.
func WithAddress(u uri.URI) Option {
	return func(c *pubsub.Config) { c.Address = u }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *pubsub.Config) { c.Logger = l }
}

// WithProtocolLogger sets the protocol capture logger.
func WithProtocolLogger(l log.Logger) Option {
	return func(c *pubsub.Config) { c.ProtocolLogger = l }
}

// Service is a pubsub engine bound to one service definition.
type Service struct {
	*pubsub.Engine
	def Definition
}

// Open creates a Service for the named definition over tr.
func Open(name string, tr pubsub.Transport, opts ...Option) (*Service, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("services: unknown service %q", name)
	}
	return def.Open(tr, opts...)
}

// Open creates a Service for d over tr.
func (d Definition) Open(tr pubsub.Transport, opts ...Option) (*Service, error) {
	cfg := pubsub.Config{Transport: tr, Address: d.Address, Decoder: d.Decoder}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger != nil {
		cfg.Logger = cfg.Logger.With("component", d.Name)
	}

	e, err := pubsub.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("services: open %s: %w", d.Name, err)
	}
	return &Service{Engine: e, def: d}, nil
}

// Name returns the service name.
func (s *Service) Name() string { return s.def.Name }

// Payloads returns the payloads of items that decoded to T, in order.
func Payloads[T any](items []pubsub.Item) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if v, ok := it.Payload.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
