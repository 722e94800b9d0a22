package transport

import (
	"context"
	"sync"
	"time"

	"github.com/onsip/ox-go/pkg/stanza"
)

// NSPing is the XEP-0199 namespace.
const NSPing = "urn:xmpp:ping"

// Keep-alive constants.
const (
	// DefaultPingInterval is the default interval between pings.
	DefaultPingInterval = 60 * time.Second

	// DefaultMaxMissedPongs is the default number of unanswered pings
	// before the session is considered dead.
	DefaultMaxMissedPongs = 3
)

// KeepAliveConfig configures a Pinger.
type KeepAliveConfig struct {
	// Target is the address pinged, usually the user's server domain.
	Target string

	// PingInterval is the interval between pings.
	PingInterval time.Duration

	// MaxMissedPongs is the number of unanswered pings tolerated.
	MaxMissedPongs int
}

// DefaultKeepAliveConfig returns the default keep-alive configuration.
func DefaultKeepAliveConfig(target string) KeepAliveConfig {
	return KeepAliveConfig{
		Target:         target,
		PingInterval:   DefaultPingInterval,
		MaxMissedPongs: DefaultMaxMissedPongs,
	}
}

// DetectionDelay is the longest time a dead session goes unnoticed.
func (c KeepAliveConfig) DetectionDelay() time.Duration {
	return c.PingInterval * time.Duration(c.MaxMissedPongs+1)
}

// KeepAliveStats contains keep-alive statistics.
type KeepAliveStats struct {
	LastPingTime time.Time
	LastPongTime time.Time
	MissedPongs  int
	Sent         int
}

// Pinger sends XEP-0199 pings through an Adapter. Any reply, result or
// error, counts as a pong.
type Pinger struct {
	config    KeepAliveConfig
	adapter   *Adapter
	onTimeout func()

	mu          sync.Mutex
	running     bool
	stopCh      chan struct{}
	outstanding bool
	stats       KeepAliveStats
}

// NewPinger creates a Pinger. onTimeout runs once when MaxMissedPongs is
// reached; the Pinger then stops.
func NewPinger(config KeepAliveConfig, adapter *Adapter, onTimeout func()) *Pinger {
	if config.PingInterval == 0 {
		config.PingInterval = DefaultPingInterval
	}
	if config.MaxMissedPongs == 0 {
		config.MaxMissedPongs = DefaultMaxMissedPongs
	}
	return &Pinger{config: config, adapter: adapter, onTimeout: onTimeout}
}

// Start begins pinging.
func (p *Pinger) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stop := p.stopCh
	p.mu.Unlock()

	go p.loop(ctx, stop)
}

// Stop stops pinging.
func (p *Pinger) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stopCh)
}

// IsRunning reports whether the Pinger is active.
func (p *Pinger) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stats returns current keep-alive statistics.
func (p *Pinger) Stats() KeepAliveStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Pinger) loop(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(p.config.PingInterval)
	defer ticker.Stop()

	p.ping()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if p.tick() {
				p.Stop()
				if p.onTimeout != nil {
					p.onTimeout()
				}
				return
			}
		}
	}
}

// tick accounts for an unanswered ping and sends the next one. It reports
// whether the miss limit was reached.
func (p *Pinger) tick() bool {
	p.mu.Lock()
	if p.outstanding {
		p.stats.MissedPongs++
		if p.stats.MissedPongs >= p.config.MaxMissedPongs {
			p.mu.Unlock()
			return true
		}
	}
	p.mu.Unlock()

	p.ping()
	return false
}

func (p *Pinger) ping() {
	p.mu.Lock()
	p.outstanding = true
	p.stats.Sent++
	p.stats.LastPingTime = time.Now()
	p.mu.Unlock()

	iq := stanza.NewIQ(p.config.Target, stanza.TypeGet)
	iq.AddChild(stanza.NewElement(NSPing, "ping"))
	p.adapter.Send(iq, p.pong)
}

func (p *Pinger) pong(resp *stanza.Element) {
	if resp == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outstanding = false
	p.stats.MissedPongs = 0
	p.stats.LastPongTime = time.Now()
}
