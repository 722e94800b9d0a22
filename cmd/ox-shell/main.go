// Command ox-shell is an interactive client for the pubsub services.
//
// By default it runs against in-process simulated services, which lets
// every engine path (redirects, pending approval, retractions) be driven
// from the prompt. With -connect it speaks the stanza stream of a plain
// TCP endpoint such as a local component relay instead; stream setup and
// authentication are the endpoint's concern.
//
// Usage:
//
//	ox-shell [flags]
//
// Flags:
//
//	-config string        Configuration file path
//	-jid string           Local JID (overrides the config file)
//	-connect string       host:port of a stanza stream (default: simulate)
//	-log-level string     Log level: debug, info, warn, error; debug also
//	                      prints protocol events
//	-protocol-log string  Write a CBOR protocol log to this file
//	-keepalive duration   Ping interval, 0 disables keep-alive
//	-sim-interval dur     Period of the synthetic call generator
//
// Examples:
//
//	# Explore the simulated services
//	ox-shell -jid alice@example.com/shell
//
//	# Capture a protocol log for ox-log
//	ox-shell -config ox.yaml -protocol-log session.olog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/onsip/ox-go/cmd/ox-shell/interactive"
	"github.com/onsip/ox-go/internal/simservice"
	"github.com/onsip/ox-go/pkg/config"
	"github.com/onsip/ox-go/pkg/log"
	"github.com/onsip/ox-go/pkg/services"
	"github.com/onsip/ox-go/pkg/transport"
)

// Flags holds the command-line settings.
type Flags struct {
	ConfigFile  string
	JID         string
	Connect     string
	LogLevel    string
	ProtocolLog string
	KeepAlive   time.Duration
	SimInterval time.Duration
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&flags.JID, "jid", "", "Local JID (overrides the config file)")
	flag.StringVar(&flags.Connect, "connect", "", "host:port of a stanza stream (default: simulate)")
	flag.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.ProtocolLog, "protocol-log", "", "Write a CBOR protocol log to this file")
	flag.DurationVar(&flags.KeepAlive, "keepalive", -1, "Ping interval, 0 disables keep-alive")
	flag.DurationVar(&flags.SimInterval, "sim-interval", 5*time.Second, "Period of the synthetic call generator")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cancel, cfg, logger); err != nil {
		logger.Error("shell failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(f Flags) (*config.Config, error) {
	cfg := config.Default()
	if f.ConfigFile != "" {
		loaded, err := config.Load(f.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.JID != "" {
		cfg.JID = f.JID
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.ProtocolLog != "" {
		cfg.ProtocolLog = f.ProtocolLog
	}
	if f.KeepAlive >= 0 {
		cfg.KeepAlive = f.KeepAlive
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, logger *slog.Logger) error {
	// Protocol events go to the file, and to the console at debug level.
	var sinks []log.Logger
	if cfg.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return fmt.Errorf("open protocol log: %w", err)
		}
		defer fl.Close()
		sinks = append(sinks, fl)
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		sinks = append(sinks, log.NewSlogAdapter(logger.With("component", "protocol")))
	}
	plog := log.NewMultiLogger(sinks...)

	// The adapter is created after the sender, but the simulated network
	// delivers through it; the closure reads it at delivery time.
	var adapter *transport.Adapter
	deliver := func(data []byte) error { return adapter.HandleData(data) }

	var (
		sender  transport.StanzaSender
		network *simservice.Network
		conn    net.Conn
	)
	if flags.Connect != "" {
		c, err := net.Dial("tcp", flags.Connect)
		if err != nil {
			return fmt.Errorf("connect %s: %w", flags.Connect, err)
		}
		conn = c
		defer conn.Close()
		sender = transport.NewWriterSender(conn)
		logger.Info("connected", "addr", flags.Connect)
	} else {
		network = simulatedNetwork(cfg, logger)
		sender = network.Connect(cfg.JID, deliver)
		logger.Info("using simulated services")
	}

	adapter, err := transport.NewAdapter(transport.Config{
		Sender:         sender,
		LocalJID:       cfg.JID,
		Logger:         logger,
		ProtocolLogger: plog,
		SessionID:      uuid.NewString(),
	})
	if err != nil {
		return err
	}
	defer adapter.Close()

	if conn != nil {
		go func() {
			if err := adapter.Serve(ctx, conn); err != nil {
				logger.Error("stream closed", "error", err)
			}
			cancel()
		}()
	}

	env := interactive.Env{
		Adapter:     adapter,
		Services:    make(map[string]*services.Service),
		Network:     network,
		SimInterval: flags.SimInterval,
	}
	opts := func(name string) []services.Option {
		return []services.Option{
			services.WithAddress(cfg.ServiceAddress(name)),
			services.WithLogger(logger),
			services.WithProtocolLogger(plog),
		}
	}
	env.Calls, err = services.NewActiveCalls(adapter, opts(services.NameActiveCalls)...)
	if err != nil {
		return err
	}
	env.Services[services.NameActiveCalls] = env.Calls.Service
	for _, name := range services.Names() {
		if name == services.NameActiveCalls {
			continue
		}
		svc, err := services.Open(name, adapter, opts(name)...)
		if err != nil {
			return err
		}
		env.Services[name] = svc
	}

	if cfg.KeepAlive > 0 {
		ka := transport.DefaultKeepAliveConfig(cfg.Domain())
		ka.PingInterval = cfg.KeepAlive
		env.Pinger = transport.NewPinger(ka, adapter, func() {
			logger.Warn("server stopped answering pings", "after", ka.DetectionDelay())
			cancel()
		})
		env.Pinger.Start(ctx)
		defer env.Pinger.Stop()
	}

	shell, err := interactive.New(env)
	if err != nil {
		return err
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	shell.Run(ctx, cancel)
	return nil
}

// simulatedNetwork creates one simulated service per known service at its
// configured address. active-calls is first, so it answers pings.
func simulatedNetwork(cfg *config.Config, logger *slog.Logger) *simservice.Network {
	network := simservice.NewNetwork()
	network.Add(simservice.New(cfg.ServiceAddress(services.NameActiveCalls).Path(), simservice.WithLogger(logger)))
	for _, name := range services.Names() {
		network.Add(simservice.New(cfg.ServiceAddress(name).Path(), simservice.WithLogger(logger)))
	}
	return network
}
