// Package interactive provides the interactive command-line interface of
// ox-shell.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/onsip/ox-go/internal/simservice"
	"github.com/onsip/ox-go/pkg/pubsub"
	"github.com/onsip/ox-go/pkg/services"
	"github.com/onsip/ox-go/pkg/stanza"
	"github.com/onsip/ox-go/pkg/transport"
)

// Env is everything the shell drives. Services must not be empty.
type Env struct {
	Adapter  *transport.Adapter
	Services map[string]*services.Service
	Calls    *services.ActiveCalls

	// Pinger is nil when keep-alive is disabled.
	Pinger *transport.Pinger

	// Network is nil unless the shell talks to simulated services.
	Network *simservice.Network

	// SimInterval is the period of the synthetic call generator.
	SimInterval time.Duration
}

// Shell handles interactive mode for ox-shell.
type Shell struct {
	env     Env
	rl      *readline.Instance
	out     io.Writer
	current string

	mu         sync.Mutex
	simCancel  context.CancelFunc
	simRunning bool
	simDone    chan struct{}
}

// New creates a shell reading commands with readline.
func New(env Env) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ox> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s := NewWithWriter(env, rl.Stdout())
	s.rl = rl
	return s, nil
}

// NewWithWriter creates a shell without a terminal. Commands are passed
// to Execute and output goes to out.
func NewWithWriter(env Env, out io.Writer) *Shell {
	s := &Shell{env: env, out: out, current: services.NameActiveCalls}
	if env.SimInterval <= 0 {
		s.env.SimInterval = 5 * time.Second
	}
	if _, ok := env.Services[s.current]; !ok {
		if names := s.serviceNames(); len(names) > 0 {
			s.current = names[0]
		}
	}
	for _, name := range s.serviceNames() {
		s.watch(env.Services[name])
	}
	return s
}

// Stdout returns a writer that coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	if s.rl != nil {
		return s.rl.Stdout()
	}
	return s.out
}

// Stderr returns a writer that coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	if s.rl != nil {
		return s.rl.Stderr()
	}
	return s.out
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer s.stopSimulation()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if quit := s.Execute(line); quit {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It reports whether the shell should exit.
func (s *Shell) Execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" || strings.HasPrefix(input, "#") {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "services", "ls":
		s.cmdServices()

	case "use":
		s.cmdUse(args)

	case "subscribe", "sub":
		s.cmdSubscribe(args)

	case "unsubscribe", "unsub":
		s.cmdUnsubscribe(args)

	case "items":
		s.cmdItems(args)

	case "subscriptions", "subs":
		s.cmdSubscriptions(args)

	case "configure":
		s.cmdConfigure(args)

	case "call":
		s.cmdCall(args)

	case "auth":
		s.cmdAuth(args)

	case "ping":
		s.cmdPing()

	case "status":
		s.cmdStatus()

	case "publish", "pub":
		s.cmdPublish(args)

	case "retract":
		s.cmdRetract(args)

	case "redirect":
		s.cmdForward(args, false)

	case "gone":
		s.cmdForward(args, true)

	case "approval":
		s.cmdApproval(args)

	case "approve":
		s.cmdApprove(args, true)

	case "revoke":
		s.cmdApprove(args, false)

	case "start", "sim-start":
		s.cmdStart()

	case "stop", "sim-stop":
		s.cmdStop()

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Pubsub Shell Commands:
  Services:
    services                  - List services (* marks the current one)
    use <service>             - Select the current service

  Pubsub:
    subscribe <node> [k=v..]  - Subscribe (expire=<RFC3339> sets pubsub#expire)
    unsubscribe <node>        - Unsubscribe
    items <node>              - Fetch the node's items
    subs [node] [--strict]    - List subscriptions
    configure <node> [k=v..]  - Submit subscription options

  Commands:
    call <to> <from>          - Place a call (active-calls)
    auth <sip-address> <pw>   - Authorize this JID for a SIP address
    ping                      - Ping the server
    status                    - Show session status

  Simulation:
    publish <node> <id> <xml> - Publish an item
    retract <node> <id>       - Retract an item
    redirect <node> <target>  - Answer subscribes to node with a redirect
    gone <node> [target]      - Answer subscribes to node with gone
    approval <node> on|off    - Require approval for new subscriptions
    approve <node> <jid>      - Approve a pending subscription
    revoke <node> <jid>       - Remove a subscription
    start                     - Start the synthetic call generator
    stop                      - Stop the synthetic call generator

  General:
    help                      - Show this help
    quit                      - Exit shell`)
}

func (s *Shell) serviceNames() []string {
	names := make([]string, 0, len(s.env.Services))
	for name := range s.env.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Shell) service() *services.Service {
	return s.env.Services[s.current]
}

// watch prints every notification of svc.
func (s *Shell) watch(svc *services.Service) {
	for _, kind := range []pubsub.EventKind{pubsub.KindPending, pubsub.KindSubscribed, pubsub.KindUnsubscribed, pubsub.KindRetract} {
		name := svc.Name()
		_ = svc.RegisterHandler(kind, func(n pubsub.Notification) {
			fmt.Fprintf(s.Stdout(), "[%s] %s %s\n", name, n.Kind, n.URI)
		})
	}
	name := svc.Name()
	_ = svc.RegisterHandler(pubsub.KindPublish, func(n pubsub.Notification) {
		fmt.Fprintf(s.Stdout(), "[%s] %s %s\n", name, n.Kind, n.URI)
		if n.Item != nil {
			fmt.Fprintf(s.Stdout(), "    %s\n", formatPayload(n.Item.Payload))
		}
	})
}

func (s *Shell) cmdServices() {
	for _, name := range s.serviceNames() {
		marker := " "
		if name == s.current {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %-14s %s\n", marker, name, s.env.Services[name].Address())
	}
}

func (s *Shell) cmdUse(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: use <service>")
		return
	}
	if _, ok := s.env.Services[args[0]]; !ok {
		fmt.Fprintf(s.out, "Unknown service: %s\n", args[0])
		return
	}
	s.current = args[0]
	fmt.Fprintf(s.out, "Using %s\n", s.current)
}

func (s *Shell) cmdSubscribe(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: subscribe <node> [key=value ...]")
		return
	}
	opts, err := parseOptions(args[1:])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	err = s.service().Subscribe(args[0], opts, func(r pubsub.SubscribeResult) {
		if r.Err != nil {
			fmt.Fprintf(s.Stdout(), "subscribe %s failed: %v\n", r.Requested, r.Err)
			return
		}
		if r.Redirects > 0 {
			fmt.Fprintf(s.Stdout(), "subscribed to %s (after %d redirects)\n", r.Final, r.Redirects)
			return
		}
		fmt.Fprintf(s.Stdout(), "subscribed to %s\n", r.Final)
	})
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func (s *Shell) cmdUnsubscribe(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: unsubscribe <node>")
		return
	}
	s.service().Unsubscribe(args[0], func(r pubsub.UnsubscribeResult) {
		if r.Err != nil {
			fmt.Fprintf(s.Stdout(), "unsubscribe %s failed: %v\n", r.URI, r.Err)
			return
		}
		fmt.Fprintf(s.Stdout(), "unsubscribed from %s\n", r.URI)
	})
}

func (s *Shell) cmdItems(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: items <node>")
		return
	}
	s.service().GetItems(args[0], func(r pubsub.ItemsResult) {
		w := s.Stdout()
		if r.Err != nil {
			fmt.Fprintf(w, "items %s: %v\n", r.URI, r.Err)
		}
		if r.Err == nil && len(r.Items) == 0 {
			fmt.Fprintf(w, "no items on %s\n", r.URI)
		}
		for _, it := range r.Items {
			fmt.Fprintf(w, "%s", it.URI)
			if !it.PublishTime.IsZero() {
				fmt.Fprintf(w, " (%s)", it.PublishTime.Format(time.RFC3339))
			}
			fmt.Fprintf(w, "\n    %s\n", formatPayload(it.Payload))
		}
	})
}

func (s *Shell) cmdSubscriptions(args []string) {
	var opts []pubsub.QueryOption
	for _, a := range args {
		if a == "--strict" {
			opts = append(opts, pubsub.StrictJIDMatch())
			continue
		}
		opts = append(opts, pubsub.WithNode(a))
	}
	s.service().GetSubscriptions(func(r pubsub.SubscriptionsResult) {
		w := s.Stdout()
		if r.Err != nil {
			fmt.Fprintf(w, "subscriptions: %v\n", r.Err)
			return
		}
		if len(r.Subscriptions) == 0 {
			fmt.Fprintln(w, "no subscriptions")
		}
		for _, sub := range r.Subscriptions {
			fmt.Fprintf(w, "%-20s %-12s subid=%s jid=%s\n", sub.Node, sub.State, sub.SubID, sub.JID)
		}
	}, opts...)
}

func (s *Shell) cmdConfigure(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: configure <node> [key=value ...]")
		return
	}
	opts, err := parseOptions(args[1:])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	svc := s.service()
	node := args[0]
	svc.GetSubscriptions(func(r pubsub.SubscriptionsResult) {
		w := s.Stdout()
		if r.Err != nil {
			fmt.Fprintf(w, "configure: %v\n", r.Err)
			return
		}
		if len(r.Subscriptions) == 0 {
			fmt.Fprintf(w, "configure: not subscribed to %s\n", node)
			return
		}
		err := svc.ConfigureNode(r.Subscriptions[0], opts, func(cr pubsub.ConfigureResult) {
			if cr.Err != nil {
				fmt.Fprintf(s.Stdout(), "configure %s failed: %v\n", node, cr.Err)
				return
			}
			fmt.Fprintf(s.Stdout(), "configured %s\n", node)
		})
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
	}, pubsub.WithNode(node), pubsub.StrictJIDMatch())
}

func (s *Shell) cmdCall(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: call <to> <from>")
		return
	}
	if s.env.Calls == nil {
		fmt.Fprintln(s.out, "active-calls is not available")
		return
	}
	s.env.Calls.Create(args[0], args[1], s.printCommand)
}

func (s *Shell) cmdAuth(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: auth <sip-address> <password>")
		return
	}
	services.AuthenticatePlain(s.env.Adapter, args[0], args[1], "", s.printCommand)
}

func (s *Shell) printCommand(r services.CommandResult) {
	if r.Err != nil {
		fmt.Fprintf(s.Stdout(), "%s failed: %v\n", r.Command, r.Err)
		return
	}
	status := ""
	if cmd := r.Response.Child("command"); cmd != nil {
		status = cmd.Attr("status")
	}
	fmt.Fprintf(s.Stdout(), "%s %s\n", r.Command, status)
}

func (s *Shell) cmdPing() {
	target := bareDomain(s.env.Adapter.LocalJID())
	iq := stanza.NewIQ(target, stanza.TypeGet)
	iq.AddChild(stanza.NewElement(transport.NSPing, "ping"))

	sent := time.Now()
	s.env.Adapter.Send(iq, func(resp *stanza.Element) {
		if resp == nil {
			fmt.Fprintln(s.Stdout(), "ping: no answer")
			return
		}
		fmt.Fprintf(s.Stdout(), "pong from %s in %s\n", resp.From(), time.Since(sent).Round(time.Microsecond))
	})
}

func (s *Shell) cmdStatus() {
	fmt.Fprintln(s.out, "Session Status:")
	fmt.Fprintf(s.out, "  JID:      %s\n", s.env.Adapter.LocalJID())
	fmt.Fprintf(s.out, "  Session:  %s\n", s.env.Adapter.SessionID())
	fmt.Fprintf(s.out, "  Service:  %s (%s)\n", s.current, s.service().Address())
	fmt.Fprintf(s.out, "  Pending:  %d\n", s.env.Adapter.Pending())

	if p := s.env.Pinger; p != nil {
		st := p.Stats()
		fmt.Fprintf(s.out, "  Pings:    %d sent, %d missed\n", st.Sent, st.MissedPongs)
		if !st.LastPongTime.IsZero() {
			fmt.Fprintf(s.out, "  Last pong: %s\n", st.LastPongTime.Format(time.RFC3339))
		}
	}
	if s.env.Network != nil {
		s.mu.Lock()
		running := s.simRunning
		s.mu.Unlock()
		fmt.Fprintf(s.out, "  Simulated: yes (generator running: %v)\n", running)
	}
}

// formatPayload renders an item payload on one line.
func formatPayload(p any) string {
	switch v := p.(type) {
	case *stanza.Element:
		return v.String()
	case services.ActiveCall:
		return fmt.Sprintf("call %s %s -> %s [%s]", v.CallID, v.FromURI, v.ToURI, v.DialogState)
	case services.VoicemailMessage:
		return fmt.Sprintf("voicemail from %s, %s, labels %v", v.CallerID, v.Length(), v.Labels)
	case services.UserAgent:
		return fmt.Sprintf("registration %s (%s) expires %s", v.Contact, v.Device, v.Expires.Format(time.RFC3339))
	case services.Preference:
		return fmt.Sprintf("%s = %s", v.Name, v.Value)
	}
	return fmt.Sprintf("%+v", p)
}

// parseOptions parses key=value arguments. The expire key takes an
// RFC3339 time and becomes a time.Time; other values pass through.
func parseOptions(args []string) (pubsub.Options, error) {
	if len(args) == 0 {
		return nil, nil
	}
	opts := make(pubsub.Options, len(args))
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q (want key=value)", a)
		}
		if key == pubsub.OptionExpire {
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, fmt.Errorf("invalid expire: %w", err)
			}
			opts[key] = t
			continue
		}
		opts[key] = value
	}
	return opts, nil
}

func bareDomain(jid string) string {
	if i := strings.IndexByte(jid, '/'); i >= 0 {
		jid = jid[:i]
	}
	if i := strings.IndexByte(jid, '@'); i >= 0 {
		jid = jid[i+1:]
	}
	return jid
}
