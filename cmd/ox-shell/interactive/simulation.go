package interactive

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onsip/ox-go/internal/simservice"
	"github.com/onsip/ox-go/pkg/services"
	"github.com/onsip/ox-go/pkg/stanza"
)

// simService returns the simulated service behind the current service,
// printing a message when the shell is not simulating.
func (s *Shell) simService() *simservice.Service {
	if s.env.Network == nil {
		fmt.Fprintln(s.out, "Not available: services are not simulated")
		return nil
	}
	sim, ok := s.env.Network.Service(s.service().Address().Path())
	if !ok {
		fmt.Fprintf(s.out, "No simulated service for %s\n", s.current)
		return nil
	}
	return sim
}

func (s *Shell) cmdPublish(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.out, "Usage: publish <node> <id> <xml>")
		fmt.Fprintln(s.out, "  Example: publish /alice preference <preference name=\"dnd\">on</preference>")
		return
	}
	sim := s.simService()
	if sim == nil {
		return
	}
	payload, err := stanza.Parse([]byte(strings.Join(args[2:], " ")))
	if err != nil {
		fmt.Fprintf(s.out, "Invalid payload: %v\n", err)
		return
	}
	id := args[1]
	if id == "-" {
		id = ""
	}
	id = sim.Publish(args[0], id, payload)
	fmt.Fprintf(s.out, "published %s on %s\n", id, args[0])
}

func (s *Shell) cmdRetract(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: retract <node> <id>")
		return
	}
	sim := s.simService()
	if sim == nil {
		return
	}
	if !sim.Retract(args[0], args[1]) {
		fmt.Fprintf(s.out, "No item %s on %s\n", args[1], args[0])
	}
}

func (s *Shell) cmdForward(args []string, gone bool) {
	if gone && (len(args) < 1 || len(args) > 2) || !gone && len(args) != 2 {
		if gone {
			fmt.Fprintln(s.out, "Usage: gone <node> [target]")
		} else {
			fmt.Fprintln(s.out, "Usage: redirect <node> <target>")
		}
		return
	}
	sim := s.simService()
	if sim == nil {
		return
	}
	target := ""
	if len(args) == 2 {
		target = args[1]
	}
	switch {
	case target == "-":
		sim.ClearForward(args[0])
		fmt.Fprintf(s.out, "cleared forward for %s\n", args[0])
	case gone:
		sim.SetGone(args[0], target)
		fmt.Fprintf(s.out, "%s is gone\n", args[0])
	default:
		sim.SetRedirect(args[0], target)
		fmt.Fprintf(s.out, "%s redirects to %s\n", args[0], target)
	}
}

func (s *Shell) cmdApproval(args []string) {
	if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
		fmt.Fprintln(s.out, "Usage: approval <node> on|off")
		return
	}
	sim := s.simService()
	if sim == nil {
		return
	}
	sim.RequireApproval(args[0], args[1] == "on")
}

func (s *Shell) cmdApprove(args []string, approve bool) {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(s.out, "Usage: approve|revoke <node> [jid]")
		return
	}
	sim := s.simService()
	if sim == nil {
		return
	}
	jid := s.env.Adapter.LocalJID()
	if len(args) == 2 {
		jid = args[1]
	}
	var err error
	if approve {
		err = sim.Approve(args[0], jid)
	} else {
		err = sim.Revoke(args[0], jid)
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func (s *Shell) cmdStart() {
	if s.env.Network == nil {
		fmt.Fprintln(s.out, "Not available: services are not simulated")
		return
	}
	sim, ok := s.env.Network.Service(services.DefaultAddress(services.NameActiveCalls).Path())
	if s.env.Calls != nil {
		sim, ok = s.env.Network.Service(s.env.Calls.Address().Path())
	}
	if !ok {
		fmt.Fprintln(s.out, "No simulated active-calls service")
		return
	}
	if s.startSimulation(sim) {
		fmt.Fprintln(s.out, "Simulation started")
	} else {
		fmt.Fprintln(s.out, "Simulation already running")
	}
}

func (s *Shell) cmdStop() {
	if s.stopSimulation() {
		fmt.Fprintln(s.out, "Simulation stopped")
	} else {
		fmt.Fprintln(s.out, "Simulation not running")
	}
}

func (s *Shell) startSimulation(sim *simservice.Service) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.simRunning {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.simCancel = cancel
	s.simRunning = true
	s.simDone = make(chan struct{})
	go s.runSimulation(ctx, sim, s.simDone)
	return true
}

func (s *Shell) stopSimulation() bool {
	s.mu.Lock()
	if !s.simRunning {
		s.mu.Unlock()
		return false
	}
	s.simCancel()
	s.simRunning = false
	done := s.simDone
	s.mu.Unlock()

	<-done
	return true
}

// callStates is the dialog progression the generator walks each call through.
var callStates = []string{
	services.DialogCreated,
	services.DialogRequested,
	services.DialogConfirmed,
	services.DialogTerminated,
}

// runSimulation publishes synthetic active calls on the local user's node,
// advancing one call one dialog state per tick and retracting it once it
// terminates.
func (s *Shell) runSimulation(ctx context.Context, sim *simservice.Service, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.env.SimInterval)
	defer ticker.Stop()

	node := "/" + bareJID(s.env.Adapter.LocalJID())
	var (
		callID string
		step   int
		count  int
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if callID == "" {
				callID = uuid.NewString()
				step = 0
				count++
			}
			state := callStates[step]
			if state == services.DialogTerminated {
				sim.Retract(node, callID)
				callID = ""
				continue
			}
			sim.Publish(node, callID, syntheticCall(callID, state, count))
			step++
		}
	}
}

func syntheticCall(callID, state string, n int) *stanza.Element {
	call := stanza.NewElement("", "active-call")
	add := func(name, value string) {
		call.AddChild(&stanza.Element{Local: name, Text: value})
	}
	add("dialog-state", state)
	add("call-id", callID)
	add("from-uri", "sip:caller"+strconv.Itoa(n)+"@example.com")
	add("to-uri", "sip:desk@example.com")
	add("from-tag", strconv.Itoa(1000+n))
	if state == services.DialogConfirmed {
		add("to-tag", strconv.Itoa(2000+n))
	}
	return call
}

func bareJID(jid string) string {
	if i := strings.IndexByte(jid, '/'); i >= 0 {
		return jid[:i]
	}
	return jid
}
