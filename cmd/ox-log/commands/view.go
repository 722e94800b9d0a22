// Package commands implements the ox-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/onsip/ox-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
	Service   string
	Node      string
	Kind      string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Layer:     f.Layer,
		Direction: f.Direction,
		Category:  f.Category,
		Service:   f.Service,
		Node:      f.Node,
		Kind:      f.Kind,
	}
}

// openLog opens the log at path for reading; "-" reads standard input.
func openLog(path string, filter log.Filter) (*log.Reader, error) {
	if path == "-" {
		return log.ReadFrom(os.Stdin, filter), nil
	}
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return reader, nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	sessionID := shortenSessionID(event.SessionID)

	fmt.Fprintf(w, "%s [session:%s] %-3s %s %s\n",
		ts, sessionID, event.Direction.String(), event.Layer.String(), eventLabel(event))

	if event.Service != "" {
		fmt.Fprintf(w, "  Service: %s\n", event.Service)
	}

	switch {
	case event.Stanza != nil:
		formatStanzaDetails(w, event.Stanza)
	case event.PubSub != nil:
		formatPubSubDetails(w, event.PubSub)
	case event.Redirect != nil:
		formatRedirectDetails(w, event.Redirect)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// eventLabel names the event for headers and exports.
func eventLabel(event log.Event) string {
	switch {
	case event.Stanza != nil:
		if event.Stanza.Type != "" {
			return event.Stanza.Name + "/" + event.Stanza.Type
		}
		return event.Stanza.Name
	case event.PubSub != nil:
		return event.PubSub.Kind
	case event.Redirect != nil:
		return event.Redirect.Condition
	case event.Error != nil:
		return "error"
	}
	return "unknown"
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatStanzaDetails(w io.Writer, st *log.StanzaEvent) {
	if st.ID != "" {
		fmt.Fprintf(w, "  ID: %s\n", st.ID)
	}
	if st.Peer != "" {
		fmt.Fprintf(w, "  Peer: %s\n", st.Peer)
	}
	fmt.Fprintf(w, "  Size: %d bytes\n", st.Size)
	if len(st.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", st.Data)
		if st.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatPubSubDetails(w io.Writer, ps *log.PubSubEvent) {
	fmt.Fprintf(w, "  URI: %s\n", ps.URI)
	if !ps.Delivered {
		fmt.Fprintln(w, "  No handler registered")
	}
}

func formatRedirectDetails(w io.Writer, r *log.RedirectEvent) {
	to := r.ToNode
	if to == "" {
		to = "(none)"
	}
	fmt.Fprintf(w, "  %s -> %s (depth %d)\n", r.FromNode, to, r.Depth)
	if r.OriginalNode != r.FromNode {
		fmt.Fprintf(w, "  Requested: %s\n", r.OriginalNode)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Condition != "" {
		fmt.Fprintf(w, "  Condition: %s\n", err.Condition)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	return parseLayer(s)
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "pubsub":
		return log.LayerPubSub, nil
	case "service":
		return log.LayerService, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, pubsub, or service)", s)
	}
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	return parseDirection(s)
}

func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "stanza":
		return log.CategoryStanza, nil
	case "notification":
		return log.CategoryNotification, nil
	case "redirect":
		return log.CategoryRedirect, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be stanza, notification, redirect, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := openLog(path, filter.logFilter())
	if err != nil {
		return err
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
