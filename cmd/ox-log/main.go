// Command ox-log is a tool for viewing and analyzing pubsub protocol log files.
//
// Log files are created by the protocol logging infrastructure when running
// ox-shell with the -protocol-log flag or the protocol_log config key.
//
// Usage:
//
//	ox-log <command> [flags] <file.olog>
//
// A file argument of "-" reads the log from standard input.
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON, CSV or raw stanzas
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View only classified notifications
//	ox-log view --category notification session.olog
//
//	# Follow one node through redirects and notifications
//	ox-log view --node /alice session.olog
//
//	# View traffic for one service
//	ox-log view --service pubsub.voicemail.xmpp.onsip.com session.olog
//
//	# Export to JSONL
//	ox-log export --format jsonl session.olog
//
//	# Filter by session and save to new file
//	ox-log filter --session-id abc12345 -o filtered.olog session.olog
//
//	# Show statistics
//	ox-log stats session.olog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/onsip/ox-go/cmd/ox-log/commands"
)

const usage = `ox-log - Pubsub Protocol Log Analyzer

Usage:
  ox-log <command> [flags] <file.olog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON, CSV or raw stanzas
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "ox-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parseArgs parses fs and returns the single log file argument.
func parseArgs(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func usageFor(fs *flag.FlagSet, text string) func() {
	return func() {
		fmt.Fprint(os.Stderr, text)
		fs.PrintDefaults()
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = usageFor(fs, `ox-log view - View log file in human-readable format

Usage:
  ox-log view [flags] <file.olog>

Flags:
`)

	layer := fs.String("layer", "", "Filter by layer (transport, pubsub, service)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (stanza, notification, redirect, error)")
	service := fs.String("service", "", "Filter by pubsub service address")
	node := fs.String("node", "", "Filter notifications and redirects by node")
	kind := fs.String("kind", "", "Filter notifications by kind (onPublish, onRetract, ...)")

	path := parseArgs(fs, args)

	filter := commands.ViewFilter{Service: *service, Node: *node, Kind: *kind}
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = usageFor(fs, `ox-log export - Export log file to JSON, CSV or raw stanzas

Usage:
  ox-log export [flags] <file.olog>

Flags:
`)

	format := fs.String("format", "jsonl", "Output format (jsonl, csv, stanzas)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path := parseArgs(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = usageFor(fs, `ox-log filter - Filter log file and write to new file

Usage:
  ox-log filter [flags] <file.olog>

Flags:
`)

	output := fs.String("o", "", "Output file (required)")
	sessionID := fs.String("session-id", "", "Filter by session ID")
	service := fs.String("service", "", "Filter by pubsub service address")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (transport, pubsub, service)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (stanza, notification, redirect, error)")
	node := fs.String("node", "", "Filter notifications and redirects by node")
	kind := fs.String("kind", "", "Filter notifications by kind")

	path := parseArgs(fs, args)
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		SessionID: *sessionID,
		Service:   *service,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
		Node:      *node,
		Kind:      *kind,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = usageFor(fs, `ox-log stats - Show statistics about the log file

Usage:
  ox-log stats <file.olog>

`)

	path := parseArgs(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
