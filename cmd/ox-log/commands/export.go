package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/onsip/ox-go/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := openLog(path, log.Filter{})
	if err != nil {
		return err
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	case "stanzas":
		return exportStanzas(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv, stanzas)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

// exportStanzas writes the captured bytes of every stanza event, one
// stanza per line, preceded by an XML comment naming its direction and
// peer. Truncated captures are skipped so the output stays well-formed.
func exportStanzas(reader *log.Reader, w io.Writer) error {
	skipped := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		st := event.Stanza
		if st == nil {
			continue
		}
		if st.Truncated {
			skipped++
			continue
		}
		if _, err := fmt.Fprintf(w, "<!-- %s %s %s -->\n%s\n",
			event.Timestamp.UTC().Format(time.RFC3339Nano), event.Direction, st.Peer, st.Data); err != nil {
			return fmt.Errorf("failed to write stanza: %w", err)
		}
	}
	if skipped > 0 {
		fmt.Fprintf(w, "<!-- %d truncated stanzas skipped -->\n", skipped)
	}
	return nil
}

var csvHeader = []string{"timestamp", "session_id", "direction", "layer", "category", "local_jid", "service", "type", "id", "uri", "size"}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var id, uri, size string
		switch {
		case event.Stanza != nil:
			id = event.Stanza.ID
			size = strconv.Itoa(event.Stanza.Size)
		case event.PubSub != nil:
			uri = event.PubSub.URI
		case event.Redirect != nil:
			uri = event.Redirect.ToNode
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			event.LocalJID,
			event.Service,
			eventLabel(event),
			id,
			uri,
			size,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
