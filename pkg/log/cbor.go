package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// MaxCapturedStanza is the number of stanza bytes kept in a StanzaEvent.
const MaxCapturedStanza = 4096

var (
	eventEncMode cbor.EncMode
	eventDecMode cbor.DecMode
)

func init() {
	var err error

	// Canonical key order keeps files diffable; RFC3339Nano keeps timestamp precision.
	eventEncMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: cbor encoder mode: %v", err))
	}

	eventDecMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: cbor decoder mode: %v", err))
	}
}

// EncodeEvent encodes an Event to CBOR bytes.
func EncodeEvent(event Event) ([]byte, error) {
	return eventEncMode.Marshal(event)
}

// DecodeEvent decodes CBOR bytes into an Event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder creates a CBOR encoder for log events that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return eventEncMode.NewEncoder(w)
}

// NewDecoder creates a CBOR decoder for log events that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDecMode.NewDecoder(r)
}

// CaptureStanza builds a StanzaEvent for a serialized stanza, truncating
// the kept bytes to MaxCapturedStanza.
func CaptureStanza(name, typ, id, peer string, data []byte) *StanzaEvent {
	ev := &StanzaEvent{
		Name: name,
		Type: typ,
		ID:   id,
		Peer: peer,
		Size: len(data),
	}
	if len(data) > MaxCapturedStanza {
		ev.Data = append([]byte(nil), data[:MaxCapturedStanza]...)
		ev.Truncated = true
	} else {
		ev.Data = append([]byte(nil), data...)
	}
	return ev
}
