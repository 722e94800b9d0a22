package services

import (
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	"github.com/onsip/ox-go/pkg/pubsub"
	"github.com/onsip/ox-go/pkg/stanza"
)

// ErrMissingPayload is returned when an item entry has no payload element
// of the service's type.
var ErrMissingPayload = errors.New("services: item has no payload")

// ActiveCall is an active-calls item: the state of one SIP dialog.
type ActiveCall struct {
	XMLName     xml.Name `xml:"active-call"`
	DialogState string   `xml:"dialog-state"`
	CallID      string   `xml:"call-id"`
	FromURI     string   `xml:"from-uri"`
	ToURI       string   `xml:"to-uri"`
	UACAOR      string   `xml:"uac-aor"`
	UASAOR      string   `xml:"uas-aor"`
	FromTag     string   `xml:"from-tag"`
	ToTag       string   `xml:"to-tag"`
}

// Dialog states reported in ActiveCall.DialogState.
const (
	DialogCreated    = "created"
	DialogRequested  = "requested"
	DialogConfirmed  = "confirmed"
	DialogTerminated = "terminated"
)

// IsConfirmed reports whether the call has been answered.
func (c ActiveCall) IsConfirmed() bool { return c.DialogState == DialogConfirmed }

// UserAgent is a user-agents item: one SIP registration.
type UserAgent struct {
	XMLName  xml.Name  `xml:"user-agent"`
	Contact  string    `xml:"contact"`
	Received string    `xml:"received"`
	Device   string    `xml:"device"`
	Expires  time.Time `xml:"expires"`
	Event    string    `xml:"event"`
}

// VoicemailMessage is a voicemail item.
type VoicemailMessage struct {
	XMLName  xml.Name  `xml:"voicemail"`
	Mailbox  int       `xml:"mailbox"`
	CallerID string    `xml:"caller-id"`
	Created  time.Time `xml:"created"`
	Duration int       `xml:"duration"`
	Labels   []string  `xml:"labels>label"`
}

// Length returns the message duration.
func (m VoicemailMessage) Length() time.Duration {
	return time.Duration(m.Duration) * time.Second
}

// RecentCall is a recent-calls item: one completed call.
type RecentCall struct {
	XMLName  xml.Name  `xml:"recent-call"`
	CallID   string    `xml:"call-id"`
	FromURI  string    `xml:"from-uri"`
	ToURI    string    `xml:"to-uri"`
	Created  time.Time `xml:"created"`
	Duration int       `xml:"duration"`
	Labels   []string  `xml:"labels>label"`
}

// Preference is a preferences item: a named setting.
type Preference struct {
	XMLName xml.Name `xml:"preference"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:",chardata"`
}

// xmlDecoder decodes the entry's child named root into a T.
func xmlDecoder[T any](root string) pubsub.ItemDecoder {
	return pubsub.ItemDecoderFunc(func(entry *stanza.Element) (any, error) {
		payload := entry.Child(root)
		if payload == nil {
			return nil, fmt.Errorf("%w: want <%s/>", ErrMissingPayload, root)
		}
		data, err := stanza.Marshal(payload)
		if err != nil {
			return nil, err
		}
		var v T
		if err := xml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode <%s/>: %w", root, err)
		}
		return v, nil
	})
}
