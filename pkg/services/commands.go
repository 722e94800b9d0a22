package services

import (
	"github.com/onsip/ox-go/pkg/pubsub"
	"github.com/onsip/ox-go/pkg/stanza"
	"github.com/onsip/ox-go/pkg/uri"
)

// NSCommands is the XEP-0050 ad hoc commands namespace.
const NSCommands = "http://jabber.org/protocol/commands"

// Ad hoc command URIs.
var (
	CommandAuthenticatePlain = uri.MustParse("xmpp:commands.auth.xmpp.onsip.com?;node=authenticate-plain")
	CommandCreateCall        = uri.MustParse("xmpp:commands.active-calls.xmpp.onsip.com?;node=create")
	CommandTransferCall      = uri.MustParse("xmpp:commands.active-calls.xmpp.onsip.com?;node=transfer")
	CommandHangupCall        = uri.MustParse("xmpp:commands.active-calls.xmpp.onsip.com?;node=terminate")
	CommandLabelCall         = uri.MustParse("xmpp:commands.recent-calls.xmpp.onsip.com?;node=label")
)

// Field is one submitted data form field.
type Field struct {
	Var   string
	Value string
}

// CommandResult is the outcome of an ad hoc command.
type CommandResult struct {
	Command  uri.URI
	Response *stanza.Element

	// Err is nil on success, otherwise a *pubsub.StanzaError.
	Err error
}

// ExecuteCommand submits fields to the ad hoc command named by cmd. As with
// pubsub requests, a nil response means no answer and done is not called.
func ExecuteCommand(tr pubsub.Transport, cmd uri.URI, fields []Field, done func(CommandResult)) {
	iq := stanza.NewIQ(cmd.Path(), stanza.TypeSet)
	command := iq.AddChild(stanza.NewElement(NSCommands, "command")).
		SetAttr("node", cmd.Node()).
		SetAttr("action", "execute")

	form := command.AddChild(stanza.NewElement(stanza.NSDataForms, "x")).SetAttr("type", "submit")
	for _, f := range fields {
		field := form.AddChild(stanza.NewElement("", "field")).SetAttr("var", f.Var)
		field.AddChild(&stanza.Element{Local: "value", Text: f.Value})
	}

	tr.Send(iq, func(resp *stanza.Element) {
		if resp == nil || done == nil {
			return
		}
		res := CommandResult{Command: cmd, Response: resp}
		if resp.IsError() {
			res.Err = pubsub.ErrorFromResponse(resp)
		}
		done(res)
	})
}

// AuthenticatePlain authorizes jid to act for the SIP address with its web
// password. An empty jid authorizes the transport's own JID.
func AuthenticatePlain(tr pubsub.Transport, address, password, jid string, done func(CommandResult)) {
	fields := []Field{
		{Var: "sip-address", Value: address},
		{Var: "password", Value: password},
	}
	if jid != "" {
		fields = append(fields, Field{Var: "jid", Value: jid})
	}
	ExecuteCommand(tr, CommandAuthenticatePlain, fields, done)
}
