package simservice

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/onsip/ox-go/pkg/stanza"
)

// Session is one client's connection to the Service. It implements
// transport.StanzaSender.
type Session struct {
	svc     *Service
	jid     string
	deliver func([]byte) error
}

// JID returns the client's JID.
func (s *Session) JID() string { return s.jid }

// Send handles one stanza written by the client.
func (s *Session) Send(data []byte) error {
	doc, err := stanza.Parse(data)
	if err != nil {
		return fmt.Errorf("simservice: %w", err)
	}
	if doc.Local != stanza.NameIQ || doc.IsResponse() {
		return nil
	}
	return s.write(s.svc.handle(s, doc))
}

func (s *Session) write(doc *stanza.Element) error {
	if doc == nil || s.deliver == nil {
		return nil
	}
	data, err := stanza.Marshal(doc)
	if err != nil {
		return err
	}
	return s.deliver(data)
}

func (s *Session) reply(req *stanza.Element, typ string) *stanza.Element {
	resp := stanza.NewElement(stanza.NSClient, stanza.NameIQ).
		SetAttr("type", typ).
		SetAttr("id", req.ID()).
		SetAttr("from", s.svc.address).
		SetAttr("to", s.jid)
	return resp
}

func (s *Session) errorFor(req *stanza.Element, typ, condition, detail string) *stanza.Element {
	resp := s.reply(req, stanza.TypeError)
	errEl := resp.AddChild(stanza.NewElement("", "error")).SetAttr("type", typ)
	cond := errEl.AddChild(stanza.NewElement(stanza.NSStanzas, condition))
	cond.Text = detail
	return resp
}

// handle answers one iq request. The returned response is written after
// the service lock is released.
func (s *Service) handle(sess *Session, req *stanza.Element) *stanza.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	if req.Child("ping") != nil {
		return sess.reply(req, stanza.TypeResult)
	}
	if cmd := req.Child("command"); cmd != nil {
		resp := sess.reply(req, stanza.TypeResult)
		resp.AddChild(stanza.NewElement(cmd.Space, "command")).
			SetAttr("node", cmd.Attr("node")).
			SetAttr("status", "completed")
		return resp
	}

	ps := req.Child("pubsub")
	op := ps.FirstChild()
	if op == nil {
		return sess.errorFor(req, "modify", condBadRequest, "")
	}

	nodeName := op.Attr("node")
	switch {
	case op.Local == "subscribe" && req.Type() == stanza.TypeSet:
		return s.subscribeLocked(sess, req, op, ps.Child("options"))
	case op.Local == "unsubscribe" && req.Type() == stanza.TypeSet:
		return s.unsubscribeLocked(sess, req, op)
	case op.Local == "items" && req.Type() == stanza.TypeGet:
		return s.itemsLocked(sess, req, nodeName)
	case op.Local == "subscriptions" && req.Type() == stanza.TypeGet:
		return s.subscriptionsLocked(sess, req, op)
	case op.Local == "options" && req.Type() == stanza.TypeSet:
		return s.optionsLocked(sess, req, op)
	}
	return sess.errorFor(req, "cancel", condNotImplemented, "")
}

func (s *Service) forwardFor(sess *Session, req *stanza.Element, nodeName string) *stanza.Element {
	f, ok := s.forwards[nodeName]
	if !ok {
		return nil
	}
	detail := ""
	if f.target != "" {
		detail = s.URI().WithNode(f.target).String()
	}
	typ := "modify"
	if f.condition == stanza.ConditionGone {
		typ = "cancel"
	}
	return sess.errorFor(req, typ, f.condition, detail)
}

func (s *Service) lookupLocked(sess *Session, req *stanza.Element, nodeName string) (*node, *stanza.Element) {
	if fwd := s.forwardFor(sess, req, nodeName); fwd != nil {
		return nil, fwd
	}
	n := s.nodeLocked(nodeName, s.autoNodes)
	if n == nil {
		return nil, sess.errorFor(req, "cancel", condItemNotFound, "")
	}
	return n, nil
}

func (s *Service) subscribeLocked(sess *Session, req, op, options *stanza.Element) *stanza.Element {
	n, errResp := s.lookupLocked(sess, req, op.Attr("node"))
	if errResp != nil {
		return errResp
	}
	jid := op.Attr("jid")
	if jid == "" {
		jid = sess.jid
	}

	sub, ok := n.subs[jid]
	if !ok {
		s.nextSubID++
		sub = &subscription{jid: jid, state: "subscribed", subid: "sub-" + strconv.Itoa(s.nextSubID)}
		if s.approval[n.name] {
			sub.state = "pending"
		}
		n.subs[jid] = sub
	}
	if options != nil {
		sub.options = formValues(options)
	}

	resp := sess.reply(req, stanza.TypeResult)
	resp.AddChild(stanza.NewPubSub()).
		AddChild(stanza.NewElement("", "subscription")).
		SetAttr("node", n.name).
		SetAttr("jid", jid).
		SetAttr("subid", sub.subid).
		SetAttr("subscription", sub.state)
	s.logger.Debug("subscribed", "node", n.name, "jid", jid, "state", sub.state)
	return resp
}

func (s *Service) unsubscribeLocked(sess *Session, req, op *stanza.Element) *stanza.Element {
	n, errResp := s.lookupLocked(sess, req, op.Attr("node"))
	if errResp != nil {
		return errResp
	}
	jid := op.Attr("jid")
	if jid == "" {
		jid = sess.jid
	}
	if _, ok := n.subs[jid]; !ok {
		return sess.errorFor(req, "cancel", condUnexpectedRequest, "")
	}
	delete(n.subs, jid)
	return sess.reply(req, stanza.TypeResult)
}

func (s *Service) itemsLocked(sess *Session, req *stanza.Element, nodeName string) *stanza.Element {
	n, errResp := s.lookupLocked(sess, req, nodeName)
	if errResp != nil {
		return errResp
	}
	resp := sess.reply(req, stanza.TypeResult)
	items := resp.AddChild(stanza.NewPubSub()).
		AddChild(stanza.NewElement("", "items")).
		SetAttr("node", n.name)
	for _, it := range n.items {
		items.AddChild(it.entry())
	}
	return resp
}

func (s *Service) subscriptionsLocked(sess *Session, req, op *stanza.Element) *stanza.Element {
	filter, hasFilter := op.LookupAttr("node")

	resp := sess.reply(req, stanza.TypeResult)
	list := resp.AddChild(stanza.NewPubSub()).AddChild(stanza.NewElement("", "subscriptions"))
	if hasFilter {
		list.SetAttr("node", filter)
	}

	for _, name := range sortedKeys(s.nodes) {
		if hasFilter && name != filter {
			continue
		}
		n := s.nodes[name]
		for _, jid := range sortedKeys(n.subs) {
			if bareJID(jid) != bareJID(sess.jid) {
				continue
			}
			sub := n.subs[jid]
			list.AddChild(stanza.NewElement("", "subscription")).
				SetAttr("node", name).
				SetAttr("jid", jid).
				SetAttr("subid", sub.subid).
				SetAttr("subscription", sub.state)
		}
	}
	return resp
}

func (s *Service) optionsLocked(sess *Session, req, op *stanza.Element) *stanza.Element {
	n, errResp := s.lookupLocked(sess, req, op.Attr("node"))
	if errResp != nil {
		return errResp
	}
	sub, ok := n.subs[op.Attr("jid")]
	if !ok {
		return sess.errorFor(req, "modify", condUnexpectedRequest, "")
	}
	if subid := op.Attr("subid"); subid != "" && subid != sub.subid {
		return sess.errorFor(req, "modify", condBadRequest, "")
	}
	sub.options = formValues(op)
	return sess.reply(req, stanza.TypeResult)
}

// formValues reads the fields of the data form inside el, keyed by var.
func formValues(el *stanza.Element) map[string][]string {
	out := make(map[string][]string)
	form := el.Child("x")
	if form == nil {
		return out
	}
	for _, f := range form.Children {
		if f.Local != "field" {
			continue
		}
		name := f.Attr("var")
		for _, v := range f.Children {
			if v.Local == "value" {
				out[name] = append(out[name], v.TextContent())
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
