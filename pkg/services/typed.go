package services

import (
	"github.com/onsip/ox-go/pkg/pubsub"
)

// ActiveCalls is the active-calls service.
type ActiveCalls struct {
	*Service
	transport pubsub.Transport
}

// NewActiveCalls opens the active-calls service over tr.
func NewActiveCalls(tr pubsub.Transport, opts ...Option) (*ActiveCalls, error) {
	s, err := Open(NameActiveCalls, tr, opts...)
	if err != nil {
		return nil, err
	}
	return &ActiveCalls{Service: s, transport: tr}, nil
}

// Calls fetches the active calls published on node.
func (s *ActiveCalls) Calls(node string, done func([]ActiveCall, error)) {
	s.GetItems(node, func(r pubsub.ItemsResult) {
		done(Payloads[ActiveCall](r.Items), r.Err)
	})
}

// Create asks the service to place a call from one SIP address to another.
func (s *ActiveCalls) Create(to, from string, done func(CommandResult)) {
	ExecuteCommand(s.transport, CommandCreateCall, []Field{
		{Var: "to", Value: to},
		{Var: "from", Value: from},
	}, done)
}

// UserAgents is the user-agents service.
type UserAgents struct{ *Service }

// NewUserAgents opens the user-agents service over tr.
func NewUserAgents(tr pubsub.Transport, opts ...Option) (*UserAgents, error) {
	s, err := Open(NameUserAgents, tr, opts...)
	if err != nil {
		return nil, err
	}
	return &UserAgents{s}, nil
}

// Registrations fetches the registrations published on node.
func (s *UserAgents) Registrations(node string, done func([]UserAgent, error)) {
	s.GetItems(node, func(r pubsub.ItemsResult) {
		done(Payloads[UserAgent](r.Items), r.Err)
	})
}

// Voicemail is the voicemail service.
type Voicemail struct{ *Service }

// NewVoicemail opens the voicemail service over tr.
func NewVoicemail(tr pubsub.Transport, opts ...Option) (*Voicemail, error) {
	s, err := Open(NameVoicemail, tr, opts...)
	if err != nil {
		return nil, err
	}
	return &Voicemail{s}, nil
}

// Messages fetches the voicemail messages published on node.
func (s *Voicemail) Messages(node string, done func([]VoicemailMessage, error)) {
	s.GetItems(node, func(r pubsub.ItemsResult) {
		done(Payloads[VoicemailMessage](r.Items), r.Err)
	})
}

// RecentCalls is the recent-calls service.
type RecentCalls struct{ *Service }

// NewRecentCalls opens the recent-calls service over tr.
func NewRecentCalls(tr pubsub.Transport, opts ...Option) (*RecentCalls, error) {
	s, err := Open(NameRecentCalls, tr, opts...)
	if err != nil {
		return nil, err
	}
	return &RecentCalls{s}, nil
}

// Calls fetches the recent calls published on node.
func (s *RecentCalls) Calls(node string, done func([]RecentCall, error)) {
	s.GetItems(node, func(r pubsub.ItemsResult) {
		done(Payloads[RecentCall](r.Items), r.Err)
	})
}

// NewDirectories opens the directories service over tr. Its items are
// delivered as raw elements.
func NewDirectories(tr pubsub.Transport, opts ...Option) (*Service, error) {
	return Open(NameDirectories, tr, opts...)
}

// NewPreferences opens the preferences service over tr.
func NewPreferences(tr pubsub.Transport, opts ...Option) (*Service, error) {
	return Open(NamePreferences, tr, opts...)
}
