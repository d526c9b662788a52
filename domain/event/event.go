// Package event defines the closed set of events pushed over a chat
// channel. A single exhaustive reducer consumes them; adding a variant
// here must be matched by a new case in projection.Log.Apply.
package event

import (
	"fairchat/domain"
)

// ChatEvent is implemented by every inbound channel event.
type ChatEvent interface {
	Session() domain.SessionID
}

// MessageCreated announces a new durable message.
type MessageCreated struct {
	SessionID domain.SessionID
	Message   domain.Message
}

func (e MessageCreated) Session() domain.SessionID { return e.SessionID }

// MessageUpdated carries the new content of an edited message.
type MessageUpdated struct {
	SessionID domain.SessionID
	MessageID string
	Content   string
}

func (e MessageUpdated) Session() domain.SessionID { return e.SessionID }

// MessageDeleted removes a message by identity.
type MessageDeleted struct {
	SessionID domain.SessionID
	MessageID string
}

func (e MessageDeleted) Session() domain.SessionID { return e.SessionID }

// HistoryReplayed is sent once right after the channel opens and
// replaces the whole local log with the server's ordered view.
type HistoryReplayed struct {
	SessionID domain.SessionID
	Messages  []domain.Message
}

func (e HistoryReplayed) Session() domain.SessionID { return e.SessionID }

// ChannelFailed is a transient gateway-side error. It never mutates
// the log; it only feeds the notification slot for the channel.
type ChannelFailed struct {
	SessionID domain.SessionID
	Reason    string
}

func (e ChannelFailed) Session() domain.SessionID { return e.SessionID }
