// Package transport carries chat traffic over a websocket channel.
// Frames are JSON envelopes of the form {"event": "...", "payload": {...}}.
package transport

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fairchat/domain"
	"fairchat/domain/event"
	"fairchat/errors"
)

const (
	frameMessageCreated = "message-created"
	frameMessageUpdated = "message-updated"
	frameMessageDeleted = "message-deleted"
	frameHistoryReplay  = "history-replay"
	frameChannelError   = "channel-error"
	frameMessageSend    = "message-send"
)

type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wireMessage struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (w wireMessage) toDomain() domain.Message {
	return domain.Message{
		ID:        w.ID,
		Sender:    domain.Sender{ID: w.SenderID, Role: domain.ParseRole(w.Role)},
		Content:   w.Content,
		CreatedAt: w.CreatedAt,
	}
}

type wireUpdate struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type wireDelete struct {
	MessageID string `json:"message_id"`
}

type wireError struct {
	Error string `json:"error"`
}

type wireSend struct {
	Content string `json:"content"`
	// Ref lets the gateway correlate the eventual message-created
	// event with this dispatch; the client itself never relies on it.
	Ref string `json:"ref"`
}

// decodeFrame maps one inbound frame to its channel event.
// The event set is closed; anything else is ErrUnknownFrame and the
// caller decides whether to drop or fail.
func decodeFrame(session domain.SessionID, data []byte) (event.ChatEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame envelope: %w", err)
	}
	switch env.Event {
	case frameMessageCreated:
		var w wireMessage
		if err := json.Unmarshal(env.Payload, &w); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
		return event.MessageCreated{SessionID: session, Message: w.toDomain()}, nil
	case frameMessageUpdated:
		var w wireUpdate
		if err := json.Unmarshal(env.Payload, &w); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
		return event.MessageUpdated{SessionID: session, MessageID: w.ID, Content: w.Content}, nil
	case frameMessageDeleted:
		var w wireDelete
		if err := json.Unmarshal(env.Payload, &w); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
		return event.MessageDeleted{SessionID: session, MessageID: w.MessageID}, nil
	case frameHistoryReplay:
		var ws []wireMessage
		if err := json.Unmarshal(env.Payload, &ws); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
		messages := make([]domain.Message, 0, len(ws))
		for _, w := range ws {
			messages = append(messages, w.toDomain())
		}
		return event.HistoryReplayed{SessionID: session, Messages: messages}, nil
	case frameChannelError:
		var w wireError
		if err := json.Unmarshal(env.Payload, &w); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Event, err)
		}
		return event.ChannelFailed{SessionID: session, Reason: w.Error}, nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnknownFrame, env.Event)
}

func encodeSend(content string) ([]byte, error) {
	payload, err := json.Marshal(wireSend{Content: content, Ref: uuid.NewString()})
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Event: frameMessageSend, Payload: payload})
}
