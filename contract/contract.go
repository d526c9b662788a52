//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"

	"fairchat/domain"
	"fairchat/domain/event"
)

// NotificationPort surfaces transient, slot-keyed notices to the UI.
// Re-notifying an occupied slot replaces its payload instead of
// stacking a new one, so repeated failures never queue up.
type NotificationPort interface {
	Notify(slot string, payload string)
	Dismiss(slot string)
}

// EventSink consumes inbound channel events in arrival order.
type EventSink interface {
	Consume(ctx context.Context, e event.ChatEvent) error
}

// Channel is one live connection scoped to (session, credential).
// Opening a channel makes the gateway replay the session history;
// the client never asks for it separately.
type Channel interface {
	Send(ctx context.Context, content string) error
	Events() <-chan event.ChatEvent
	Close() error
}

// Dialer opens a Channel for a session using a bearer credential.
type Dialer interface {
	Dial(ctx context.Context, session domain.SessionID, credential string) (Channel, error)
}

// MessageAPI is the REST collaborator surface for durable message rows.
// Edit and delete go through here rather than the channel; the server
// remains the authorization authority.
type MessageAPI interface {
	EditMessage(ctx context.Context, session domain.SessionID, messageID, content string) (domain.Message, error)
	DeleteMessage(ctx context.Context, session domain.SessionID, messageID string) error
}

// FlagAPI is the REST collaborator surface for candidate flags.
type FlagAPI interface {
	CreateFlag(ctx context.Context, userID, jobListingID string) (domain.Flag, error)
	DeleteFlag(ctx context.Context, flagID string) error
	ListFlags(ctx context.Context, jobListingID string) ([]domain.Flag, error)
}

// DirectoryAPI provides read-only identity and session lookups used to
// scope a chat view. Not part of the core state machine.
type DirectoryAPI interface {
	CurrentUser(ctx context.Context) (domain.Sender, error)
	Session(ctx context.Context, id domain.SessionID) (domain.Session, error)
}
