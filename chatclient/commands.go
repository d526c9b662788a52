package chatclient

import (
	"context"
	"fmt"
	"strings"

	"fairchat/domain"
	"fairchat/domain/event"
	"fairchat/errors"
)

// Send dispatches a new message over the channel. Whitespace-only
// content is dropped silently: no transport call, no error, no log
// mutation. Dispatch is fire-and-forget; the log only changes when
// the gateway pushes message-created back.
func (c *Client) Send(ctx context.Context, cmd domain.SendMessageCommand) error {
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return nil
	}
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return errors.ErrChannelClosed
	}
	return ch.Send(ctx, content)
}

// Edit rewrites one of the caller's own messages through the REST
// collaborator and applies the confirmed row to the log directly.
// The ownership pre-check is UX-only; the server re-verifies it.
func (c *Client) Edit(ctx context.Context, cmd domain.EditMessageCommand) error {
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return errors.ErrEmptyContent
	}

	c.mu.Lock()
	gen := c.generation
	session := c.session
	self := c.self
	msg, ok := c.timeline.Get(cmd.MessageID)
	c.mu.Unlock()

	if !ok {
		return errors.ErrUnknownMessage
	}
	if msg.Sender.ID != self.ID {
		return errors.ErrNotSender
	}

	updated, err := c.messages.EditMessage(ctx, session, cmd.MessageID, content)
	if err != nil {
		if c.currentGeneration() != gen {
			// The view moved on; the failure belongs to a dead channel.
			return nil
		}
		c.notifier.Notify(SlotEdit, fmt.Sprintf("Could not edit the message: %v", err))
		return err
	}

	// Optimistic-confirmed apply. The push event for the same edit may
	// still arrive and reduces to a no-op.
	c.apply(gen, event.MessageUpdated{
		SessionID: session,
		MessageID: updated.ID,
		Content:   updated.Content,
	})
	return nil
}

// Delete removes one of the caller's own messages through the REST
// collaborator, with the same idempotency guarantees as Edit.
func (c *Client) Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	c.mu.Lock()
	gen := c.generation
	session := c.session
	self := c.self
	msg, ok := c.timeline.Get(cmd.MessageID)
	c.mu.Unlock()

	if !ok {
		return errors.ErrUnknownMessage
	}
	if msg.Sender.ID != self.ID {
		return errors.ErrNotSender
	}

	if err := c.messages.DeleteMessage(ctx, session, cmd.MessageID); err != nil {
		if c.currentGeneration() != gen {
			return nil
		}
		c.notifier.Notify(SlotDelete, fmt.Sprintf("Could not delete the message: %v", err))
		return err
	}

	c.apply(gen, event.MessageDeleted{SessionID: session, MessageID: cmd.MessageID})
	return nil
}
