package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fairchat/domain"
)

type editMessageRequest struct {
	Content string `json:"content" validate:"required"`
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

// EditMessage rewrites a message's content. The response payload is
// the confirmed row, which the caller applies to its log directly
// instead of waiting for the push event.
func (c *Client) EditMessage(ctx context.Context, session domain.SessionID, messageID, content string) (domain.Message, error) {
	var out wireMessage
	path := fmt.Sprintf("/api/sessions/%s/messages/%s",
		url.PathEscape(string(session)), url.PathEscape(messageID))
	if err := c.do(ctx, http.MethodPatch, path, editMessageRequest{Content: content}, &out); err != nil {
		return domain.Message{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) DeleteMessage(ctx context.Context, session domain.SessionID, messageID string) error {
	path := fmt.Sprintf("/api/sessions/%s/messages/%s",
		url.PathEscape(string(session)), url.PathEscape(messageID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
