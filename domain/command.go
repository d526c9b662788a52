package domain

// Command is a user-initiated chat action scoped to one session.
type Command interface {
	SessionID() SessionID
}

type SendMessageCommand struct {
	Session SessionID
	Content string
}

func (c SendMessageCommand) SessionID() SessionID { return c.Session }

type EditMessageCommand struct {
	Session   SessionID
	MessageID string
	Content   string
}

func (c EditMessageCommand) SessionID() SessionID { return c.Session }

type DeleteMessageCommand struct {
	Session   SessionID
	MessageID string
}

func (c DeleteMessageCommand) SessionID() SessionID { return c.Session }
