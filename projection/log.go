// Package projection builds the local message log from observed
// channel events. Handles ordering, deduplication, and idempotent
// application. It never emits events and holds no transport state.
package projection

import (
	"sort"

	"fairchat/domain"
	"fairchat/domain/event"
)

// Log is an immutable, ordered view of one session's messages.
// Apply returns a new Log and never mutates the receiver, so a
// snapshot can be handed to a renderer while newer events keep
// arriving.
type Log struct {
	messages []domain.Message
	index    map[string]int
}

func NewLog() Log {
	return Log{index: map[string]int{}}
}

// Replay builds a Log from a server-ordered history, dropping any
// duplicate identities after the first occurrence.
func Replay(messages []domain.Message) Log {
	l := Log{
		messages: make([]domain.Message, 0, len(messages)),
		index:    make(map[string]int, len(messages)),
	}
	for _, m := range messages {
		if _, ok := l.index[m.ID]; ok {
			continue
		}
		l.index[m.ID] = len(l.messages)
		l.messages = append(l.messages, m)
	}
	return l
}

func (l Log) Len() int { return len(l.messages) }

// Messages returns the ordered entries. The slice is shared with the
// Log and must be treated as read-only.
func (l Log) Messages() []domain.Message { return l.messages }

func (l Log) Get(id string) (domain.Message, bool) {
	i, ok := l.index[id]
	if !ok {
		return domain.Message{}, false
	}
	return l.messages[i], true
}

// Apply maps one channel event to its log mutation and returns the
// resulting Log. The variant set is closed; events that carry no log
// effect (ChannelFailed) return the receiver unchanged, as do edits
// and deletes referencing an unknown identity.
func (l Log) Apply(e event.ChatEvent) Log {
	switch evt := e.(type) {
	case event.MessageCreated:
		return l.insert(evt.Message)
	case event.MessageUpdated:
		return l.rewrite(evt.MessageID, evt.Content)
	case event.MessageDeleted:
		return l.remove(evt.MessageID)
	case event.HistoryReplayed:
		return Replay(evt.Messages)
	case event.ChannelFailed:
		return l
	}
	return l
}

// insert places a message at its ordering position, keeping the log
// sorted by (CreatedAt, ID). A second insert of the same identity is
// a no-op.
func (l Log) insert(m domain.Message) Log {
	if _, ok := l.index[m.ID]; ok {
		return l
	}
	at := sort.Search(len(l.messages), func(i int) bool {
		return m.Before(l.messages[i])
	})
	next := make([]domain.Message, 0, len(l.messages)+1)
	next = append(next, l.messages[:at]...)
	next = append(next, m)
	next = append(next, l.messages[at:]...)
	return rebuild(next)
}

func (l Log) rewrite(id, content string) Log {
	i, ok := l.index[id]
	if !ok {
		return l
	}
	next := make([]domain.Message, len(l.messages))
	copy(next, l.messages)
	next[i].Content = content
	return rebuild(next)
}

func (l Log) remove(id string) Log {
	i, ok := l.index[id]
	if !ok {
		return l
	}
	next := make([]domain.Message, 0, len(l.messages)-1)
	next = append(next, l.messages[:i]...)
	next = append(next, l.messages[i+1:]...)
	return rebuild(next)
}

func rebuild(messages []domain.Message) Log {
	index := make(map[string]int, len(messages))
	for i, m := range messages {
		index[m.ID] = i
	}
	return Log{messages: messages, index: index}
}
