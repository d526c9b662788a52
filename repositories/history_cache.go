//go:generate go run go.uber.org/mock/mockgen -source=history_cache.go -destination=../mocks/mock_history_cache.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"

	"fairchat/domain"
)

type IHistoryCache interface {
	ReplaceHistory(session domain.SessionID, messages []domain.Message) error
	GetHistory(session domain.SessionID) ([]domain.Message, error)
}

// HistoryCache keeps the last replayed transcript per session in
// BadgerDB so a view can render the previous state instantly while
// the channel reconnects. Purely advisory: the reducer never reads it,
// and every history replay overwrites it wholesale.
type HistoryCache struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewHistoryCache(db *badger.DB, log *slog.Logger, limitMessages *int) HistoryCache {
	return HistoryCache{db: db, log: log, limitMessages: limitMessages}
}

type diskMessage struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// cacheKey is formatted as "msg:{session}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Keep same-nanosecond messages apart by appending the message ID.
func cacheKey(session domain.SessionID, m domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", session, m.CreatedAt.UnixNano(), m.ID))
}

func sessionPrefix(session domain.SessionID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", session))
}

// ReplaceHistory drops whatever was cached for the session and writes
// the new transcript in one transaction.
func (c HistoryCache) ReplaceHistory(session domain.SessionID, messages []domain.Message) error {
	return c.db.Update(func(txn *badger.Txn) error {
		prefix := sessionPrefix(session)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)

		var stale [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		for _, m := range messages {
			value, err := json.Marshal(fromMessage(m))
			if err != nil {
				return err
			}
			if err = txn.Set(cacheKey(session, m), value); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetHistory returns the cached transcript in chronological order.
// When a limit is configured only the most recent messages survive.
func (c HistoryCache) GetHistory(session domain.SessionID) ([]domain.Message, error) {
	var values [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := sessionPrefix(session)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				values = append(values, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(values))
	for _, value := range values {
		var dm diskMessage
		if err = json.Unmarshal(value, &dm); err != nil {
			return nil, err
		}
		messages = append(messages, dm.toMessage())
	}

	if c.limitMessages != nil && len(messages) > *c.limitMessages {
		c.log.Debug(fmt.Sprintf("Trimming cached history to the last %d messages", *c.limitMessages))
		messages = messages[len(messages)-*c.limitMessages:]
	}
	return messages, nil
}

func fromMessage(m domain.Message) diskMessage {
	return diskMessage{
		ID:        m.ID,
		SenderID:  m.Sender.ID,
		Role:      string(m.Sender.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func (d diskMessage) toMessage() domain.Message {
	return domain.Message{
		ID:        d.ID,
		Sender:    domain.Sender{ID: d.SenderID, Role: domain.ParseRole(d.Role)},
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

// Restore rebuilds an ordered message slice suitable for seeding a
// rendering layer, deduplicated by identity in case two cache rows
// ever collide.
func Restore(messages []domain.Message) []domain.Message {
	seen := map[string]struct{}{}
	return lo.Filter(messages, func(m domain.Message, _ int) bool {
		if _, ok := seen[m.ID]; ok {
			return false
		}
		seen[m.ID] = struct{}{}
		return true
	})
}
