package sink

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"fairchat/domain/event"
)

// Telemetry counts live channel events per kind. Registered on the
// chat client as a side sink; the reducer never depends on it.
type Telemetry struct {
	log *slog.Logger

	mu     sync.Mutex
	counts map[string]int
}

func NewTelemetry(log *slog.Logger) *Telemetry {
	return &Telemetry{
		log:    log,
		counts: make(map[string]int),
	}
}

func (t *Telemetry) Consume(_ context.Context, e event.ChatEvent) error {
	kind := kindOf(e)

	t.mu.Lock()
	t.counts[kind]++
	count := t.counts[kind]
	t.mu.Unlock()

	t.log.Debug(fmt.Sprintf("Channel event %s (total %d)", kind, count))
	return nil
}

// Counts returns a copy of the per-kind counters.
func (t *Telemetry) Counts() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[string]int, len(t.counts))
	for kind, count := range t.counts {
		counts[kind] = count
	}
	return counts
}

func kindOf(e event.ChatEvent) string {
	switch e.(type) {
	case event.MessageCreated:
		return "message-created"
	case event.MessageUpdated:
		return "message-updated"
	case event.MessageDeleted:
		return "message-deleted"
	case event.HistoryReplayed:
		return "history-replay"
	case event.ChannelFailed:
		return "channel-error"
	}
	return "unknown"
}
