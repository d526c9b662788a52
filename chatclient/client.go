// Package chatclient implements the session chat core: channel
// lifecycle, the local message log, the outbound command gate, and
// the candidate flag side-channel. It is UI-agnostic; rendering hooks
// in through OnChange and the injected NotificationPort.
package chatclient

import (
	"context"
	"log/slog"
	"sync"

	"fairchat/auth"
	"fairchat/contract"
	"fairchat/domain"
	"fairchat/domain/event"
	"fairchat/projection"
)

// Notification slots. One slot per concern: repeated failures replace
// the previous notice instead of stacking new ones.
const (
	SlotChannel = "chat.channel"
	SlotEdit    = "chat.edit"
	SlotDelete  = "chat.delete"
	SlotFlag    = "chat.flag"
)

// Client owns at most one live channel, scoped to (session,
// credential). Every (re)open and every teardown advances the
// generation counter; completions carrying an older generation are
// discarded so a torn-down view can never be mutated by a late
// callback.
type Client struct {
	log      *slog.Logger
	dialer   contract.Dialer
	messages contract.MessageAPI
	notifier contract.NotificationPort

	mu         sync.Mutex
	session    domain.SessionID
	credential auth.Credential
	self       domain.Sender
	channel    contract.Channel
	generation uint64
	timeline   projection.Log
	onChange   func(projection.Log)
	sinks      []contract.EventSink
}

func NewClient(log *slog.Logger, dialer contract.Dialer,
	messages contract.MessageAPI, notifier contract.NotificationPort) *Client {
	return &Client{
		log:      log,
		dialer:   dialer,
		messages: messages,
		notifier: notifier,
		timeline: projection.NewLog(),
	}
}

// OnChange registers the render hook invoked with a log snapshot after
// every mutation. Auto-scroll and repaint piggyback on this; there is
// no separate scheduling.
func (c *Client) OnChange(fn func(projection.Log)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// AddSink registers a side consumer of the live event stream, such as
// a telemetry counter. Sinks observe events after the stale-generation
// guard, so a torn-down channel never feeds them.
func (c *Client) AddSink(sinks ...contract.EventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, sinks...)
}

// Authenticate binds the credential and retries the deferred open.
// The identity inside the token is used for UX-level ownership checks
// only.
func (c *Client) Authenticate(ctx context.Context, credential auth.Credential) error {
	self, err := credential.Identity()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.credential = credential
	c.self = self
	c.mu.Unlock()
	return c.ensureChannel(ctx)
}

// Bind points the client at a session and retries the deferred open.
// Rebinding to a different session replaces the channel wholesale.
func (c *Client) Bind(ctx context.Context, session domain.SessionID) error {
	c.mu.Lock()
	if c.session == session && c.channel != nil {
		c.mu.Unlock()
		return nil
	}
	c.session = session
	c.mu.Unlock()
	return c.ensureChannel(ctx)
}

// ensureChannel opens the channel once both preconditions hold.
// A missing session or credential is not an error: the open stays
// deferred until the next Bind or Authenticate satisfies it.
func (c *Client) ensureChannel(ctx context.Context) error {
	c.mu.Lock()
	if c.session == "" || c.credential.Empty() {
		c.mu.Unlock()
		return nil
	}
	prev := c.channel
	c.channel = nil
	c.generation++
	gen := c.generation
	session := c.session
	credential := c.credential
	c.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}

	ch, err := c.dialer.Dial(ctx, session, string(credential))
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.generation != gen {
		// The view moved on while we were dialing.
		c.mu.Unlock()
		_ = ch.Close()
		return nil
	}
	c.channel = ch
	c.timeline = projection.NewLog()
	c.mu.Unlock()

	c.log.Debug("Chat channel open", "session", session)
	go c.consume(gen, ch)
	return nil
}

// consume applies inbound events in arrival order. It is the only
// goroutine feeding the log for its generation, so no event ever
// overtakes another.
func (c *Client) consume(gen uint64, ch contract.Channel) {
	for evt := range ch.Events() {
		c.apply(gen, evt)
	}
}

// apply routes one event: channel errors go to their notification
// slot, everything else reduces into the log. Stale generations are
// dropped on the floor.
func (c *Client) apply(gen uint64, evt event.ChatEvent) {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return
	}
	sinks := c.sinks
	if failed, ok := evt.(event.ChannelFailed); ok {
		c.mu.Unlock()
		c.fanOut(sinks, evt)
		c.notifier.Notify(SlotChannel, failed.Reason)
		return
	}
	c.timeline = c.timeline.Apply(evt)
	snapshot := c.timeline
	onChange := c.onChange
	c.mu.Unlock()

	c.fanOut(sinks, evt)
	if onChange != nil {
		onChange(snapshot)
	}
}

// fanOut hands the event to every registered sink. A failing sink is
// logged and skipped; it never blocks the reducer.
func (c *Client) fanOut(sinks []contract.EventSink, evt event.ChatEvent) {
	for _, sink := range sinks {
		if err := sink.Consume(context.Background(), evt); err != nil {
			c.log.Warn("Event sink failed", "error", err)
		}
	}
}

// Close tears down the channel and invalidates every in-flight
// completion. Idempotent; must run on unmount, logout, and session
// switch.
func (c *Client) Close() {
	c.mu.Lock()
	c.generation++
	ch := c.channel
	c.channel = nil
	c.timeline = projection.NewLog()
	c.mu.Unlock()

	if ch != nil {
		_ = ch.Close()
	}
}

// Snapshot returns the current immutable log value.
func (c *Client) Snapshot() projection.Log {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeline
}

// Self returns the identity bound by Authenticate.
func (c *Client) Self() domain.Sender {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self
}

func (c *Client) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
