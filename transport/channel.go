package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fairchat/contract"
	"fairchat/domain"
	"fairchat/domain/event"
	"fairchat/errors"
)

// Options tunes the websocket channel.
type Options struct {
	// GatewayURL is the ws:// or wss:// endpoint of the chat gateway.
	GatewayURL       string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	EventBuffer      int
	// Backoff is the reconnect schedule; the last entry repeats.
	Backoff []time.Duration
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout == 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.EventBuffer == 0 {
		o.EventBuffer = 64
	}
	if len(o.Backoff) == 0 {
		o.Backoff = []time.Duration{
			500 * time.Millisecond,
			time.Second,
			2 * time.Second,
			5 * time.Second,
		}
	}
	return o
}

// Dialer opens websocket channels against the chat gateway.
type Dialer struct {
	log  *slog.Logger
	opts Options
}

func NewDialer(log *slog.Logger, opts Options) *Dialer {
	return &Dialer{log: log, opts: opts.withDefaults()}
}

// Dial validates the endpoint and hands back a live Channel.
// Network failures are not surfaced here: the channel keeps retrying
// on its own schedule until Close is called. Every successful connect
// makes the gateway replay the session history, which resets the
// consumer's log through the history-replay event.
func (d *Dialer) Dial(_ context.Context, session domain.SessionID, credential string) (contract.Channel, error) {
	endpoint, err := url.Parse(d.opts.GatewayURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	query := endpoint.Query()
	query.Set("session_id", string(session))
	endpoint.RawQuery = query.Encode()

	ctx, cancel := context.WithCancel(context.Background())
	ch := &Channel{
		log:        d.log,
		opts:       d.opts,
		endpoint:   endpoint.String(),
		session:    session,
		credential: credential,
		events:     make(chan event.ChatEvent, d.opts.EventBuffer),
		outbound:   make(chan []byte, d.opts.EventBuffer),
		ctx:        ctx,
		cancel:     cancel,
	}
	go ch.run()
	return ch, nil
}

// Channel is one live connection to the gateway, scoped to a session
// and a bearer credential. Writes are serialized through a single
// writer goroutine; reads are decoded in arrival order and never
// reordered.
type Channel struct {
	log        *slog.Logger
	opts       Options
	endpoint   string
	session    domain.SessionID
	credential string
	events     chan event.ChatEvent
	outbound   chan []byte
	ctx        context.Context
	cancel     context.CancelFunc
	closeOnce  sync.Once
}

func (c *Channel) Events() <-chan event.ChatEvent { return c.events }

// Send enqueues a message-send frame. Dispatch is fire-and-forget:
// the log only changes when the gateway pushes message-created back.
func (c *Channel) Send(ctx context.Context, content string) error {
	select {
	case <-c.ctx.Done():
		return errors.ErrChannelClosed
	default:
	}
	frame, err := encodeSend(content)
	if err != nil {
		return err
	}
	select {
	case c.outbound <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return errors.ErrChannelClosed
	}
}

// Close tears the channel down. Idempotent; must run on every exit
// path of the owning view.
func (c *Channel) Close() error {
	c.closeOnce.Do(c.cancel)
	return nil
}

// run owns the connect/serve/reconnect cycle until Close.
func (c *Channel) run() {
	defer close(c.events)
	attempt := 0
	for {
		if c.ctx.Err() != nil {
			return
		}
		conn, err := c.connect()
		if err != nil {
			delay := c.backoffForAttempt(attempt)
			attempt++
			c.log.Debug("Gateway dial failed, will retry",
				"session", c.session, "delay", delay, "error", err)
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0
		c.log.Debug("Channel connected", "session", c.session)
		c.serve(conn)
		if c.ctx.Err() != nil {
			return
		}
	}
}

func (c *Channel) connect() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.opts.HandshakeTimeout}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.credential)
	conn, resp, err := dialer.DialContext(c.ctx, c.endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	return conn, nil
}

// serve pumps one connection until it breaks or the channel closes.
func (c *Channel) serve(conn *websocket.Conn) {
	connCtx, stopWriter := context.WithCancel(c.ctx)
	writerDone := make(chan struct{})
	go c.writeLoop(connCtx, conn, writerDone)
	defer func() {
		stopWriter()
		<-writerDone
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				c.log.Debug("Channel read failed, reconnecting",
					"session", c.session, "error", err)
			}
			return
		}
		evt, err := decodeFrame(c.session, data)
		if err != nil {
			// Unknown or malformed frames are dropped; the closed
			// variant set is what the reducer understands.
			c.log.Debug("Dropping frame", "session", c.session, "error", err)
			continue
		}
		select {
		case c.events <- evt:
		case <-c.ctx.Done():
			return
		}
	}
}

// writeLoop is the single writer for the connection. Frames queued
// while disconnected stay in the outbound buffer for the next cycle.
func (c *Channel) writeLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		select {
		case frame := <-c.outbound:
			if err := conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("Channel write failed", "session", c.session, "error", err)
				return
			}
		case <-ctx.Done():
			if c.ctx.Err() != nil {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(c.opts.WriteTimeout))
			}
			return
		}
	}
}

func (c *Channel) backoffForAttempt(attempt int) time.Duration {
	if attempt < len(c.opts.Backoff) {
		return c.opts.Backoff[attempt]
	}
	return c.opts.Backoff[len(c.opts.Backoff)-1]
}
