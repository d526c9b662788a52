package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"fairchat/domain/event"
	"fairchat/errors"
)

// gateway is a scripted in-process chat gateway for channel tests.
type gateway struct {
	t        *testing.T
	upgrader websocket.Upgrader
	script   func(conn *websocket.Conn)
	auth     chan string
	sessions chan string
}

func newGateway(t *testing.T, script func(conn *websocket.Conn)) *gateway {
	return &gateway{
		t:        t,
		script:   script,
		auth:     make(chan string, 8),
		sessions: make(chan string, 8),
	}
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.auth <- r.Header.Get("Authorization")
	g.sessions <- r.URL.Query().Get("session_id")
	conn, err := g.upgrader.Upgrade(w, r, nil)
	require.NoError(g.t, err)
	defer conn.Close()
	g.script(conn)
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func push(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func awaitEvent(t *testing.T, events <-chan event.ChatEvent) event.ChatEvent {
	t.Helper()
	select {
	case evt, ok := <-events:
		require.True(t, ok, "event channel closed early")
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("no event arrived in time")
		return nil
	}
}

func TestChannel_OpenTriggersHistoryReplayAndAuth(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	hold := make(chan struct{})
	gw := newGateway(t, func(conn *websocket.Conn) {
		push(t, conn, `{"event":"history-replay","payload":[]}`)
		<-hold
	})
	srv := httptest.NewServer(gw)
	defer srv.Close()
	defer close(hold)

	dialer := NewDialer(log, Options{GatewayURL: wsURL(srv)})
	ch, err := dialer.Dial(context.Background(), "s1", "token-123")
	req.NoError(err)
	defer ch.Close()

	req.Equal("Bearer token-123", <-gw.auth)
	req.Equal("s1", <-gw.sessions)

	evt := awaitEvent(t, ch.Events())
	replay, ok := evt.(event.HistoryReplayed)
	req.True(ok)
	req.Empty(replay.Messages)
}

func TestChannel_SendReachesGatewayAsSendFrame(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	frames := make(chan []byte, 1)
	gw := newGateway(t, func(conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err == nil {
			frames <- data
		}
	})
	srv := httptest.NewServer(gw)
	defer srv.Close()

	dialer := NewDialer(log, Options{GatewayURL: wsURL(srv)})
	ch, err := dialer.Dial(context.Background(), "s1", "token-123")
	req.NoError(err)
	defer ch.Close()

	req.NoError(ch.Send(context.Background(), "hello"))

	select {
	case data := <-frames:
		var env envelope
		req.NoError(json.Unmarshal(data, &env))
		req.Equal(frameMessageSend, env.Event)
		var send wireSend
		req.NoError(json.Unmarshal(env.Payload, &send))
		req.Equal("hello", send.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("gateway never received the send frame")
	}
}

func TestChannel_ReconnectsAfterDrop(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	var connects atomic.Int32
	hold := make(chan struct{})
	gw := newGateway(t, nil)
	gw.script = func(conn *websocket.Conn) {
		if connects.Add(1) == 1 {
			// Drop immediately; the channel must come back on its own.
			return
		}
		push(t, conn, `{"event":"history-replay","payload":[]}`)
		<-hold
	}
	srv := httptest.NewServer(gw)
	defer srv.Close()
	defer close(hold)

	dialer := NewDialer(log, Options{
		GatewayURL: wsURL(srv),
		Backoff:    []time.Duration{10 * time.Millisecond},
	})
	ch, err := dialer.Dial(context.Background(), "s1", "token-123")
	req.NoError(err)
	defer ch.Close()

	evt := awaitEvent(t, ch.Events())
	_, ok := evt.(event.HistoryReplayed)
	req.True(ok)
	req.GreaterOrEqual(connects.Load(), int32(2))
}

func TestChannel_UnknownFramesAreDropped(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	hold := make(chan struct{})
	gw := newGateway(t, func(conn *websocket.Conn) {
		push(t, conn, `{"event":"presence-ping","payload":{}}`)
		push(t, conn, `{"event":"message-deleted","payload":{"message_id":"m1"}}`)
		<-hold
	})
	srv := httptest.NewServer(gw)
	defer srv.Close()
	defer close(hold)

	dialer := NewDialer(log, Options{GatewayURL: wsURL(srv)})
	ch, err := dialer.Dial(context.Background(), "s1", "token-123")
	req.NoError(err)
	defer ch.Close()

	evt := awaitEvent(t, ch.Events())
	deleted, ok := evt.(event.MessageDeleted)
	req.True(ok)
	req.Equal("m1", deleted.MessageID)
}

func TestChannel_CloseIsIdempotentAndEndsEventStream(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	gw := newGateway(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	srv := httptest.NewServer(gw)
	defer srv.Close()

	dialer := NewDialer(log, Options{GatewayURL: wsURL(srv)})
	ch, err := dialer.Dial(context.Background(), "s1", "token-123")
	req.NoError(err)

	req.NoError(ch.Close())
	req.NoError(ch.Close())

	select {
	case _, open := <-ch.Events():
		req.False(open)
	case <-time.After(2 * time.Second):
		t.Fatal("event channel did not close")
	}

	req.ErrorIs(ch.Send(context.Background(), "late"), errors.ErrChannelClosed)
}
