package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"fairchat/auth"
	"fairchat/chatclient"
	"fairchat/domain"
	"fairchat/mocks"
	"fairchat/projection"
	"fairchat/repositories"
	"fairchat/transport"
)

// fakeGateway is an in-process chat gateway speaking the real wire
// protocol: it replays an empty history on connect and answers every
// message-send with a message-created push.
type fakeGateway struct {
	t        *testing.T
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	require.NoError(g.t, err)
	g.conns <- conn

	g.push(conn, `{"event":"history-replay","payload":[]}`)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame struct {
			Event   string `json:"event"`
			Payload struct {
				Content string `json:"content"`
			} `json:"payload"`
		}
		require.NoError(g.t, json.Unmarshal(data, &frame))
		require.Equal(g.t, "message-send", frame.Event)

		g.push(conn, fmt.Sprintf(
			`{"event":"message-created","payload":{"id":"m1","sender_id":"u1","role":"user","content":%q,"created_at":%q}}`,
			frame.Payload.Content, time.Now().UTC().Format(time.RFC3339Nano)))
	}
}

func (g *fakeGateway) push(conn *websocket.Conn, frame string) {
	require.NoError(g.t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func signedToken(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
	}).SignedString([]byte("integration-secret"))
	require.NoError(t, err)
	return token
}

// Test_Scenario drives a message through the whole client stack over a
// real websocket: replay, send, pushed creation, edit, redundant update
// push, delete, redundant delete push, with the badger cache tracking
// every snapshot along the way.
func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Reduced to 16 Mo for testing (avoid 20 Go of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	t.Cleanup(func() { db.Close() })
	cache := repositories.NewHistoryCache(db, log, lo.ToPtr(100))

	gw := &fakeGateway{t: t, conns: make(chan *websocket.Conn, 1)}
	srv := httptest.NewServer(gw)
	defer srv.Close()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	messages := mocks.NewMockMessageAPI(ctrl)
	notifier := mocks.NewMockNotificationPort(ctrl)

	session := domain.SessionID("s1")
	dialer := transport.NewDialer(log, transport.Options{
		GatewayURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
	})
	client := chatclient.NewClient(log, dialer, messages, notifier)
	defer client.Close()

	snapshots := make(chan projection.Log, 64)
	client.OnChange(func(snapshot projection.Log) {
		req.NoError(cache.ReplaceHistory(session, snapshot.Messages()))
		snapshots <- snapshot
	})

	waitFor := func(predicate func(projection.Log) bool) projection.Log {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case snapshot := <-snapshots:
				if predicate(snapshot) {
					return snapshot
				}
			case <-deadline:
				t.Fatal("no matching snapshot in time")
				return projection.Log{}
			}
		}
	}

	// 1. Authenticate and bind: the channel opens and replays history.
	req.NoError(client.Authenticate(ctx, auth.Credential(signedToken(t, "u1", "user"))))
	req.NoError(client.Bind(ctx, session))
	waitFor(func(snapshot projection.Log) bool { return snapshot.Len() == 0 })
	conn := <-gw.conns

	// 2. Send: the transcript stays empty until the pushed creation.
	req.NoError(client.Send(ctx, domain.SendMessageCommand{Session: session, Content: "hello"}))
	created := waitFor(func(snapshot projection.Log) bool { return snapshot.Len() == 1 })
	m1, ok := created.Get("m1")
	req.True(ok)
	req.Equal("hello", m1.Content)
	req.Equal("u1", m1.Sender.ID)

	cached, err := cache.GetHistory(session)
	req.NoError(err)
	req.Len(cached, 1)

	// 3. Edit: the confirmed row lands first, the push is a no-op.
	confirmed := m1
	confirmed.Content = "hello there"
	messages.EXPECT().
		EditMessage(gomock.Any(), session, "m1", "hello there").
		Return(confirmed, nil).
		Times(1)
	req.NoError(client.Edit(ctx, domain.EditMessageCommand{
		Session: session, MessageID: "m1", Content: "hello there",
	}))
	waitFor(func(snapshot projection.Log) bool {
		m, ok := snapshot.Get("m1")
		return ok && m.Content == "hello there"
	})

	gw.push(conn, `{"event":"message-updated","payload":{"id":"m1","content":"hello there"}}`)

	// 4. Delete, then the redundant push; both converge on empty.
	messages.EXPECT().DeleteMessage(gomock.Any(), session, "m1").Return(nil).Times(1)
	req.NoError(client.Delete(ctx, domain.DeleteMessageCommand{Session: session, MessageID: "m1"}))
	waitFor(func(snapshot projection.Log) bool { return snapshot.Len() == 0 })

	gw.push(conn, `{"event":"message-deleted","payload":{"message_id":"m1"}}`)

	// Give the redundant pushes a moment to flow through before the
	// final assertions; they must not resurrect the message.
	time.Sleep(100 * time.Millisecond)
	req.Equal(0, client.Snapshot().Len())

	cached, err = cache.GetHistory(session)
	req.NoError(err)
	req.Empty(cached)
}
