package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"fairchat/auth"
	"fairchat/domain"
	"fairchat/projection"
)

type testMessageLifecycleSuite struct {
	BaseSuite
}

func TestMessageLifecycleSuite(t *testing.T) {
	suite.Run(t, &testMessageLifecycleSuite{})
}

// TestFullMessageLifecycle walks a message through the whole platform:
// send over the live gateway, edit and delete through the REST API, and
// verify the pushed events converge on an empty transcript.
func (s *testMessageLifecycleSuite) TestFullMessageLifecycle() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, snapshots := s.NewLiveClient()
	defer client.Close()

	session := domain.SessionID(s.Config.SessionID)
	content := "e2e probe " + uuid.New().String()
	var probe domain.Message

	s.Step("Connect and replay history")
	s.Require().NoError(client.Authenticate(ctx, auth.Credential(s.Config.Token)))
	s.Require().NoError(client.Bind(ctx, session))
	s.WaitFor(snapshots, 15*time.Second, func(projection.Log) bool {
		// The first snapshot is the history replay, whatever it holds.
		return true
	})

	s.Step("Send a message and wait for the created push")
	s.Require().NoError(client.Send(ctx, domain.SendMessageCommand{Session: session, Content: content}))
	s.WaitFor(snapshots, 15*time.Second, func(snapshot projection.Log) bool {
		for _, m := range snapshot.Messages() {
			if m.Content == content {
				probe = m
				return true
			}
		}
		return false
	})
	s.Require().Equal(client.Self().ID, probe.Sender.ID)

	s.Step("Edit the message through the REST API")
	edited := content + " (edited)"
	s.Require().NoError(client.Edit(ctx, domain.EditMessageCommand{
		Session: session, MessageID: probe.ID, Content: edited,
	}))
	s.WaitFor(snapshots, 15*time.Second, func(snapshot projection.Log) bool {
		m, ok := snapshot.Get(probe.ID)
		return ok && m.Content == edited
	})

	s.Step("Delete the message and verify it leaves the transcript")
	s.Require().NoError(client.Delete(ctx, domain.DeleteMessageCommand{
		Session: session, MessageID: probe.ID,
	}))
	s.WaitFor(snapshots, 15*time.Second, func(snapshot projection.Log) bool {
		_, ok := snapshot.Get(probe.ID)
		return !ok
	})
}
