package broadcast

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Dosada05/poker-club/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub, cancel := startStoppableHub(t)
	t.Cleanup(cancel)
	return hub
}

func startStoppableHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestHubBroadcastToRoom(t *testing.T) {
	hub := startHub(t)

	inRoom := NewClient(hub, nil, TournamentRoom("t1"))
	otherRoom := NewClient(hub, nil, TournamentRoom("t2"))
	require.True(t, hub.Join(inRoom))
	require.True(t, hub.Join(otherRoom))

	require.Eventually(t, func() bool { return hub.RoomSize(TournamentRoom("t1")) == 1 }, time.Second, 10*time.Millisecond)

	sent := hub.BroadcastToRoom(TournamentRoom("t1"), Message{Type: "PING"})
	assert.Equal(t, 1, sent)
	assert.Equal(t, "PING", receive(t, inRoom).Type)
	assert.Len(t, otherRoom.Send, 0)
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := startHub(t)

	c := NewClient(hub, nil, ScoreboardRoom)
	require.True(t, hub.Join(c))
	hub.Leave(c)

	require.Eventually(t, func() bool { return hub.RoomSize(ScoreboardRoom) == 0 }, time.Second, 10*time.Millisecond)
	_, ok := <-c.Send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.BroadcastToRoom(ScoreboardRoom, Message{Type: "X"}))
}

func TestNotifierResultsUpdated(t *testing.T) {
	hub := startHub(t)
	m := metrics.NewMock()
	n := NewNotifier(hub, m)

	tournamentViewer := NewClient(hub, nil, TournamentRoom("abc"))
	scoreboardViewer := NewClient(hub, nil, ScoreboardRoom)
	require.True(t, hub.Join(tournamentViewer))
	require.True(t, hub.Join(scoreboardViewer))
	require.Eventually(t, func() bool { return hub.RoomSize(ScoreboardRoom) == 1 }, time.Second, 10*time.Millisecond)

	n.ResultsUpdated("abc")

	msg := receive(t, tournamentViewer)
	assert.Equal(t, MessageResultsUpdated, msg.Type)
	assert.Equal(t, map[string]interface{}{"tournament_id": "abc"}, msg.Payload)
	assert.Equal(t, MessageScoreboardUpdated, receive(t, scoreboardViewer).Type)
	assert.Equal(t, 2, m.BroadcastsSent())
}

func TestNotifierWithoutViewers(t *testing.T) {
	hub := startHub(t)
	m := metrics.NewMock()

	NewNotifier(hub, m).ResultsUpdated("nobody-watching")

	assert.Equal(t, 0, m.BroadcastsSent())
}

func TestHubStoppedDoesNotBlockClients(t *testing.T) {
	hub, stop := startStoppableHub(t)

	c := NewClient(hub, nil, ScoreboardRoom)
	require.True(t, hub.Join(c))
	require.Eventually(t, func() bool { return hub.RoomSize(ScoreboardRoom) == 1 }, time.Second, 10*time.Millisecond)

	stop()
	require.Eventually(t, func() bool { return hub.RoomSize(ScoreboardRoom) == 0 }, time.Second, 10*time.Millisecond)
	_, ok := <-c.Send
	assert.False(t, ok)

	left := make(chan struct{})
	go func() {
		hub.Leave(c)
		assert.False(t, hub.Join(NewClient(hub, nil, ScoreboardRoom)))
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("Leave/Join blocked after the hub stopped")
	}
}
