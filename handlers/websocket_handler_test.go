package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/poker-club/broadcast"
	"github.com/Dosada05/poker-club/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketHandler_ReceivesResultsUpdates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := broadcast.NewHub(testLogger())
	go hub.Run(ctx)

	h := NewWebSocketHandler(hub, []string{"*"}, testLogger())
	r := chi.NewRouter()
	r.Get("/ws/tournaments/{tournamentID}", h.ServeTournament)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tournaments/t1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	room := broadcast.TournamentRoom("t1")
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, 2*time.Second, 10*time.Millisecond)

	m := metrics.NewMock()
	broadcast.NewNotifier(hub, m).ResultsUpdated("t1")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg broadcast.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, broadcast.MessageResultsUpdated, msg.Type)
	assert.Equal(t, room, msg.RoomID)
	assert.Equal(t, 1, m.BroadcastsSent(), "nobody listens on the scoreboard room")
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://club.example"})

	req := httptest.NewRequest(http.MethodGet, "/ws/scoreboard", nil)
	assert.True(t, check(req), "non-browser clients send no Origin")

	req.Header.Set("Origin", "https://club.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
