package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"noodleio/game"
	redis_models "noodleio/models/redis"
	"noodleio/services/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedDecodesWorldSnapshots(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		ws.WriteJSON(realtime.ServerEvent{Type: realtime.EventWorldState, Players: []*redis_models.PlayerGameState{
			{PlayerID: "b1", SessionID: "s1", XPos: 10, YPos: 20, Score: 3},
			{PlayerID: "b2", SessionID: "s1", XPos: 30, YPos: 40, Score: 1},
		}})
		ws.WriteJSON(realtime.ServerEvent{Type: realtime.EventPlayerState, PlayerState: &redis_models.PlayerGameState{
			PlayerID: "b1", SessionID: "s1", XPos: 12, YPos: 20, Score: 3,
		}})
	}))
	defer srv.Close()

	queue := game.NewEventQueue(8)
	feed := NewFeed("ws"+strings.TrimPrefix(srv.URL, "http"), queue)
	require.NoError(t, feed.Connect("s1", "p1"))
	defer feed.Disconnect()

	var events []game.Event
	deadline := time.Now().Add(2 * time.Second)
	for len(events) < 2 && time.Now().Before(deadline) {
		events = append(events, queue.Drain()...)
		time.Sleep(10 * time.Millisecond)
	}
	require.Len(t, events, 2)

	assert.Equal(t, game.EventWorldState, events[0].Kind)
	require.Len(t, events[0].States, 2)
	assert.Equal(t, "b1", events[0].States[0].PlayerID)
	assert.Equal(t, game.Vec2{X: 10, Y: 20}, events[0].States[0].Pos)

	assert.Equal(t, game.EventPositionUpdated, events[1].Kind)
	assert.Equal(t, game.Vec2{X: 12, Y: 20}, events[1].State.Pos)
}
