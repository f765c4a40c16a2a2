package realtime

import (
	"encoding/json"
	"math/rand"
	"testing"

	redis_models "noodleio/models/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFinisher flips the session exactly once, like the sync manager's
// guarded update.
type fakeFinisher struct {
	calls int
}

func (f *fakeFinisher) FinishSession(sessionID string) (bool, error) {
	f.calls++
	return f.calls == 1, nil
}

func drainConn(t *testing.T, c *ClientConn) []ServerEvent {
	t.Helper()
	var out []ServerEvent
	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return out
			}
			var ev ServerEvent
			require.NoError(t, json.Unmarshal(payload, &ev))
			out = append(out, ev)
		default:
			return out
		}
	}
}

func eventTypes(events []ServerEvent) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func newTestRoom(store *memStore, fin Finisher) *Room {
	r := newRoom("s1", store, fin)
	r.rng = rand.New(rand.NewSource(1))
	return r
}

func TestHandleJoinReplaysWorldState(t *testing.T) {
	store := newMemStore()
	session := testSession()
	store.sessions["s1"] = session
	seedPlayer(store, 540, 540)

	r := newTestRoom(store, &fakeFinisher{})
	r.respawnFood(session)

	conn := NewClientConn(nil)
	r.handleJoin(joinRequest{playerID: "p1", conn: conn}, session)

	events := drainConn(t, conn)
	assert.Equal(t, []string{EventSession, EventWorldState, EventFood}, eventTypes(events))
	require.Len(t, events[1].Players, 1)
	assert.Equal(t, "p1", events[1].Players[0].PlayerID)
}

func TestHandleJoinOnEndedSessionReplaysGameOver(t *testing.T) {
	store := newMemStore()
	session := testSession()
	session.Ended = true
	store.sessions["s1"] = session

	r := newTestRoom(store, &fakeFinisher{})
	r.ended = true
	r.respawnFood(session)

	conn := NewClientConn(nil)
	r.handleJoin(joinRequest{playerID: "p1", conn: conn}, session)

	events := drainConn(t, conn)
	require.NotEmpty(t, events)
	assert.Equal(t, EventGameOver, events[len(events)-1].Type)
}

func TestWinningScoreEndsSessionExactlyOnce(t *testing.T) {
	store := newMemStore()
	session := testSession()
	session.WinningScore = 1
	store.sessions["s1"] = session
	seedPlayer(store, 540, 540)

	fin := &fakeFinisher{}
	r := newTestRoom(store, fin)

	conn := NewClientConn(nil)
	r.clients["p1"] = conn

	// Food sits exactly one move step to the right.
	r.food = FoodState{XPos: 548, YPos: 540}

	r.handleCommand(command{playerID: "p1", dir: DirRight, conn: conn}, session)

	assert.True(t, r.ended)
	assert.True(t, session.Ended)
	assert.Equal(t, 1, fin.calls)

	events := drainConn(t, conn)
	types := eventTypes(events)
	assert.Contains(t, types, EventMoveResult)
	assert.Contains(t, types, EventGameOver)
	// The session push carries the ended flag before the game_over marker.
	var sawEndedSession bool
	for _, ev := range events {
		if ev.Type == EventSession && ev.Session != nil && ev.Session.Ended {
			sawEndedSession = true
		}
	}
	assert.True(t, sawEndedSession)

	saved, err := store.GetPlayerGameState("s1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Score)
}

func TestEndedRoomRejectsCommands(t *testing.T) {
	store := newMemStore()
	session := testSession()
	store.sessions["s1"] = session
	seedPlayer(store, 540, 540)

	r := newTestRoom(store, &fakeFinisher{})
	r.ended = true

	conn := NewClientConn(nil)
	r.handleCommand(command{playerID: "p1", dir: DirUp, conn: conn}, session)

	events := drainConn(t, conn)
	require.Len(t, events, 1)
	assert.Equal(t, EventMoveResult, events[0].Type)
	assert.False(t, events[0].MoveResult.Success)

	// The position was not touched.
	saved, _ := store.GetPlayerGameState("s1", "p1")
	assert.Equal(t, 540.0, saved.YPos)
}

func TestWorldSnapshotListsEveryPlayer(t *testing.T) {
	store := newMemStore()
	session := testSession()
	store.sessions["s1"] = session
	seedPlayer(store, 540, 540)
	store.SavePlayerGameState(&redis_models.PlayerGameState{
		PlayerID:  "p2",
		SessionID: "s1",
		XPos:      100,
		YPos:      100,
	})

	r := newTestRoom(store, &fakeFinisher{})
	conn := NewClientConn(nil)
	r.clients["p1"] = conn

	r.broadcastWorld()

	events := drainConn(t, conn)
	require.Len(t, events, 1)
	assert.Equal(t, EventWorldState, events[0].Type)
	require.Len(t, events[0].Players, 2)

	ids := map[string]bool{}
	for _, p := range events[0].Players {
		ids[p.PlayerID] = true
	}
	assert.True(t, ids["p1"])
	assert.True(t, ids["p2"])
}

func TestCommandFromReplacedConnIsServicedSafely(t *testing.T) {
	store := newMemStore()
	session := testSession()
	store.sessions["s1"] = session
	seedPlayer(store, 540, 540)

	r := newTestRoom(store, &fakeFinisher{})
	r.food = FoodState{XPos: 0, YPos: 0}

	old := NewClientConn(nil)
	r.handleJoin(joinRequest{playerID: "p1", conn: old}, session)

	// A rejoin for the same player closes the previous connection.
	fresh := NewClientConn(nil)
	r.handleJoin(joinRequest{playerID: "p1", conn: fresh}, session)

	// A command queued before the old connection dropped is still serviced;
	// its move_result lands on the closed conn and is dropped, not sent.
	r.handleCommand(command{playerID: "p1", dir: DirRight, conn: old}, session)

	saved, err := store.GetPlayerGameState("s1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 548.0, saved.XPos)

	assert.Contains(t, eventTypes(drainConn(t, fresh)), EventPlayerState)
}

func TestJoinRacingRoomExitGetsReplayAndClose(t *testing.T) {
	store := newMemStore()
	session := testSession()
	session.Ended = true
	store.sessions["s1"] = session
	seedPlayer(store, 540, 540)

	r := newTestRoom(store, &fakeFinisher{})
	r.ended = true
	r.respawnFood(session)

	conn := NewClientConn(nil)
	r.joinCh <- joinRequest{playerID: "p9", conn: conn}

	r.drainJoins(session)

	events := drainConn(t, conn)
	types := eventTypes(events)
	assert.Contains(t, types, EventSession)
	assert.Contains(t, types, EventGameOver)
	assert.True(t, conn.closed)
}

func TestFoodPickupIncrementsScoreAndRespawns(t *testing.T) {
	store := newMemStore()
	session := testSession()
	store.sessions["s1"] = session
	seedPlayer(store, 540, 540)

	r := newTestRoom(store, &fakeFinisher{})
	conn := NewClientConn(nil)
	r.clients["p1"] = conn
	r.food = FoodState{XPos: 540, YPos: 548}

	r.handleCommand(command{playerID: "p1", dir: DirUp, conn: conn}, session)

	saved, err := store.GetPlayerGameState("s1", "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Score)
	assert.False(t, r.ended)

	// The food moved somewhere else afterward.
	moved := r.food.XPos != 540 || r.food.YPos != 548
	assert.True(t, moved)
}
