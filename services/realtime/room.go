package realtime

import (
	"encoding/json"
	"log"
	"math/rand"
	"time"

	redis_models "noodleio/models/redis"
)

// worldSyncInterval is how often a room re-broadcasts the full membership
// snapshot. Clients prune their remote trackers against snapshots only, so
// this bounds how long a departed player stays on screen.
const worldSyncInterval = time.Second

// Room serves the position feed for one game session. All mutation goes
// through the room's single goroutine, so command application, win
// detection and broadcasting never race; the network read pumps only ever
// enqueue into the channels below.
type Room struct {
	sessionID string
	store     Store
	fin       Finisher

	clients  map[string]*ClientConn // keyed by player id
	joinCh   chan joinRequest
	leaveCh  chan string
	commands chan command
	done     chan struct{}

	food  FoodState
	rng   *rand.Rand
	ended bool

	// onIdle fires when the session has ended and the last subscriber is
	// gone; the hub uses it to reap the room.
	onIdle func()
}

type joinRequest struct {
	playerID string
	conn     *ClientConn
}

type command struct {
	playerID string
	dir      string
	conn     *ClientConn // move_result goes back to the issuer only
}

func newRoom(sessionID string, store Store, fin Finisher) *Room {
	return &Room{
		sessionID: sessionID,
		store:     store,
		fin:       fin,
		clients:   make(map[string]*ClientConn),
		joinCh:    make(chan joinRequest, 16),
		leaveCh:   make(chan string, 16),
		commands:  make(chan command, 256),
		done:      make(chan struct{}),
	}
}

func (r *Room) run() {
	session, err := r.store.GetSessionState(r.sessionID)
	if err != nil {
		log.Printf("Room %s: cannot load session state: %v", r.sessionID, err)
		close(r.done)
		r.drainJoins(nil)
		return
	}
	r.ended = session.Ended
	r.rng = rand.New(rand.NewSource(int64(len(r.sessionID)) * 7919))
	r.respawnFood(session)

	ticker := time.NewTicker(worldSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case req := <-r.joinCh:
			r.handleJoin(req, session)
		case playerID := <-r.leaveCh:
			if c, ok := r.clients[playerID]; ok {
				c.Close()
				delete(r.clients, playerID)
			}
			if r.ended && len(r.clients) == 0 {
				if r.onIdle != nil {
					r.onIdle()
				}
				r.drainJoins(session)
				return
			}
		case cmd := <-r.commands:
			r.handleCommand(cmd, session)
		case <-ticker.C:
			if len(r.clients) > 0 && !r.ended {
				r.broadcastWorld()
			}
		case <-r.done:
			for _, c := range r.clients {
				c.Close()
			}
			r.drainJoins(session)
			return
		}
	}
}

// drainJoins services subscribe requests that raced the room's exit: each
// one gets the final replay, then its connection is closed so writePump
// flushes and hangs up instead of leaving the subscriber waiting.
func (r *Room) drainJoins(session *redis_models.SessionState) {
	for {
		select {
		case req := <-r.joinCh:
			if session != nil {
				r.handleJoin(req, session)
			}
			req.conn.Close()
		default:
			return
		}
	}
}

// handleJoin registers the connection and replays the current world: the
// session, the full membership snapshot and the food, in that order. This
// is the initial load the play screen builds its first frame from.
func (r *Room) handleJoin(req joinRequest, session *redis_models.SessionState) {
	if old, ok := r.clients[req.playerID]; ok {
		old.Close()
	}
	r.clients[req.playerID] = req.conn

	req.conn.Enqueue(marshalEvent(ServerEvent{Type: EventSession, Session: session}))

	states, err := r.store.GetSessionPlayerStates(r.sessionID)
	if err != nil {
		log.Printf("Room %s: error loading player states: %v", r.sessionID, err)
	}
	req.conn.Enqueue(marshalEvent(ServerEvent{Type: EventWorldState, Players: states}))
	req.conn.Enqueue(marshalEvent(ServerEvent{Type: EventFood, Food: &r.food}))

	if r.ended {
		req.conn.Enqueue(marshalEvent(ServerEvent{Type: EventGameOver}))
	}
}

// broadcastWorld pushes the full membership snapshot to every subscriber.
// Incremental player_state events carry the moves in between; only these
// snapshots carry membership.
func (r *Room) broadcastWorld() {
	states, err := r.store.GetSessionPlayerStates(r.sessionID)
	if err != nil {
		log.Printf("Room %s: error loading player states: %v", r.sessionID, err)
		return
	}
	r.broadcast(ServerEvent{Type: EventWorldState, Players: states})
}

func (r *Room) handleCommand(cmd command, session *redis_models.SessionState) {
	if r.ended {
		cmd.conn.Enqueue(marshalEvent(ServerEvent{Type: EventMoveResult,
			MoveResult: &MoveResult{Success: false, Message: "Game session has ended"}}))
		return
	}

	state, result, err := applyMove(r.store, session, cmd.playerID, cmd.dir)
	if err != nil {
		log.Printf("Room %s: move error for %s: %v", r.sessionID, cmd.playerID, err)
	}
	cmd.conn.Enqueue(marshalEvent(ServerEvent{Type: EventMoveResult, MoveResult: result}))
	if state == nil {
		return
	}

	if r.nearFood(state) {
		state.Score++
		if err := r.store.SavePlayerGameState(state); err != nil {
			log.Printf("Room %s: error saving score for %s: %v", r.sessionID, cmd.playerID, err)
		}
		r.respawnFood(session)
		r.broadcast(ServerEvent{Type: EventFood, Food: &r.food})
	}

	r.broadcast(ServerEvent{Type: EventPlayerState, PlayerState: state})

	if state.Score >= session.WinningScore {
		r.finish(session)
	}
}

// finish flips the session to ended and tells everyone. FinishSession is
// exactly-once at the store; only the flipping caller broadcasts.
func (r *Room) finish(session *redis_models.SessionState) {
	flipped, err := r.fin.FinishSession(r.sessionID)
	if err != nil {
		log.Printf("Room %s: error finishing session: %v", r.sessionID, err)
		return
	}
	if !flipped {
		r.ended = true
		return
	}

	r.ended = true
	session.Ended = true
	r.broadcast(ServerEvent{Type: EventSession, Session: session})
	r.broadcast(ServerEvent{Type: EventGameOver})
}

func (r *Room) nearFood(state *redis_models.PlayerGameState) bool {
	dx := state.XPos - r.food.XPos
	dy := state.YPos - r.food.YPos
	return dx*dx+dy*dy <= PickupRadius*PickupRadius
}

func (r *Room) respawnFood(session *redis_models.SessionState) {
	r.food = FoodState{
		XPos: r.rng.Float64() * float64(session.MapWidth),
		YPos: r.rng.Float64() * float64(session.MapHeight),
	}
}

func (r *Room) broadcast(ev ServerEvent) {
	payload := marshalEvent(ev)
	for _, c := range r.clients {
		c.Enqueue(payload)
	}
}

func marshalEvent(ev ServerEvent) []byte {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error marshaling feed event: %v", err)
		return []byte(`{}`)
	}
	return b
}
