package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Cleaner drops the volatile store keys of a finished session.
type Cleaner interface {
	CleanupSession(sessionID string) error
}

// Hub hands out one Room per live game session.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	store   Store
	fin     Finisher
	cleaner Cleaner // optional
}

func NewHub(store Store, fin Finisher, cleaner Cleaner) *Hub {
	return &Hub{
		rooms:   make(map[string]*Room),
		store:   store,
		fin:     fin,
		cleaner: cleaner,
	}
}

func (h *Hub) getOrCreateRoom(sessionID string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[sessionID]
	if !ok {
		r = newRoom(sessionID, h.store, h.fin)
		r.onIdle = func() { h.reapRoom(sessionID) }
		h.rooms[sessionID] = r
		go r.run()
	}
	return r
}

// reapRoom forgets an ended room whose last subscriber has left and drops
// the session's volatile keys. The session row in PostgreSQL keeps the
// final result. Called synchronously from the room goroutine before run
// returns, so a later HandleWS always gets a fresh room instead of the
// dead one.
func (h *Hub) reapRoom(sessionID string) {
	h.mu.Lock()
	delete(h.rooms, sessionID)
	h.mu.Unlock()

	if h.cleaner != nil {
		if err := h.cleaner.CleanupSession(sessionID); err != nil {
			log.Printf("Error cleaning up session %s: %v", sessionID, err)
		}
	}
}

// CloseRoom tears a room down once its session is finished and cleaned up.
func (h *Hub) CloseRoom(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[sessionID]; ok {
		close(r.done)
		delete(h.rooms, sessionID)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWS upgrades a feed subscription: GET /ws?session_id=...&player_id=...
// The player must already have a state in the session (seeded at session
// start), otherwise the subscription is rejected before the upgrade.
func (h *Hub) HandleWS(c *gin.Context) {
	sessionID := c.Query("session_id")
	playerID := c.Query("player_id")
	if sessionID == "" || playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and player_id are required"})
		return
	}

	if _, err := h.store.GetSessionState(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game session not found"})
		return
	}
	if _, err := h.store.GetPlayerGameState(sessionID, playerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found in this game session"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Feed upgrade error: %v", err)
		return
	}

	room := h.getOrCreateRoom(sessionID)
	conn := NewClientConn(ws)
	room.joinCh <- joinRequest{playerID: playerID, conn: conn}

	go conn.writePump()
	go conn.readPump(room, playerID)
}

// ClientConn wraps one subscriber socket with a buffered send queue so a
// slow reader never blocks the room goroutine.
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex // guards closed and the send on send
	closed bool
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue queues a message for delivery, dropping it if the queue is full or
// the connection is already closed. A command queued before a disconnect can
// still be serviced by the room after it, so Enqueue must tolerate a closed
// conn. Authoritative state is re-broadcast on every change, so a dropped
// frame heals on the next one.
func (c *ClientConn) Enqueue(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// Close is idempotent; the room and both pumps may all call it. Closing send
// under mu means no Enqueue can be mid-send when it closes; writePump drains
// what is already queued before hanging up.
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.ws != nil {
		_ = c.ws.Close()
	}
}

func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *ClientConn) readPump(room *Room, playerID string) {
	defer c.ws.Close()
	defer func() { room.leaveCh <- playerID }()
	c.ws.SetReadLimit(1 << 20)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if strings.ToLower(msg.Type) != "move" {
			continue
		}
		select {
		case room.commands <- command{playerID: playerID, dir: strings.ToLower(msg.Command), conn: c}:
		default:
			// Command backpressure: drop rather than stall the socket. The
			// client re-evaluates drift on its next sync tick anyway.
		}
	}
}
