package client

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"noodleio/game"
	"noodleio/services/realtime"

	"github.com/gorilla/websocket"
)

// Feed is the WebSocket position channel. It owns one connection per session
// and pushes decoded events onto the queue handed to NewFeed; the frame loop
// drains that queue. Implements game.PositionChannel.
type Feed struct {
	baseURL string
	queue   *game.EventQueue

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

// NewFeed takes the ws:// or wss:// base URL of the backend.
func NewFeed(baseURL string, queue *game.EventQueue) *Feed {
	return &Feed{
		baseURL: strings.TrimRight(baseURL, "/"),
		queue:   queue,
	}
}

// Connect dials the feed for one session. Connecting while already connected
// is a no-op.
func (f *Feed) Connect(sessionID, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn != nil {
		return nil
	}

	u := fmt.Sprintf("%s/ws?session_id=%s&player_id=%s",
		f.baseURL, url.QueryEscape(sessionID), url.QueryEscape(playerID))

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(u, nil)
	if err != nil {
		return fmt.Errorf("dialing feed: %w", err)
	}

	f.conn = conn
	f.done = make(chan struct{})
	go f.readLoop(conn, f.done)
	return nil
}

// Disconnect tears the connection down. Safe to call repeatedly and before
// Connect.
func (f *Feed) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn == nil {
		return nil
	}

	f.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := f.conn.Close()
	close(f.done)
	f.conn = nil
	f.done = nil
	return err
}

// readLoop decodes feed envelopes into typed events until the connection
// drops. Unknown envelope types are skipped.
func (f *Feed) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		var ev realtime.ServerEvent
		if err := conn.ReadJSON(&ev); err != nil {
			select {
			case <-done:
			default:
				game.Log.Debugw("feed read ended", "err", err)
			}
			return
		}

		switch ev.Type {
		case realtime.EventPlayerState:
			if ev.PlayerState == nil {
				continue
			}
			f.queue.Push(game.Event{
				Kind: game.EventPositionUpdated,
				State: &game.PlayerState{
					PlayerID:  ev.PlayerState.PlayerID,
					SessionID: ev.PlayerState.SessionID,
					Pos:       game.Vec2{X: ev.PlayerState.XPos, Y: ev.PlayerState.YPos},
					Score:     ev.PlayerState.Score,
				},
			})
		case realtime.EventWorldState:
			states := make([]*game.PlayerState, 0, len(ev.Players))
			for _, p := range ev.Players {
				if p == nil {
					continue
				}
				states = append(states, &game.PlayerState{
					PlayerID:  p.PlayerID,
					SessionID: p.SessionID,
					Pos:       game.Vec2{X: p.XPos, Y: p.YPos},
					Score:     p.Score,
				})
			}
			f.queue.Push(game.Event{Kind: game.EventWorldState, States: states})
		case realtime.EventSession:
			if ev.Session == nil {
				continue
			}
			f.queue.Push(game.Event{
				Kind: game.EventSessionChanged,
				Session: &game.Session{
					ID:           ev.Session.SessionID,
					LobbyID:      ev.Session.LobbyID,
					WinningScore: ev.Session.WinningScore,
					MapWidth:     float64(ev.Session.MapWidth),
					MapHeight:    float64(ev.Session.MapHeight),
					Ended:        ev.Session.Ended,
				},
			})
		case realtime.EventGameOver:
			f.queue.Push(game.Event{Kind: game.EventGameOver})
		case realtime.EventMoveResult:
			// Rejected moves are absorbed; drift re-evaluation self-corrects.
			if ev.MoveResult != nil && !ev.MoveResult.Success {
				game.Log.Debugw("move rejected", "reason", ev.MoveResult.Message)
			}
		}
	}
}

func (f *Feed) sendMove(command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn == nil {
		return fmt.Errorf("feed not connected")
	}

	msg := realtime.ClientMessage{Type: "move", Command: command}
	f.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return f.conn.WriteJSON(msg)
}

func (f *Feed) MovePlayerUp(playerID, sessionID string) error {
	return f.sendMove("up")
}

func (f *Feed) MovePlayerDown(playerID, sessionID string) error {
	return f.sendMove("down")
}

func (f *Feed) MovePlayerLeft(playerID, sessionID string) error {
	return f.sendMove("left")
}

func (f *Feed) MovePlayerRight(playerID, sessionID string) error {
	return f.sendMove("right")
}
