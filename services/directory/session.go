package directory

import (
	"errors"
	"fmt"
	"log"

	"noodleio/models/postgres"
	redis_models "noodleio/models/redis"
	"noodleio/services/redis"

	"gorm.io/gorm"
)

// SessionService starts and inspects game sessions. It needs both stores:
// Postgres owns the session row, Redis holds the live state the realtime
// layer serves, plus the start claim that serializes racing starters.
type SessionService struct {
	DB    *gorm.DB
	Redis *redis.RedisClient
	Dir   *Service
}

func NewSessionService(db *gorm.DB, rc *redis.RedisClient) *SessionService {
	return &SessionService{DB: db, Redis: rc, Dir: NewService(db)}
}

const (
	DefaultWinningScore = 10
	DefaultMapWidth     = 1080
	DefaultMapHeight    = 1080
)

// StartGameSession creates a game session for a lobby. Only the lobby owner
// may start one, and only while no other active session exists for that
// lobby. The returned message explains the outcome either way; err carries
// the machine-readable reason on failure.
//
// Two clients both believing they own the lobby are serialized by a Redis
// SETNX claim, and a partial unique index on (lobby_id) WHERE ended_at IS
// NULL backstops the store itself, so at most one active session can ever
// exist.
func (ss *SessionService) StartGameSession(playerID, lobbyIDOrPrefix string,
	winningScore, mapWidth, mapHeight int) (*postgres.GameSession, string, error) {

	if winningScore <= 0 {
		winningScore = DefaultWinningScore
	}
	if mapWidth <= 0 {
		mapWidth = DefaultMapWidth
	}
	if mapHeight <= 0 {
		mapHeight = DefaultMapHeight
	}

	lobby, err := ss.Dir.GetLobbyByID(lobbyIDOrPrefix)
	if err != nil {
		if errors.Is(err, ErrLobbyNotFound) {
			return nil, "Lobby not found", err
		}
		return nil, "Error fetching lobby", err
	}

	if lobby.OwnerPlayerID == nil || *lobby.OwnerPlayerID != playerID {
		return nil, "Only the lobby owner can start a game session", ErrNotOwner
	}

	claimed, err := ss.Redis.ClaimSessionStart(lobby.ID)
	if err != nil {
		return nil, "Error claiming session start", err
	}
	if !claimed {
		return nil, "A game session is already being started for this lobby", ErrSessionActive
	}
	defer func() {
		if err := ss.Redis.ReleaseSessionStart(lobby.ID); err != nil {
			log.Printf("Error releasing start claim for lobby %s: %v", lobby.ID, err)
		}
	}()

	var active int64
	if err := ss.DB.Model(&postgres.GameSession{}).
		Where("lobby_id = ? AND ended_at IS NULL", lobby.ID).Count(&active).Error; err != nil {
		return nil, "Error checking for active game session", fmt.Errorf("error checking active sessions: %v", err)
	}
	if active > 0 {
		return nil, "Lobby already has an active game session", ErrSessionActive
	}

	session := postgres.GameSession{
		LobbyID:      lobby.ID,
		WinningScore: winningScore,
		MapWidth:     mapWidth,
		MapHeight:    mapHeight,
	}
	if err := ss.DB.Create(&session).Error; err != nil {
		return nil, "Error creating game session", fmt.Errorf("error creating game session: %v", err)
	}

	if err := ss.seedSessionState(&session); err != nil {
		return nil, "Error seeding session state", err
	}

	log.Printf("Game session %s started for lobby %s by %s", session.ID, lobby.ID, playerID)
	return &session, "Game session started successfully", nil
}

// seedSessionState writes the session mirror and one PlayerGameState per
// lobby member into Redis. Players start spread along the horizontal middle
// of the map so nobody spawns on top of anybody.
func (ss *SessionService) seedSessionState(session *postgres.GameSession) error {
	if err := ss.Redis.SaveSessionState(&redis_models.SessionState{
		SessionID:    session.ID,
		LobbyID:      session.LobbyID,
		WinningScore: session.WinningScore,
		MapWidth:     session.MapWidth,
		MapHeight:    session.MapHeight,
	}); err != nil {
		return err
	}

	players, err := ss.Dir.GetPlayersInLobby(session.LobbyID)
	if err != nil {
		return err
	}

	for i, p := range players {
		state := &redis_models.PlayerGameState{
			PlayerID:  p.ID,
			SessionID: session.ID,
			XPos:      float64(session.MapWidth) * float64(i+1) / float64(len(players)+1),
			YPos:      float64(session.MapHeight) / 2,
			Score:     0,
		}
		if err := ss.Redis.SavePlayerGameState(state); err != nil {
			return err
		}
	}
	return nil
}

// CheckActiveGameSession returns a human-readable status for a lobby, in the
// form the lobby screen polls for while waiting on the owner.
func (ss *SessionService) CheckActiveGameSession(lobbyIDOrPrefix string) (string, error) {
	lobbyID, err := ss.Dir.ResolveLobbyID(lobbyIDOrPrefix)
	if err != nil {
		if errors.Is(err, ErrLobbyNotFound) {
			return "Lobby not found", err
		}
		return "", err
	}

	var session postgres.GameSession
	err = ss.DB.Where("lobby_id = ? AND ended_at IS NULL", lobbyID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "No active game session found", nil
	}
	if err != nil {
		return "", fmt.Errorf("error checking for active game session: %v", err)
	}
	return fmt.Sprintf("Active session found - session_id: %s", session.ID), nil
}

// GetActiveSession returns the active session for a lobby, if any.
func (ss *SessionService) GetActiveSession(lobbyIDOrPrefix string) (*postgres.GameSession, error) {
	lobbyID, err := ss.Dir.ResolveLobbyID(lobbyIDOrPrefix)
	if err != nil {
		return nil, err
	}

	var session postgres.GameSession
	err = ss.DB.Where("lobby_id = ? AND ended_at IS NULL", lobbyID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching active session: %v", err)
	}
	return &session, nil
}

// GetSession fetches a session by id, active or not.
func (ss *SessionService) GetSession(sessionID string) (*postgres.GameSession, error) {
	var session postgres.GameSession
	err := ss.DB.Where("id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching session: %v", err)
	}
	return &session, nil
}
