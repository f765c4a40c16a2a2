package controllers

import (
	"net/http"

	"noodleio/middleware"
	"noodleio/services/directory"
	"noodleio/services/redis"
	"noodleio/sync"
	"noodleio/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type startSessionRequest struct {
	WinningScore int `json:"winning_score"`
	MapWidth     int `json:"map_width"`
	MapHeight    int `json:"map_height"`
}

// @Summary Starts a game session for a lobby
// @Description Owner-only; fails while another session is active for the lobby
// @Tags session
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer player token"
// @Param lobby_id path string true "lobby id or share code"
// @Param request body controllers.startSessionRequest false "session parameters, defaults applied when omitted"
// @Success 200 {object} object{session_id=string,lobby_id=string,winning_score=integer,map_width=integer,map_height=integer,message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/lobby/{lobby_id}/start [post]
// @Security ApiKeyAuth
func StartGameSession(db *gorm.DB, redisClient *redis.RedisClient, syncManager *sync.SyncManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := middleware.PlayerID(c)

		var req startSessionRequest
		_ = c.ShouldBindJSON(&req) // all fields optional

		svc := directory.NewSessionService(db, redisClient)

		lobbyID, err := svc.Dir.ResolveLobbyID(c.Param("lobby_id"))
		if err != nil {
			respondError(c, err)
			return
		}

		if _, err := utils.CheckLobbyExists(db, lobbyID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
			return
		}
		if _, err := utils.IsPlayerInLobby(db, lobbyID, playerID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Player is not in this lobby"})
			return
		}

		// Serialize with any other start attempt for the same lobby.
		unlock := syncManager.LockLobby(lobbyID)
		session, message, err := svc.StartGameSession(playerID, lobbyID, req.WinningScore, req.MapWidth, req.MapHeight)
		unlock()

		if err != nil {
			if err == directory.ErrNotOwner {
				c.JSON(http.StatusForbidden, gin.H{"error": message})
				return
			}
			if directory.IsValidation(err) || directory.IsNotFound(err) {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": message})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id":    session.ID,
			"lobby_id":      session.LobbyID,
			"winning_score": session.WinningScore,
			"map_width":     session.MapWidth,
			"map_height":    session.MapHeight,
			"message":       message,
		})
	}
}

// @Summary Checks whether a lobby has an active game session
// @Description Lobby members poll this while waiting for the owner to start
// @Tags session
// @Produce json
// @Param lobby_id path string true "lobby id or share code"
// @Success 200 {object} object{status=string,session_id=string}
// @Failure 404 {object} object{error=string}
// @Router /lobby/{lobby_id}/session [get]
func CheckActiveGameSession(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := directory.NewSessionService(db, redisClient)

		status, err := svc.CheckActiveGameSession(c.Param("lobby_id"))
		if err != nil {
			respondError(c, err)
			return
		}

		out := gin.H{"status": status}
		if session, err := svc.GetActiveSession(c.Param("lobby_id")); err == nil {
			out["session_id"] = session.ID
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary Fetches a game session by id
// @Tags session
// @Produce json
// @Param session_id path string true "session id"
// @Success 200 {object} object{session_id=string,lobby_id=string,winning_score=integer,map_width=integer,map_height=integer,started_at=string,ended_at=string}
// @Failure 404 {object} object{error=string}
// @Router /session/{session_id} [get]
func GetGameSession(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := directory.NewSessionService(db, redisClient)

		session, err := svc.GetSession(c.Param("session_id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id":    session.ID,
			"lobby_id":      session.LobbyID,
			"winning_score": session.WinningScore,
			"map_width":     session.MapWidth,
			"map_height":    session.MapHeight,
			"started_at":    session.StartedAt,
			"ended_at":      session.EndedAt,
		})
	}
}
