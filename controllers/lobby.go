package controllers

import (
	"log"
	"net/http"

	"noodleio/middleware"
	"noodleio/services/directory"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createLobbyRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
	MaxPlayers int    `json:"max_players"`
}

type joinLobbyRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
}

// @Summary Creates a new lobby owned by the calling player
// @Description Registers the player and returns the lobby, its shareable 5-character code and a player token
// @Tags lobby
// @Accept json
// @Produce json
// @Param request body controllers.createLobbyRequest true "player name and optional max players"
// @Success 200 {object} object{lobby_id=string,share_code=string,max_players=integer,player_id=string,token=string}
// @Failure 409 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /lobby [post]
func CreateLobby(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createLobbyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player_name is required"})
			return
		}

		svc := directory.NewService(db)
		lobby, player, err := svc.CreateLobbyWithOwner(req.PlayerName, req.MaxPlayers)
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := middleware.IssuePlayerToken(player.ID, player.PlayerName)
		if err != nil {
			log.Printf("Error issuing token for %s: %v", player.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error issuing player token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"lobby_id":    lobby.ID,
			"share_code":  lobby.ShortCode(),
			"max_players": lobby.MaxPlayers,
			"player_id":   player.ID,
			"token":       token,
		})
	}
}

// @Summary Gives info of a lobby
// @Description Accepts the full lobby id or its 5-character share code
// @Tags lobby
// @Produce json
// @Param lobby_id path string true "lobby id or share code"
// @Success 200 {object} object{lobby_id=string,share_code=string,max_players=integer,player_count=integer,owner_player_id=string}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /lobby/{lobby_id} [get]
func GetLobbyInfo(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := directory.NewService(db)
		lobby, err := svc.GetLobbyByID(c.Param("lobby_id"))
		if err != nil {
			respondError(c, err)
			return
		}

		players, err := svc.GetPlayersInLobby(lobby.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		owner := ""
		if lobby.OwnerPlayerID != nil {
			owner = *lobby.OwnerPlayerID
		}
		c.JSON(http.StatusOK, gin.H{
			"lobby_id":        lobby.ID,
			"share_code":      lobby.ShortCode(),
			"max_players":     lobby.MaxPlayers,
			"player_count":    len(players),
			"owner_player_id": owner,
			"created_at":      lobby.CreatedAt,
		})
	}
}

// @Summary Joins an existing lobby
// @Description Fails if the name is taken, the lobby does not exist or the lobby is full
// @Tags lobby
// @Accept json
// @Produce json
// @Param lobby_id path string true "lobby id or share code"
// @Param request body controllers.joinLobbyRequest true "player name"
// @Success 200 {object} object{player_id=string,lobby_id=string,token=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /lobby/{lobby_id}/join [post]
func JoinLobby(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req joinLobbyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player_name is required"})
			return
		}

		svc := directory.NewService(db)
		player, err := svc.JoinLobby(req.PlayerName, c.Param("lobby_id"))
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := middleware.IssuePlayerToken(player.ID, player.PlayerName)
		if err != nil {
			log.Printf("Error issuing token for %s: %v", player.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error issuing player token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"player_id": player.ID,
			"lobby_id":  player.LobbyID,
			"token":     token,
		})
	}
}

// @Summary Lists the players waiting in a lobby
// @Tags lobby
// @Produce json
// @Param lobby_id path string true "lobby id or share code"
// @Success 200 {array} object{player_id=string,player_name=string,joined_at=string}
// @Failure 404 {object} object{error=string}
// @Router /lobby/{lobby_id}/players [get]
func GetPlayersInLobby(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc := directory.NewService(db)
		players, err := svc.GetPlayersInLobby(c.Param("lobby_id"))
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]gin.H, len(players))
		for i, p := range players {
			out[i] = gin.H{
				"player_id":   p.ID,
				"player_name": p.PlayerName,
				"joined_at":   p.JoinedAt,
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary Leaves the lobby the authenticated player is in
// @Description If the leaving player owns the lobby, the lobby is deleted for everyone
// @Tags lobby
// @Produce json
// @Param Authorization header string true "Bearer player token"
// @Success 200 {object} object{left=boolean,was_owner=boolean}
// @Failure 500 {object} object{error=string}
// @Router /auth/lobby/leave [delete]
// @Security ApiKeyAuth
func LeaveLobby(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := middleware.PlayerID(c)

		svc := directory.NewService(db)
		left, wasOwner, err := svc.LeaveLobby(playerID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"left": left, "was_owner": wasOwner})
	}
}

// @Summary Deletes a lobby
// @Description Only the owner may delete; the players are removed with it
// @Tags lobby
// @Produce json
// @Param Authorization header string true "Bearer player token"
// @Param lobby_id path string true "lobby id or share code"
// @Success 200 {object} object{deleted=boolean}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/lobby/{lobby_id} [delete]
// @Security ApiKeyAuth
func DeleteLobby(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID := middleware.PlayerID(c)

		svc := directory.NewService(db)
		isOwner, err := svc.IsLobbyOwner(playerID, c.Param("lobby_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if !isOwner {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the lobby owner can delete the lobby"})
			return
		}

		deleted, err := svc.DeleteLobby(c.Param("lobby_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	}
}
