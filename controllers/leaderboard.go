package controllers

import (
	"net/http"
	"strconv"

	"noodleio/services/directory"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type addLeaderboardRequest struct {
	PlayerName      string  `json:"player_name" binding:"required"`
	Score           int     `json:"score"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// @Summary Submits a finished run to the leaderboard
// @Tags leaderboard
// @Accept json
// @Produce json
// @Param request body controllers.addLeaderboardRequest true "run result"
// @Success 200 {object} object{entry_id=string,player_name=string,score=integer}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /leaderboard [post]
func AddLeaderboardEntry(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addLeaderboardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player_name is required"})
			return
		}

		svc := directory.NewLeaderboardService(db)
		entry, err := svc.AddEntry(req.PlayerName, req.Score, req.DurationSeconds, nil)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"entry_id":    entry.ID,
			"player_name": entry.PlayerName,
			"score":       entry.Score,
		})
	}
}

// @Summary Returns the top leaderboard entries, best score first
// @Tags leaderboard
// @Produce json
// @Param limit query integer false "how many entries, default 10"
// @Success 200 {array} object{player_name=string,score=integer,duration_seconds=number,created_at=string}
// @Failure 500 {object} object{error=string}
// @Router /leaderboard [get]
func GetTopLeaderboard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		svc := directory.NewLeaderboardService(db)
		entries, err := svc.GetTop(limit)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]gin.H, len(entries))
		for i, e := range entries {
			out[i] = gin.H{
				"player_name":      e.PlayerName,
				"score":            e.Score,
				"duration_seconds": e.DurationSeconds,
				"created_at":       e.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, out)
	}
}
