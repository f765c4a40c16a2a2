package routes

import (
	"noodleio/controllers"
	"noodleio/middleware"
	"noodleio/services/realtime"
	"noodleio/services/redis"
	"noodleio/sync"
	"noodleio/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient, syncManager *sync.SyncManager, hub *realtime.Hub) {
	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/lobby", controllers.CreateLobby(db))

	api.GET("/lobby/:lobby_id", controllers.GetLobbyInfo(db))

	api.POST("/lobby/:lobby_id/join", controllers.JoinLobby(db))

	api.GET("/lobby/:lobby_id/players", controllers.GetPlayersInLobby(db))

	api.GET("/lobby/:lobby_id/session", controllers.CheckActiveGameSession(db, redisClient))

	api.GET("/session/:session_id", controllers.GetGameSession(db, redisClient))

	api.POST("/leaderboard", controllers.AddLeaderboardEntry(db))

	api.GET("/leaderboard", controllers.GetTopLeaderboard(db))

	// Realtime session feed
	api.GET("/ws", hub.HandleWS)

	// Routes that require authentication
	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.DELETE("/lobby/leave", controllers.LeaveLobby(db))

		authentication.DELETE("/lobby/:lobby_id", controllers.DeleteLobby(db))

		authentication.POST("/lobby/:lobby_id/start", controllers.StartGameSession(db, redisClient, syncManager))
	}
}
