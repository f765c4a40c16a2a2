package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Liveness check
// @Description Returns pong, so deploys and clients can verify the API is up
// @Tags misc
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
