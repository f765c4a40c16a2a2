package controllers

import (
	"net/http"

	"noodleio/services/directory"

	"github.com/gin-gonic/gin"
)

// respondError translates directory errors to HTTP statuses: not-found to
// 404, validation outcomes to 409, everything else (store/transport) to 500.
func respondError(c *gin.Context, err error) {
	switch {
	case directory.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case directory.IsValidation(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
