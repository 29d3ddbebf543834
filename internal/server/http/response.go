package http

import "github.com/gin-gonic/gin"

// Every JSON endpoint answers with the same envelope so clients can branch
// on the success flag alone.

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data, "success": true})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message, "success": false})
}
