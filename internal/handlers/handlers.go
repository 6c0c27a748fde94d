package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the authenticated user's id set by the authz
// middleware. When absent the request is aborted with 401.
func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return 0, false
	}
	return userID, true
}
