package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/models"
)

// RequireAdmin loads the authenticated user and aborts unless they hold
// the admin role. The loaded user is stored in the context under
// "current_user" so handlers don't query twice.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Could not extract user information",
				},
			})
			c.Abort()
			return
		}

		db := config.GetDB()
		var user models.User
		if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User profile not found. Please create a profile first.",
				},
			})
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Admin access required",
				},
			})
			c.Abort()
			return
		}

		c.Set("current_user", &user)
		c.Next()
	}
}

// GetCurrentUser returns the user loaded by RequireAdmin, if present
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("current_user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
