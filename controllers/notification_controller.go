package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/models"
)

// ListNotifications handles GET /api/v1/notifications - lists the
// caller's notifications, newest first, with an unread count
func ListNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var notifications []models.Notification
	if err := db.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch notifications",
			},
		})
		return
	}

	var unread int64
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", user.ID, false).
		Count(&unread).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to count notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         notifications,
		"unread_count": unread,
	})
}

// MarkNotificationRead handles PUT /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var notification models.Notification
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOTIFICATION_NOT_FOUND",
				"message": "Notification not found",
			},
		})
		return
	}

	if err := db.Model(&notification).Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update notification",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notification,
	})
}

// AdminListNotifications handles GET /api/v1/admin/notifications - the
// admin feed (notifications with no user)
func AdminListNotifications(c *gin.Context) {
	db := config.GetDB()
	var notifications []models.Notification
	if err := db.Where("user_id IS NULL").
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}
