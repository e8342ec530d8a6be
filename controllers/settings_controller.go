package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/models"
)

// UpdateSettingRequest represents the request body for updating a setting
type UpdateSettingRequest struct {
	Value models.JSONMap `json:"value" binding:"required"`
}

var knownSettingTypes = map[string]bool{
	models.SettingBusinessProfile: true,
	models.SettingGST:             true,
	models.SettingBranding:        true,
}

// AdminGetSetting handles GET /api/v1/admin/settings/:type
func AdminGetSetting(c *gin.Context) {
	settingType := c.Param("type")
	if !knownSettingTypes[settingType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Unknown setting type",
			},
		})
		return
	}

	db := config.GetDB()
	var setting models.Setting
	if err := db.Where("type = ?", settingType).First(&setting).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SETTING_NOT_FOUND",
				"message": "Setting has not been configured yet",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    setting,
	})
}

// AdminUpdateSetting handles PUT /api/v1/admin/settings/:type - creates
// or replaces the singleton record for the type
func AdminUpdateSetting(c *gin.Context) {
	settingType := c.Param("type")
	if !knownSettingTypes[settingType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Unknown setting type",
			},
		})
		return
	}

	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var setting models.Setting
	err := db.Where("type = ?", settingType).First(&setting).Error
	if err != nil {
		setting = models.Setting{Type: settingType, Value: req.Value}
		if err := db.Create(&setting).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to create setting",
				},
			})
			return
		}
	} else {
		if err := db.Model(&setting).Update("value", req.Value).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update setting",
				},
			})
			return
		}
		setting.Value = req.Value
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    setting,
	})
}
