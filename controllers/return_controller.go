package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/middleware"
	"github.com/amorlias/bharatbazaar-api/models"
	"github.com/amorlias/bharatbazaar-api/services"
)

// CheckReturnEligibility handles GET /api/v1/orders/:id/can-return
func CheckReturnEligibility(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil || (!user.IsAdmin() && order.UserID != user.ID) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	eligibility, err := services.CheckReturnEligibility(db, config.GetConfig(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    eligibility,
	})
}

// CreateReturn handles POST /api/v1/orders/:id/return
func CreateReturn(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var input services.CreateReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
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
	ret, err := services.CreateReturn(db, config.GetConfig(), orderID, user, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"data":            ret,
		"return_id":       ret.ID,
		"review_timeline": "Your return request will be reviewed within 24-48 hours.",
	})
}

// GetReturnTracking handles GET /api/v1/returns/:id/tracking - fetches
// courier tracking for a return pickup, when available
func GetReturnTracking(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	returnID := c.Param("id")
	db := config.GetDB()

	var ret models.Return
	if err := db.Where("id = ?", returnID).First(&ret).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETURN_NOT_FOUND",
				"message": "Return request not found",
			},
		})
		return
	}

	if !user.IsAdmin() && ret.UserID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETURN_NOT_FOUND",
				"message": "Return request not found",
			},
		})
		return
	}

	// Tracking only exists once a pickup has been scheduled
	if ret.Status == models.ReturnStatusRequested || ret.Status == models.ReturnStatusRejected {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"tracking_available": false,
				"status":             ret.Status,
			},
		})
		return
	}

	courier := services.GetCourierService()
	if courier == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"tracking_available": false,
				"status":             ret.Status,
			},
		})
		return
	}

	var order models.Order
	if err := db.First(&order, ret.OrderID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order",
			},
		})
		return
	}

	tracking, err := courier.Track(order.OrderNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"tracking_available": true,
			"status":             ret.Status,
			"tracking":           tracking,
		},
	})
}

// AdminListReturns handles GET /api/v1/admin/returns - lists return
// requests, optionally filtered by status
func AdminListReturns(c *gin.Context) {
	db := config.GetDB()
	query := db.Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var returns []models.Return
	if err := query.Find(&returns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch return requests",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    returns,
	})
}

// AdminUpdateReturn handles PUT /api/v1/admin/returns/:id - applies one
// transition to the return state machine (approve, reject, picked_up,
// received, refunded)
func AdminUpdateReturn(c *gin.Context) {
	admin, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	returnID := c.Param("id")

	var input services.UpdateReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
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
	ret, err := services.UpdateReturnStatus(db, returnID, admin, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ret,
		"message": "Return request updated",
	})
}
