package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/middleware"
	"github.com/amorlias/bharatbazaar-api/models"
	"github.com/amorlias/bharatbazaar-api/services"
)

// UpdateOrderStatusRequest represents the admin status-change payload
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// CreateOrder handles POST /api/v1/orders - places a new order
func CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.CreateOrderInput
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
	order, err := services.CreateOrder(db, user, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListMyOrders handles GET /api/v1/orders - lists the caller's orders
func ListMyOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var orders []models.Order
	if err := db.Where("user_id = ?", user.ID).
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - fetches one order.
// Customers can only see their own orders; admins can see any.
func GetOrder(c *gin.Context) {
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
	if err := db.Preload("Items.Product").First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	if !user.IsAdmin() && order.UserID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// AdminListOrders handles GET /api/v1/admin/orders - lists all orders,
// optionally filtered by status
func AdminListOrders(c *gin.Context) {
	db := config.GetDB()
	query := db.Preload("Items.Product").Preload("User").Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// AdminUpdateOrderStatus handles PUT /api/v1/admin/orders/:id/status -
// advances an order along its lifecycle
func AdminUpdateOrderStatus(c *gin.Context) {
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

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
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
	order, err := services.TransitionStatus(db, orderID, req.Status, admin)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
