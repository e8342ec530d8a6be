package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/models"
	"github.com/amorlias/bharatbazaar-api/services"
)

// CheckCancelEligibility handles GET /api/v1/orders/:id/can-cancel
func CheckCancelEligibility(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()

	// Ownership check before revealing anything about the order
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

	eligibility, err := services.CheckCancelEligibility(db, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    eligibility,
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var input services.CancelOrderInput
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
	cancellation, err := services.CancelOrder(db, orderID, user, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"data":            cancellation,
		"message":         "Order cancelled successfully",
		"refund_timeline": refundTimeline(cancellation),
	})
}

// refundTimeline phrases the refund expectation shown to the customer
func refundTimeline(cancellation *models.OrderCancellation) string {
	if cancellation.RefundAmount <= 0 {
		return "No payment was collected for this order."
	}
	return "Your refund will be processed within 5-7 business days."
}
