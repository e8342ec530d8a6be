package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/middleware"
	"github.com/amorlias/bharatbazaar-api/models"
	"github.com/amorlias/bharatbazaar-api/services"
)

// currentUser resolves the authenticated user, preferring the one loaded
// by RequireAdmin. Writes the error response and returns false on failure.
func currentUser(c *gin.Context) (*models.User, bool) {
	if user, ok := middleware.GetCurrentUser(c); ok {
		return user, true
	}

	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
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
		return nil, false
	}

	return &user, true
}

// orderIDParam parses the :id path parameter as an order id. Writes the
// error response and returns false on failure.
func orderIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A numeric order ID is required",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps a typed error from the order/return core onto
// the HTTP response envelope.
func respondServiceError(c *gin.Context, err error) {
	var (
		validationErr   *services.ValidationError
		notFoundErr     *services.NotFoundError
		conflictErr     *services.StateConflictError
		stockErr        *services.InsufficientStockError
		dupCancelErr    *services.DuplicateCancellationError
		dupReturnErr    *services.DuplicateReturnError
		windowErr       *services.ReturnWindowExpiredError
		externalErr     *services.ExternalServiceError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": validationErr.Message,
			},
		})
	case errors.As(err, &notFoundErr):
		code := strings.ToUpper(notFoundErr.Resource) + "_NOT_FOUND"
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": notFoundErr.Message,
			},
		})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":      "INSUFFICIENT_STOCK",
				"message":   err.Error(),
				"available": stockErr.Available,
			},
		})
	case errors.As(err, &dupCancelErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DUPLICATE_CANCELLATION",
				"message": err.Error(),
			},
		})
	case errors.As(err, &dupReturnErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DUPLICATE_RETURN",
				"message": err.Error(),
			},
		})
	case errors.As(err, &windowErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETURN_NOT_ELIGIBLE",
				"message": windowErr.Message,
			},
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATE_CONFLICT",
				"message": conflictErr.Message,
			},
		})
	case errors.As(err, &externalErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXTERNAL_SERVICE_ERROR",
				"message": err.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Something went wrong",
			},
		})
	}
}
