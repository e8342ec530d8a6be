package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/models"
)

// AddToWishlistRequest represents the request body for saving a product
type AddToWishlistRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// ListWishlist handles GET /api/v1/wishlist
func ListWishlist(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var items []models.WishlistItem
	if err := db.Where("user_id = ?", user.ID).
		Preload("Product").
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch wishlist",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// AddToWishlist handles POST /api/v1/wishlist
func AddToWishlist(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req AddToWishlistRequest
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
	var product models.Product
	if err := db.First(&product, req.ProductID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	item := models.WishlistItem{
		UserID:    user.ID,
		ProductID: product.ID,
	}
	if err := db.Create(&item).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ALREADY_IN_WISHLIST",
					"message": "Product is already in your wishlist",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add to wishlist",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}

// RemoveFromWishlist handles DELETE /api/v1/wishlist/:productId
func RemoveFromWishlist(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A numeric product ID is required",
			},
		})
		return
	}

	db := config.GetDB()
	result := db.Where("user_id = ? AND product_id = ?", user.ID, productID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to remove from wishlist",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_IN_WISHLIST",
				"message": "Product is not in your wishlist",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Removed from wishlist",
	})
}
