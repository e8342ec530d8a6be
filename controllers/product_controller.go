package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/models"
	"github.com/amorlias/bharatbazaar-api/services"
)

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name              string  `json:"name" binding:"required"`
	SKU               string  `json:"sku" binding:"required"`
	Description       string  `json:"description"`
	CategoryID        *uint   `json:"category_id"`
	StockQty          int     `json:"stock_qty" binding:"gte=0"`
	LowStockThreshold int     `json:"low_stock_threshold" binding:"gte=0"`
	CostPrice         float64 `json:"cost_price" binding:"gte=0"`
	SellingPrice      float64 `json:"selling_price" binding:"required,gt=0"`
}

// UpdateProductRequest represents the request body for updating a product
type UpdateProductRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	CategoryID        *uint    `json:"category_id"`
	StockQty          *int     `json:"stock_qty"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
	CostPrice         *float64 `json:"cost_price"`
	SellingPrice      *float64 `json:"selling_price"`
	IsActive          *bool    `json:"is_active"`
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListProducts handles GET /api/v1/products - lists active products
func ListProducts(c *gin.Context) {
	db := config.GetDB()
	query := db.Preload("Category").Where("is_active = ?", true).Order("name ASC")

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// GetProduct handles GET /api/v1/products/:id - fetches one product
func GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
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
	var product models.Product
	if err := db.Preload("Category").First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// GetProductAvailability handles GET /api/v1/products/:id/availability -
// returns the derived stock view (total, blocked, available, status)
func GetProductAvailability(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
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

	availability, err := services.ProductAvailability(config.GetDB(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    availability,
	})
}

// AdminCreateProduct handles POST /api/v1/admin/products
func AdminCreateProduct(c *gin.Context) {
	var req CreateProductRequest
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

	product := models.Product{
		Name:              req.Name,
		SKU:               req.SKU,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		StockQty:          req.StockQty,
		LowStockThreshold: req.LowStockThreshold,
		CostPrice:         req.CostPrice,
		SellingPrice:      req.SellingPrice,
		IsActive:          true,
	}
	if product.LowStockThreshold == 0 {
		product.LowStockThreshold = 5
	}

	db := config.GetDB()
	if err := db.Create(&product).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SKU_EXISTS",
					"message": "A product with this SKU already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create product",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// AdminUpdateProduct handles PUT /api/v1/admin/products/:id
func AdminUpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
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

	var req UpdateProductRequest
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
	if err := db.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.StockQty != nil {
		if *req.StockQty < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "stock_qty cannot be negative",
				},
			})
			return
		}
		updates["stock_qty"] = *req.StockQty
	}
	if req.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *req.LowStockThreshold
	}
	if req.CostPrice != nil {
		updates["cost_price"] = *req.CostPrice
	}
	if req.SellingPrice != nil {
		updates["selling_price"] = *req.SellingPrice
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := db.Model(&product).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update product",
				},
			})
			return
		}
	}

	if err := db.Preload("Category").First(&product, product.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch updated product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// AdminDeactivateProduct handles DELETE /api/v1/admin/products/:id.
// Products referenced by orders are deactivated, never hard-deleted.
func AdminDeactivateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
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
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	if err := db.Model(&product).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to deactivate product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deactivated",
	})
}

// ListCategories handles GET /api/v1/categories
func ListCategories(c *gin.Context) {
	db := config.GetDB()
	var categories []models.Category
	if err := db.Order("name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}

// AdminCreateCategory handles POST /api/v1/admin/categories
func AdminCreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
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

	category := models.Category{Name: req.Name}
	db := config.GetDB()
	if err := db.Create(&category).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CATEGORY_EXISTS",
					"message": "A category with this name already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create category",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    category,
	})
}
