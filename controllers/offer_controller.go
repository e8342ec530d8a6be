package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/models"
	"github.com/amorlias/bharatbazaar-api/services"
	"github.com/amorlias/bharatbazaar-api/utils"
)

// UpdateOfferRequest represents the request body for updating an offer
type UpdateOfferRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	DiscountType  *string  `json:"discount_type"`
	DiscountValue *float64 `json:"discount_value"`
	SortOrder     *int     `json:"sort_order"`
	IsActive      *bool    `json:"is_active"`
}

func validDiscount(discountType string, discountValue float64) bool {
	if discountValue <= 0 {
		return false
	}
	switch discountType {
	case models.DiscountTypePercentage:
		return discountValue <= 100
	case models.DiscountTypeFlat:
		return true
	}
	return false
}

// presignOfferImages fills ImageURL for offers that carry an image
func presignOfferImages(offers []models.Offer) {
	s3Service := services.GetS3Service()
	if s3Service == nil {
		return
	}
	for i := range offers {
		if offers[i].ImageS3Key == "" {
			continue
		}
		url, err := s3Service.GetPresignedURL(offers[i].ImageS3Key)
		if err != nil {
			log.Printf("Failed to presign offer %d image: %v", offers[i].ID, err)
			continue
		}
		offers[i].ImageURL = url
	}
}

// ListOffers handles GET /api/v1/offers - active offers with presigned
// image URLs, ordered for display
func ListOffers(c *gin.Context) {
	db := config.GetDB()
	var offers []models.Offer
	if err := db.Where("is_active = ?", true).
		Order("sort_order ASC, created_at DESC").
		Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch offers",
			},
		})
		return
	}

	presignOfferImages(offers)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    offers,
	})
}

// AdminListOffers handles GET /api/v1/admin/offers - all offers,
// inactive ones included
func AdminListOffers(c *gin.Context) {
	db := config.GetDB()
	var offers []models.Offer
	if err := db.Order("sort_order ASC, created_at DESC").Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch offers",
			},
		})
		return
	}

	presignOfferImages(offers)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    offers,
	})
}

// AdminCreateOffer handles POST /api/v1/admin/offers - multipart upload
// of the offer metadata plus an optional image
func AdminCreateOffer(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "title is required",
			},
		})
		return
	}

	discountType := c.PostForm("discount_type")
	discountValue, _ := strconv.ParseFloat(c.PostForm("discount_value"), 64)
	if !validDiscount(discountType, discountValue) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "discount_type must be percentage (up to 100) or flat, with a positive discount_value",
			},
		})
		return
	}

	var s3Key string
	if fileHeader, err := c.FormFile("image"); err == nil {
		if err := utils.ValidateImageFile(fileHeader); err != nil {
			uploadErr := err.(*utils.FileUploadError)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}

		s3Service := services.GetS3Service()
		if s3Service == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "STORAGE_UNAVAILABLE",
					"message": "Media storage is not configured",
				},
			})
			return
		}

		s3Key, err = s3Service.UploadFile(fileHeader, "offers")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPLOAD_ERROR",
					"message": "Failed to upload offer image",
				},
			})
			return
		}
	}

	sortOrder, _ := strconv.Atoi(c.PostForm("sort_order"))
	offer := models.Offer{
		Title:         title,
		Description:   c.PostForm("description"),
		DiscountType:  discountType,
		DiscountValue: discountValue,
		ImageS3Key:    s3Key,
		SortOrder:     sortOrder,
		IsActive:      true,
	}

	db := config.GetDB()
	if err := db.Create(&offer).Error; err != nil {
		// Roll back the orphaned upload
		if s3Key != "" {
			if deleteErr := services.GetS3Service().DeleteFile(s3Key); deleteErr != nil {
				log.Printf("Failed to delete orphaned offer image %s: %v", s3Key, deleteErr)
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create offer",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    offer,
	})
}

// AdminUpdateOffer handles PUT /api/v1/admin/offers/:id
func AdminUpdateOffer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A numeric offer ID is required",
			},
		})
		return
	}

	var req UpdateOfferRequest
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
	var offer models.Offer
	if err := db.First(&offer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OFFER_NOT_FOUND",
				"message": "Offer not found",
			},
		})
		return
	}

	discountType := offer.DiscountType
	if req.DiscountType != nil {
		discountType = *req.DiscountType
	}
	discountValue := offer.DiscountValue
	if req.DiscountValue != nil {
		discountValue = *req.DiscountValue
	}
	if !validDiscount(discountType, discountValue) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "discount_type must be percentage (up to 100) or flat, with a positive discount_value",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.DiscountType != nil {
		updates["discount_type"] = discountType
	}
	if req.DiscountValue != nil {
		updates["discount_value"] = discountValue
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := db.Model(&offer).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update offer",
				},
			})
			return
		}
	}

	if err := db.First(&offer, offer.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch updated offer",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    offer,
	})
}

// AdminDeleteOffer handles DELETE /api/v1/admin/offers/:id
func AdminDeleteOffer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A numeric offer ID is required",
			},
		})
		return
	}

	db := config.GetDB()
	var offer models.Offer
	if err := db.First(&offer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "OFFER_NOT_FOUND",
				"message": "Offer not found",
			},
		})
		return
	}

	if err := db.Delete(&offer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete offer",
			},
		})
		return
	}

	if offer.ImageS3Key != "" {
		if s3Service := services.GetS3Service(); s3Service != nil {
			if err := s3Service.DeleteFile(offer.ImageS3Key); err != nil {
				log.Printf("Failed to delete offer image %s: %v", offer.ImageS3Key, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Offer deleted",
	})
}
