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

// ListBanners handles GET /api/v1/banners - active banners with presigned
// image URLs, ordered for display
func ListBanners(c *gin.Context) {
	db := config.GetDB()
	var banners []models.Banner
	if err := db.Where("is_active = ?", true).
		Order("sort_order ASC, created_at DESC").
		Find(&banners).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch banners",
			},
		})
		return
	}

	if s3Service := services.GetS3Service(); s3Service != nil {
		for i := range banners {
			url, err := s3Service.GetPresignedURL(banners[i].ImageS3Key)
			if err != nil {
				log.Printf("Failed to presign banner %d image: %v", banners[i].ID, err)
				continue
			}
			banners[i].ImageURL = url
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    banners,
	})
}

// AdminCreateBanner handles POST /api/v1/admin/banners - multipart upload
// of a banner image plus its metadata
func AdminCreateBanner(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "An image file is required",
			},
		})
		return
	}

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

	s3Key, err := s3Service.UploadFile(fileHeader, "banners")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to upload banner image",
			},
		})
		return
	}

	sortOrder, _ := strconv.Atoi(c.PostForm("sort_order"))
	banner := models.Banner{
		Title:      title,
		ImageS3Key: s3Key,
		LinkURL:    c.PostForm("link_url"),
		SortOrder:  sortOrder,
		IsActive:   true,
	}

	db := config.GetDB()
	if err := db.Create(&banner).Error; err != nil {
		// Roll back the orphaned upload
		if deleteErr := s3Service.DeleteFile(s3Key); deleteErr != nil {
			log.Printf("Failed to delete orphaned banner image %s: %v", s3Key, deleteErr)
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create banner",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    banner,
	})
}

// AdminDeleteBanner handles DELETE /api/v1/admin/banners/:id
func AdminDeleteBanner(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A numeric banner ID is required",
			},
		})
		return
	}

	db := config.GetDB()
	var banner models.Banner
	if err := db.First(&banner, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BANNER_NOT_FOUND",
				"message": "Banner not found",
			},
		})
		return
	}

	if err := db.Delete(&banner).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete banner",
			},
		})
		return
	}

	if s3Service := services.GetS3Service(); s3Service != nil {
		if err := s3Service.DeleteFile(banner.ImageS3Key); err != nil {
			log.Printf("Failed to delete banner image %s: %v", banner.ImageS3Key, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Banner deleted",
	})
}
