package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amorlias/bharatbazaar-api/services"
	"github.com/amorlias/bharatbazaar-api/utils"
)

// UploadEvidence handles POST /api/v1/uploads/evidence - uploads a return
// evidence file (image or video) and returns its S3 key for inclusion in
// a subsequent return request
func UploadEvidence(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A file is required",
			},
		})
		return
	}

	if err := utils.ValidateEvidenceFile(fileHeader); err != nil {
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

	s3Key, err := s3Service.UploadFile(fileHeader, "evidence")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to upload file",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"s3_key":   s3Key,
			"is_video": utils.IsVideoFile(fileHeader.Filename),
		},
	})
}
